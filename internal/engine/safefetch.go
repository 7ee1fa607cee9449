package engine

import (
	"errors"

	"go.uber.org/zap"

	"github.com/gridpulse/csgstat/pkg/csg"
)

// safeFetch runs one remote call and isolates its failure to its own
// output fields. A classified provider error is logged and returns nil,
// and the caller degrades just that call's fields to unavailable. A session
// invalidation or an unclassified error is returned and aborts the cycle.
func safeFetch[T any](log *zap.Logger, op string, fn func() (T, error)) (*T, error) {
	v, err := fn()
	if err == nil {
		return &v, nil
	}

	var ae *csg.APIError
	if errors.As(err, &ae) {
		log.Error("fetch failed, degrading field",
			zap.String("op", op),
			zap.String("code", ae.Code),
			zap.Error(err),
		)
		return nil, nil
	}
	return nil, err
}
