package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridpulse/csgstat/internal/model"
	"github.com/gridpulse/csgstat/pkg/csg"
)

func TestExtractLadderNil(t *testing.T) {
	t.Parallel()

	f := ExtractLadder(nil)
	assert.Equal(t, model.KindUnavailable, f.Stage.Kind())
	assert.Equal(t, model.KindUnavailable, f.RemainingKWh.Kind())
	assert.Equal(t, model.KindUnavailable, f.Tariff.Kind())
	assert.Equal(t, model.KindUnavailable, f.StartDate.Kind())
}

func TestExtractLadderPartialFields(t *testing.T) {
	t.Parallel()

	stage := 2
	tariff := 0.58
	start := model.NewDate(2026, time.July, 1)

	// remaining_kwh null even though the call succeeded.
	f := ExtractLadder(&csg.Ladder{
		Stage:     &stage,
		Tariff:    &tariff,
		StartDate: &start,
	})

	v, ok := f.Stage.Value()
	require.True(t, ok)
	assert.Equal(t, 2, v)

	assert.Equal(t, model.KindUnavailable, f.RemainingKWh.Kind())

	tv, ok := f.Tariff.Float64()
	require.True(t, ok)
	assert.Equal(t, 0.58, tv)

	dv, ok := f.StartDate.Value()
	require.True(t, ok)
	assert.Equal(t, start, dv)
}
