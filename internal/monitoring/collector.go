package monitoring

import (
	"time"

	"github.com/gridpulse/csgstat/internal/engine"
	"github.com/gridpulse/csgstat/internal/model"
)

// HealthSnapshot holds a point-in-time view of engine health for the
// status surface.
type HealthSnapshot struct {
	// Cycle history.
	CyclesTotal         int    `json:"cycles_total"`
	CyclesFailed        int    `json:"cycles_failed"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
	LastSuccess         string `json:"last_success,omitempty"`
	LastFailureKind     string `json:"last_failure_kind,omitempty"`
	LastFailureReason   string `json:"last_failure_reason,omitempty"`

	// Published data.
	HasData     bool                     `json:"has_data"`
	PublishedAt string                   `json:"published_at,omitempty"`
	StaleSecs   int                      `json:"stale_secs,omitempty"`
	Accounts    map[string]AccountHealth `json:"accounts"`

	CollectedAt time.Time `json:"collected_at"`
}

// AccountHealth counts field states in one account's latest snapshot.
type AccountHealth struct {
	FieldsTotal       int `json:"fields_total"`
	FieldsPopulated   int `json:"fields_populated"`
	FieldsUnavailable int `json:"fields_unavailable"`
	FieldsUnchanged   int `json:"fields_unchanged"`
}

// SnapshotSource abstracts the worker methods the collector reads.
type SnapshotSource interface {
	Latest() (model.Snapshots, time.Time, bool)
	Stats() engine.CycleStats
}

// Collector gathers health metrics from the published snapshots and cycle
// history.
type Collector struct {
	source SnapshotSource
	now    func() time.Time
}

// NewCollector creates a health collector over the given source.
func NewCollector(source SnapshotSource) *Collector {
	return &Collector{source: source, now: time.Now}
}

// WithNow sets a fixed time for testing.
func (c *Collector) WithNow(now func() time.Time) *Collector {
	c.now = now
	return c
}

// Collect gathers a health snapshot.
func (c *Collector) Collect() *HealthSnapshot {
	stats := c.source.Stats()
	health := &HealthSnapshot{
		CyclesTotal:         stats.CyclesTotal,
		CyclesFailed:        stats.CyclesFailed,
		ConsecutiveFailures: stats.ConsecutiveFailures,
		LastFailureKind:     string(stats.LastFailureKind),
		LastFailureReason:   stats.LastFailureReason,
		Accounts:            make(map[string]AccountHealth),
		CollectedAt:         c.now().UTC(),
	}
	if !stats.LastSuccess.IsZero() {
		health.LastSuccess = stats.LastSuccess.UTC().Format(time.RFC3339)
	}

	snaps, at, ok := c.source.Latest()
	health.HasData = ok
	if !ok {
		return health
	}
	health.PublishedAt = at.UTC().Format(time.RFC3339)
	health.StaleSecs = int(c.now().Sub(at).Seconds())

	for number, snap := range snaps {
		var ah AccountHealth
		for _, f := range snap.Fields() {
			ah.FieldsTotal++
			switch f.Kind() {
			case model.KindUnavailable:
				ah.FieldsUnavailable++
			case model.KindUnchanged:
				ah.FieldsUnchanged++
			case model.KindValue:
				ah.FieldsPopulated++
			}
		}
		health.Accounts[number] = ah
	}
	return health
}
