package pipeline

import (
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Telemetry counts per-unit outcomes per stage across a run.
type Telemetry struct {
	logger *zap.Logger

	ok      map[string]int
	skipped map[string]int
	failed  map[string]int
}

func NewTelemetry(logger *zap.Logger) *Telemetry {
	return &Telemetry{
		logger:  logger,
		ok:      make(map[string]int),
		skipped: make(map[string]int),
		failed:  make(map[string]int),
	}
}

func (t *Telemetry) UnitOk(stage string) {
	t.ok[stage]++
}

func (t *Telemetry) UnitSkipped(stage string) {
	t.skipped[stage]++
}

func (t *Telemetry) UnitFailed(stage string) {
	t.failed[stage]++
}

// Observe records an outcome for a stage; nil err counts as success.
func (t *Telemetry) Observe(stage string, err error) {
	if err != nil {
		t.failed[stage]++
		return
	}
	t.ok[stage]++
}

func (t *Telemetry) PrintStatistics() {
	for _, stage := range t.stages() {
		t.logger.Info("stage statistics",
			zap.String("stage", stage),
			zap.Int("ok", t.ok[stage]),
			zap.Int("skipped", t.skipped[stage]),
			zap.Int("failed", t.failed[stage]),
		)
	}
}

func (t *Telemetry) stages() []string {
	seen := make(map[string]struct{})
	var stages []string
	for _, m := range []map[string]int{t.ok, t.skipped, t.failed} {
		for stage := range m {
			if _, dup := seen[stage]; !dup {
				seen[stage] = struct{}{}
				stages = append(stages, stage)
			}
		}
	}
	slices.Sort(stages)
	return stages
}
