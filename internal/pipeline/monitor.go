package pipeline

import (
	"go.uber.org/zap"
)

type MonitorFlags uint8

const (
	MonitorNone MonitorFlags = 0
	MonitorAll  MonitorFlags = 1 << iota
	MonitorLoads
	MonitorFits
	MonitorForecasts
	MonitorScenarios
)

// Monitor gates per-unit event logging behind flags, so a large panel run
// can be replayed unit by unit when needed and stays quiet otherwise.
type Monitor struct {
	logger *zap.Logger
	flags  MonitorFlags
}

func NewMonitor(logger *zap.Logger, flags MonitorFlags) *Monitor {
	return &Monitor{
		logger: logger,
		flags:  flags,
	}
}

func (m *Monitor) enabled(flag MonitorFlags) bool {
	return m.flags&flag != 0 || m.flags&MonitorAll != 0
}

func (m *Monitor) Load(key string, fields ...zap.Field) {
	if m.enabled(MonitorLoads) {
		m.logger.Info("unit loaded", append([]zap.Field{zap.String("unit", key)}, fields...)...)
	}
}

func (m *Monitor) Fit(key string, fields ...zap.Field) {
	if m.enabled(MonitorFits) {
		m.logger.Info("unit fitted", append([]zap.Field{zap.String("unit", key)}, fields...)...)
	}
}

func (m *Monitor) Forecast(key string, fields ...zap.Field) {
	if m.enabled(MonitorForecasts) {
		m.logger.Info("unit forecast", append([]zap.Field{zap.String("unit", key)}, fields...)...)
	}
}

func (m *Monitor) Scenario(key string, fields ...zap.Field) {
	if m.enabled(MonitorScenarios) {
		m.logger.Info("unit scenario", append([]zap.Field{zap.String("unit", key)}, fields...)...)
	}
}
