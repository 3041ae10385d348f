package tune

import (
	"time"

	"github.com/google/uuid"

	"github.com/MohammedBenaboud/Alphaseeker/src/application/pipeline"
)

// SystemMetric is one observability sample derived from recent logs
// and tuner history. Immutable once emitted.
type SystemMetric struct {
	Timestamp      time.Time `json:"timestamp"`
	LatencyMS      int       `json:"latency_ms"`
	ErrorRate      float64   `json:"error_rate"`      // % of rejections in recent logs
	SignalAccuracy float64   `json:"signal_accuracy"` // % wins over the accuracy window
	ActiveModules  int       `json:"active_modules"`
}

// Severity grades a system alert.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// SystemAlert is an operator-facing notice emitted by the monitor.
type SystemAlert struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Severity  Severity  `json:"severity"`
	Module    string    `json:"module"`
	Message   string    `json:"message"`
}

// logWindow is how many recent execution log entries feed the error
// rate.
const logWindow = 50

const activeModuleCount = 5

// Observe derives the current health metrics from the recent execution
// log, a latency sample, and tuner history. Pure: stateless beyond its
// inputs.
func Observe(logs []pipeline.ExecutionLogEntry, latencyMS int, s State, now time.Time) (SystemMetric, []SystemAlert) {
	recent := logs
	if len(recent) > logWindow {
		recent = recent[len(recent)-logWindow:]
	}

	rejections := 0
	for _, entry := range recent {
		if entry.Kind == pipeline.ExecRejected {
			rejections++
		}
	}
	// Denominator floor of 1 guards the empty-log case.
	totalOps := len(recent)
	if totalOps == 0 {
		totalOps = 1
	}
	errorRate := float64(rejections) / float64(totalOps) * 100

	accWindow := s.RecentOutcomes(AccuracyWindow)
	wins := 0
	for _, v := range accWindow {
		if v == 1 {
			wins++
		}
	}
	accuracy := 0.0
	if len(accWindow) > 0 {
		accuracy = float64(wins) / float64(len(accWindow)) * 100
	}

	metric := SystemMetric{
		Timestamp:      now,
		LatencyMS:      latencyMS,
		ErrorRate:      errorRate,
		SignalAccuracy: accuracy,
		ActiveModules:  activeModuleCount,
	}

	var alerts []SystemAlert
	if s.AdjustmentsToday >= MaxAdjustmentsPerDay {
		alerts = append(alerts, SystemAlert{
			ID:        uuid.NewString(),
			Timestamp: now,
			Severity:  SeverityInfo,
			Module:    "OPTIMIZER",
			Message:   "Daily optimization limit reached. Tuning frozen.",
		})
	}

	return metric, alerts
}
