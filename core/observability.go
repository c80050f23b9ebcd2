package core

import (
	"context"
	"sort"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// operation names the manager steps that are timed and counted.
type operation string

const (
	opCreate        operation = "create"
	opDestroy       operation = "destroy"
	opAdapterAdd    operation = "adapter_add"
	opAdapterRemove operation = "adapter_remove"
)

const (
	metricAdaptersTracked = "neard.adapters.tracked"
	metricSignals         = "neard.signal.total"
)

func (op operation) counter() string   { return "neard." + string(op) + ".total" }
func (op operation) histogram() string { return "neard." + string(op) + ".duration_ms" }

// observeOperation records one manager step. Metric tags carry the state the
// manager ended in and, for adapter steps, whether the step came from the
// bootstrap or from a signal; adapter paths only go to the log.
func (m *Manager) observeOperation(ctx context.Context, startedAt time.Time, op operation, err error, fields map[string]any) {
	if m == nil {
		return
	}
	elapsed := time.Since(startedAt).Milliseconds()
	status := outcome(err)

	tags := map[string]string{
		"operation": string(op),
		"status":    status,
		"state":     m.state.String(),
	}
	if source, ok := fields["source"].(string); ok && source != "" {
		tags["source"] = source
	}

	logFields := cloneFields(fields)
	logFields["state"] = m.state.String()
	logFields["duration_ms"] = elapsed
	if err != nil {
		code := errorCode(err)
		tags["error_code"] = code
		logFields["error_code"] = code
		logFields["error"] = err.Error()
	}

	m.recordCounter(ctx, op.counter(), 1, tags)
	m.recordHistogram(ctx, op.histogram(), float64(elapsed), tags)

	if err != nil {
		m.logError(ctx, string(op)+" failed", logFields)
		return
	}
	m.logInfo(ctx, string(op)+" succeeded", logFields)
}

// observeRegistry reports the tracked adapter set after a membership change.
func (m *Manager) observeRegistry(ctx context.Context) {
	if m == nil || m.registry == nil {
		return
	}
	records := m.registry.All()
	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, record.Name)
	}
	m.recordHistogram(ctx, metricAdaptersTracked, float64(len(names)), map[string]string{"state": m.state.String()})
	m.logDebug(ctx, "adapter list updated", map[string]any{"adapters": len(names), "names": names})
}

// observeSignal counts one routed notification by signal type and outcome.
func (m *Manager) observeSignal(ctx context.Context, event Event, err error) {
	if m == nil || event == nil {
		return
	}
	tags := map[string]string{
		"signal": event.Type(),
		"status": outcome(err),
	}
	if err != nil {
		tags["error_code"] = errorCode(err)
	}
	m.recordCounter(ctx, metricSignals, 1, tags)
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// errorCode reports the text code of a rich error, or the internal code for
// anything else.
func errorCode(err error) string {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.TextCode != "" {
		return rich.TextCode
	}
	return ErrorInternal
}

func (m *Manager) logDebug(ctx context.Context, message string, fields map[string]any) {
	if logger, args := m.scopedLogger(ctx, fields); logger != nil {
		logger.Debug(message, args...)
	}
}

func (m *Manager) logInfo(ctx context.Context, message string, fields map[string]any) {
	if logger, args := m.scopedLogger(ctx, fields); logger != nil {
		logger.Info(message, args...)
	}
}

func (m *Manager) logWarn(ctx context.Context, message string, fields map[string]any) {
	if logger, args := m.scopedLogger(ctx, fields); logger != nil {
		logger.Warn(message, args...)
	}
}

func (m *Manager) logError(ctx context.Context, message string, fields map[string]any) {
	if logger, args := m.scopedLogger(ctx, fields); logger != nil {
		logger.Error(message, args...)
	}
}

// scopedLogger binds the manager logger to ctx. Fields become structured
// context when the logger supports it and key/value args otherwise.
func (m *Manager) scopedLogger(ctx context.Context, fields map[string]any) (Logger, []any) {
	if m == nil || m.logger == nil {
		return nil, nil
	}
	logger := m.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if len(fields) == 0 {
		return logger, nil
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		return fieldsLogger.WithFields(cloneFields(fields)), nil
	}
	return logger, flattenFields(fields)
}

func flattenFields(fields map[string]any) []any {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

func (m *Manager) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if m == nil || m.metricsRecorder == nil {
		return
	}
	m.metricsRecorder.IncCounter(ctx, name, value, cloneTags(tags))
}

func (m *Manager) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if m == nil || m.metricsRecorder == nil {
		return
	}
	m.metricsRecorder.ObserveHistogram(ctx, name, value, cloneTags(tags))
}

func cloneFields(fields map[string]any) map[string]any {
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}
