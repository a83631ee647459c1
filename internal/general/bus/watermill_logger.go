package bus

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"

	"ride-track/internal/general/logger"
)

// watermillLogger adapts our JSON logger to watermill.LoggerAdapter.
// Watermill's info/trace chatter is demoted to debug.
type watermillLogger struct {
	log    *logger.Logger
	fields watermill.LogFields
}

var _ watermill.LoggerAdapter = (*watermillLogger)(nil)

func newWatermillLogger(log *logger.Logger) *watermillLogger {
	return &watermillLogger{log: log}
}

func (w *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	w.log.Error(context.Background(), "bus_error", msg, err, w.fields.Add(fields))
}

func (w *watermillLogger) Info(msg string, fields watermill.LogFields) {
	w.log.Debug(context.Background(), "bus_event", msg, w.fields.Add(fields))
}

func (w *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	w.log.Debug(context.Background(), "bus_event", msg, w.fields.Add(fields))
}

func (w *watermillLogger) Trace(msg string, fields watermill.LogFields) {
	w.log.Debug(context.Background(), "bus_trace", msg, w.fields.Add(fields))
}

func (w *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{log: w.log, fields: w.fields.Add(fields)}
}
