package oplog

import (
	"context"

	"github.com/MarkoPoloResearchLab/lodging/pkg/lodging"
	"go.uber.org/zap"
)

const statusError = "error"

// Logger writes lodging operation logs through zap.
type Logger struct {
	logger *zap.Logger
}

// New returns a Logger; a nil zap logger discards every entry.
func New(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{logger: logger.Named("lodging")}
}

// LogOperation implements lodging.OperationLogger.
func (adapter *Logger) LogOperation(_ context.Context, entry lodging.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("status", entry.Status),
	}
	if !entry.CycleID.IsZero() {
		fields = append(fields, zap.String("cycle_id", entry.CycleID.String()))
	}
	if !entry.ResourceID.IsZero() {
		fields = append(fields, zap.String("resource_id", entry.ResourceID.String()))
	}
	if entry.RecordID != "" {
		fields = append(fields, zap.String("record_id", entry.RecordID))
	}
	if !entry.Actor.IsZero() {
		fields = append(fields, zap.String("actor", entry.Actor.String()))
	}
	if entry.Status != statusError {
		adapter.logger.Info("lodging operation", fields...)
		return
	}
	fields = append(fields, zap.Error(entry.Error))
	if isExpected(entry.Error) {
		adapter.logger.Warn("lodging operation rejected", fields...)
		return
	}
	adapter.logger.Error("lodging operation failed", fields...)
}

func isExpected(err error) bool {
	switch lodging.Classify(err) {
	case lodging.ErrorClassValidation, lodging.ErrorClassAuthorization, lodging.ErrorClassNotFound:
		return true
	}
	return false
}

var _ lodging.OperationLogger = (*Logger)(nil)
