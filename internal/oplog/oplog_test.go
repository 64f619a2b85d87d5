package oplog

import (
	"context"
	"errors"
	"testing"

	"github.com/MarkoPoloResearchLab/lodging/pkg/lodging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(zap.New(core)), logs
}

func TestLogOperationLevels(test *testing.T) {
	test.Parallel()
	cycleID, _ := lodging.NewCycleID("cycle-2026")
	resourceID, _ := lodging.NewResourceID("a1")
	actor, _ := lodging.NewUserID("operator-1")
	testCases := []struct {
		name      string
		status    string
		err       error
		wantLevel zapcore.Level
		wantMsg   string
	}{
		{name: "success", status: "ok", wantLevel: zapcore.InfoLevel, wantMsg: "lodging operation"},
		{name: "rejected", status: "error", err: lodging.ErrUnknownReservation, wantLevel: zapcore.WarnLevel, wantMsg: "lodging operation rejected"},
		{name: "forbidden", status: "error", err: lodging.ErrAuthorization, wantLevel: zapcore.WarnLevel, wantMsg: "lodging operation rejected"},
		{name: "failure", status: "error", err: errors.New("connection reset"), wantLevel: zapcore.ErrorLevel, wantMsg: "lodging operation failed"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			adapter, logs := newObservedLogger()
			adapter.LogOperation(context.Background(), lodging.OperationLog{
				Operation:  "create_reservation",
				CycleID:    cycleID,
				ResourceID: resourceID,
				RecordID:   "r1",
				Actor:      actor,
				Status:     testCase.status,
				Error:      testCase.err,
			})
			entries := logs.All()
			if len(entries) != 1 {
				test.Fatalf("expected one entry, got %d", len(entries))
			}
			entry := entries[0]
			if entry.Level != testCase.wantLevel || entry.Message != testCase.wantMsg {
				test.Fatalf("unexpected entry %s %q", entry.Level, entry.Message)
			}
			if entry.LoggerName != "lodging" {
				test.Fatalf("expected named logger, got %q", entry.LoggerName)
			}
			fields := entry.ContextMap()
			if fields["cycle_id"] != "cycle-2026" || fields["resource_id"] != "a1" || fields["record_id"] != "r1" || fields["actor"] != "operator-1" {
				test.Fatalf("unexpected fields %v", fields)
			}
		})
	}
}

func TestLogOperationOmitsEmptyIdentifiers(test *testing.T) {
	test.Parallel()
	adapter, logs := newObservedLogger()
	adapter.LogOperation(context.Background(), lodging.OperationLog{Operation: "timeline_cache", Status: "ok"})
	fields := logs.All()[0].ContextMap()
	for _, key := range []string{"cycle_id", "resource_id", "record_id", "actor"} {
		if _, present := fields[key]; present {
			test.Fatalf("expected %s to be omitted, got %v", key, fields)
		}
	}
}

func TestNewWithNilLogger(test *testing.T) {
	test.Parallel()
	New(nil).LogOperation(context.Background(), lodging.OperationLog{Operation: "create_resource", Status: "ok"})
}
