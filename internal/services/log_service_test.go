package services

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ginkit/internal/dblog"
	"ginkit/internal/testutil"
)

func TestRecentLogs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	log := zap.New(dblog.NewCore(db, dblog.WithLevel(zapcore.DebugLevel))).Named("orders")
	log.Debug("debug line")
	log.Warn("warn line")
	log.Error("error line")

	records, err := NewLogService(db).RecentLogs(context.Background(), zapcore.WarnLevel, 10)
	testutil.AssertNoError(t, err)

	if len(records) != 2 {
		t.Fatalf("expected 2 records at warn or above, got %d", len(records))
	}
	if records[0].Message != "error line" || records[0].Logger != "orders" {
		t.Errorf("expected newest error first, got %+v", records[0])
	}
}
