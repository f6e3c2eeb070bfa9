package dblog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ginkit/internal/audit"
	"ginkit/internal/dblog"
	"ginkit/internal/models"
	"ginkit/internal/testutil"
)

func TestCoreWritesRecords(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	log := zap.New(dblog.NewCore(db), zap.AddCaller()).Named("orders")
	log.Info("order created", zap.String("reference", "ORD-1"), zap.Int64("total_cents", 2500))
	log.Warn("payment slow", zap.Error(errors.New("gateway timeout")))

	var records []models.LogRecord
	require.NoError(t, db.Order("created_at ASC").Find(&records).Error)
	require.Len(t, records, 2)

	first := records[0]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "info", first.Level)
	assert.Equal(t, "orders", first.Logger)
	assert.Equal(t, "order created", first.Message)
	assert.Contains(t, first.Caller, "core_test.go")
	assert.JSONEq(t, `{"reference":"ORD-1","total_cents":2500}`, first.Fields)

	assert.Equal(t, "warn", records[1].Level)
	assert.JSONEq(t, `{"error":"gateway timeout"}`, records[1].Fields)
}

func TestCoreLevelAndWithFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	core := dblog.NewCore(db, dblog.WithLevel(zapcore.WarnLevel))
	log := zap.New(core).With(zap.String("request_id", "req-1"))
	log.Info("dropped")
	log.Error("kept", zap.Int("attempt", 3))

	var records []models.LogRecord
	require.NoError(t, db.Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, "kept", records[0].Message)
	assert.JSONEq(t, `{"request_id":"req-1","attempt":3}`, records[0].Fields)
}

func TestCoreLoggerFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	base := zap.New(dblog.NewCore(db, dblog.WithLoggerFilter("http")))
	base.Named("http.access").Info("request")
	base.Named("database").Info("query")
	base.Info("root")

	var records []models.LogRecord
	require.NoError(t, db.Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, "http.access", records[0].Logger)
}

func TestCoreRecordsAreNotAudited(t *testing.T) {
	rec := audit.NewRecorder()
	db := testutil.SetupTestDB(t, rec)
	defer testutil.TeardownTestDB(t, db)

	core := dblog.NewCore(db.WithContext(testutil.ActorContext("u1")))
	zap.New(core).Info("hello")

	testutil.AssertAuditCount(t, db, "", "", 0)
}

func TestRecent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	log := zap.New(dblog.NewCore(db, dblog.WithLevel(zapcore.DebugLevel)))
	log.Debug("d")
	log.Info("i")
	log.Warn("w")
	log.Error("e")

	records, err := dblog.Recent(context.Background(), db, zapcore.WarnLevel, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	messages := []string{records[0].Message, records[1].Message}
	assert.ElementsMatch(t, []string{"w", "e"}, messages)

	limited, err := dblog.Recent(context.Background(), db, zapcore.DebugLevel, 3)
	require.NoError(t, err)
	assert.Len(t, limited, 3)
}
