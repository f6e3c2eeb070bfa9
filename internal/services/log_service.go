package services

import (
	"context"

	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"ginkit/internal/dblog"
	apperrors "ginkit/internal/errors"
	"ginkit/internal/models"
)

// logService reads log records persisted by the database log core.
type logService struct {
	db *gorm.DB
}

// NewLogService creates a new LogServicer.
func NewLogService(db *gorm.DB) LogServicer {
	return &logService{db: db}
}

// RecentLogs returns the newest records at or above minLevel.
func (s *logService) RecentLogs(ctx context.Context, minLevel zapcore.Level, limit int) ([]models.LogRecord, error) {
	records, err := dblog.Recent(ctx, s.db, minLevel, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return records, nil
}
