package dblog

import (
	"context"
	"fmt"

	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"ginkit/internal/models"
)

// Recent returns up to limit records at or above minLevel, newest first.
func Recent(ctx context.Context, db *gorm.DB, minLevel zapcore.Level, limit int) ([]models.LogRecord, error) {
	var levels []string
	for l := max(minLevel, zapcore.DebugLevel); l <= zapcore.FatalLevel; l++ {
		levels = append(levels, l.String())
	}

	var records []models.LogRecord
	err := db.WithContext(ctx).
		Where("level IN ?", levels).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("dblog: query recent: %w", err)
	}
	return records, nil
}
