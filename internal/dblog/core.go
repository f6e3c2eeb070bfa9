// Package dblog provides a zap core that persists log entries as
// LogRecord rows through gorm.
//
// Each write takes a connection from the pool outside any transaction the
// caller holds. With a pool of one connection, as sqlite is configured, a
// log call made inside a transaction blocks forever; the api server does
// not attach the core for sqlite.
package dblog

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ginkit/internal/codec"
	"ginkit/internal/metrics"
	"ginkit/internal/models"
)

// Option configures a Core.
type Option func(*Core)

// WithLevel sets the minimum level written to the database. Default Info.
func WithLevel(enab zapcore.LevelEnabler) Option {
	return func(c *Core) { c.LevelEnabler = enab }
}

// WithLoggerFilter restricts the core to loggers whose name starts with one
// of prefixes. No prefixes means every logger.
func WithLoggerFilter(prefixes ...string) Option {
	return func(c *Core) { c.prefixes = append(c.prefixes, prefixes...) }
}

// WithCodec sets the codec used to encode structured fields.
func WithCodec(cc codec.Codec) Option {
	return func(c *Core) { c.codec = cc }
}

// Core is a zapcore.Core backed by the log_records table.
type Core struct {
	zapcore.LevelEnabler
	db       *gorm.DB
	codec    codec.Codec
	prefixes []string
	fields   []zapcore.Field
}

var _ zapcore.Core = (*Core)(nil)

// NewCore creates a Core writing through db. Statements issued by the core
// are not logged by gorm.
func NewCore(db *gorm.DB, opts ...Option) *Core {
	c := &Core{
		LevelEnabler: zapcore.InfoLevel,
		db:           db.Session(&gorm.Session{NewDB: true, Logger: gormlogger.Discard}),
		codec:        codec.JSON,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// With returns a copy of the core carrying additional fields.
func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = make([]zapcore.Field, 0, len(c.fields)+len(fields))
	clone.fields = append(clone.fields, c.fields...)
	clone.fields = append(clone.fields, fields...)
	return &clone
}

// Check adds the core when the entry's level and logger name are accepted.
func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) && c.accepts(ent.LoggerName) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *Core) accepts(name string) bool {
	if len(c.prefixes) == 0 {
		return true
	}
	for _, p := range c.prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Write inserts one LogRecord for ent.
func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	record, err := c.record(ent, fields)
	if err != nil {
		return err
	}
	if err := c.db.Create(record).Error; err != nil {
		return fmt.Errorf("dblog: insert log record: %w", err)
	}
	metrics.LogRecordsTotal.WithLabelValues(ent.Level.String()).Inc()
	return nil
}

func (c *Core) record(ent zapcore.Entry, fields []zapcore.Field) (*models.LogRecord, error) {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	record := &models.LogRecord{
		CreatedAt: ent.Time.UTC(),
		Level:     ent.Level.String(),
		Logger:    ent.LoggerName,
		Message:   ent.Message,
		Stack:     ent.Stack,
	}
	if ent.Caller.Defined {
		record.Caller = ent.Caller.TrimmedPath()
	}
	if len(enc.Fields) > 0 {
		body, err := codec.MarshalString(c.codec, enc.Fields)
		if err != nil {
			return nil, fmt.Errorf("dblog: encode fields: %w", err)
		}
		record.Fields = body
	}
	return record, nil
}

// Sync is a no-op; every Write is committed immediately.
func (c *Core) Sync() error { return nil }
