// Package audit turns create, update and delete operations staged through
// gorm into AuditEntry rows written in the same transaction.
//
// Each action kind has its own allow-list of entity types. An empty list
// admits every type; a non-empty list admits only the listed types.
// Operations without an acting user are never recorded.
package audit

import (
	"context"
	"fmt"
	"slices"
	"time"

	"gorm.io/gorm"

	"ginkit/internal/codec"
	apperrors "ginkit/internal/errors"
	"ginkit/internal/metrics"
	"ginkit/internal/models"
)

// UserIDFunc resolves the acting user for the operation bound to ctx.
type UserIDFunc func(ctx context.Context) string

// EntryFactory builds the empty AuditEntry the recorder fills in.
type EntryFactory func() *models.AuditEntry

// Option configures a Recorder.
type Option func(*Recorder)

// WithCodec sets the codec used to snapshot entities.
func WithCodec(c codec.Codec) Option {
	return func(r *Recorder) { r.codec = c }
}

// WithUserIDFunc sets how the acting user is resolved.
func WithUserIDFunc(fn UserIDFunc) Option {
	return func(r *Recorder) { r.userID = fn }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// WithEntryFactory sets the constructor used for new entries.
func WithEntryFactory(fn EntryFactory) Option {
	return func(r *Recorder) { r.newEntry = fn }
}

// WithIgnoredTypes excludes types from auditing regardless of allow-lists.
func WithIgnoredTypes(types ...TypeID) Option {
	return func(r *Recorder) {
		for _, t := range types {
			r.ignored[t] = struct{}{}
		}
	}
}

// Recorder observes entity lifecycle events and stages audit entries.
//
// Registration is not synchronized: call RegisterTypes and RegisterModels
// during startup, before the recorder handles any traffic.
type Recorder struct {
	filters  map[ActionKind][]TypeID
	ignored  map[TypeID]struct{}
	codec    codec.Codec
	userID   UserIDFunc
	now      func() time.Time
	newEntry EntryFactory
}

// NewRecorder creates a Recorder with empty allow-lists.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		filters: make(map[ActionKind][]TypeID, len(Actions)),
		ignored: map[TypeID]struct{}{
			TypeOf(models.AuditEntry{}): {},
			TypeOf(models.LogRecord{}):  {},
		},
		codec:    codec.JSON,
		userID:   UserIDFromContext,
		now:      time.Now,
		newEntry: func() *models.AuditEntry { return &models.AuditEntry{} },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterTypes appends types to the allow-list for action.
func (r *Recorder) RegisterTypes(action ActionKind, types ...TypeID) error {
	if !validAction(action) {
		return apperrors.WithMessage(apperrors.ErrInvalidAction, fmt.Sprintf("unknown audit action %q", action))
	}
	r.filters[action] = append(r.filters[action], types...)
	return nil
}

// RegisterModels registers the type names of the given values.
func (r *Recorder) RegisterModels(action ActionKind, values ...any) error {
	ids := make([]TypeID, 0, len(values))
	for _, v := range values {
		id := TypeOf(v)
		if id == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("cannot audit unnamed type %T", v))
		}
		ids = append(ids, id)
	}
	return r.RegisterTypes(action, ids...)
}

// Allows reports whether entities of typeID are audited for action.
func (r *Recorder) Allows(action ActionKind, typeID TypeID) bool {
	allowed := r.filters[action]
	return len(allowed) == 0 || slices.Contains(allowed, typeID)
}

// AllowList returns a copy of the registered types for action.
func (r *Recorder) AllowList(action ActionKind) []TypeID {
	return slices.Clone(r.filters[action])
}

// OnEntityCreated records a staged insert of entity.
func (r *Recorder) OnEntityCreated(db *gorm.DB, entity any) error {
	return r.observe(db, ActionCreate, entity, TypeOf(entity))
}

// OnEntityUpdated records a staged update of entity.
func (r *Recorder) OnEntityUpdated(db *gorm.DB, entity any) error {
	return r.observe(db, ActionUpdate, entity, TypeOf(entity))
}

// OnEntityDeleted records a staged delete of entity.
func (r *Recorder) OnEntityDeleted(db *gorm.DB, entity any) error {
	return r.observe(db, ActionDelete, entity, TypeOf(entity))
}

func (r *Recorder) observe(db *gorm.DB, action ActionKind, entity any, typeName TypeID) error {
	if !r.Allows(action, typeName) {
		metrics.AuditSkippedTotal.WithLabelValues(string(action), "filtered").Inc()
		return nil
	}
	return r.RecordEntry(db, action, entity, typeName)
}

// RecordEntry snapshots entity and inserts an AuditEntry through db, so the
// entry shares the caller's transaction. It is a no-op when no acting user
// is bound to db's context.
func (r *Recorder) RecordEntry(db *gorm.DB, action ActionKind, entity any, typeName TypeID) error {
	userID := r.userID(db.Statement.Context)
	if userID == "" {
		metrics.AuditSkippedTotal.WithLabelValues(string(action), "no_actor").Inc()
		return nil
	}

	body, err := codec.MarshalString(r.codec, entity)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrSerialization, fmt.Errorf("snapshot %s: %w", typeName, err))
	}

	entry := r.newEntry()
	entry.TableName = typeName
	entry.DateCreated = r.now().UTC()
	entry.Action = action
	entry.UserID = userID
	entry.JSONBody = body

	if err := db.Session(&gorm.Session{NewDB: true}).Create(entry).Error; err != nil {
		return fmt.Errorf("insert audit entry for %s: %w", typeName, err)
	}

	metrics.AuditEntriesTotal.WithLabelValues(string(action), typeName).Inc()
	return nil
}
