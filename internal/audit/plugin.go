package audit

import (
	"fmt"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	pluginName = "ginkit:audit"
	targetsKey = pluginName + "_targets"

	commitCallback = "gorm:commit_or_rollback_transaction"
)

var _ gorm.Plugin = (*Recorder)(nil)

// Name implements gorm.Plugin.
func (r *Recorder) Name() string { return pluginName }

// Initialize implements gorm.Plugin. It registers callbacks that run after
// the row is written but before gorm commits its default transaction, so
// an error raised here rolls the mutation back.
//
// Updates and deletes addressed by condition rather than by a loaded entity
// get an extra callback ahead of the statement that loads the matching rows,
// so every affected row is recorded.
func (r *Recorder) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Create().After("gorm:create").Before(commitCallback).
		Register(pluginName+"_create", r.callback(ActionCreate)); err != nil {
		return fmt.Errorf("register create callback: %w", err)
	}
	if err := cb.Update().After("gorm:begin_transaction").Before("gorm:update").
		Register(pluginName+"_update_targets", r.loadTargets(ActionUpdate)); err != nil {
		return fmt.Errorf("register update targets callback: %w", err)
	}
	if err := cb.Update().After("gorm:update").Before(commitCallback).
		Register(pluginName+"_update", r.callback(ActionUpdate)); err != nil {
		return fmt.Errorf("register update callback: %w", err)
	}
	if err := cb.Delete().After("gorm:begin_transaction").Before("gorm:delete").
		Register(pluginName+"_delete_targets", r.loadTargets(ActionDelete)); err != nil {
		return fmt.Errorf("register delete targets callback: %w", err)
	}
	if err := cb.Delete().After("gorm:delete").Before(commitCallback).
		Register(pluginName+"_delete", r.callback(ActionDelete)); err != nil {
		return fmt.Errorf("register delete callback: %w", err)
	}
	return nil
}

func (r *Recorder) callback(action ActionKind) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Error != nil || db.Statement.Schema == nil || db.RowsAffected == 0 {
			return
		}
		schemaName := db.Statement.Schema.Name
		if _, ok := r.ignored[schemaName]; ok {
			return
		}

		targets, err := r.targets(db, action)
		if err != nil {
			_ = db.AddError(err)
			return
		}
		for _, entity := range targets {
			typeName := TypeOf(entity)
			if typeName == "" {
				typeName = schemaName
			}
			if err := r.observe(db, action, entity, typeName); err != nil {
				_ = db.AddError(err)
				return
			}
		}
	}
}

// loadTargets stores the rows a conditional update or delete is about to
// touch on the statement. It skips statements nothing would be recorded for.
func (r *Recorder) loadTargets(action ActionKind) func(*gorm.DB) {
	return func(db *gorm.DB) {
		stmt := db.Statement
		if db.Error != nil || stmt.Schema == nil || !conditional(stmt) {
			return
		}
		if _, ok := r.ignored[stmt.Schema.Name]; ok || !r.Allows(action, stmt.Schema.Name) {
			return
		}
		if r.userID(stmt.Context) == "" {
			return
		}
		where, ok := stmt.Clauses["WHERE"].Expression.(clause.Where)
		if !ok || len(where.Exprs) == 0 {
			return
		}

		rows := reflect.New(reflect.SliceOf(stmt.Schema.ModelType))
		if err := db.Session(&gorm.Session{NewDB: true}).Clauses(where).Find(rows.Interface()).Error; err != nil {
			_ = db.AddError(fmt.Errorf("load %s audit targets: %w", stmt.Schema.Name, err))
			return
		}
		db.InstanceSet(targetsKey, rows.Elem())
	}
}

// targets returns the values to snapshot. Rows loaded by loadTargets are
// re-read after the write so each snapshot shows the row as it now stands.
// A hard delete leaves nothing to re-read and keeps the loaded rows.
func (r *Recorder) targets(db *gorm.DB, action ActionKind) ([]any, error) {
	v, ok := db.InstanceGet(targetsKey)
	if !ok {
		return entities(db.Statement, action), nil
	}
	rows := v.(reflect.Value)

	fresh, err := reload(db, rows)
	if err != nil {
		return nil, err
	}
	if fresh.Len() > 0 {
		rows = fresh
	}
	return elements(rows), nil
}

func reload(db *gorm.DB, rows reflect.Value) (reflect.Value, error) {
	stmt := db.Statement
	pk := stmt.Schema.PrioritizedPrimaryField
	ids := make([]any, 0, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		if id, zero := pk.ValueOf(stmt.Context, rows.Index(i)); !zero {
			ids = append(ids, id)
		}
	}
	fresh := reflect.New(rows.Type())
	if len(ids) == 0 {
		return fresh.Elem(), nil
	}

	in := clause.IN{Column: clause.Column{Table: clause.CurrentTable, Name: pk.DBName}, Values: ids}
	err := db.Session(&gorm.Session{NewDB: true}).Unscoped().
		Clauses(clause.Where{Exprs: []clause.Expression{in}}).
		Find(fresh.Interface()).Error
	if err != nil {
		return reflect.Value{}, fmt.Errorf("reload %s audit targets: %w", stmt.Schema.Name, err)
	}
	return fresh.Elem(), nil
}

// conditional reports whether stmt addresses its rows by condition, i.e.
// its model is a bare struct without a primary key value.
func conditional(stmt *gorm.Statement) bool {
	pk := stmt.Schema.PrioritizedPrimaryField
	if pk == nil {
		return false
	}
	rv, ok := modelStruct(stmt)
	if !ok {
		return false
	}
	_, zero := pk.ValueOf(stmt.Context, rv)
	return zero
}

// modelStruct returns stmt.Model when it points at a single struct of the
// statement's schema.
func modelStruct(stmt *gorm.Statement) (reflect.Value, bool) {
	if stmt.Model == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(stmt.Model)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, false
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct || rv.Type() != stmt.Schema.ModelType {
		return reflect.Value{}, false
	}
	return rv, true
}

// entities returns the values to snapshot when no rows were loaded up front.
// gorm applies map and struct updates to the model, so for updates the
// model is the full entity while Dest may only hold the changed columns.
func entities(stmt *gorm.Statement, action ActionKind) []any {
	target := stmt.Dest
	if action == ActionUpdate {
		if _, ok := modelStruct(stmt); ok {
			target = stmt.Model
		}
	}
	if target == nil {
		target = stmt.Model
	}
	if target == nil {
		return nil
	}

	v := reflect.ValueOf(target)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return []any{target}
	}
	return elements(v)
}

func elements(v reflect.Value) []any {
	out := make([]any, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		el := v.Index(i)
		if el.Kind() != reflect.Pointer && el.CanAddr() {
			el = el.Addr()
		}
		out = append(out, el.Interface())
	}
	return out
}
