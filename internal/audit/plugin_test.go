package audit_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"gorm.io/gorm"

	"ginkit/internal/audit"
	"ginkit/internal/codec"
	apperrors "ginkit/internal/errors"
	"ginkit/internal/models"
	"ginkit/internal/testutil"
)

func setup(t *testing.T, opts ...audit.Option) (*gorm.DB, *audit.Recorder) {
	t.Helper()
	rec := audit.NewRecorder(opts...)
	db := testutil.SetupTestDB(t, rec)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })
	return db, rec
}

func as(db *gorm.DB, userID string) *gorm.DB {
	return db.WithContext(testutil.ActorContext(userID))
}

func newOrder(customerID, ref string) *models.Order {
	return &models.Order{CustomerID: customerID, Reference: ref, Status: models.OrderStatusPending, TotalCents: 2500, Currency: "USD"}
}

func TestCreateAllowList(t *testing.T) {
	db, rec := setup(t)
	if err := rec.RegisterTypes(audit.ActionCreate, "Order"); err != nil {
		t.Fatalf("RegisterTypes: %v", err)
	}

	// no actor: setup data is never audited
	customer := testutil.CreateTestCustomer(t, db)
	testutil.AssertAuditCount(t, db, "", "", 0)

	if err := as(db, "u1").Create(newOrder(customer.ID, "ORD-1")).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}

	var entries []models.AuditEntry
	if err := db.Find(&entries).Error; err != nil {
		t.Fatalf("load entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Action != audit.ActionCreate || e.TableName != "Order" || e.UserID != "u1" {
		t.Errorf("unexpected entry: action=%s table=%s user=%s", e.Action, e.TableName, e.UserID)
	}
	if e.ID == "" || e.JSONBody == "" {
		t.Errorf("entry should have an id and a body: %+v", e)
	}

	if err := as(db, "u1").Create(&models.Customer{Name: "Filtered"}).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	testutil.AssertAuditCount(t, db, "Customer", "", 0)
	testutil.AssertAuditCount(t, db, "", "", 1)
}

func TestEmptyActorSkipsRecording(t *testing.T) {
	db, _ := setup(t)
	customer := testutil.CreateTestCustomer(t, db)

	customer.Name = "Renamed"
	if err := as(db, "").Save(customer).Error; err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.Delete(customer).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}
	testutil.AssertAuditCount(t, db, "", "", 0)
}

func TestDeleteWithEmptyAllowList(t *testing.T) {
	db, rec := setup(t)
	if err := rec.RegisterTypes(audit.ActionDelete); err != nil {
		t.Fatalf("RegisterTypes: %v", err)
	}
	customer := testutil.CreateTestCustomer(t, db)
	order := testutil.CreateTestOrder(t, db, customer.ID, 1000)

	if err := as(db, "u2").Delete(order).Error; err != nil {
		t.Fatalf("delete order: %v", err)
	}
	if err := as(db, "u2").Delete(customer).Error; err != nil {
		t.Fatalf("delete customer: %v", err)
	}

	testutil.AssertAuditCount(t, db, "Order", audit.ActionDelete, 1)
	testutil.AssertAuditCount(t, db, "Customer", audit.ActionDelete, 1)

	var entry models.AuditEntry
	if err := db.Where("table_name = ?", "Order").First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.UserID != "u2" {
		t.Errorf("expected user u2, got %s", entry.UserID)
	}
}

func TestUpdateFilteredByAllowList(t *testing.T) {
	db, rec := setup(t)
	_ = rec.RegisterTypes(audit.ActionUpdate, "Order")
	_ = rec.RegisterTypes(audit.ActionUpdate, "Order")

	customer := testutil.CreateTestCustomer(t, db)
	order := testutil.CreateTestOrder(t, db, customer.ID, 1000)

	customer.Phone = "555-0100"
	if err := as(db, "u1").Save(customer).Error; err != nil {
		t.Fatalf("save customer: %v", err)
	}
	if err := as(db, "u1").Model(order).Updates(map[string]any{"status": models.OrderStatusPaid}).Error; err != nil {
		t.Fatalf("update order: %v", err)
	}

	testutil.AssertAuditCount(t, db, "Customer", "", 0)
	testutil.AssertAuditCount(t, db, "Order", audit.ActionUpdate, 1)

	var entry models.AuditEntry
	if err := db.Where("table_name = ? AND action = ?", "Order", audit.ActionUpdate).First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	var snap models.Order
	if err := codec.JSON.Unmarshal([]byte(entry.JSONBody), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.ID != order.ID || snap.Status != models.OrderStatusPaid {
		t.Errorf("snapshot should reflect the update, got id=%s status=%s", snap.ID, snap.Status)
	}
}

func decodeOrder(t *testing.T, entry models.AuditEntry) models.Order {
	t.Helper()
	var snap models.Order
	if err := codec.JSON.Unmarshal([]byte(entry.JSONBody), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func TestStructUpdateSnapshotsWholeEntity(t *testing.T) {
	db, _ := setup(t)
	customer := testutil.CreateTestCustomer(t, db)
	order := testutil.CreateTestOrder(t, db, customer.ID, 1000)
	ref := order.Reference

	if err := as(db, "u1").Model(order).Updates(models.Order{Status: models.OrderStatusPaid}).Error; err != nil {
		t.Fatalf("update order: %v", err)
	}

	var entry models.AuditEntry
	if err := db.Where("table_name = ? AND action = ?", "Order", audit.ActionUpdate).First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	snap := decodeOrder(t, entry)
	if snap.ID != order.ID {
		t.Errorf("snapshot id: got %q want %q", snap.ID, order.ID)
	}
	if snap.Reference != ref || snap.TotalCents != 1000 || snap.CustomerID != customer.ID {
		t.Errorf("snapshot should carry unchanged columns, got %+v", snap)
	}
	if snap.Status != models.OrderStatusPaid {
		t.Errorf("snapshot status: got %s want %s", snap.Status, models.OrderStatusPaid)
	}
}

func TestConditionalUpdateRecordsEachRow(t *testing.T) {
	db, _ := setup(t)
	customer := testutil.CreateTestCustomer(t, db)
	first := testutil.CreateTestOrder(t, db, customer.ID, 1000)
	second := testutil.CreateTestOrder(t, db, customer.ID, 2000)
	other := testutil.CreateTestCustomer(t, db)
	testutil.CreateTestOrder(t, db, other.ID, 3000)

	res := as(db, "u1").Model(&models.Order{}).Where("customer_id = ?", customer.ID).Update("status", models.OrderStatusPaid)
	if res.Error != nil {
		t.Fatalf("update: %v", res.Error)
	}
	if res.RowsAffected != 2 {
		t.Fatalf("expected 2 rows updated, got %d", res.RowsAffected)
	}
	testutil.AssertAuditCount(t, db, "Order", audit.ActionUpdate, 2)

	var entries []models.AuditEntry
	if err := db.Where("action = ?", audit.ActionUpdate).Find(&entries).Error; err != nil {
		t.Fatalf("load entries: %v", err)
	}
	seen := map[string]bool{}
	for _, e := range entries {
		snap := decodeOrder(t, e)
		if snap.Status != models.OrderStatusPaid {
			t.Errorf("snapshot of %s should show the new status, got %s", snap.ID, snap.Status)
		}
		seen[snap.ID] = true
	}
	if !seen[first.ID] || !seen[second.ID] {
		t.Errorf("expected entries for %s and %s, got %v", first.ID, second.ID, seen)
	}
}

func TestDeleteByConditionSnapshotsRow(t *testing.T) {
	db, _ := setup(t)
	customer := testutil.CreateTestCustomer(t, db)
	order := testutil.CreateTestOrder(t, db, customer.ID, 1500)

	if err := as(db, "u2").Delete(&models.Order{}, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}
	testutil.AssertAuditCount(t, db, "Order", audit.ActionDelete, 1)

	var entry models.AuditEntry
	if err := db.Where("action = ?", audit.ActionDelete).First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	snap := decodeOrder(t, entry)
	if snap.ID != order.ID || snap.Reference != order.Reference || snap.TotalCents != 1500 {
		t.Errorf("snapshot should describe the deleted row, got %+v", snap)
	}
	if !snap.DeletedAt.Valid {
		t.Error("snapshot should carry the soft delete timestamp")
	}
}

func TestUpdateMatchingNoRowsIsNotAudited(t *testing.T) {
	db, _ := setup(t)

	err := as(db, "u1").Model(&models.Order{}).Where("reference = ?", "missing").Update("status", models.OrderStatusPaid).Error
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	testutil.AssertAuditCount(t, db, "", "", 0)
}

func TestSnapshotRoundTrip(t *testing.T) {
	db, _ := setup(t)
	customer := testutil.CreateTestCustomer(t, db)

	order := newOrder(customer.ID, "ORD-RT")
	order.Notes = "leave at the door"
	if err := as(db, "u1").Create(order).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	var entry models.AuditEntry
	if err := db.Where("table_name = ?", "Order").First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	var snap models.Order
	if err := codec.JSON.Unmarshal([]byte(entry.JSONBody), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}

	if snap.ID != order.ID || snap.CustomerID != order.CustomerID || snap.Reference != order.Reference ||
		snap.TotalCents != order.TotalCents || snap.Notes != order.Notes || snap.Status != order.Status {
		t.Errorf("snapshot mismatch:\n got  %+v\n want %+v", snap, *order)
	}
}

func TestBatchCreateRecordsEachElement(t *testing.T) {
	db, _ := setup(t)
	customer := testutil.CreateTestCustomer(t, db)

	orders := []models.Order{*newOrder(customer.ID, "ORD-B1"), *newOrder(customer.ID, "ORD-B2")}
	if err := as(db, "u1").Create(&orders).Error; err != nil {
		t.Fatalf("batch create: %v", err)
	}
	testutil.AssertAuditCount(t, db, "Order", audit.ActionCreate, 2)
}

type failingCodec struct{}

func (failingCodec) Marshal(any) ([]byte, error) { return nil, errors.New("boom") }

func (failingCodec) Unmarshal([]byte, any) error { return errors.New("boom") }

func (failingCodec) ContentType() string { return "application/failing" }

var _ codec.Codec = failingCodec{}

func TestSerializationFailureRollsBackMutation(t *testing.T) {
	db, _ := setup(t, audit.WithCodec(failingCodec{}))
	customer := testutil.CreateTestCustomer(t, db)

	err := as(db, "u1").Create(newOrder(customer.ID, "ORD-FAIL")).Error
	if !errors.Is(err, apperrors.ErrSerialization) {
		t.Fatalf("expected ErrSerialization, got %v", err)
	}

	var count int64
	db.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Errorf("order insert should have been rolled back, found %d", count)
	}
	testutil.AssertAuditCount(t, db, "", "", 0)
}

func TestFailedEntryInsertRollsBackMutation(t *testing.T) {
	db, _ := setup(t, audit.WithEntryFactory(func() *models.AuditEntry {
		return &models.AuditEntry{ID: "01900000-0000-7000-8000-000000000001"}
	}))
	customer := testutil.CreateTestCustomer(t, db)

	if err := as(db, "u1").Create(newOrder(customer.ID, "ORD-OK")).Error; err != nil {
		t.Fatalf("first create: %v", err)
	}
	// the factory reuses the entry id, so the second insert violates the key
	if err := as(db, "u1").Create(newOrder(customer.ID, "ORD-DUP")).Error; err == nil {
		t.Fatal("expected the duplicate audit entry to fail the create")
	}

	var count int64
	db.Model(&models.Order{}).Where("reference = ?", "ORD-DUP").Count(&count)
	if count != 0 {
		t.Errorf("order insert should have been rolled back, found %d", count)
	}
	testutil.AssertAuditCount(t, db, "", "", 1)
}

type callbackProcessor interface {
	Get(name string) func(*gorm.DB)
	Replace(name string, fn func(*gorm.DB)) error
}

// traceCallbacks wraps the named callbacks so each records its name when it
// runs for an Order statement.
func traceCallbacks(t *testing.T, p callbackProcessor, fired *[]string, names ...string) {
	t.Helper()
	for _, name := range names {
		fn := p.Get(name)
		if fn == nil {
			t.Fatalf("callback %s is not registered", name)
		}
		err := p.Replace(name, func(db *gorm.DB) {
			if db.Statement.Schema != nil && db.Statement.Schema.Name == "Order" {
				*fired = append(*fired, name)
			}
			fn(db)
		})
		if err != nil {
			t.Fatalf("replace %s: %v", name, err)
		}
	}
}

func TestCallbacksRunBeforeCommit(t *testing.T) {
	const commit = "gorm:commit_or_rollback_transaction"
	db, _ := setup(t)
	customer := testutil.CreateTestCustomer(t, db)

	var fired []string
	traceCallbacks(t, db.Callback().Create(), &fired, "gorm:create", "ginkit:audit_create", commit)
	traceCallbacks(t, db.Callback().Update(), &fired, "ginkit:audit_update_targets", "gorm:update", "ginkit:audit_update", commit)
	traceCallbacks(t, db.Callback().Delete(), &fired, "ginkit:audit_delete_targets", "gorm:delete", "ginkit:audit_delete", commit)

	order := newOrder(customer.ID, "ORD-SEQ")
	if err := as(db, "u1").Create(order).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := as(db, "u1").Model(&models.Order{}).Where("id = ?", order.ID).Update("status", models.OrderStatusPaid).Error; err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := as(db, "u1").Delete(&models.Order{}, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []string{
		"gorm:create", "ginkit:audit_create", commit,
		"ginkit:audit_update_targets", "gorm:update", "ginkit:audit_update", commit,
		"ginkit:audit_delete_targets", "gorm:delete", "ginkit:audit_delete", commit,
	}
	if !slices.Equal(fired, want) {
		t.Errorf("callback order:\n got  %v\n want %v", fired, want)
	}
}

func TestEntryRollsBackWithEnclosingTransaction(t *testing.T) {
	db, _ := setup(t)
	customer := testutil.CreateTestCustomer(t, db)

	boom := errors.New("business rule failed")
	err := as(db, "u1").Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(newOrder(customer.ID, "ORD-TX")).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected business error, got %v", err)
	}
	testutil.AssertAuditCount(t, db, "", "", 0)
}

func TestClockAndEntryFactory(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("UTC+8", 8*3600))
	built := 0
	db, _ := setup(t,
		audit.WithClock(func() time.Time { return fixed }),
		audit.WithEntryFactory(func() *models.AuditEntry {
			built++
			return &models.AuditEntry{}
		}),
	)
	customer := testutil.CreateTestCustomer(t, db)

	if err := as(db, "u1").Create(newOrder(customer.ID, "ORD-CLK")).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	if built != 1 {
		t.Errorf("expected factory to be called once, got %d", built)
	}

	var entry models.AuditEntry
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if !entry.DateCreated.Equal(fixed) {
		t.Errorf("expected DateCreated %v, got %v", fixed.UTC(), entry.DateCreated)
	}
}

func TestCustomUserIDFunc(t *testing.T) {
	type tenantKey struct{}
	db, _ := setup(t, audit.WithUserIDFunc(func(ctx context.Context) string {
		v, _ := ctx.Value(tenantKey{}).(string)
		return v
	}))
	customer := testutil.CreateTestCustomer(t, db)

	ctx := context.WithValue(context.Background(), tenantKey{}, "svc-importer")
	if err := db.WithContext(ctx).Create(newOrder(customer.ID, "ORD-SVC")).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	var entry models.AuditEntry
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.UserID != "svc-importer" {
		t.Errorf("expected actor from custom resolver, got %q", entry.UserID)
	}
}

func TestOnEntityCreatedDirect(t *testing.T) {
	db, rec := setup(t)
	_ = rec.RegisterTypes(audit.ActionCreate, "Invoice")

	type Invoice struct{ Number string }
	tx := as(db, "u3")
	if err := rec.OnEntityCreated(tx, &Invoice{Number: "INV-1"}); err != nil {
		t.Fatalf("OnEntityCreated: %v", err)
	}
	if err := rec.OnEntityCreated(tx, &models.Customer{Name: "x"}); err != nil {
		t.Fatalf("OnEntityCreated: %v", err)
	}
	testutil.AssertAuditCount(t, db, "Invoice", audit.ActionCreate, 1)
	testutil.AssertAuditCount(t, db, "Customer", "", 0)
}
