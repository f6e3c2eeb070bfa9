package services

import (
	"context"
	"testing"
	"time"

	"ginkit/internal/audit"
	"ginkit/internal/models"
	"ginkit/internal/pagination"
	"ginkit/internal/testutil"
)

func TestListAuditEntries(t *testing.T) {
	db := testutil.SetupTestDB(t, audit.NewRecorder())
	defer testutil.TeardownTestDB(t, db)

	customers := NewCustomerService(db)
	alice := testutil.ActorContext("alice")
	bob := testutil.ActorContext("bob")

	c1, err := customers.CreateCustomer(alice, "One", "", "")
	testutil.AssertNoError(t, err)
	_, err = customers.CreateCustomer(bob, "Two", "", "")
	testutil.AssertNoError(t, err)
	_, err = customers.UpdateCustomer(alice, c1.ID, strPtr("One!"), nil, nil)
	testutil.AssertNoError(t, err)

	svc := NewAuditService(db)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter AuditFilter
		want   int64
	}{
		{"all", AuditFilter{}, 3},
		{"by_user", AuditFilter{UserID: strPtr("alice")}, 2},
		{"by_action", AuditFilter{Action: func() *audit.ActionKind { a := audit.ActionUpdate; return &a }()}, 1},
		{"by_table", AuditFilter{TableName: strPtr("Order")}, 0},
		{"future_window", AuditFilter{From: func() *time.Time { t := time.Now().Add(time.Hour); return &t }()}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.ListEntries(ctx, pagination.PageRequest{}, tt.filter)
			testutil.AssertNoError(t, err)
			if result.TotalItems != tt.want {
				t.Errorf("expected %d entries, got %d", tt.want, result.TotalItems)
			}
		})
	}

	all, err := svc.ListEntries(ctx, pagination.PageRequest{}, AuditFilter{})
	testutil.AssertNoError(t, err)
	if all.Data[0].Action != models.AuditActionUpdate {
		t.Errorf("expected newest entry first, got %s", all.Data[0].Action)
	}

	entry, err := svc.GetEntry(ctx, all.Data[0].ID)
	testutil.AssertNoError(t, err)
	if entry.UserID != "alice" {
		t.Errorf("expected alice, got %s", entry.UserID)
	}

	_, err = svc.GetEntry(ctx, "missing")
	testutil.AssertAppError(t, err, "NOT_FOUND")
}
