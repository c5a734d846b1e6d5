package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"publishplane/internal/autopublish"
)

func TestGetConfigOverride_NoRow(t *testing.T) {
	store_, mock := newMockStore(t)
	defer store_.db.Close()

	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT override FROM autopublish_configs WHERE tenant_id = \$1`).
		WithArgs(tenantID).
		WillReturnError(sql.ErrNoRows)

	override, err := store_.GetConfigOverride(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("GetConfigOverride failed: %v", err)
	}

	// A zero override resolves to the default config.
	merged := autopublish.DefaultConfig().Apply(override)
	if merged.MinimumQualityScore != 75 {
		t.Errorf("got MinimumQualityScore %d, want default 75", merged.MinimumQualityScore)
	}
}

func TestGetConfigOverride_Stored(t *testing.T) {
	store_, mock := newMockStore(t)
	defer store_.db.Close()

	tenantID := uuid.New()
	raw := []byte(`{"minimum_quality_score": 90, "timezone": "Europe/Berlin"}`)

	mock.ExpectQuery(`SELECT override FROM autopublish_configs WHERE tenant_id = \$1`).
		WithArgs(tenantID).
		WillReturnRows(sqlmock.NewRows([]string{"override"}).AddRow(raw))

	override, err := store_.GetConfigOverride(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("GetConfigOverride failed: %v", err)
	}
	if override.MinimumQualityScore == nil || *override.MinimumQualityScore != 90 {
		t.Errorf("got MinimumQualityScore %v, want 90", override.MinimumQualityScore)
	}
	if override.Timezone == nil || *override.Timezone != "Europe/Berlin" {
		t.Errorf("got Timezone %v, want Europe/Berlin", override.Timezone)
	}
	if override.RequireHumanReview != nil {
		t.Error("unset fields must stay nil")
	}
}

func TestUpsertConfigOverride(t *testing.T) {
	store_, mock := newMockStore(t)
	defer store_.db.Close()

	tenantID := uuid.New()
	minScore := 85

	mock.ExpectExec(`INSERT INTO autopublish_configs`).
		WithArgs(tenantID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store_.UpsertConfigOverride(context.Background(), tenantID, autopublish.ConfigOverride{
		MinimumQualityScore: &minScore,
	})
	if err != nil {
		t.Fatalf("UpsertConfigOverride failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
