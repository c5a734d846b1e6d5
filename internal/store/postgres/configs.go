package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"publishplane/internal/autopublish"
)

// GetConfigOverride returns the tenant's stored override. Tenants without a
// row get a zero override, which resolves to the default config when applied.
func (s *Store) GetConfigOverride(ctx context.Context, tenantID uuid.UUID) (autopublish.ConfigOverride, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT override FROM autopublish_configs WHERE tenant_id = $1", tenantID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return autopublish.ConfigOverride{}, nil
	}
	if err != nil {
		return autopublish.ConfigOverride{}, fmt.Errorf("failed to load config override for tenant %s: %w", tenantID, err)
	}

	var override autopublish.ConfigOverride
	if err := json.Unmarshal(raw, &override); err != nil {
		return autopublish.ConfigOverride{}, fmt.Errorf("corrupt config override for tenant %s: %w", tenantID, err)
	}
	return override, nil
}

func (s *Store) UpsertConfigOverride(ctx context.Context, tenantID uuid.UUID, override autopublish.ConfigOverride) error {
	raw, err := json.Marshal(override)
	if err != nil {
		return fmt.Errorf("failed to marshal config override: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO autopublish_configs (tenant_id, override, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (tenant_id) DO UPDATE SET override = EXCLUDED.override, updated_at = NOW()
	`, tenantID, raw)
	if err != nil {
		return fmt.Errorf("failed to upsert config override for tenant %s: %w", tenantID, err)
	}
	return nil
}
