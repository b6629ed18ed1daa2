package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingsRepository stores installation-wide key/value configuration.
// Calendar settings are read fresh per evaluation batch, never cached here.
type SettingsRepository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string, updatedBy *string) error
}

type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository builds the repository.
func NewSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepository{pool: pool}
}

func (r *settingsRepository) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT setting_key, setting_value FROM system_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		result[key] = value
	}
	return result, rows.Err()
}

func (r *settingsRepository) Set(ctx context.Context, key, value string, updatedBy *string) error {
	const query = `
        INSERT INTO system_settings (setting_key, setting_value, updated_at, updated_by)
        VALUES ($1,$2,NOW(),$3)
        ON CONFLICT (setting_key) DO UPDATE
        SET setting_value=EXCLUDED.setting_value, updated_at=NOW(), updated_by=EXCLUDED.updated_by`
	_, err := r.pool.Exec(ctx, query, key, value, updatedBy)
	return err
}
