package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// SlaTargetRepository stores SLA hours per priority. A priority without a
// row, or with NULL hours, simply has no SLA configured.
type SlaTargetRepository interface {
	GetByPriority(ctx context.Context, priorityID string) (*domain.SlaTarget, error)
	GetAll(ctx context.Context) (map[string]domain.SlaTarget, error)
	Upsert(ctx context.Context, target *domain.SlaTarget) error
}

type slaTargetRepository struct {
	pool *pgxpool.Pool
}

// NewSlaTargetRepository builds the repository.
func NewSlaTargetRepository(pool *pgxpool.Pool) SlaTargetRepository {
	return &slaTargetRepository{pool: pool}
}

func (r *slaTargetRepository) GetByPriority(ctx context.Context, priorityID string) (*domain.SlaTarget, error) {
	const query = `
        SELECT priority_id, response_time_hours, resolution_time_hours, updated_at
        FROM sla_targets WHERE priority_id=$1`
	var target domain.SlaTarget
	if err := r.pool.QueryRow(ctx, query, priorityID).Scan(
		&target.PriorityID,
		&target.ResponseHours,
		&target.ResolutionHours,
		&target.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &target, nil
}

func (r *slaTargetRepository) GetAll(ctx context.Context) (map[string]domain.SlaTarget, error) {
	const query = `
        SELECT priority_id, response_time_hours, resolution_time_hours, updated_at
        FROM sla_targets`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]domain.SlaTarget)
	for rows.Next() {
		var target domain.SlaTarget
		if err := rows.Scan(
			&target.PriorityID,
			&target.ResponseHours,
			&target.ResolutionHours,
			&target.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result[target.PriorityID] = target
	}
	return result, rows.Err()
}

func (r *slaTargetRepository) Upsert(ctx context.Context, target *domain.SlaTarget) error {
	const query = `
        INSERT INTO sla_targets (priority_id, response_time_hours, resolution_time_hours, updated_at)
        VALUES ($1,$2,$3,NOW())
        ON CONFLICT (priority_id) DO UPDATE
        SET response_time_hours=EXCLUDED.response_time_hours,
            resolution_time_hours=EXCLUDED.resolution_time_hours,
            updated_at=NOW()
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		target.PriorityID,
		target.ResponseHours,
		target.ResolutionHours,
	).Scan(&target.UpdatedAt)
}
