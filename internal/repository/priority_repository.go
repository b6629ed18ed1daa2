package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// PriorityRepository manages priority levels. Priorities are seeded at
// install time; only description and color are editable.
type PriorityRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Priority, error)
	List(ctx context.Context) ([]domain.Priority, error)
	UpdateAppearance(ctx context.Context, id, description, color string) error
}

type priorityRepository struct {
	pool *pgxpool.Pool
}

// NewPriorityRepository builds the repository.
func NewPriorityRepository(pool *pgxpool.Pool) PriorityRepository {
	return &priorityRepository{pool: pool}
}

func (r *priorityRepository) GetByID(ctx context.Context, id string) (*domain.Priority, error) {
	const query = `
        SELECT id, name, description, color, sort_order, created_at, updated_at
        FROM priorities WHERE id=$1`
	var priority domain.Priority
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&priority.ID,
		&priority.Name,
		&priority.Description,
		&priority.Color,
		&priority.SortOrder,
		&priority.CreatedAt,
		&priority.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &priority, nil
}

func (r *priorityRepository) List(ctx context.Context) ([]domain.Priority, error) {
	const query = `
        SELECT id, name, description, color, sort_order, created_at, updated_at
        FROM priorities ORDER BY sort_order ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Priority
	for rows.Next() {
		var priority domain.Priority
		if err := rows.Scan(
			&priority.ID,
			&priority.Name,
			&priority.Description,
			&priority.Color,
			&priority.SortOrder,
			&priority.CreatedAt,
			&priority.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, priority)
	}
	return result, rows.Err()
}

func (r *priorityRepository) UpdateAppearance(ctx context.Context, id, description, color string) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE priorities SET description=$1, color=$2, updated_at=NOW() WHERE id=$3`,
		description, color, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
