package repository

import (
	"context"
	"errors"

	"github.com/dukaanlabs/dukaan/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlanRepository struct {
	db dbtx
}

func NewPlanRepository(pool *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{db: pool}
}

func NewPlanRepositoryWithTx(tx pgx.Tx) *PlanRepository {
	return &PlanRepository{db: tx}
}

func (r *PlanRepository) Create(ctx context.Context, p *domain.Plan) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO plans (id, name, tier, priority, active)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Name, p.Tier, p.Priority, p.Active,
	)
	return err
}

func (r *PlanRepository) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	var p domain.Plan
	err := r.db.QueryRow(ctx,
		`SELECT id, name, tier, priority, active FROM plans WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.Tier, &p.Priority, &p.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByIDs batch-loads active plans so a shortlist costs one query, not one
// per shop. Inactive or unknown ids are simply absent from the result.
func (r *PlanRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Plan, error) {
	plans := make(map[string]*domain.Plan)
	if len(ids) == 0 {
		return plans, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, name, tier, priority, active FROM plans WHERE id = ANY($1) AND active`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.Tier, &p.Priority, &p.Active); err != nil {
			return nil, err
		}
		plans[p.ID] = &p
	}
	return plans, rows.Err()
}
