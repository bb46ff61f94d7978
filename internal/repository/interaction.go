package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dukaanlabs/dukaan/internal/domain"
	"github.com/dukaanlabs/dukaan/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InteractionRepository stores the append-only query log that feeds the
// conversion-rate signal and the feedback loop.
type InteractionRepository struct {
	pool *pgxpool.Pool
}

func NewInteractionRepository(pool *pgxpool.Pool) *InteractionRepository {
	return &InteractionRepository{pool: pool}
}

// Create appends an interaction and its shortlist atomically.
func (r *InteractionRepository) Create(ctx context.Context, in *domain.Interaction) error {
	if err := domain.ValidateInteraction(in); err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var lat, lng *float64
	if in.Location != nil {
		lat, lng = &in.Location.Lat, &in.Location.Lng
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO interactions (id, session_id, user_id, query, language, category, lat, lng, outcome, chosen_shop_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		in.ID, in.SessionID, nullableString(in.UserID), in.Query, in.Language, nullableString(in.Category),
		lat, lng, in.Outcome, nullableString(in.ChosenShopID), in.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, rec := range in.Shortlist {
		_, err = tx.Exec(ctx,
			`INSERT INTO interaction_shops (interaction_id, shop_id, position, reason)
			 VALUES ($1, $2, $3, $4)`,
			in.ID, rec.ShopID, rec.Position, rec.Reason,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *InteractionRepository) GetByID(ctx context.Context, id string) (*domain.Interaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, session_id, user_id, query, language, category, lat, lng, outcome, chosen_shop_id, created_at
		 FROM interactions WHERE id = $1`,
		id,
	)
	in, err := scanInteraction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInteractionNotFound
		}
		return nil, err
	}

	shortlists, err := r.loadShortlists(ctx, []string{in.ID})
	if err != nil {
		return nil, err
	}
	in.Shortlist = shortlists[in.ID]
	return in, nil
}

// ConversionRates tallies, in one GROUP BY, how often each given shop was
// shown and how often that showing converted.
func (r *InteractionRepository) ConversionRates(ctx context.Context, shopIDs []string) (map[string]service.ConversionCount, error) {
	counts := make(map[string]service.ConversionCount)
	if len(shopIDs) == 0 {
		return counts, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT s.shop_id,
		        COUNT(*) AS total,
		        COUNT(*) FILTER (WHERE i.outcome) AS converted
		 FROM interaction_shops s
		 JOIN interactions i ON i.id = s.interaction_id
		 WHERE s.shop_id = ANY($1)
		 GROUP BY s.shop_id`,
		shopIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var shopID string
		var c service.ConversionCount
		if err := rows.Scan(&shopID, &c.Total, &c.Converted); err != nil {
			return nil, err
		}
		counts[shopID] = c
	}
	return counts, rows.Err()
}

// RecordOutcome marks a past interaction as converted or not, optionally
// naming the shop the user went with.
func (r *InteractionRepository) RecordOutcome(ctx context.Context, interactionID string, converted bool, chosenShopID string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE interactions
		 SET outcome = $1, chosen_shop_id = $2, chosen_at = $3
		 WHERE id = $4`,
		converted, nullableString(chosenShopID), time.Now().UTC(), interactionID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrInteractionNotFound
	}
	return nil
}

// ListOlderThan returns up to limit interactions created before the cutoff,
// oldest first, with shortlists attached. Used by the archiver.
func (r *InteractionRepository) ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Interaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, user_id, query, language, category, lat, lng, outcome, chosen_shop_id, created_at
		 FROM interactions
		 WHERE created_at < $1
		 ORDER BY created_at ASC
		 LIMIT $2`,
		cutoff, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.Interaction
	var ids []string
	for rows.Next() {
		in, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, in)
		ids = append(ids, in.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	shortlists, err := r.loadShortlists(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, in := range results {
		in.Shortlist = shortlists[in.ID]
	}
	return results, nil
}

func (r *InteractionRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM interactions WHERE id = ANY($1)`, ids)
	return err
}

func (r *InteractionRepository) loadShortlists(ctx context.Context, interactionIDs []string) (map[string][]domain.RecommendedShop, error) {
	shortlists := make(map[string][]domain.RecommendedShop)
	if len(interactionIDs) == 0 {
		return shortlists, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT interaction_id, shop_id, position, reason
		 FROM interaction_shops
		 WHERE interaction_id = ANY($1)
		 ORDER BY interaction_id, position`,
		interactionIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var interactionID string
		var rec domain.RecommendedShop
		if err := rows.Scan(&interactionID, &rec.ShopID, &rec.Position, &rec.Reason); err != nil {
			return nil, err
		}
		shortlists[interactionID] = append(shortlists[interactionID], rec)
	}
	return shortlists, rows.Err()
}

func scanInteraction(row pgx.Row) (*domain.Interaction, error) {
	var in domain.Interaction
	var userID, category, chosenShopID *string
	var lat, lng *float64
	if err := row.Scan(
		&in.ID, &in.SessionID, &userID, &in.Query, &in.Language, &category,
		&lat, &lng, &in.Outcome, &chosenShopID, &in.CreatedAt,
	); err != nil {
		return nil, err
	}
	if userID != nil {
		in.UserID = *userID
	}
	if category != nil {
		in.Category = *category
	}
	if chosenShopID != nil {
		in.ChosenShopID = *chosenShopID
	}
	if lat != nil && lng != nil {
		in.Location = &domain.GeoPoint{Lat: *lat, Lng: *lng}
	}
	return &in, nil
}
