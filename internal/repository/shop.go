package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dukaanlabs/dukaan/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// geoRadiusMeters bounds candidate retrieval to shops within 500 km.
	geoRadiusMeters = 500000.0
	// candidateLimit caps candidates handed to the ranking engine.
	candidateLimit = 100
	// keywordMatchLimit caps the degraded partial-keyword search.
	keywordMatchLimit = 5
)

const shopColumns = `id, name, category, description, address, city, pincode, phone, whatsapp,
	 rating, review_count, lat, lng, plan_id, featured, offers, status, created_at, updated_at`

type ShopRepository struct {
	db dbtx
}

func NewShopRepository(pool *pgxpool.Pool) *ShopRepository {
	return &ShopRepository{db: pool}
}

func NewShopRepositoryWithTx(tx pgx.Tx) *ShopRepository {
	return &ShopRepository{db: tx}
}

func (r *ShopRepository) Create(ctx context.Context, s *domain.Shop) error {
	var lat, lng *float64
	if s.Location != nil {
		lat, lng = &s.Location.Lat, &s.Location.Lng
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO shops (id, name, category, description, address, city, pincode, phone, whatsapp,
		                    rating, review_count, lat, lng, plan_id, featured, offers, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		s.ID, s.Name, s.Category, s.Description, s.Address, s.City, s.Pincode, s.Phone, s.WhatsApp,
		s.Rating, s.ReviewCount, lat, lng, nullableString(s.PlanID), s.Featured, s.Offers, s.Status, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *ShopRepository) GetByID(ctx context.Context, id string) (*domain.Shop, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+shopColumns+` FROM shops WHERE id = $1`,
		id,
	)
	s, err := scanShop(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrShopNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *ShopRepository) UpdateStatus(ctx context.Context, id string, status domain.ShopStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE shops SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrShopNotFound
	}
	return nil
}

// FindCandidates returns serviceable shops for a category, nearest first when
// a location is supplied. A failing geo clause (missing cube/earthdistance
// extensions) degrades to the same query without geo, retried exactly once;
// candidates then carry no distance. Any other registry failure propagates.
func (r *ShopRepository) FindCandidates(ctx context.Context, category string, near *domain.GeoPoint) ([]*domain.ScoredShop, error) {
	if near != nil && near.Valid() {
		candidates, err := r.findByCategoryNear(ctx, category, *near)
		if err == nil {
			return candidates, nil
		}
		if !isGeoClauseError(err) {
			return nil, err
		}
		log.Printf("shop repository: geo clause failed, retrying without geo: %v", err)
	}
	return r.findByCategory(ctx, category)
}

// isGeoClauseError reports whether the error comes from the geo clause
// itself rather than the registry: undefined function (42883) or object
// (42704) when the cube/earthdistance extensions are missing, undefined
// table (42P01) for a dropped index relation.
func isGeoClauseError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "42883", "42704", "42P01":
		return true
	}
	return false
}

func (r *ShopRepository) findByCategoryNear(ctx context.Context, category string, near domain.GeoPoint) ([]*domain.ScoredShop, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+shopColumns+`,
		        earth_distance(ll_to_earth($1, $2), ll_to_earth(lat, lng)) / 1000.0 AS distance_km
		 FROM shops
		 WHERE status IN ('active', 'approved')
		   AND category IN ($3, lower($3), upper($3))
		   AND lat IS NOT NULL AND lng IS NOT NULL
		   AND NOT (lat = 0 AND lng = 0)
		   AND earth_box(ll_to_earth($1, $2), $4) @> ll_to_earth(lat, lng)
		   AND earth_distance(ll_to_earth($1, $2), ll_to_earth(lat, lng)) <= $4
		 ORDER BY distance_km ASC
		 LIMIT $5`,
		near.Lat, near.Lng, category, geoRadiusMeters, candidateLimit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.ScoredShop
	for rows.Next() {
		s, distanceKm, err := scanShopWithDistance(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, &domain.ScoredShop{Shop: s, DistanceKm: distanceKm})
	}
	return results, rows.Err()
}

func (r *ShopRepository) findByCategory(ctx context.Context, category string) ([]*domain.ScoredShop, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+shopColumns+`
		 FROM shops
		 WHERE status IN ('active', 'approved')
		   AND category IN ($1, lower($1), upper($1))
		 ORDER BY rating DESC, review_count DESC
		 LIMIT $2`,
		category, candidateLimit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.ScoredShop
	for rows.Next() {
		s, err := scanShop(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, &domain.ScoredShop{Shop: s})
	}
	return results, rows.Err()
}

// SearchByKeywords is the degraded path when no category resolves: any token
// matching name, description or category surfaces the shop.
func (r *ShopRepository) SearchByKeywords(ctx context.Context, tokens []string) ([]*domain.ScoredShop, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	var clauses []string
	var args []any
	for i, tok := range tokens {
		p := fmt.Sprintf("$%d", i+1)
		clauses = append(clauses, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s OR category ILIKE %s)", p, p, p))
		args = append(args, "%"+tok+"%")
	}
	args = append(args, keywordMatchLimit)

	query := `SELECT ` + shopColumns + `
		 FROM shops
		 WHERE status IN ('active', 'approved')
		   AND (` + strings.Join(clauses, " OR ") + `)
		 ORDER BY rating DESC
		 LIMIT $` + fmt.Sprint(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.ScoredShop
	for rows.Next() {
		s, err := scanShop(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, &domain.ScoredShop{Shop: s})
	}
	return results, rows.Err()
}

func scanShop(row pgx.Row) (*domain.Shop, error) {
	var s domain.Shop
	var lat, lng *float64
	var planID *string
	if err := row.Scan(
		&s.ID, &s.Name, &s.Category, &s.Description, &s.Address, &s.City, &s.Pincode, &s.Phone, &s.WhatsApp,
		&s.Rating, &s.ReviewCount, &lat, &lng, &planID, &s.Featured, &s.Offers, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		s.Location = &domain.GeoPoint{Lat: *lat, Lng: *lng}
	}
	if planID != nil {
		s.PlanID = *planID
	}
	return &s, nil
}

func scanShopWithDistance(row pgx.Row) (*domain.Shop, *float64, error) {
	var s domain.Shop
	var lat, lng, distanceKm *float64
	var planID *string
	if err := row.Scan(
		&s.ID, &s.Name, &s.Category, &s.Description, &s.Address, &s.City, &s.Pincode, &s.Phone, &s.WhatsApp,
		&s.Rating, &s.ReviewCount, &lat, &lng, &planID, &s.Featured, &s.Offers, &s.Status, &s.CreatedAt, &s.UpdatedAt,
		&distanceKm,
	); err != nil {
		return nil, nil, err
	}
	if lat != nil && lng != nil {
		s.Location = &domain.GeoPoint{Lat: *lat, Lng: *lng}
	}
	if planID != nil {
		s.PlanID = *planID
	}
	return &s, distanceKm, nil
}
