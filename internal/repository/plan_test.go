//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/dukaanlabs/dukaan/internal/domain"
	"github.com/dukaanlabs/dukaan/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanRepository_CreateAndGetByID(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	planRepo := NewPlanRepository(pool)

	p := &domain.Plan{ID: uuid.NewString(), Name: "Premium", Tier: "premium", Priority: 5, Active: true}
	require.NoError(t, planRepo.Create(ctx, p))

	retrieved, err := planRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, retrieved.Name)
	assert.Equal(t, 5, retrieved.Priority)

	_, err = planRepo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)
}

func TestPlanRepository_GetByIDs(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	planRepo := NewPlanRepository(pool)

	premium := &domain.Plan{ID: uuid.NewString(), Name: "Premium", Tier: "premium", Priority: 5, Active: true}
	basic := &domain.Plan{ID: uuid.NewString(), Name: "Basic", Tier: "basic", Priority: 1, Active: true}
	lapsed := &domain.Plan{ID: uuid.NewString(), Name: "Lapsed", Tier: "basic", Priority: 1, Active: false}
	require.NoError(t, planRepo.Create(ctx, premium))
	require.NoError(t, planRepo.Create(ctx, basic))
	require.NoError(t, planRepo.Create(ctx, lapsed))

	plans, err := planRepo.GetByIDs(ctx, []string{premium.ID, basic.ID, lapsed.ID, uuid.NewString()})
	require.NoError(t, err)
	assert.Len(t, plans, 2)
	assert.Contains(t, plans, premium.ID)
	assert.Contains(t, plans, basic.ID)
	assert.NotContains(t, plans, lapsed.ID)

	plans, err = planRepo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, plans)
}
