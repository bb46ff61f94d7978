//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukaanlabs/dukaan/internal/api/handlers"
	"github.com/dukaanlabs/dukaan/internal/classify"
	"github.com/dukaanlabs/dukaan/internal/domain"
	"github.com/dukaanlabs/dukaan/internal/repository"
	"github.com/dukaanlabs/dukaan/internal/server"
	"github.com/dukaanlabs/dukaan/internal/service"
	"github.com/dukaanlabs/dukaan/internal/testutil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T         *testing.T
	Ctx       context.Context
	PostgresC *testutil.PostgresContainer
	Pool      *pgxpool.Pool
	Server    *httptest.Server

	ShopRepo *repository.ShopRepository
	PlanRepo *repository.PlanRepository
}

// SetupE2EEnv starts Postgres, runs migrations and serves the full router
// in-process with real repositories. The NLU fallback is disabled so
// classification is lexicon-only and deterministic.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	t.Helper()
	ctx := context.Background()

	pc := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")

	shopRepo := repository.NewShopRepository(pool)
	planRepo := repository.NewPlanRepository(pool)
	interactionRepo := repository.NewInteractionRepository(pool)

	classifier := classify.New(nil)
	assistSvc := service.NewAssistService(classifier, shopRepo, planRepo, interactionRepo)

	router := server.NewRouter(server.RouterConfig{
		AssistHandler: handlers.NewAssistHandler(assistSvc),
	})

	srv := httptest.NewServer(router)

	return &E2ETestEnv{
		T:         t,
		Ctx:       ctx,
		PostgresC: pc,
		Pool:      pool,
		Server:    srv,
		ShopRepo:  shopRepo,
		PlanRepo:  planRepo,
	}
}

// Cleanup releases all environment resources.
func (env *E2ETestEnv) Cleanup() {
	env.Server.Close()
	env.Pool.Close()
	_ = env.PostgresC.Terminate(env.Ctx)
}

// Post sends a JSON POST and returns the status code and raw body.
func (env *E2ETestEnv) Post(path string, body interface{}) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := http.Post(env.Server.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, raw, nil
}

// Get sends a GET and returns the status code and raw body.
func (env *E2ETestEnv) Get(path string) (int, []byte, error) {
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, raw, nil
}

// SeedShop inserts a shop listing directly through the repository.
func (env *E2ETestEnv) SeedShop(name, category string, mutate func(*domain.Shop)) *domain.Shop {
	env.T.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	s := domain.NewShop(uuid.NewString(), name, category, domain.ShopStatusActive, now)
	s.Rating = 4.0
	if mutate != nil {
		mutate(s)
	}
	if err := env.ShopRepo.Create(env.Ctx, s); err != nil {
		env.T.Fatalf("failed to seed shop %s: %v", name, err)
	}
	return s
}

// SeedPlan inserts a subscription plan.
func (env *E2ETestEnv) SeedPlan(name string, priority int) *domain.Plan {
	env.T.Helper()

	p := &domain.Plan{
		ID:       uuid.NewString(),
		Name:     name,
		Tier:     name,
		Priority: priority,
		Active:   true,
	}
	if err := env.PlanRepo.Create(env.Ctx, p); err != nil {
		env.T.Fatalf("failed to seed plan %s: %v", name, err)
	}
	return p
}
