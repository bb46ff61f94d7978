package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dukaanlabs/dukaan/internal/classify"
	"github.com/dukaanlabs/dukaan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockShopRepository is a mock implementation of ShopRepositoryInterface
type MockShopRepository struct {
	mock.Mock
}

func (m *MockShopRepository) FindCandidates(ctx context.Context, category string, near *domain.GeoPoint) ([]*domain.ScoredShop, error) {
	args := m.Called(ctx, category, near)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ScoredShop), args.Error(1)
}

func (m *MockShopRepository) SearchByKeywords(ctx context.Context, tokens []string) ([]*domain.ScoredShop, error) {
	args := m.Called(ctx, tokens)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ScoredShop), args.Error(1)
}

// MockPlanRepository is a mock implementation of PlanRepositoryInterface
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Plan, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.Plan), args.Error(1)
}

// MockInteractionRepository is a mock implementation of InteractionRepositoryInterface
type MockInteractionRepository struct {
	mock.Mock
}

func (m *MockInteractionRepository) Create(ctx context.Context, in *domain.Interaction) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *MockInteractionRepository) ConversionRates(ctx context.Context, shopIDs []string) (map[string]ConversionCount, error) {
	args := m.Called(ctx, shopIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]ConversionCount), args.Error(1)
}

func (m *MockInteractionRepository) RecordOutcome(ctx context.Context, interactionID string, converted bool, chosenShopID string) error {
	args := m.Called(ctx, interactionID, converted, chosenShopID)
	return args.Error(0)
}

// MockUUIDGenerator is a mock implementation of UUIDGenerator
type MockUUIDGenerator struct {
	callCount int
	uuids     []string
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	if m.callCount < len(m.uuids) {
		id := m.uuids[m.callCount]
		m.callCount++
		return id
	}
	return "default-uuid"
}

func candidate(id, name string, rating float64, planID string, distanceKm *float64) *domain.ScoredShop {
	now := time.Now().UTC()
	shop := domain.NewShop(id, name, "ac repair", domain.ShopStatusActive, now)
	shop.Rating = rating
	shop.PlanID = planID
	shop.Phone = "+91 98290 00000"
	shop.Address = "MG Road"
	return &domain.ScoredShop{Shop: shop, DistanceKm: distanceKm}
}

func km(v float64) *float64 { return &v }

func newTestAssistService(shops *MockShopRepository, plans *MockPlanRepository, interactions *MockInteractionRepository) *AssistService {
	return NewAssistServiceWithUUIDGen(
		classify.New(nil),
		shops, plans, interactions,
		NewMockUUIDGenerator("session-1", "interaction-1"),
	)
}

func TestAssistService_Assist(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects empty query", func(t *testing.T) {
		svc := newTestAssistService(new(MockShopRepository), new(MockPlanRepository), new(MockInteractionRepository))

		_, err := svc.Assist(ctx, AssistInput{Query: "   "})
		assert.ErrorIs(t, err, domain.ErrEmptyQuery)
	})

	t.Run("full pipeline ranks candidates and records the shortlist", func(t *testing.T) {
		shops := new(MockShopRepository)
		plans := new(MockPlanRepository)
		interactions := new(MockInteractionRepository)

		premium := candidate("shop-1", "Sharma AC Services", 4.8, "plan-premium", km(2.0))
		unpaid := candidate("shop-2", "Verma Cooling", 4.0, "", km(1.0))

		shops.On("FindCandidates", mock.Anything, "ac repair", (*domain.GeoPoint)(nil)).
			Return([]*domain.ScoredShop{unpaid, premium}, nil)
		interactions.On("ConversionRates", mock.Anything, []string{"shop-2", "shop-1"}).
			Return(map[string]ConversionCount{
				"shop-1": {Total: 10, Converted: 4},
			}, nil)
		plans.On("GetByIDs", mock.Anything, []string{"plan-premium"}).
			Return(map[string]*domain.Plan{
				"plan-premium": {ID: "plan-premium", Name: "Premium", Priority: 3, Active: true},
			}, nil)

		var recorded *domain.Interaction
		interactions.On("Create", mock.Anything, mock.AnythingOfType("*domain.Interaction")).
			Run(func(args mock.Arguments) { recorded = args.Get(1).(*domain.Interaction) }).
			Return(nil)

		svc := newTestAssistService(shops, plans, interactions)

		out, err := svc.Assist(ctx, AssistInput{Query: "AC repair chahiye"})
		require.NoError(t, err)

		// premium: 3 x 0.4 x 100 / 2 = 60; unpaid: 0.5 x 0.1 x 100 / 1 = 5
		require.Len(t, out.Recommendations, 2)
		assert.Equal(t, "shop-1", out.Recommendations[0].Shop.ID)
		assert.Equal(t, domain.ReasonPremiumPartner, out.Recommendations[0].Reason)
		assert.InDelta(t, 60.0, out.Recommendations[0].Score, 1e-9)
		assert.Equal(t, "shop-2", out.Recommendations[1].Shop.ID)

		assert.Contains(t, out.Response, "Sharma AC Services")
		assert.Equal(t, "ac repair", out.Category)
		assert.Equal(t, domain.LanguageEnglish, out.Language)
		assert.Equal(t, "session-1", out.SessionID)
		assert.Equal(t, "interaction-1", out.InteractionID)
		assert.False(t, out.IsPersonal)

		require.NotNil(t, recorded)
		assert.Equal(t, "interaction-1", recorded.ID)
		assert.Equal(t, "session-1", recorded.SessionID)
		assert.Equal(t, "ac repair", recorded.Category)
		require.Len(t, recorded.Shortlist, 2)
		assert.Equal(t, "shop-1", recorded.Shortlist[0].ShopID)
		assert.Equal(t, 1, recorded.Shortlist[0].Position)
		assert.Equal(t, domain.ReasonPremiumPartner, recorded.Shortlist[0].Reason)
	})

	t.Run("keeps caller session id", func(t *testing.T) {
		shops := new(MockShopRepository)
		plans := new(MockPlanRepository)
		interactions := new(MockInteractionRepository)

		shops.On("FindCandidates", mock.Anything, "ac repair", (*domain.GeoPoint)(nil)).
			Return([]*domain.ScoredShop{}, nil)
		interactions.On("Create", mock.Anything, mock.Anything).Return(nil)

		svc := newTestAssistService(shops, plans, interactions)

		out, err := svc.Assist(ctx, AssistInput{Query: "AC repair chahiye", SessionID: "caller-session"})
		require.NoError(t, err)
		assert.Equal(t, "caller-session", out.SessionID)
	})

	t.Run("no candidates returns localized not-found and records the query", func(t *testing.T) {
		shops := new(MockShopRepository)
		plans := new(MockPlanRepository)
		interactions := new(MockInteractionRepository)

		shops.On("FindCandidates", mock.Anything, "ac repair", (*domain.GeoPoint)(nil)).
			Return([]*domain.ScoredShop{}, nil)

		var recorded *domain.Interaction
		interactions.On("Create", mock.Anything, mock.AnythingOfType("*domain.Interaction")).
			Run(func(args mock.Arguments) { recorded = args.Get(1).(*domain.Interaction) }).
			Return(nil)

		svc := newTestAssistService(shops, plans, interactions)

		out, err := svc.Assist(ctx, AssistInput{Query: "AC repair chahiye"})
		require.NoError(t, err)
		assert.Empty(t, out.Recommendations)
		assert.Contains(t, out.Response, "ac repair")
		assert.Equal(t, "ac repair", out.Category)

		require.NotNil(t, recorded)
		assert.Empty(t, recorded.Shortlist)
		plans.AssertNotCalled(t, "GetByIDs")
		interactions.AssertNotCalled(t, "ConversionRates")
	})

	t.Run("malformed coordinates are treated as absent", func(t *testing.T) {
		shops := new(MockShopRepository)
		plans := new(MockPlanRepository)
		interactions := new(MockInteractionRepository)

		lat, lng := 200.0, 77.2
		shops.On("FindCandidates", mock.Anything, "ac repair", (*domain.GeoPoint)(nil)).
			Return([]*domain.ScoredShop{}, nil)
		interactions.On("Create", mock.Anything, mock.Anything).Return(nil)

		svc := newTestAssistService(shops, plans, interactions)

		_, err := svc.Assist(ctx, AssistInput{Query: "AC repair chahiye", Lat: &lat, Lng: &lng})
		require.NoError(t, err)
		shops.AssertExpectations(t)
	})

	t.Run("valid coordinates are passed to retrieval", func(t *testing.T) {
		shops := new(MockShopRepository)
		plans := new(MockPlanRepository)
		interactions := new(MockInteractionRepository)

		lat, lng := 26.9124, 75.7873
		shops.On("FindCandidates", mock.Anything, "ac repair", &domain.GeoPoint{Lat: lat, Lng: lng}).
			Return([]*domain.ScoredShop{}, nil)
		interactions.On("Create", mock.Anything, mock.Anything).Return(nil)

		svc := newTestAssistService(shops, plans, interactions)

		_, err := svc.Assist(ctx, AssistInput{Query: "AC repair chahiye", Lat: &lat, Lng: &lng})
		require.NoError(t, err)
		shops.AssertExpectations(t)
	})

	t.Run("greeting short-circuits retrieval", func(t *testing.T) {
		shops := new(MockShopRepository)
		plans := new(MockPlanRepository)
		interactions := new(MockInteractionRepository)

		svc := newTestAssistService(shops, plans, interactions)

		out, err := svc.Assist(ctx, AssistInput{Query: "hello"})
		require.NoError(t, err)
		assert.Empty(t, out.Category)
		assert.Empty(t, out.Recommendations)
		assert.Contains(t, out.Response, "Hello")
		shops.AssertNotCalled(t, "FindCandidates")
		interactions.AssertNotCalled(t, "Create")
	})

	t.Run("personal query short-circuits the whole pipeline", func(t *testing.T) {
		shops := new(MockShopRepository)
		plans := new(MockPlanRepository)
		interactions := new(MockInteractionRepository)

		svc := newTestAssistService(shops, plans, interactions)

		out, err := svc.Assist(ctx, AssistInput{Query: "who are you exactly"})
		require.NoError(t, err)
		assert.True(t, out.IsPersonal)
		assert.Empty(t, out.Category)
		assert.Empty(t, out.Recommendations)
		assert.NotEmpty(t, out.Response)
		shops.AssertNotCalled(t, "FindCandidates")
		shops.AssertNotCalled(t, "SearchByKeywords")
		interactions.AssertNotCalled(t, "Create")
	})

	t.Run("unresolved category falls back to keyword match", func(t *testing.T) {
		shops := new(MockShopRepository)
		plans := new(MockPlanRepository)
		interactions := new(MockInteractionRepository)

		match := candidate("shop-9", "Raju Fridge Works", 4.2, "", nil)
		shops.On("SearchByKeywords", mock.Anything, []string{"fridge", "thik", "karwana"}).
			Return([]*domain.ScoredShop{match}, nil)

		svc := newTestAssistService(shops, plans, interactions)

		out, err := svc.Assist(ctx, AssistInput{Query: "fridge thik karwana"})
		require.NoError(t, err)
		assert.Empty(t, out.Category)
		require.Len(t, out.Recommendations, 1)
		assert.Equal(t, "shop-9", out.Recommendations[0].Shop.ID)
		assert.NotEmpty(t, out.Recommendations[0].Reason)
		assert.Contains(t, out.Response, "Raju Fridge Works")
		shops.AssertNotCalled(t, "FindCandidates")
	})

	t.Run("keyword fallback with no matches asks for clarification", func(t *testing.T) {
		shops := new(MockShopRepository)
		plans := new(MockPlanRepository)
		interactions := new(MockInteractionRepository)

		shops.On("SearchByKeywords", mock.Anything, mock.Anything).
			Return([]*domain.ScoredShop{}, nil)

		svc := newTestAssistService(shops, plans, interactions)

		out, err := svc.Assist(ctx, AssistInput{Query: "fridge thik karwana"})
		require.NoError(t, err)
		assert.Empty(t, out.Recommendations)
		assert.NotEmpty(t, out.Response)
	})

	t.Run("keyword fallback search error degrades to clarification", func(t *testing.T) {
		shops := new(MockShopRepository)
		plans := new(MockPlanRepository)
		interactions := new(MockInteractionRepository)

		shops.On("SearchByKeywords", mock.Anything, mock.Anything).
			Return(nil, errors.New("db down"))

		svc := newTestAssistService(shops, plans, interactions)

		out, err := svc.Assist(ctx, AssistInput{Query: "fridge thik karwana"})
		require.NoError(t, err)
		assert.Empty(t, out.Recommendations)
		assert.NotEmpty(t, out.Response)
	})

	t.Run("registry failure surfaces as unavailable", func(t *testing.T) {
		shops := new(MockShopRepository)
		plans := new(MockPlanRepository)
		interactions := new(MockInteractionRepository)

		shops.On("FindCandidates", mock.Anything, "ac repair", (*domain.GeoPoint)(nil)).
			Return(nil, errors.New("connection refused"))

		svc := newTestAssistService(shops, plans, interactions)

		_, err := svc.Assist(ctx, AssistInput{Query: "AC repair chahiye"})
		assert.ErrorIs(t, err, domain.ErrRegistryUnavailable)
	})

	t.Run("shops without history get the conversion prior", func(t *testing.T) {
		shops := new(MockShopRepository)
		plans := new(MockPlanRepository)
		interactions := new(MockInteractionRepository)

		fresh := candidate("shop-3", "New AC Point", 4.0, "", km(1.0))
		shops.On("FindCandidates", mock.Anything, "ac repair", (*domain.GeoPoint)(nil)).
			Return([]*domain.ScoredShop{fresh}, nil)
		interactions.On("ConversionRates", mock.Anything, []string{"shop-3"}).
			Return(map[string]ConversionCount{}, nil)
		plans.On("GetByIDs", mock.Anything, []string{}).
			Return(map[string]*domain.Plan{}, nil)
		interactions.On("Create", mock.Anything, mock.Anything).Return(nil)

		svc := newTestAssistService(shops, plans, interactions)

		out, err := svc.Assist(ctx, AssistInput{Query: "AC repair chahiye"})
		require.NoError(t, err)
		require.Len(t, out.Recommendations, 1)
		assert.InDelta(t, 0.1, out.Recommendations[0].ConversionRate, 1e-9)
		// 0.5 x 0.1 x 100 / 1 = 5
		assert.InDelta(t, 5.0, out.Recommendations[0].Score, 1e-9)
	})
}

func TestAssistService_RecordFeedback(t *testing.T) {
	ctx := context.Background()

	t.Run("records the outcome", func(t *testing.T) {
		interactions := new(MockInteractionRepository)
		interactions.On("RecordOutcome", mock.Anything, "interaction-1", true, "shop-1").Return(nil)

		svc := newTestAssistService(new(MockShopRepository), new(MockPlanRepository), interactions)

		err := svc.RecordFeedback(ctx, FeedbackInput{InteractionID: "interaction-1", Converted: true, ShopID: "shop-1"})
		require.NoError(t, err)
		interactions.AssertExpectations(t)
	})

	t.Run("requires an interaction id", func(t *testing.T) {
		svc := newTestAssistService(new(MockShopRepository), new(MockPlanRepository), new(MockInteractionRepository))

		err := svc.RecordFeedback(ctx, FeedbackInput{Converted: true})
		assert.Error(t, err)
	})

	t.Run("propagates not found", func(t *testing.T) {
		interactions := new(MockInteractionRepository)
		interactions.On("RecordOutcome", mock.Anything, "missing", false, "").
			Return(domain.ErrInteractionNotFound)

		svc := newTestAssistService(new(MockShopRepository), new(MockPlanRepository), interactions)

		err := svc.RecordFeedback(ctx, FeedbackInput{InteractionID: "missing"})
		assert.ErrorIs(t, err, domain.ErrInteractionNotFound)
	})
}
