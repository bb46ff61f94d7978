package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/dukaanlabs/dukaan/internal/classify"
	"github.com/dukaanlabs/dukaan/internal/domain"
	"github.com/dukaanlabs/dukaan/internal/ranking"
	"github.com/dukaanlabs/dukaan/internal/telemetry"
	"github.com/google/uuid"
)

// IntentResolver classifies a query into language, category and price intent.
type IntentResolver interface {
	Resolve(ctx context.Context, text string) domain.ResolvedIntent
}

// ShopRepositoryInterface defines the registry reads the pipeline needs.
type ShopRepositoryInterface interface {
	FindCandidates(ctx context.Context, category string, near *domain.GeoPoint) ([]*domain.ScoredShop, error)
	SearchByKeywords(ctx context.Context, tokens []string) ([]*domain.ScoredShop, error)
}

// PlanRepositoryInterface batch-resolves active subscription plans.
type PlanRepositoryInterface interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Plan, error)
}

// ConversionCount is the raw shown/converted tally for one shop.
type ConversionCount struct {
	Total     int
	Converted int
}

// InteractionRepositoryInterface is the append-only interaction log.
type InteractionRepositoryInterface interface {
	Create(ctx context.Context, in *domain.Interaction) error
	ConversionRates(ctx context.Context, shopIDs []string) (map[string]ConversionCount, error)
	RecordOutcome(ctx context.Context, interactionID string, converted bool, chosenShopID string) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// AssistService runs the full query pipeline: classify, retrieve, score,
// rank, compose, record.
type AssistService struct {
	resolver     IntentResolver
	shops        ShopRepositoryInterface
	plans        PlanRepositoryInterface
	interactions InteractionRepositoryInterface
	composer     *Composer
	uuidGen      UUIDGenerator
}

// NewAssistService creates a new AssistService instance
func NewAssistService(
	resolver IntentResolver,
	shops ShopRepositoryInterface,
	plans PlanRepositoryInterface,
	interactions InteractionRepositoryInterface,
) *AssistService {
	return &AssistService{
		resolver:     resolver,
		shops:        shops,
		plans:        plans,
		interactions: interactions,
		composer:     NewComposer(),
		uuidGen:      &DefaultUUIDGenerator{},
	}
}

// NewAssistServiceWithUUIDGen creates an AssistService with a custom UUID
// generator (for testing)
func NewAssistServiceWithUUIDGen(
	resolver IntentResolver,
	shops ShopRepositoryInterface,
	plans PlanRepositoryInterface,
	interactions InteractionRepositoryInterface,
	uuidGen UUIDGenerator,
) *AssistService {
	svc := NewAssistService(resolver, shops, plans, interactions)
	svc.uuidGen = uuidGen
	return svc
}

// AssistInput represents one inbound query
type AssistInput struct {
	Query     string
	Lat       *float64
	Lng       *float64
	SessionID string
	UserID    string
}

// AssistOutput is the composed reply plus the structured shortlist
type AssistOutput struct {
	Response        string
	Recommendations []*domain.ScoredShop
	Language        domain.Language
	Category        string
	SessionID       string
	InteractionID   string
	IsPersonal      bool
}

// Assist handles a query end to end.
func (s *AssistService) Assist(ctx context.Context, input AssistInput) (*AssistOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = s.uuidGen.NewString()
	}

	ctx, span := telemetry.StartSpan(ctx, "AssistService.Assist", telemetry.SpanAttributes{
		SessionID: sessionID,
		Operation: "assist",
	})
	defer span.End()

	// Queries about the assistant itself short-circuit the pipeline.
	if classify.IsPersonal(query) {
		lang := classify.DetectLanguage(query)
		return &AssistOutput{
			Response:        s.composer.Personal(lang),
			Recommendations: []*domain.ScoredShop{},
			Language:        lang,
			SessionID:       sessionID,
			IsPersonal:      true,
		}, nil
	}

	intent := s.resolver.Resolve(ctx, query)

	out := &AssistOutput{
		Recommendations: []*domain.ScoredShop{},
		Language:        intent.Language,
		Category:        intent.Category,
		SessionID:       sessionID,
	}

	if intent.Category == "" {
		s.assistDegraded(ctx, query, intent, out)
		return out, nil
	}

	location := resolveLocation(input.Lat, input.Lng)

	candidates, err := s.shops.FindCandidates(ctx, intent.Category, location)
	if err != nil {
		span.SetError(err)
		return nil, domain.ErrRegistryUnavailable
	}

	if len(candidates) > 0 {
		if err := s.scoreCandidates(ctx, candidates); err != nil {
			span.SetError(err)
			return nil, domain.ErrRegistryUnavailable
		}
		out.Recommendations = ranking.Rank(candidates, intent.PriceIntent)
		out.Response = s.composer.ComposeFound(out.Recommendations[0], intent.Language, intent.PriceIntent)
	} else {
		out.Response = s.composer.NotFound(intent.Language, intent.Category)
	}

	interactionID, err := s.record(ctx, query, sessionID, input.UserID, intent, location, out.Recommendations)
	if err != nil {
		span.SetError(err)
		return nil, domain.ErrRegistryUnavailable
	}
	out.InteractionID = interactionID

	return out, nil
}

// assistDegraded handles queries with no resolvable category: greeting,
// then best-effort keyword match, then a clarification prompt. Keyword
// search failures degrade to clarification instead of erroring.
func (s *AssistService) assistDegraded(ctx context.Context, query string, intent domain.ResolvedIntent, out *AssistOutput) {
	if classify.IsGreeting(query) {
		out.Response = s.composer.Greeting(intent.Language)
		return
	}

	tokens := classify.Tokens(query)
	if len(tokens) > 0 {
		matches, err := s.shops.SearchByKeywords(ctx, tokens)
		if err != nil {
			log.Printf("assist: keyword fallback failed, asking for clarification: %v", err)
		} else if len(matches) > 0 {
			top := matches[0]
			top.ConversionRate = ranking.DefaultConversionRate
			top.Reason = ranking.AssignReason(top)
			out.Recommendations = []*domain.ScoredShop{top}
			out.Response = s.composer.PartialGuess(intent.Language, top.Shop.Name)
			return
		}
	}

	out.Response = s.composer.Clarification(intent.Language)
}

// scoreCandidates fills plan and conversion inputs on each candidate with
// one batched lookup apiece.
func (s *AssistService) scoreCandidates(ctx context.Context, candidates []*domain.ScoredShop) error {
	shopIDs := make([]string, 0, len(candidates))
	planIDs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		shopIDs = append(shopIDs, c.Shop.ID)
		if c.Shop.PlanID != "" {
			planIDs = append(planIDs, c.Shop.PlanID)
		}
	}

	counts, err := s.interactions.ConversionRates(ctx, shopIDs)
	if err != nil {
		return err
	}
	plans, err := s.plans.GetByIDs(ctx, planIDs)
	if err != nil {
		return err
	}

	for _, c := range candidates {
		c.HasPlan = c.Shop.PlanID != ""
		if plan, ok := plans[c.Shop.PlanID]; ok {
			c.PlanPriority = plan.Priority
		}
		c.ConversionRate = conversionRate(counts, c.Shop.ID)
	}
	return nil
}

func (s *AssistService) record(
	ctx context.Context,
	query, sessionID, userID string,
	intent domain.ResolvedIntent,
	location *domain.GeoPoint,
	shortlist []*domain.ScoredShop,
) (string, error) {
	in := domain.NewInteraction(s.uuidGen.NewString(), sessionID, query, time.Now().UTC())
	in.UserID = userID
	in.Language = intent.Language
	in.Category = intent.Category
	in.Location = location
	for i, c := range shortlist {
		in.Shortlist = append(in.Shortlist, domain.RecommendedShop{
			ShopID:   c.Shop.ID,
			Position: i + 1,
			Reason:   c.Reason,
		})
	}

	if err := s.interactions.Create(ctx, in); err != nil {
		return "", err
	}
	return in.ID, nil
}

// FeedbackInput marks a past interaction's outcome
type FeedbackInput struct {
	InteractionID string
	Converted     bool
	ShopID        string
}

// RecordFeedback sets the conversion outcome on a recorded interaction.
func (s *AssistService) RecordFeedback(ctx context.Context, input FeedbackInput) error {
	ctx, span := telemetry.StartSpan(ctx, "AssistService.RecordFeedback", telemetry.SpanAttributes{
		Operation: "feedback",
	})
	defer span.End()

	if input.InteractionID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "interaction id is required")
	}
	return s.interactions.RecordOutcome(ctx, input.InteractionID, input.Converted, input.ShopID)
}

// conversionRate turns a raw tally into a probability, applying the prior
// for shops with no history.
func conversionRate(counts map[string]ConversionCount, shopID string) float64 {
	c, ok := counts[shopID]
	if !ok || c.Total == 0 {
		return ranking.DefaultConversionRate
	}
	return float64(c.Converted) / float64(c.Total)
}

// resolveLocation treats malformed or zero coordinates as absent.
func resolveLocation(lat, lng *float64) *domain.GeoPoint {
	if lat == nil || lng == nil {
		return nil
	}
	p := domain.GeoPoint{Lat: *lat, Lng: *lng}
	if !p.Valid() {
		return nil
	}
	return &p
}
