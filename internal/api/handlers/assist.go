package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dukaanlabs/dukaan/internal/api"
	"github.com/dukaanlabs/dukaan/internal/classify"
	"github.com/dukaanlabs/dukaan/internal/service"
)

type AssistServiceInterface interface {
	Assist(ctx context.Context, input service.AssistInput) (*service.AssistOutput, error)
	RecordFeedback(ctx context.Context, input service.FeedbackInput) error
}

type AssistHandler struct {
	svc      AssistServiceInterface
	composer *service.Composer
}

func NewAssistHandler(svc AssistServiceInterface) *AssistHandler {
	return &AssistHandler{svc: svc, composer: service.NewComposer()}
}

type AssistRequest struct {
	Query     string   `json:"query"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
	UserID    string   `json:"user_id,omitempty"`
}

type RecommendationResponse struct {
	ShopID     string   `json:"shop_id"`
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Address    string   `json:"address,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	WhatsApp   string   `json:"whatsapp,omitempty"`
	Rating     float64  `json:"rating,omitempty"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
	Score      float64  `json:"score"`
	Reason     string   `json:"reason,omitempty"`
	Offers     []string `json:"offers,omitempty"`
}

type AssistResponse struct {
	Success         bool                      `json:"success"`
	Response        string                    `json:"response"`
	Recommendations []*RecommendationResponse `json:"recommendations"`
	Language        string                    `json:"language"`
	Category        string                    `json:"category,omitempty"`
	SessionID       string                    `json:"session_id"`
	InteractionID   string                    `json:"interaction_id,omitempty"`
	IsPersonal      bool                      `json:"is_personal,omitempty"`
}

type FeedbackRequest struct {
	InteractionID string `json:"interaction_id"`
	ShopID        string `json:"shop_id,omitempty"`
	Converted     bool   `json:"converted"`
}

func (h *AssistHandler) Assist(w http.ResponseWriter, r *http.Request) {
	var req AssistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	input := service.AssistInput{
		Query:     req.Query,
		Lat:       req.Lat,
		Lng:       req.Lng,
		SessionID: req.SessionID,
		UserID:    req.UserID,
	}

	output, err := h.svc.Assist(r.Context(), input)
	if err != nil {
		h.handleAssistError(w, req.Query, err)
		return
	}

	recs := make([]*RecommendationResponse, len(output.Recommendations))
	for i, rec := range output.Recommendations {
		recs[i] = &RecommendationResponse{
			ShopID:     rec.Shop.ID,
			Name:       rec.Shop.Name,
			Category:   rec.Shop.Category,
			Address:    rec.Shop.Address,
			Phone:      rec.Shop.Phone,
			WhatsApp:   rec.Shop.WhatsApp,
			Rating:     rec.Shop.Rating,
			DistanceKm: rec.DistanceKm,
			Score:      rec.Score,
			Reason:     rec.Reason,
			Offers:     rec.Shop.Offers,
		}
	}

	api.JSON(w, http.StatusOK, AssistResponse{
		Success:         true,
		Response:        output.Response,
		Recommendations: recs,
		Language:        string(output.Language),
		Category:        output.Category,
		SessionID:       output.SessionID,
		InteractionID:   output.InteractionID,
		IsPersonal:      output.IsPersonal,
	})
}

// handleAssistError returns a user-safe localized sentence instead of the
// raw error text. Validation errors keep the plain error envelope.
func (h *AssistHandler) handleAssistError(w http.ResponseWriter, query string, err error) {
	status := api.DomainErrorToHTTP(err)
	if status == http.StatusBadRequest {
		api.HandleError(w, err)
		return
	}

	lang := classify.DetectLanguage(query)
	api.JSON(w, status, AssistResponse{
		Success:         false,
		Response:        h.composer.Fallback(lang),
		Recommendations: []*RecommendationResponse{},
		Language:        string(lang),
	})
}

func (h *AssistHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.InteractionID == "" {
		api.Error(w, http.StatusBadRequest, "interaction_id is required")
		return
	}

	input := service.FeedbackInput{
		InteractionID: req.InteractionID,
		ShopID:        req.ShopID,
		Converted:     req.Converted,
	}

	if err := h.svc.RecordFeedback(r.Context(), input); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"success": true})
}
