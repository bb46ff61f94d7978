package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukaanlabs/dukaan/internal/domain"
	"github.com/dukaanlabs/dukaan/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAssistService struct {
	mock.Mock
}

func (m *MockAssistService) Assist(ctx context.Context, input service.AssistInput) (*service.AssistOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AssistOutput), args.Error(1)
}

func (m *MockAssistService) RecordFeedback(ctx context.Context, input service.FeedbackInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/assist", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestAssistHandler_Assist(t *testing.T) {
	t.Run("returns composed response with recommendations", func(t *testing.T) {
		svc := new(MockAssistService)
		handler := NewAssistHandler(svc)

		km := 1.8
		output := &service.AssistOutput{
			Response: "Sharma Electricals is a good option nearby.",
			Recommendations: []*domain.ScoredShop{
				{
					Shop: &domain.Shop{
						ID:       "shop-1",
						Name:     "Sharma Electricals",
						Category: "electrician",
						Address:  "12 MG Road",
						Phone:    "+911234567890",
						Rating:   4.2,
					},
					DistanceKm: &km,
					Score:      42.5,
					Reason:     "high_conversion",
				},
			},
			Language:      domain.LanguageEnglish,
			Category:      "electrician",
			SessionID:     "session-1",
			InteractionID: "interaction-1",
		}
		svc.On("Assist", mock.Anything, mock.MatchedBy(func(in service.AssistInput) bool {
			return in.Query == "need an electrician" && in.SessionID == "session-1"
		})).Return(output, nil)

		w := postJSON(t, handler.Assist, AssistRequest{
			Query:     "need an electrician",
			SessionID: "session-1",
		})

		require.Equal(t, http.StatusOK, w.Code)

		var resp AssistResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "Sharma Electricals is a good option nearby.", resp.Response)
		require.Len(t, resp.Recommendations, 1)
		assert.Equal(t, "shop-1", resp.Recommendations[0].ShopID)
		assert.Equal(t, "Sharma Electricals", resp.Recommendations[0].Name)
		require.NotNil(t, resp.Recommendations[0].DistanceKm)
		assert.InDelta(t, 1.8, *resp.Recommendations[0].DistanceKm, 0.001)
		assert.Equal(t, "english", resp.Language)
		assert.Equal(t, "electrician", resp.Category)
		assert.Equal(t, "session-1", resp.SessionID)
		assert.Equal(t, "interaction-1", resp.InteractionID)
		svc.AssertExpectations(t)
	})

	t.Run("passes coordinates through", func(t *testing.T) {
		svc := new(MockAssistService)
		handler := NewAssistHandler(svc)

		lat, lng := 28.6139, 77.2090
		svc.On("Assist", mock.Anything, mock.MatchedBy(func(in service.AssistInput) bool {
			return in.Lat != nil && *in.Lat == lat && in.Lng != nil && *in.Lng == lng
		})).Return(&service.AssistOutput{
			Recommendations: []*domain.ScoredShop{},
			Language:        domain.LanguageEnglish,
			SessionID:       "s",
		}, nil)

		w := postJSON(t, handler.Assist, AssistRequest{Query: "plumber", Lat: &lat, Lng: &lng})

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("rejects missing query", func(t *testing.T) {
		svc := new(MockAssistService)
		handler := NewAssistHandler(svc)

		w := postJSON(t, handler.Assist, AssistRequest{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Assist")
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		svc := new(MockAssistService)
		handler := NewAssistHandler(svc)

		req := httptest.NewRequest(http.MethodPost, "/assist", bytes.NewReader([]byte("{not json")))
		w := httptest.NewRecorder()
		handler.Assist(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps empty-query validation error to 400", func(t *testing.T) {
		svc := new(MockAssistService)
		handler := NewAssistHandler(svc)

		svc.On("Assist", mock.Anything, mock.Anything).Return(nil, domain.ErrEmptyQuery)

		w := postJSON(t, handler.Assist, AssistRequest{Query: "   "})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("registry failure returns localized fallback", func(t *testing.T) {
		svc := new(MockAssistService)
		handler := NewAssistHandler(svc)

		svc.On("Assist", mock.Anything, mock.Anything).Return(nil, domain.ErrRegistryUnavailable)

		w := postJSON(t, handler.Assist, AssistRequest{Query: "need a plumber"})

		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp AssistResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.Response)
		assert.Empty(t, resp.Recommendations)
		assert.Equal(t, "english", resp.Language)
	})

	t.Run("fallback is localized to the query language", func(t *testing.T) {
		svc := new(MockAssistService)
		handler := NewAssistHandler(svc)

		svc.On("Assist", mock.Anything, mock.Anything).Return(nil, domain.ErrRegistryUnavailable)

		w := postJSON(t, handler.Assist, AssistRequest{Query: "मुझे प्लंबर चाहिए"})

		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp AssistResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "hindi", resp.Language)
	})
}

func TestAssistHandler_Feedback(t *testing.T) {
	t.Run("records outcome", func(t *testing.T) {
		svc := new(MockAssistService)
		handler := NewAssistHandler(svc)

		svc.On("RecordFeedback", mock.Anything, service.FeedbackInput{
			InteractionID: "interaction-1",
			ShopID:        "shop-1",
			Converted:     true,
		}).Return(nil)

		w := postJSON(t, handler.Feedback, FeedbackRequest{
			InteractionID: "interaction-1",
			ShopID:        "shop-1",
			Converted:     true,
		})

		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, true, resp["success"])
		svc.AssertExpectations(t)
	})

	t.Run("rejects missing interaction_id", func(t *testing.T) {
		svc := new(MockAssistService)
		handler := NewAssistHandler(svc)

		w := postJSON(t, handler.Feedback, FeedbackRequest{Converted: true})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "RecordFeedback")
	})

	t.Run("maps unknown interaction to 404", func(t *testing.T) {
		svc := new(MockAssistService)
		handler := NewAssistHandler(svc)

		svc.On("RecordFeedback", mock.Anything, mock.Anything).Return(domain.ErrInteractionNotFound)

		w := postJSON(t, handler.Feedback, FeedbackRequest{InteractionID: "nope"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
