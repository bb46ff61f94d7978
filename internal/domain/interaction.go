package domain

import (
	"fmt"
	"time"
)

// RecommendedShop is one entry of the shortlist shown for an interaction
type RecommendedShop struct {
	ShopID   string
	Position int
	Reason   string
}

// Interaction is an append-only record of a query, its resolved intent and
// the shortlist shown. The outcome flag is set later by the conversion
// tracking flow, never by the query pipeline.
type Interaction struct {
	ID           string
	SessionID    string
	UserID       string
	Query        string
	Language     Language
	Category     string
	Location     *GeoPoint
	Shortlist    []RecommendedShop
	Outcome      *bool
	ChosenShopID string
	CreatedAt    time.Time
}

// NewInteraction creates a new Interaction instance
func NewInteraction(id, sessionID, query string, createdAt time.Time) *Interaction {
	return &Interaction{
		ID:        id,
		SessionID: sessionID,
		Query:     query,
		CreatedAt: createdAt,
	}
}

// ValidateInteraction validates an Interaction instance
func ValidateInteraction(i *Interaction) error {
	if i == nil {
		return fmt.Errorf("interaction cannot be nil")
	}

	if i.ID == "" {
		return fmt.Errorf("interaction ID is required")
	}

	if i.SessionID == "" {
		return fmt.Errorf("interaction SessionID is required")
	}

	if i.Query == "" {
		return fmt.Errorf("interaction Query is required")
	}

	for _, r := range i.Shortlist {
		if r.ShopID == "" {
			return fmt.Errorf("interaction shortlist entry is missing shop ID")
		}
		if r.Position <= 0 {
			return fmt.Errorf("interaction shortlist position must be greater than 0")
		}
	}

	return nil
}
