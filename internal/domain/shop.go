package domain

import (
	"fmt"
	"math"
	"time"
)

// ShopStatus represents the listing status of a shop in the registry
type ShopStatus string

const (
	ShopStatusPending  ShopStatus = "pending"
	ShopStatusActive   ShopStatus = "active"
	ShopStatusApproved ShopStatus = "approved"
	ShopStatusDisabled ShopStatus = "disabled"
)

// GeoPoint is a WGS84 coordinate pair. The zero value (0,0) is treated as
// "no location" throughout the system.
type GeoPoint struct {
	Lat float64
	Lng float64
}

// Valid reports whether the point has finite, in-range, non-zero ordinates.
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return false
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return false
	}
	if p.Lat == 0 && p.Lng == 0 {
		return false
	}
	return true
}

// Shop represents a business listing in the registry
type Shop struct {
	ID          string
	Name        string
	Category    string
	Description string
	Address     string
	City        string
	Pincode     string
	Phone       string
	WhatsApp    string
	Rating      float64
	ReviewCount int
	Location    *GeoPoint
	PlanID      string // empty when unsubscribed
	Featured    bool
	Offers      []string
	Status      ShopStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Plan represents a paid subscription tier for a shop
type Plan struct {
	ID       string
	Name     string
	Tier     string
	Priority int
	Active   bool
}

// NewShop creates a new Shop instance
func NewShop(id, name, category string, status ShopStatus, createdAt time.Time) *Shop {
	return &Shop{
		ID:        id,
		Name:      name,
		Category:  category,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// ValidateShop validates a Shop instance
func ValidateShop(s *Shop) error {
	if s == nil {
		return fmt.Errorf("shop cannot be nil")
	}

	if s.ID == "" {
		return fmt.Errorf("shop ID is required")
	}

	if s.Name == "" {
		return fmt.Errorf("shop Name is required")
	}

	if s.Category == "" {
		return fmt.Errorf("shop Category is required")
	}

	if !isValidShopStatus(s.Status) {
		return fmt.Errorf("shop Status is invalid: %s", s.Status)
	}

	if s.Location != nil && !s.Location.Valid() {
		return fmt.Errorf("shop Location is invalid: %+v", *s.Location)
	}

	return nil
}

// isValidShopStatus checks if a ShopStatus is valid
func isValidShopStatus(s ShopStatus) bool {
	switch s {
	case ShopStatusPending, ShopStatusActive, ShopStatusApproved, ShopStatusDisabled:
		return true
	}
	return false
}
