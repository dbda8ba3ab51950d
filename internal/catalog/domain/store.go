package domain

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

// PointType is the only GeoJSON geometry a store location may carry.
const PointType = "Point"

// Location is a GeoJSON point plus the human readable address.
// Coordinates are ordered [lng, lat] as GeoJSON requires.
type Location struct {
	Type        string
	Coordinates [2]float64
	Address     string
}

// Lng returns the longitude component.
func (l Location) Lng() float64 { return l.Coordinates[0] }

// Lat returns the latitude component.
func (l Location) Lat() float64 { return l.Coordinates[1] }

// NewPoint builds a Point location. The type is always forced to "Point".
func NewPoint(lng, lat float64, address string) Location {
	return Location{
		Type:        PointType,
		Coordinates: [2]float64{lng, lat},
		Address:     strings.TrimSpace(address),
	}
}

// Store is a listed business.
type Store struct {
	ID          string
	Name        string
	Slug        string
	Description string
	Tags        []string
	Location    Location
	Photo       string
	Author      string
	Created     time.Time
	UpdatedAt   time.Time
}

// OwnedBy reports whether userID created the store.
func (s Store) OwnedBy(userID string) bool {
	return userID != "" && s.Author == userID
}

// ScoredStore is a full-text search hit.
type ScoredStore struct {
	Store
	Score float64
}

// NearbyStore is the projection returned by proximity queries.
type NearbyStore struct {
	Slug        string
	Name        string
	Description string
	Location    Location
	Photo       string
	Distance    float64
}

// TagCount is one facet bucket of the tag listing.
type TagCount struct {
	Tag   string
	Count int
}

// NormalizeTags trims, drops empty entries and de-duplicates while keeping the input order.
func NormalizeTags(tags []string) []string {
	trimmed := lo.Map(tags, func(tag string, _ int) string { return strings.TrimSpace(tag) })
	return lo.Uniq(lo.Compact(trimmed))
}
