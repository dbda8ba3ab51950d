package public

import (
	"time"

	"github.com/sngm3741/store-finder/api/internal/catalog/application"
	"github.com/sngm3741/store-finder/api/internal/catalog/domain"
)

const uploadsPath = "/uploads/"

type locationResponse struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
	Address     string     `json:"address"`
}

type storeResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Description string           `json:"description,omitempty"`
	Tags        []string         `json:"tags"`
	Location    locationResponse `json:"location"`
	Photo       string           `json:"photo,omitempty"`
	PhotoURL    string           `json:"photoUrl,omitempty"`
	Author      string           `json:"author"`
	Created     time.Time        `json:"created"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type storePageResponse struct {
	Stores []storeResponse `json:"stores"`
	Count  int64           `json:"count"`
	Page   int             `json:"page"`
	Pages  int             `json:"pages"`
}

type tagCountResponse struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type tagListResponse struct {
	Tag    string             `json:"tag,omitempty"`
	Tags   []tagCountResponse `json:"tags"`
	Stores []storeResponse    `json:"stores"`
}

type searchHitResponse struct {
	storeResponse
	Score float64 `json:"score"`
}

type nearbyStoreResponse struct {
	Slug        string           `json:"slug"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Location    locationResponse `json:"location"`
	Photo       string           `json:"photo,omitempty"`
	PhotoURL    string           `json:"photoUrl,omitempty"`
	Distance    float64          `json:"distance"`
}

type heartsResponse struct {
	Hearts []string `json:"hearts"`
}

type profileResponse struct {
	ID      string   `json:"id"`
	Name    string   `json:"name,omitempty"`
	Email   string   `json:"email,omitempty"`
	Picture string   `json:"picture,omitempty"`
	Hearts  []string `json:"hearts"`
}

func photoURL(photo string) string {
	if photo == "" {
		return ""
	}
	return uploadsPath + photo
}

func buildLocationResponse(loc domain.Location) locationResponse {
	return locationResponse{Type: loc.Type, Coordinates: loc.Coordinates, Address: loc.Address}
}

func buildStoreResponse(store domain.Store) storeResponse {
	tags := store.Tags
	if tags == nil {
		tags = []string{}
	}
	return storeResponse{
		ID:          store.ID,
		Name:        store.Name,
		Slug:        store.Slug,
		Description: store.Description,
		Tags:        tags,
		Location:    buildLocationResponse(store.Location),
		Photo:       store.Photo,
		PhotoURL:    photoURL(store.Photo),
		Author:      store.Author,
		Created:     store.Created,
		UpdatedAt:   store.UpdatedAt,
	}
}

func buildStoreResponses(stores []domain.Store) []storeResponse {
	items := make([]storeResponse, 0, len(stores))
	for _, store := range stores {
		items = append(items, buildStoreResponse(store))
	}
	return items
}

func buildStorePageResponse(page *application.StorePage) storePageResponse {
	return storePageResponse{
		Stores: buildStoreResponses(page.Stores),
		Count:  page.Total,
		Page:   page.Page,
		Pages:  page.LastPage,
	}
}

func buildTagListResponse(listing *application.TagListing) tagListResponse {
	tags := make([]tagCountResponse, 0, len(listing.Tags))
	for _, t := range listing.Tags {
		tags = append(tags, tagCountResponse{Tag: t.Tag, Count: t.Count})
	}
	return tagListResponse{Tag: listing.Tag, Tags: tags, Stores: buildStoreResponses(listing.Stores)}
}

func buildNearbyResponse(store domain.NearbyStore) nearbyStoreResponse {
	return nearbyStoreResponse{
		Slug:        store.Slug,
		Name:        store.Name,
		Description: store.Description,
		Location:    buildLocationResponse(store.Location),
		Photo:       store.Photo,
		PhotoURL:    photoURL(store.Photo),
		Distance:    store.Distance,
	}
}
