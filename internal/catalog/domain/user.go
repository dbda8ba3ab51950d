package domain

import "slices"

// User is the account a favorite set belongs to. Credentials live with the external
// identity provider; only the profile and hearts are kept here.
type User struct {
	ID     string
	Email  string
	Name   string
	Hearts []string
}

// HasHeart reports whether storeID is in the user's favorites.
func (u User) HasHeart(storeID string) bool {
	return slices.Contains(u.Hearts, storeID)
}
