package domain

import (
	"slices"
	"strings"
)

// ListingFilter narrows the discovery list. Zero values disable a criterion, except MaxRent
// where zero means no upper bound.
type ListingFilter struct {
	MinRent   float64
	MaxRent   float64
	MinSafety int
	RoomTypes []RoomType
	Genders   []ListingType
	Location  string
}

// Matches applies the filter to one listing. A listing without floors passes the room type
// criterion since its rooms are not yet declared.
func (f ListingFilter) Matches(l Listing) bool {
	if l.Price < f.MinRent {
		return false
	}
	if f.MaxRent > 0 && l.Price > f.MaxRent {
		return false
	}
	if l.SafetyScore < f.MinSafety {
		return false
	}
	if len(f.Genders) > 0 && !slices.Contains(f.Genders, l.Type) {
		return false
	}
	if loc := strings.ToLower(strings.TrimSpace(f.Location)); loc != "" {
		if !strings.Contains(strings.ToLower(l.Location.City), loc) &&
			!strings.Contains(strings.ToLower(l.Location.Address), loc) &&
			!strings.Contains(strings.ToLower(l.Title), loc) {
			return false
		}
	}
	if len(f.RoomTypes) > 0 && len(l.Floors) > 0 {
		for _, fl := range l.Floors {
			for _, r := range fl.Rooms {
				if slices.Contains(f.RoomTypes, r.Type) {
					return true
				}
			}
		}
		return false
	}
	return true
}
