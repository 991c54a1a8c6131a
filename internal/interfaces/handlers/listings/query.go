package listings

import (
	"fmt"
	"strconv"
	"strings"

	"hostel-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
)

var (
	roomTypes    = []domain.RoomType{domain.RoomSingle, domain.RoomDouble, domain.RoomTriple}
	listingTypes = []domain.ListingType{domain.ListingBoys, domain.ListingGirls, domain.ListingCoed}
)

// parseFilter reads the discovery filter from the query string. List values are comma separated
// and may also be repeated (?room_type=Single&room_type=Double).
func parseFilter(c *fiber.Ctx) (domain.ListingFilter, error) {
	var f domain.ListingFilter
	var err error
	if f.MinRent, err = queryFloat(c, "min_rent"); err != nil {
		return f, err
	}
	if f.MaxRent, err = queryFloat(c, "max_rent"); err != nil {
		return f, err
	}
	if f.MaxRent > 0 && f.MinRent > f.MaxRent {
		return f, fmt.Errorf("%w: min_rent exceeds max_rent", domain.ErrInvalidInput)
	}
	if s := c.Query("min_safety"); s != "" {
		f.MinSafety, err = strconv.Atoi(s)
		if err != nil || f.MinSafety < 0 || f.MinSafety > domain.MaxSafetyScore {
			return f, fmt.Errorf("%w: min_safety must be between 0 and %d", domain.ErrInvalidInput, domain.MaxSafetyScore)
		}
	}
	for _, v := range queryList(c, "room_type") {
		rt, ok := matchFold(roomTypes, v)
		if !ok {
			return f, fmt.Errorf("%w: unknown room_type %q", domain.ErrInvalidInput, v)
		}
		f.RoomTypes = append(f.RoomTypes, rt)
	}
	for _, v := range queryList(c, "gender") {
		lt, ok := matchFold(listingTypes, v)
		if !ok {
			return f, fmt.Errorf("%w: unknown gender %q", domain.ErrInvalidInput, v)
		}
		f.Genders = append(f.Genders, lt)
	}
	f.Location = c.Query("location")
	return f, nil
}

func queryFloat(c *fiber.Ctx, key string) (float64, error) {
	s := c.Query(key)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
	}
	return v, nil
}

// queryList collects every value of key, splitting on commas.
func queryList(c *fiber.Ctx, key string) []string {
	var out []string
	for _, raw := range c.Context().QueryArgs().PeekMulti(key) {
		for _, part := range strings.Split(string(raw), ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func matchFold[T ~string](allowed []T, v string) (T, bool) {
	for _, a := range allowed {
		if strings.EqualFold(string(a), v) {
			return a, true
		}
	}
	var zero T
	return zero, false
}
