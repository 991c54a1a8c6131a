package listings

import (
	"encoding/json"
	"strings"

	"hostel-backend/internal/application/housing"
	"hostel-backend/internal/domain"
	"hostel-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Store *housing.Store
}

// listingView is a listing plus its qualitative safety reading.
type listingView struct {
	domain.Listing
	SafetyLevel domain.SafetyLevel `json:"safetyLevel"`
}

func view(l domain.Listing) listingView {
	return listingView{Listing: l, SafetyLevel: l.Safety()}
}

// GET /api/v1/listings?min_rent=&max_rent=&min_safety=&room_type=&gender=&location=
func (h *Handlers) List(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return response.DomainError(c, err)
	}
	found := h.Store.Search(filter)
	out := make([]listingView, 0, len(found))
	for _, l := range found {
		out = append(out, view(l))
	}
	return response.Success(c, "Listings fetched successfully", out, fiber.Map{"count": len(out)})
}

// GET /api/v1/listings/:listing_id
func (h *Handlers) Get(c *fiber.Ctx) error {
	l, err := h.Store.Listing(c.Params("listing_id"))
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Listing fetched successfully", view(l), nil)
}

// PATCH /api/v1/listings/:listing_id (partial update): safetyScore follows safetyFeatures.
func (h *Handlers) Update(c *fiber.Ctx) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if _, ok := raw["safetyScore"]; ok {
		return response.Error(c, "safetyScore is derived from safetyFeatures and cannot be set", fiber.StatusBadRequest, nil)
	}
	var patch domain.ListingPatch
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if patch.Empty() {
		return response.Error(c, "No updatable fields provided", fiber.StatusBadRequest, nil)
	}
	id := c.Params("listing_id")
	if err := h.Store.UpdateListing(c.UserContext(), id, patch); err != nil {
		return response.DomainError(c, err)
	}
	return h.respondListing(c, id, "Listing updated successfully")
}

// POST /api/v1/listings/:listing_id/safety-features/toggle body { feature }
func (h *Handlers) ToggleSafetyFeature(c *fiber.Ctx) error {
	var body struct {
		Feature string `json:"feature"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil || strings.TrimSpace(body.Feature) == "" {
		return response.Error(c, "Missing required field: feature", fiber.StatusBadRequest, nil)
	}
	id := c.Params("listing_id")
	if err := h.Store.ToggleSafetyFeature(c.UserContext(), id, domain.SafetyFeature(body.Feature)); err != nil {
		return response.DomainError(c, err)
	}
	return h.respondListing(c, id, "Safety features updated successfully")
}

// POST /api/v1/listings/:listing_id/rent-paid
func (h *Handlers) MarkRentPaid(c *fiber.Ctx) error {
	id := c.Params("listing_id")
	if err := h.Store.MarkRentPaid(c.UserContext(), id); err != nil {
		return response.DomainError(c, err)
	}
	return h.respondListing(c, id, "Rent marked as paid")
}

func (h *Handlers) respondListing(c *fiber.Ctx, id, message string) error {
	l, err := h.Store.Listing(id)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, message, view(l), nil)
}
