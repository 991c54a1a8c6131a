package applications

import (
	"context"
	"strings"

	"hostel-backend/internal/application/housing"
	"hostel-backend/internal/domain"
	"hostel-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Store *housing.Store
}

// GET /api/v1/applications?status=&listing_id=
func (h *Handlers) List(c *fiber.Ctx) error {
	status := domain.ApplicationStatus(strings.ToLower(c.Query("status")))
	listingID := c.Query("listing_id")
	all := h.Store.Applications()
	out := make([]domain.Application, 0, len(all))
	for _, a := range all {
		if status != "" && a.Status != status {
			continue
		}
		if listingID != "" && a.ListingID != listingID {
			continue
		}
		out = append(out, a)
	}
	return response.Success(c, "Applications fetched successfully", out, fiber.Map{"count": len(out)})
}

// PATCH /api/v1/applications/:app_id/verify
func (h *Handlers) Verify(c *fiber.Ctx) error {
	return h.transition(c, h.Store.VerifyApplication, "Application verified")
}

// PATCH /api/v1/applications/:app_id/approve
func (h *Handlers) Approve(c *fiber.Ctx) error {
	return h.transition(c, h.Store.ApproveApplication, "Application approved")
}

// PATCH /api/v1/applications/:app_id/reject
func (h *Handlers) Reject(c *fiber.Ctx) error {
	return h.transition(c, h.Store.RejectApplication, "Application rejected")
}

func (h *Handlers) transition(c *fiber.Ctx, apply func(ctx context.Context, appID string) error, message string) error {
	id := c.Params("app_id")
	if err := apply(c.UserContext(), id); err != nil {
		return response.DomainError(c, err)
	}
	for _, a := range h.Store.Applications() {
		if a.ID == id {
			return response.Success(c, message, a, nil)
		}
	}
	return response.DomainError(c, domain.ErrApplicationNotFound)
}
