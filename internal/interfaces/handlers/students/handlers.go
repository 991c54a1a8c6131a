package students

import (
	"hostel-backend/internal/application/housing"
	"hostel-backend/internal/domain"
	"hostel-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers serve student profiles. The ":student_id" segment accepts "me" for the current
// (first seeded) profile.
type Handlers struct {
	Store *housing.Store
}

const currentStudentAlias = "me"

func (h *Handlers) resolve(c *fiber.Ctx) (domain.StudentProfile, error) {
	id := c.Params("student_id")
	if id == currentStudentAlias {
		id = ""
	}
	return h.Store.CurrentStudent(id)
}

// GET /api/v1/students
func (h *Handlers) List(c *fiber.Ctx) error {
	out := h.Store.Students()
	return response.Success(c, "Students fetched successfully", out, fiber.Map{"count": len(out)})
}

// GET /api/v1/students/:student_id/matches
func (h *Handlers) Matches(c *fiber.Ctx) error {
	me, err := h.resolve(c)
	if err != nil {
		return response.DomainError(c, err)
	}
	matches, err := h.Store.Matches(me.ID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Roommate matches fetched successfully", matches, fiber.Map{"studentId": me.ID})
}

// GET /api/v1/students/:student_id/booking
func (h *Handlers) Booking(c *fiber.Ctx) error {
	me, err := h.resolve(c)
	if err != nil {
		return response.DomainError(c, err)
	}
	booking, ok := h.Store.FindBooking(me.Name)
	if !ok {
		return response.Error(c, "No booking found for student", fiber.StatusNotFound, nil)
	}
	return response.Success(c, "Booking fetched successfully", booking, nil)
}
