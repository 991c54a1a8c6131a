package listings

import (
	"encoding/json"
	"time"

	"hostel-backend/internal/domain"
	"hostel-backend/internal/pkg/response"
	"hostel-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// POST /api/v1/listings/:listing_id/floors
func (h *Handlers) AddFloor(c *fiber.Ctx) error {
	floor, err := h.Store.AddFloor(c.UserContext(), c.Params("listing_id"))
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.SuccessCreated(c, "Floor added successfully", floor, nil)
}

// DELETE /api/v1/listings/:listing_id/floors/:floor_number
func (h *Handlers) RemoveFloor(c *fiber.Ctx) error {
	n, err := c.ParamsInt("floor_number")
	if err != nil {
		return response.Error(c, "Invalid floor_number", fiber.StatusBadRequest, nil)
	}
	if err := h.Store.RemoveFloor(c.UserContext(), c.Params("listing_id"), n); err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Floor removed successfully", fiber.Map{"floorNumber": n}, nil)
}

// POST /api/v1/listings/:listing_id/floors/:floor_number/rooms
func (h *Handlers) AddRoom(c *fiber.Ctx) error {
	n, err := c.ParamsInt("floor_number")
	if err != nil {
		return response.Error(c, "Invalid floor_number", fiber.StatusBadRequest, nil)
	}
	room, err := h.Store.AddRoom(c.UserContext(), c.Params("listing_id"), n)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.SuccessCreated(c, "Room added successfully", room, nil)
}

// POST /api/v1/listings/:listing_id/rooms/:room_number/book body { studentName }
func (h *Handlers) BookRoom(c *fiber.Ctx) error {
	var body struct {
		StudentName string `json:"studentName"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if !validation.IsValidStudentName(body.StudentName) {
		return response.Error(c, "Invalid studentName", fiber.StatusBadRequest, nil)
	}
	roomNumber := c.Params("room_number")
	if !validation.IsValidRoomNumber(roomNumber) {
		return response.Error(c, "Invalid room_number", fiber.StatusBadRequest, nil)
	}
	bed, err := h.Store.BookRoom(c.UserContext(), c.Params("listing_id"), roomNumber, body.StudentName)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.SuccessCreated(c, "Bed booked successfully", bed, nil)
}

// PUT /api/v1/listings/:listing_id/rooms/:room_number/beds/:bed_id/status body { status, studentName }
func (h *Handlers) UpdateBedStatus(c *fiber.Ctx) error {
	var body struct {
		Status      domain.BedStatus `json:"status"`
		StudentName string           `json:"studentName"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if body.Status == domain.BedOccupied && !validation.IsValidStudentName(body.StudentName) {
		return response.Error(c, "Invalid studentName", fiber.StatusBadRequest, nil)
	}
	err := h.Store.UpdateBedStatus(c.UserContext(), c.Params("listing_id"), c.Params("room_number"), c.Params("bed_id"), body.Status, body.StudentName)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Bed status updated successfully", fiber.Map{"bedId": c.Params("bed_id"), "status": body.Status}, nil)
}

// POST /api/v1/listings/:listing_id/rooms/:room_number/beds/:bed_id/rent-paid
func (h *Handlers) MarkStudentRentPaid(c *fiber.Ctx) error {
	err := h.Store.MarkStudentRentPaid(c.UserContext(), c.Params("listing_id"), c.Params("room_number"), c.Params("bed_id"))
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Rent payment recorded", fiber.Map{"bedId": c.Params("bed_id")}, nil)
}

// GET /api/v1/listings/:listing_id/rent-roll?month=2006-01
func (h *Handlers) RentRoll(c *fiber.Ctx) error {
	now := h.Store.Now()
	if m := c.Query("month"); m != "" {
		t, err := time.ParseInLocation("2006-01", m, now.Location())
		if err != nil {
			return response.Error(c, "Invalid month, expected YYYY-MM", fiber.StatusBadRequest, nil)
		}
		now = t
	}
	roll, err := h.Store.RentRoll(c.Params("listing_id"), now)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Rent roll fetched successfully", roll, fiber.Map{"occupied": len(roll.Entries)})
}

// GET /api/v1/listings/:listing_id/occupancy
func (h *Handlers) Occupancy(c *fiber.Ctx) error {
	stats, err := h.Store.Occupancy(c.Params("listing_id"))
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Occupancy fetched successfully", stats, nil)
}
