package domain

import "errors"

var (
	ErrListingNotFound     = errors.New("Listing not found")
	ErrFloorNotFound       = errors.New("Floor not found")
	ErrRoomNotFound        = errors.New("Room not found")
	ErrBedNotFound         = errors.New("Bed not found")
	ErrApplicationNotFound = errors.New("Application not found")
	ErrStudentNotFound     = errors.New("Student not found")

	ErrRoomFull          = errors.New("Selected room has no empty beds")
	ErrBedOccupied       = errors.New("Bed is already occupied")
	ErrIllegalTransition = errors.New("Illegal application status transition")
	ErrDuplicateRoom     = errors.New("Room number already exists in listing")

	ErrInvalidInput     = errors.New("Invalid input")
	ErrInvalidStructure = errors.New("Invalid listing structure")
	ErrUnknownFeature   = errors.New("Unknown safety feature")

	// ErrPersistence marks a mutation that was applied in memory but could not be written to the slot.
	ErrPersistence = errors.New("Snapshot could not be persisted")
)
