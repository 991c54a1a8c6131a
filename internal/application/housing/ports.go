package housing

import (
	"context"
	"time"

	"hostel-backend/internal/domain"
)

// Slot keys. The occupancy grid is written for legacy readers only; nothing here reads it back.
const (
	KeyListings     = "housing-listings"
	KeyApplications = "housing-applications"
	KeyOccupancy    = "housing-occupancy"
)

// Slot is the durable key-value area the snapshot is written to.
type Slot interface {
	// Get returns the stored value and false when the key has never been written.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// SetMany writes all entries in one step.
	SetMany(ctx context.Context, entries map[string][]byte) error
}

// Broadcaster carries the payload-less change signal between stores sharing a slot.
type Broadcaster interface {
	Publish(ctx context.Context) error
	// Subscribe calls onSignal for every signal until the returned stop function is called.
	Subscribe(ctx context.Context, onSignal func()) (stop func() error, err error)
}

// Recorder receives store activity for metrics.
type Recorder interface {
	ObserveMutation(op string, err error)
	ObservePersistFailure()
	ObserveSnapshot(snap domain.Snapshot)
}

// Policy holds the explicit choices for behaviour the product has left open.
type Policy struct {
	// StrictNotFound reports unknown listing/room/bed/application ids as errors.
	// When false they are silent no-ops.
	StrictNotFound bool
	// AllowOccupantOverwrite lets occupying an occupied bed replace its occupant.
	// When false the call fails with domain.ErrBedOccupied.
	AllowOccupantOverwrite bool
}

func DefaultPolicy() Policy {
	return Policy{StrictNotFound: true, AllowOccupantOverwrite: true}
}

type Options struct {
	Slot        Slot
	Broadcaster Broadcaster
	Recorder    Recorder
	Policy      Policy
	Clock       func() time.Time
}

type noopRecorder struct{}

func (noopRecorder) ObserveMutation(string, error)   {}
func (noopRecorder) ObservePersistFailure()          {}
func (noopRecorder) ObserveSnapshot(domain.Snapshot) {}
