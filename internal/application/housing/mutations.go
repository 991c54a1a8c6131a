package housing

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"hostel-backend/internal/domain"
)

// UpdateListing merges patch into the listing. A patch carrying SafetyFeatures recomputes the
// score from the merged set within the same swap; a patch carrying Floors must keep the
// structural invariants and resets TotalFloors to the floor count unless it sets TotalFloors too.
func (s *Store) UpdateListing(ctx context.Context, listingID string, patch domain.ListingPatch) error {
	return s.mutate(ctx, "update_listing", func(cur *domain.Snapshot) (*domain.Snapshot, error) {
		li, ok := cur.ListingIndex(listingID)
		if !ok {
			return s.missing(fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID))
		}
		if patch.SafetyFeatures != nil {
			for _, f := range *patch.SafetyFeatures {
				if !f.Known() {
					return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFeature, f)
				}
			}
		}
		next := patch.Apply(cur.Listings[li])
		if patch.Floors != nil && patch.TotalFloors == nil {
			next.TotalFloors = len(next.Floors)
		}
		if patch.Floors != nil {
			if err := next.Validate(); err != nil {
				return nil, err
			}
		}
		return withListing(cur, li, next), nil
	})
}

// ToggleSafetyFeature adds the feature when absent and removes it when present.
func (s *Store) ToggleSafetyFeature(ctx context.Context, listingID string, feature domain.SafetyFeature) error {
	if !feature.Known() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownFeature, feature)
	}
	return s.mutate(ctx, "toggle_safety_feature", func(cur *domain.Snapshot) (*domain.Snapshot, error) {
		li, ok := cur.ListingIndex(listingID)
		if !ok {
			return s.missing(fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID))
		}
		l := cur.Listings[li]
		var features []domain.SafetyFeature
		if l.HasSafetyFeature(feature) {
			features = slices.DeleteFunc(slices.Clone(l.SafetyFeatures), func(f domain.SafetyFeature) bool { return f == feature })
		} else {
			features = append(slices.Clone(l.SafetyFeatures), feature)
		}
		return withListing(cur, li, domain.ListingPatch{SafetyFeatures: &features}.Apply(l)), nil
	})
}

// MarkRentPaid flags the listing's rent as paid.
func (s *Store) MarkRentPaid(ctx context.Context, listingID string) error {
	paid := domain.RentPaid
	return s.UpdateListing(ctx, listingID, domain.ListingPatch{RentStatus: &paid})
}

// locateBed resolves listing, room (by room number across floors) and bed.
func locateBed(cur *domain.Snapshot, listingID, roomNumber, bedID string) (li, fi, ri, bi int, err error) {
	li, ok := cur.ListingIndex(listingID)
	if !ok {
		return 0, 0, 0, 0, fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID)
	}
	fi, ri, ok = cur.Listings[li].FindRoom(roomNumber)
	if !ok {
		return 0, 0, 0, 0, fmt.Errorf("%w: %s", domain.ErrRoomNotFound, roomNumber)
	}
	bi, ok = cur.Listings[li].Floors[fi].Rooms[ri].BedIndex(bedID)
	if !ok {
		return 0, 0, 0, 0, fmt.Errorf("%w: %s", domain.ErrBedNotFound, bedID)
	}
	return li, fi, ri, bi, nil
}

// UpdateBedStatus sets a bed's status. Emptying always clears the occupant; occupying requires
// a student name.
func (s *Store) UpdateBedStatus(ctx context.Context, listingID, roomNumber, bedID string, status domain.BedStatus, studentName string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: bed status %q", domain.ErrInvalidInput, status)
	}
	studentName = strings.TrimSpace(studentName)
	if status == domain.BedOccupied && studentName == "" {
		return fmt.Errorf("%w: student name is required to occupy a bed", domain.ErrInvalidInput)
	}
	return s.mutate(ctx, "update_bed_status", func(cur *domain.Snapshot) (*domain.Snapshot, error) {
		li, fi, ri, bi, err := locateBed(cur, listingID, roomNumber, bedID)
		if err != nil {
			return s.missing(err)
		}
		l := cur.Listings[li]
		if status == domain.BedOccupied && !s.policy.AllowOccupantOverwrite && l.Floors[fi].Rooms[ri].Beds[bi].Occupied() {
			return nil, fmt.Errorf("%w: %s", domain.ErrBedOccupied, bedID)
		}
		return withListing(cur, li, withBed(l, fi, ri, bi, func(b domain.Bed) domain.Bed {
			b.Status = status
			if status == domain.BedEmpty {
				b.StudentName = ""
			} else {
				b.StudentName = studentName
			}
			return b
		})), nil
	})
}

// MarkStudentRentPaid stamps the bed's last payment with the store clock. Occupancy is not checked.
func (s *Store) MarkStudentRentPaid(ctx context.Context, listingID, roomNumber, bedID string) error {
	return s.mutate(ctx, "mark_student_rent_paid", func(cur *domain.Snapshot) (*domain.Snapshot, error) {
		li, fi, ri, bi, err := locateBed(cur, listingID, roomNumber, bedID)
		if err != nil {
			return s.missing(err)
		}
		paidAt := s.now().UTC()
		return withListing(cur, li, withBed(cur.Listings[li], fi, ri, bi, func(b domain.Bed) domain.Bed {
			b.LastPaymentDate = &paidAt
			return b
		})), nil
	})
}

// BookRoom occupies the first empty bed of the room in bed order and returns it. A room with no
// empty bed fails with domain.ErrRoomFull and is left untouched.
func (s *Store) BookRoom(ctx context.Context, listingID, roomNumber, studentName string) (domain.Bed, error) {
	studentName = strings.TrimSpace(studentName)
	if studentName == "" {
		return domain.Bed{}, fmt.Errorf("%w: student name is required to book", domain.ErrInvalidInput)
	}
	var booked domain.Bed
	err := s.mutate(ctx, "book_room", func(cur *domain.Snapshot) (*domain.Snapshot, error) {
		li, ok := cur.ListingIndex(listingID)
		if !ok {
			return s.missing(fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID))
		}
		l := cur.Listings[li]
		fi, ri, ok := l.FindRoom(roomNumber)
		if !ok {
			return s.missing(fmt.Errorf("%w: %s", domain.ErrRoomNotFound, roomNumber))
		}
		bi, ok := l.Floors[fi].Rooms[ri].FirstEmptyBed()
		if !ok {
			return nil, fmt.Errorf("%w: room %s", domain.ErrRoomFull, roomNumber)
		}
		next := withBed(l, fi, ri, bi, func(b domain.Bed) domain.Bed {
			b.Status = domain.BedOccupied
			b.StudentName = studentName
			booked = b
			return b
		})
		return withListing(cur, li, next), nil
	})
	return booked, err
}

// VerifyApplication moves an applied application to verified.
func (s *Store) VerifyApplication(ctx context.Context, appID string) error {
	return s.transitionApplication(ctx, "verify_application", appID, domain.StatusVerified)
}

// ApproveApplication moves a verified application to approved.
func (s *Store) ApproveApplication(ctx context.Context, appID string) error {
	return s.transitionApplication(ctx, "approve_application", appID, domain.StatusApproved)
}

// RejectApplication moves a verified application to rejected.
func (s *Store) RejectApplication(ctx context.Context, appID string) error {
	return s.transitionApplication(ctx, "reject_application", appID, domain.StatusRejected)
}

func (s *Store) transitionApplication(ctx context.Context, op, appID string, next domain.ApplicationStatus) error {
	return s.mutate(ctx, op, func(cur *domain.Snapshot) (*domain.Snapshot, error) {
		ai, ok := cur.ApplicationIndex(appID)
		if !ok {
			return s.missing(fmt.Errorf("%w: %s", domain.ErrApplicationNotFound, appID))
		}
		app, err := cur.Applications[ai].Transition(next)
		if err != nil {
			return nil, err
		}
		return withApplication(cur, ai, app), nil
	})
}
