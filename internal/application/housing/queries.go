package housing

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"hostel-backend/internal/domain"
)

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() domain.Snapshot {
	return s.current.Load().Clone()
}

func (s *Store) Listings() []domain.Listing {
	return s.Snapshot().Listings
}

func (s *Store) Listing(id string) (domain.Listing, error) {
	cur := s.current.Load()
	i, ok := cur.ListingIndex(id)
	if !ok {
		return domain.Listing{}, fmt.Errorf("%w: %s", domain.ErrListingNotFound, id)
	}
	return cur.Listings[i].Clone(), nil
}

// Search returns the listings matching f in snapshot order.
func (s *Store) Search(f domain.ListingFilter) []domain.Listing {
	cur := s.current.Load()
	out := make([]domain.Listing, 0, len(cur.Listings))
	for _, l := range cur.Listings {
		if f.Matches(l) {
			out = append(out, l.Clone())
		}
	}
	return out
}

func (s *Store) Applications() []domain.Application {
	return slices.Clone(s.current.Load().Applications)
}

func (s *Store) Students() []domain.StudentProfile {
	return slices.Clone(s.students)
}

// CurrentStudent returns the profile with the given id, or the first profile when id is empty.
func (s *Store) CurrentStudent(id string) (domain.StudentProfile, error) {
	if id == "" {
		if len(s.students) == 0 {
			return domain.StudentProfile{}, domain.ErrStudentNotFound
		}
		return s.students[0], nil
	}
	for _, p := range s.students {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.StudentProfile{}, fmt.Errorf("%w: %s", domain.ErrStudentNotFound, id)
}

// Matches rates every other student against studentID, best match first.
func (s *Store) Matches(studentID string) ([]domain.RoommateMatch, error) {
	me, err := s.CurrentStudent(studentID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RoommateMatch, 0, len(s.students))
	for _, p := range s.students {
		if p.ID == me.ID {
			continue
		}
		out = append(out, domain.RoommateMatch{Student: p, Score: domain.MatchScore(me, p)})
	}
	slices.SortStableFunc(out, func(a, b domain.RoommateMatch) int { return b.Score - a.Score })
	return out, nil
}

// FindBooking locates the first occupied bed held by studentName, matched case-insensitively.
func (s *Store) FindBooking(studentName string) (domain.Booking, bool) {
	name := strings.TrimSpace(studentName)
	if name == "" {
		return domain.Booking{}, false
	}
	for _, l := range s.current.Load().Listings {
		for _, f := range l.Floors {
			for _, r := range f.Rooms {
				for _, b := range r.Beds {
					if b.Occupied() && strings.EqualFold(b.StudentName, name) {
						return domain.Booking{Listing: l.Clone(), Room: r.Clone(), Bed: b}, true
					}
				}
			}
		}
	}
	return domain.Booking{}, false
}

// RentRoll reports the occupied beds of a listing and whether each paid in the month of now.
func (s *Store) RentRoll(listingID string, now time.Time) (domain.RentRoll, error) {
	l, err := s.Listing(listingID)
	if err != nil {
		return domain.RentRoll{}, err
	}
	return domain.BuildRentRoll(l, now), nil
}

func (s *Store) Occupancy(listingID string) (domain.OccupancyStats, error) {
	l, err := s.Listing(listingID)
	if err != nil {
		return domain.OccupancyStats{}, err
	}
	return domain.BuildOccupancy(l), nil
}
