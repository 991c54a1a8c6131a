package housing

import (
	"context"
	"fmt"
	"slices"

	"hostel-backend/internal/domain"
)

const (
	newRoomSize = "150 sq ft"
	newRoomBeds = 2
)

// AddFloor appends an empty floor numbered one above the highest existing floor.
func (s *Store) AddFloor(ctx context.Context, listingID string) (domain.Floor, error) {
	var added domain.Floor
	err := s.mutate(ctx, "add_floor", func(cur *domain.Snapshot) (*domain.Snapshot, error) {
		li, ok := cur.ListingIndex(listingID)
		if !ok {
			return s.missing(fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID))
		}
		l := cur.Listings[li]
		number := 1
		for _, f := range l.Floors {
			if f.FloorNumber >= number {
				number = f.FloorNumber + 1
			}
		}
		added = domain.Floor{FloorNumber: number, Rooms: []domain.Room{}}
		l.Floors = append(slices.Clip(l.Floors), added)
		l.TotalFloors = len(l.Floors)
		return withListing(cur, li, l), nil
	})
	return added, err
}

// RemoveFloor drops a floor with all its rooms and beds.
func (s *Store) RemoveFloor(ctx context.Context, listingID string, floorNumber int) error {
	return s.mutate(ctx, "remove_floor", func(cur *domain.Snapshot) (*domain.Snapshot, error) {
		li, ok := cur.ListingIndex(listingID)
		if !ok {
			return s.missing(fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID))
		}
		l := cur.Listings[li]
		fi, ok := l.FloorIndex(floorNumber)
		if !ok {
			return s.missing(fmt.Errorf("%w: %d", domain.ErrFloorNotFound, floorNumber))
		}
		l.Floors = slices.Delete(slices.Clone(l.Floors), fi, fi+1)
		l.TotalFloors = len(l.Floors)
		return withListing(cur, li, l), nil
	})
}

// AddRoom appends a double room with two empty beds to the floor. The room number is the floor
// number, a zero, then the room's position on the floor.
func (s *Store) AddRoom(ctx context.Context, listingID string, floorNumber int) (domain.Room, error) {
	var added domain.Room
	err := s.mutate(ctx, "add_room", func(cur *domain.Snapshot) (*domain.Snapshot, error) {
		li, ok := cur.ListingIndex(listingID)
		if !ok {
			return s.missing(fmt.Errorf("%w: %s", domain.ErrListingNotFound, listingID))
		}
		l := cur.Listings[li]
		fi, ok := l.FloorIndex(floorNumber)
		if !ok {
			return s.missing(fmt.Errorf("%w: %d", domain.ErrFloorNotFound, floorNumber))
		}
		roomNumber := fmt.Sprintf("%d0%d", floorNumber, len(l.Floors[fi].Rooms)+1)
		if _, _, taken := l.FindRoom(roomNumber); taken {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateRoom, roomNumber)
		}
		added = domain.Room{
			ID:         fmt.Sprintf("%s-f%d-r%s", l.ID, floorNumber, roomNumber),
			RoomNumber: roomNumber,
			Type:       domain.RoomDouble,
			Price:      l.Price,
			Features:   []string{},
			Size:       newRoomSize,
			Beds:       make([]domain.Bed, 0, newRoomBeds),
		}
		for i := 1; i <= newRoomBeds; i++ {
			added.Beds = append(added.Beds, domain.Bed{
				ID:     fmt.Sprintf("b-%s-%d", roomNumber, i),
				RoomID: roomNumber,
				Status: domain.BedEmpty,
			})
		}
		floors := slices.Clone(l.Floors)
		floor := floors[fi]
		floor.Rooms = append(slices.Clip(floor.Rooms), added)
		floors[fi] = floor
		l.Floors = floors
		return withListing(cur, li, l), nil
	})
	return added, err
}
