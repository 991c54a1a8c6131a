package housing

import (
	"slices"

	"hostel-backend/internal/domain"
)

// Copy-on-write helpers. Only the path from the snapshot root to the edited node is copied;
// every untouched listing, floor, room and bed slice is shared with the previous snapshot.

func withListing(cur *domain.Snapshot, i int, l domain.Listing) *domain.Snapshot {
	listings := slices.Clone(cur.Listings)
	listings[i] = l
	return &domain.Snapshot{Listings: listings, Applications: cur.Applications}
}

func withApplication(cur *domain.Snapshot, i int, a domain.Application) *domain.Snapshot {
	apps := slices.Clone(cur.Applications)
	apps[i] = a
	return &domain.Snapshot{Listings: cur.Listings, Applications: apps}
}

func withRoom(l domain.Listing, fi, ri int, fn func(domain.Room) domain.Room) domain.Listing {
	floors := slices.Clone(l.Floors)
	floor := floors[fi]
	rooms := slices.Clone(floor.Rooms)
	rooms[ri] = fn(rooms[ri])
	floor.Rooms = rooms
	floors[fi] = floor
	l.Floors = floors
	return l
}

func withBed(l domain.Listing, fi, ri, bi int, fn func(domain.Bed) domain.Bed) domain.Listing {
	return withRoom(l, fi, ri, func(r domain.Room) domain.Room {
		beds := slices.Clone(r.Beds)
		beds[bi] = fn(beds[bi])
		r.Beds = beds
		return r
	})
}
