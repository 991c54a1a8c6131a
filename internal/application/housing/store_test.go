package housing_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"hostel-backend/internal/application/housing"
	"hostel-backend/internal/domain"
	"hostel-backend/internal/fixtures"
	"hostel-backend/internal/infrastructure/slot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func newTestStore(t *testing.T, opts housing.Options) *housing.Store {
	t.Helper()
	seed, err := fixtures.Default(testNow)
	require.NoError(t, err)
	if opts.Policy == (housing.Policy{}) {
		opts.Policy = housing.DefaultPolicy()
	}
	if opts.Clock == nil {
		opts.Clock = testClock
	}
	s, err := housing.NewStore(context.Background(), seed, opts)
	require.NoError(t, err)
	return s
}

func bed(t *testing.T, s *housing.Store, listingID, roomNumber, bedID string) domain.Bed {
	t.Helper()
	l, err := s.Listing(listingID)
	require.NoError(t, err)
	fi, ri, ok := l.FindRoom(roomNumber)
	require.True(t, ok)
	bi, ok := l.Floors[fi].Rooms[ri].BedIndex(bedID)
	require.True(t, ok)
	return l.Floors[fi].Rooms[ri].Beds[bi]
}

func room(t *testing.T, s *housing.Store, listingID, roomNumber string) domain.Room {
	t.Helper()
	l, err := s.Listing(listingID)
	require.NoError(t, err)
	fi, ri, ok := l.FindRoom(roomNumber)
	require.True(t, ok)
	return l.Floors[fi].Rooms[ri]
}

type failingSlot struct{}

func (failingSlot) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (failingSlot) SetMany(context.Context, map[string][]byte) error {
	return errors.New("quota exceeded")
}

func TestNewStore_SeedsFromFixtureWhenSlotEmpty(t *testing.T) {
	s := newTestStore(t, housing.Options{Slot: slot.NewMemorySlot()})
	snap := s.Snapshot()
	require.Len(t, snap.Listings, 3)
	require.Len(t, snap.Applications, 2)
	assert.Equal(t, 90, snap.Listings[0].SafetyScore)
	assert.Equal(t, 30, snap.Listings[1].SafetyScore)
	assert.Equal(t, testNow.Add(-24*time.Hour), snap.Applications[1].CreatedAt)
}

func TestNewStore_LoadsPersistedSnapshot(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemorySlot()
	first := newTestStore(t, housing.Options{Slot: mem})
	require.NoError(t, first.UpdateBedStatus(ctx, "h1", "101", "b-101-1", domain.BedOccupied, "Alice"))

	second := newTestStore(t, housing.Options{Slot: mem})
	assert.Equal(t, "Alice", bed(t, second, "h1", "101", "b-101-1").StudentName)
	assert.Equal(t, first.Snapshot(), second.Snapshot())
}

func TestNewStore_RederivesScoresFromPersistedFeatures(t *testing.T) {
	ctx := context.Background()
	seed, err := fixtures.Default(testNow)
	require.NoError(t, err)
	listings := seed.Snapshot.Clone().Listings
	listings[0].SafetyScore = 5
	listings[1].SafetyScore = 100
	raw, err := json.Marshal(listings)
	require.NoError(t, err)

	mem := slot.NewMemorySlot()
	require.NoError(t, mem.SetMany(ctx, map[string][]byte{housing.KeyListings: raw}))

	s := newTestStore(t, housing.Options{Slot: mem})
	l, err := s.Listing("h1")
	require.NoError(t, err)
	assert.Equal(t, 90, l.SafetyScore)
	l, err = s.Listing("h2")
	require.NoError(t, err)
	assert.Equal(t, 30, l.SafetyScore)
}

func TestUpdateBedStatus_RoundTripClearsOccupant(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, housing.Options{})

	require.NoError(t, s.UpdateBedStatus(ctx, "h1", "101", "b-101-2", domain.BedOccupied, "Alice"))
	b := bed(t, s, "h1", "101", "b-101-2")
	assert.Equal(t, domain.BedOccupied, b.Status)
	assert.Equal(t, "Alice", b.StudentName)

	require.NoError(t, s.UpdateBedStatus(ctx, "h1", "101", "b-101-2", domain.BedEmpty, "Alice"))
	b = bed(t, s, "h1", "101", "b-101-2")
	assert.Equal(t, domain.BedEmpty, b.Status)
	assert.Empty(t, b.StudentName)
}

func TestUpdateBedStatus_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, housing.Options{})

	err := s.UpdateBedStatus(ctx, "h1", "101", "b-101-1", domain.BedStatus("broken"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	err = s.UpdateBedStatus(ctx, "h1", "101", "b-101-1", domain.BedOccupied, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateBedStatus_OccupantOverwritePolicy(t *testing.T) {
	ctx := context.Background()

	lenient := newTestStore(t, housing.Options{})
	require.NoError(t, lenient.UpdateBedStatus(ctx, "h1", "102", "b-102-1", domain.BedOccupied, "Alice"))
	require.NoError(t, lenient.UpdateBedStatus(ctx, "h1", "102", "b-102-1", domain.BedOccupied, "Bob"))
	assert.Equal(t, "Bob", bed(t, lenient, "h1", "102", "b-102-1").StudentName)

	strict := newTestStore(t, housing.Options{Policy: housing.Policy{StrictNotFound: true}})
	require.NoError(t, strict.UpdateBedStatus(ctx, "h1", "102", "b-102-1", domain.BedOccupied, "Alice"))
	err := strict.UpdateBedStatus(ctx, "h1", "102", "b-102-1", domain.BedOccupied, "Bob")
	assert.ErrorIs(t, err, domain.ErrBedOccupied)
	assert.Equal(t, "Alice", bed(t, strict, "h1", "102", "b-102-1").StudentName)
}

func TestNotFoundPolicy(t *testing.T) {
	ctx := context.Background()

	strict := newTestStore(t, housing.Options{})
	title := "Renamed"
	assert.ErrorIs(t, strict.UpdateListing(ctx, "missing", domain.ListingPatch{Title: &title}), domain.ErrListingNotFound)
	assert.ErrorIs(t, strict.UpdateBedStatus(ctx, "h1", "999", "b-101-1", domain.BedEmpty, ""), domain.ErrRoomNotFound)
	assert.ErrorIs(t, strict.UpdateBedStatus(ctx, "h1", "101", "b-x", domain.BedEmpty, ""), domain.ErrBedNotFound)
	assert.ErrorIs(t, strict.MarkStudentRentPaid(ctx, "missing", "101", "b-101-1"), domain.ErrListingNotFound)
	assert.ErrorIs(t, strict.VerifyApplication(ctx, "missing"), domain.ErrApplicationNotFound)

	lenient := newTestStore(t, housing.Options{Policy: housing.Policy{AllowOccupantOverwrite: true}})
	before := lenient.Snapshot()
	assert.NoError(t, lenient.UpdateListing(ctx, "missing", domain.ListingPatch{Title: &title}))
	assert.NoError(t, lenient.UpdateBedStatus(ctx, "h1", "999", "b-101-1", domain.BedEmpty, ""))
	assert.NoError(t, lenient.ApproveApplication(ctx, "missing"))
	assert.Equal(t, before, lenient.Snapshot())
}

func TestMarkStudentRentPaid_StampsClockEvenOnEmptyBed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, housing.Options{})

	require.NoError(t, s.MarkStudentRentPaid(ctx, "h1", "101", "b-101-1"))
	b := bed(t, s, "h1", "101", "b-101-1")
	require.NotNil(t, b.LastPaymentDate)
	assert.True(t, b.LastPaymentDate.Equal(testNow))
	assert.Equal(t, domain.BedEmpty, b.Status)
}

func TestBookRoom_TakesFirstEmptyBed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, housing.Options{})

	floors := []domain.Floor{{
		FloorNumber: 2,
		Rooms: []domain.Room{{
			ID: "201", RoomNumber: "201", Type: domain.RoomTriple, Price: 8000,
			Beds: []domain.Bed{
				{ID: "b-201-1", RoomID: "201", Status: domain.BedEmpty},
				{ID: "b-201-2", RoomID: "201", Status: domain.BedOccupied, StudentName: "Carol"},
				{ID: "b-201-3", RoomID: "201", Status: domain.BedEmpty},
			},
		}},
	}}
	require.NoError(t, s.UpdateListing(ctx, "h2", domain.ListingPatch{Floors: &floors}))

	booked, err := s.BookRoom(ctx, "h2", "201", "Dave")
	require.NoError(t, err)
	assert.Equal(t, "b-201-1", booked.ID)
	assert.Equal(t, "Dave", booked.StudentName)

	booked, err = s.BookRoom(ctx, "h2", "201", "Erin")
	require.NoError(t, err)
	assert.Equal(t, "b-201-3", booked.ID)
	assert.Equal(t, "Carol", bed(t, s, "h2", "201", "b-201-2").StudentName)
}

func TestBookRoom_FullRoomLeavesBedsUntouched(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, housing.Options{Slot: slot.NewMemorySlot()})

	_, err := s.BookRoom(ctx, "h1", "102", "Alice")
	require.NoError(t, err)
	before, err := json.Marshal(room(t, s, "h1", "102").Beds)
	require.NoError(t, err)

	_, err = s.BookRoom(ctx, "h1", "102", "Bob")
	assert.ErrorIs(t, err, domain.ErrRoomFull)
	after, err := json.Marshal(room(t, s, "h1", "102").Beds)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestUpdateListing_RecomputesSafetyScore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, housing.Options{})

	features := []domain.SafetyFeature{domain.FeatureCCTV, domain.FeatureBiometric}
	require.NoError(t, s.UpdateListing(ctx, "h1", domain.ListingPatch{SafetyFeatures: &features}))
	l, err := s.Listing("h1")
	require.NoError(t, err)
	assert.Equal(t, 50, l.SafetyScore)
	assert.Equal(t, domain.TierModerate, l.Safety().Tier)

	bad := []domain.SafetyFeature{"Moat"}
	assert.ErrorIs(t, s.UpdateListing(ctx, "h1", domain.ListingPatch{SafetyFeatures: &bad}), domain.ErrUnknownFeature)
}

func TestUpdateListing_RejectsBrokenFloors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, housing.Options{})

	floors := []domain.Floor{
		{FloorNumber: 1, Rooms: []domain.Room{{ID: "1", RoomNumber: "101"}}},
		{FloorNumber: 2, Rooms: []domain.Room{{ID: "2", RoomNumber: "101"}}},
	}
	err := s.UpdateListing(ctx, "h2", domain.ListingPatch{Floors: &floors})
	assert.ErrorIs(t, err, domain.ErrInvalidStructure)
}

func TestUpdateListing_FloorsPatchSyncsTotalFloors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, housing.Options{})

	floors := []domain.Floor{{FloorNumber: 1, Rooms: []domain.Room{}}}
	require.NoError(t, s.UpdateListing(ctx, "h2", domain.ListingPatch{Floors: &floors}))
	l, err := s.Listing("h2")
	require.NoError(t, err)
	assert.Equal(t, 1, l.TotalFloors)

	total := 5
	require.NoError(t, s.UpdateListing(ctx, "h2", domain.ListingPatch{Floors: &floors, TotalFloors: &total}))
	l, err = s.Listing("h2")
	require.NoError(t, err)
	assert.Equal(t, 5, l.TotalFloors)
}

func TestToggleSafetyFeature_TwiceRestoresScore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, housing.Options{})

	require.NoError(t, s.ToggleSafetyFeature(ctx, "h1", domain.FeatureFireExtinguisher))
	l, _ := s.Listing("h1")
	assert.Equal(t, 100, l.SafetyScore)

	require.NoError(t, s.ToggleSafetyFeature(ctx, "h1", domain.FeatureFireExtinguisher))
	l, _ = s.Listing("h1")
	assert.Equal(t, 90, l.SafetyScore)
	assert.NotContains(t, l.SafetyFeatures, domain.FeatureFireExtinguisher)

	assert.ErrorIs(t, s.ToggleSafetyFeature(ctx, "h1", "Moat"), domain.ErrUnknownFeature)
}

func TestMarkRentPaid(t *testing.T) {
	s := newTestStore(t, housing.Options{})
	require.NoError(t, s.MarkRentPaid(context.Background(), "h1"))
	l, _ := s.Listing("h1")
	assert.Equal(t, domain.RentPaid, l.RentStatus)
}

func TestApplicationTransitions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, housing.Options{})

	assert.ErrorIs(t, s.ApproveApplication(ctx, "a1"), domain.ErrIllegalTransition)
	require.NoError(t, s.VerifyApplication(ctx, "a1"))
	require.NoError(t, s.ApproveApplication(ctx, "a1"))
	assert.ErrorIs(t, s.RejectApplication(ctx, "a1"), domain.ErrIllegalTransition)

	require.NoError(t, s.RejectApplication(ctx, "a2"))
	assert.ErrorIs(t, s.VerifyApplication(ctx, "a2"), domain.ErrIllegalTransition)

	apps := s.Applications()
	assert.Equal(t, domain.StatusApproved, apps[0].Status)
	assert.Equal(t, domain.StatusRejected, apps[1].Status)
}

func TestPersistenceFailure_KeepsInMemoryState(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, housing.Options{Slot: failingSlot{}})

	var seen int
	s.Subscribe(func(domain.Snapshot) { seen++ })

	err := s.UpdateBedStatus(ctx, "h1", "101", "b-101-1", domain.BedOccupied, "Alice")
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, "Alice", bed(t, s, "h1", "101", "b-101-1").StudentName)
	assert.Equal(t, 1, seen)
}

func TestPersist_WritesAllKeys(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemorySlot()
	s := newTestStore(t, housing.Options{Slot: mem})

	require.NoError(t, s.UpdateBedStatus(ctx, "h1", "101", "b-101-2", domain.BedOccupied, "Alice"))

	raw, found, err := mem.Get(ctx, housing.KeyOccupancy)
	require.NoError(t, err)
	require.True(t, found)
	var grid map[string][]bool
	require.NoError(t, json.Unmarshal(raw, &grid))
	assert.Equal(t, []bool{false, true, false}, grid["h1"])
	assert.Empty(t, grid["h2"])

	_, found, err = mem.Get(ctx, housing.KeyApplications)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestObservers_NotifiedUntilUnsubscribed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, housing.Options{})

	var got []domain.Snapshot
	unsubscribe := s.Subscribe(func(snap domain.Snapshot) { got = append(got, snap) })

	require.NoError(t, s.MarkRentPaid(ctx, "h1"))
	require.Len(t, got, 1)
	assert.Equal(t, domain.RentPaid, got[0].Listings[0].RentStatus)

	_, err := s.BookRoom(ctx, "h1", "102", "Alice")
	assert.NoError(t, err)
	_, err = s.BookRoom(ctx, "h1", "102", "Bob")
	assert.ErrorIs(t, err, domain.ErrRoomFull)
	assert.Len(t, got, 2)

	unsubscribe()
	require.NoError(t, s.MarkStudentRentPaid(ctx, "h1", "102", "b-102-1"))
	assert.Len(t, got, 2)
}

func TestObservers_LastSnapshotMatchesStoreUnderConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	for iter := 0; iter < 200; iter++ {
		s := newTestStore(t, housing.Options{})

		var mu sync.Mutex
		var lastTitle string
		s.Subscribe(func(snap domain.Snapshot) {
			mu.Lock()
			lastTitle = snap.Listings[1].Title
			mu.Unlock()
		})

		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				title := fmt.Sprintf("t%d", w)
				assert.NoError(t, s.UpdateListing(ctx, "h2", domain.ListingPatch{Title: &title}))
			}(w)
		}
		wg.Wait()

		l, err := s.Listing("h2")
		require.NoError(t, err)
		mu.Lock()
		require.Equal(t, l.Title, lastTitle, "iteration %d", iter)
		mu.Unlock()
	}
}

func TestTwoStores_ConvergeOnSharedSlot(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemorySlot()
	hub := slot.NewMemoryHub()

	a := newTestStore(t, housing.Options{Slot: mem, Broadcaster: hub})
	b := newTestStore(t, housing.Options{Slot: mem, Broadcaster: hub})
	stopA, err := a.Listen(ctx)
	require.NoError(t, err)
	defer stopA()
	stopB, err := b.Listen(ctx)
	require.NoError(t, err)
	defer stopB()

	var reloads int
	b.Subscribe(func(domain.Snapshot) { reloads++ })

	require.NoError(t, a.UpdateBedStatus(ctx, "h1", "101", "b-101-1", domain.BedOccupied, "Alice"))
	require.NoError(t, a.VerifyApplication(ctx, "a1"))

	assert.Equal(t, a.Snapshot(), b.Snapshot())
	assert.Equal(t, 2, reloads)

	// Last writer wins: b's edit replaces a's whole snapshot.
	require.NoError(t, b.MarkRentPaid(ctx, "h3"))
	assert.Equal(t, b.Snapshot(), a.Snapshot())
	assert.Equal(t, "Alice", bed(t, a, "h1", "101", "b-101-1").StudentName)
}

func TestReload_IgnoresOwnWrite(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, housing.Options{Slot: slot.NewMemorySlot()})

	require.NoError(t, s.MarkRentPaid(ctx, "h1"))
	changed, err := s.Reload(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
}
