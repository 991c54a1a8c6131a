package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleListing() Listing {
	return Listing{
		ID:             "h1",
		Price:          12000,
		SafetyFeatures: []SafetyFeature{FeatureCCTV},
		SafetyScore:    30,
		Floors: []Floor{{
			FloorNumber: 1,
			Rooms: []Room{{
				ID: "101", RoomNumber: "101", Type: RoomDouble,
				Beds: []Bed{
					{ID: "b1", Status: BedOccupied, StudentName: "Alice"},
					{ID: "b2", Status: BedEmpty},
				},
			}},
		}},
	}
}

func TestListingValidate(t *testing.T) {
	assert.NoError(t, sampleListing().Validate())

	dupFloor := sampleListing()
	dupFloor.Floors = append(dupFloor.Floors, Floor{FloorNumber: 1})
	assert.ErrorIs(t, dupFloor.Validate(), ErrInvalidStructure)

	dupBed := sampleListing()
	dupBed.Floors[0].Rooms[0].Beds[1].ID = "b1"
	assert.ErrorIs(t, dupBed.Validate(), ErrInvalidStructure)

	ghost := sampleListing()
	ghost.Floors[0].Rooms[0].Beds[1].StudentName = "Ghost"
	assert.ErrorIs(t, ghost.Validate(), ErrInvalidStructure)

	badStatus := sampleListing()
	badStatus.Floors[0].Rooms[0].Beds[0].Status = "reserved"
	assert.ErrorIs(t, badStatus.Validate(), ErrInvalidStructure)
}

func TestListingPatchApply(t *testing.T) {
	l := sampleListing()
	title := "Renamed"
	features := []SafetyFeature{FeatureSecurityGuard, FeatureBiometric, FeatureFireExtinguisher}

	assert.True(t, ListingPatch{}.Empty())
	out := ListingPatch{Title: &title}.Apply(l)
	assert.Equal(t, "Renamed", out.Title)
	assert.Equal(t, 30, out.SafetyScore)

	out = ListingPatch{SafetyFeatures: &features}.Apply(l)
	assert.Equal(t, 70, out.SafetyScore)
	assert.Equal(t, TierModerate, out.Safety().Tier)

	features[0] = FeatureCCTV
	assert.Equal(t, FeatureSecurityGuard, out.SafetyFeatures[0])
	assert.Equal(t, []SafetyFeature{FeatureCCTV}, l.SafetyFeatures)
}

func TestRoomFirstEmptyBed(t *testing.T) {
	r := Room{Beds: []Bed{
		{ID: "b1", Status: BedEmpty},
		{ID: "b2", Status: BedOccupied, StudentName: "Alice"},
		{ID: "b3", Status: BedEmpty},
	}}
	i, ok := r.FirstEmptyBed()
	assert.True(t, ok)
	assert.Equal(t, 0, i)

	r.Beds[0].Status = BedOccupied
	i, _ = r.FirstEmptyBed()
	assert.Equal(t, 2, i)

	r.Beds[2].Status = BedOccupied
	_, ok = r.FirstEmptyBed()
	assert.False(t, ok)
}
