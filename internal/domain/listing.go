package domain

import (
	"fmt"
	"slices"
	"time"
)

type ListingType string

const (
	ListingBoys  ListingType = "Boys"
	ListingGirls ListingType = "Girls"
	ListingCoed  ListingType = "Co-ed"
)

type RoomType string

const (
	RoomSingle RoomType = "Single"
	RoomDouble RoomType = "Double"
	RoomTriple RoomType = "Triple"
)

type BedStatus string

const (
	BedOccupied BedStatus = "occupied"
	BedEmpty    BedStatus = "empty"
)

// Valid reports whether s is one of the two bed states.
func (s BedStatus) Valid() bool {
	return s == BedOccupied || s == BedEmpty
}

type RentStatus string

const (
	RentPaid    RentStatus = "paid"
	RentUnpaid  RentStatus = "unpaid"
	RentPending RentStatus = "pending"
)

type Amenity string

type Location struct {
	Lat      float64 `json:"lat" yaml:"lat"`
	Lng      float64 `json:"lng" yaml:"lng"`
	Address  string  `json:"address" yaml:"address"`
	City     string  `json:"city" yaml:"city"`
	Distance string  `json:"distance" yaml:"distance"`
}

// Rules are the house rules shown to students.
type Rules struct {
	Curfew       string `json:"curfew" yaml:"curfew"`
	Visitors     string `json:"visitors" yaml:"visitors"`
	NonVeg       bool   `json:"nonVeg" yaml:"non_veg"`
	Smoking      bool   `json:"smoking" yaml:"smoking"`
	Drinking     bool   `json:"drinking" yaml:"drinking"`
	NoticePeriod string `json:"noticePeriod" yaml:"notice_period"`
}

// Bed is the unit of occupancy. StudentName is set iff Status is occupied.
// LastPaymentDate is independent of occupancy.
type Bed struct {
	ID              string     `json:"id" yaml:"id"`
	RoomID          string     `json:"roomId" yaml:"room_id"`
	Status          BedStatus  `json:"status" yaml:"status"`
	StudentName     string     `json:"studentName,omitempty" yaml:"student_name,omitempty"`
	LastPaymentDate *time.Time `json:"lastPaymentDate,omitempty" yaml:"last_payment_date,omitempty"`
}

func (b Bed) Occupied() bool {
	return b.Status == BedOccupied
}

type Room struct {
	ID         string   `json:"id" yaml:"id"`
	RoomNumber string   `json:"roomNumber" yaml:"room_number"`
	Type       RoomType `json:"type" yaml:"type"`
	Price      float64  `json:"price" yaml:"price"`
	Features   []string `json:"features" yaml:"features"`
	Size       string   `json:"size" yaml:"size"`
	Beds       []Bed    `json:"beds" yaml:"beds"`
}

// FirstEmptyBed returns the index of the first empty bed in bed order.
func (r Room) FirstEmptyBed() (int, bool) {
	for i, b := range r.Beds {
		if b.Status == BedEmpty {
			return i, true
		}
	}
	return -1, false
}

// BedIndex returns the position of the bed with the given id.
func (r Room) BedIndex(bedID string) (int, bool) {
	for i, b := range r.Beds {
		if b.ID == bedID {
			return i, true
		}
	}
	return -1, false
}

func (r Room) Clone() Room {
	out := r
	out.Features = slices.Clone(r.Features)
	out.Beds = make([]Bed, len(r.Beds))
	for i, b := range r.Beds {
		out.Beds[i] = b
		if b.LastPaymentDate != nil {
			t := *b.LastPaymentDate
			out.Beds[i].LastPaymentDate = &t
		}
	}
	return out
}

type Floor struct {
	FloorNumber int    `json:"floorNumber" yaml:"floor_number"`
	Rooms       []Room `json:"rooms" yaml:"rooms"`
}

func (f Floor) Clone() Floor {
	out := f
	out.Rooms = make([]Room, len(f.Rooms))
	for i, r := range f.Rooms {
		out.Rooms[i] = r.Clone()
	}
	return out
}

// Listing is a hostel offered by a warden. SafetyScore is derived from SafetyFeatures and is
// only ever written through Score.
type Listing struct {
	ID             string          `json:"id" yaml:"id"`
	OwnerID        string          `json:"ownerId" yaml:"owner_id"`
	Title          string          `json:"title" yaml:"title"`
	Description    string          `json:"description" yaml:"description"`
	Images         []string        `json:"images" yaml:"images"`
	Price          float64         `json:"price" yaml:"price"`
	Deposit        float64         `json:"deposit" yaml:"deposit"`
	Location       Location        `json:"location" yaml:"location"`
	Type           ListingType     `json:"type" yaml:"type"`
	TotalFloors    int             `json:"totalFloors" yaml:"total_floors"`
	Floors         []Floor         `json:"floors" yaml:"floors"`
	Amenities      []Amenity       `json:"amenities" yaml:"amenities"`
	SafetyFeatures []SafetyFeature `json:"safetyFeatures" yaml:"safety_features"`
	Rules          Rules           `json:"rules" yaml:"rules"`
	SafetyScore    int             `json:"safetyScore" yaml:"-"`
	RentStatus     RentStatus      `json:"rentStatus" yaml:"rent_status"`
}

func (l Listing) Clone() Listing {
	out := l
	out.Images = slices.Clone(l.Images)
	out.Amenities = slices.Clone(l.Amenities)
	out.SafetyFeatures = slices.Clone(l.SafetyFeatures)
	out.Floors = make([]Floor, len(l.Floors))
	for i, f := range l.Floors {
		out.Floors[i] = f.Clone()
	}
	return out
}

// Safety returns the qualitative reading of the listing's score.
func (l Listing) Safety() SafetyLevel {
	return Classify(l.SafetyScore)
}

// HasSafetyFeature reports whether f is declared on the listing.
func (l Listing) HasSafetyFeature(f SafetyFeature) bool {
	return slices.Contains(l.SafetyFeatures, f)
}

// FloorIndex returns the position of the floor with the given number.
func (l Listing) FloorIndex(floorNumber int) (int, bool) {
	for i, f := range l.Floors {
		if f.FloorNumber == floorNumber {
			return i, true
		}
	}
	return -1, false
}

// FindRoom locates a room by its display number across all floors.
func (l Listing) FindRoom(roomNumber string) (floorIdx, roomIdx int, ok bool) {
	for fi, f := range l.Floors {
		for ri, r := range f.Rooms {
			if r.RoomNumber == roomNumber {
				return fi, ri, true
			}
		}
	}
	return -1, -1, false
}

// Validate checks the structural invariants of the floor tree.
func (l Listing) Validate() error {
	floors := make(map[int]struct{}, len(l.Floors))
	rooms := make(map[string]struct{})
	for _, f := range l.Floors {
		if _, dup := floors[f.FloorNumber]; dup {
			return fmt.Errorf("%w: duplicate floor %d", ErrInvalidStructure, f.FloorNumber)
		}
		floors[f.FloorNumber] = struct{}{}
		for _, r := range f.Rooms {
			if r.RoomNumber == "" {
				return fmt.Errorf("%w: room without number on floor %d", ErrInvalidStructure, f.FloorNumber)
			}
			if _, dup := rooms[r.RoomNumber]; dup {
				return fmt.Errorf("%w: duplicate room %s", ErrInvalidStructure, r.RoomNumber)
			}
			rooms[r.RoomNumber] = struct{}{}
			beds := make(map[string]struct{}, len(r.Beds))
			for _, b := range r.Beds {
				if _, dup := beds[b.ID]; dup {
					return fmt.Errorf("%w: duplicate bed %s in room %s", ErrInvalidStructure, b.ID, r.RoomNumber)
				}
				beds[b.ID] = struct{}{}
				if !b.Status.Valid() {
					return fmt.Errorf("%w: bed %s has status %q", ErrInvalidStructure, b.ID, b.Status)
				}
				if b.Occupied() != (b.StudentName != "") {
					return fmt.Errorf("%w: bed %s occupant does not match status", ErrInvalidStructure, b.ID)
				}
			}
		}
	}
	return nil
}

// ListingPatch carries the fields of a partial listing update. A nil field is left untouched.
// There is no SafetyScore field: the score follows SafetyFeatures.
type ListingPatch struct {
	OwnerID        *string          `json:"ownerId"`
	Title          *string          `json:"title"`
	Description    *string          `json:"description"`
	Images         *[]string        `json:"images"`
	Price          *float64         `json:"price"`
	Deposit        *float64         `json:"deposit"`
	Location       *Location        `json:"location"`
	Type           *ListingType     `json:"type"`
	TotalFloors    *int             `json:"totalFloors"`
	Floors         *[]Floor         `json:"floors"`
	Amenities      *[]Amenity       `json:"amenities"`
	SafetyFeatures *[]SafetyFeature `json:"safetyFeatures"`
	Rules          *Rules           `json:"rules"`
	RentStatus     *RentStatus      `json:"rentStatus"`
}

// Empty reports whether the patch changes nothing.
func (p ListingPatch) Empty() bool {
	return p == ListingPatch{}
}

// Apply merges the patch into l and returns the result. When SafetyFeatures is part of the patch
// the score is recomputed from the merged set.
func (p ListingPatch) Apply(l Listing) Listing {
	if p.OwnerID != nil {
		l.OwnerID = *p.OwnerID
	}
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Images != nil {
		l.Images = slices.Clone(*p.Images)
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.Deposit != nil {
		l.Deposit = *p.Deposit
	}
	if p.Location != nil {
		l.Location = *p.Location
	}
	if p.Type != nil {
		l.Type = *p.Type
	}
	if p.TotalFloors != nil {
		l.TotalFloors = *p.TotalFloors
	}
	if p.Floors != nil {
		floors := make([]Floor, len(*p.Floors))
		for i, f := range *p.Floors {
			floors[i] = f.Clone()
		}
		l.Floors = floors
	}
	if p.Amenities != nil {
		l.Amenities = slices.Clone(*p.Amenities)
	}
	if p.Rules != nil {
		l.Rules = *p.Rules
	}
	if p.RentStatus != nil {
		l.RentStatus = *p.RentStatus
	}
	if p.SafetyFeatures != nil {
		l.SafetyFeatures = slices.Clone(*p.SafetyFeatures)
		l.SafetyScore = Score(l.SafetyFeatures)
	}
	return l
}
