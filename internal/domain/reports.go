package domain

import "time"

// RentRollEntry is one occupied bed on the warden's rent tracker.
type RentRollEntry struct {
	RoomNumber      string     `json:"roomNumber"`
	BedID           string     `json:"bedId"`
	StudentName     string     `json:"studentName"`
	Rent            float64    `json:"rent"`
	LastPaymentDate *time.Time `json:"lastPaymentDate,omitempty"`
	PaidThisMonth   bool       `json:"paidThisMonth"`
}

type RentRoll struct {
	ListingID string          `json:"listingId"`
	Month     string          `json:"month"`
	Paid      int             `json:"paid"`
	Entries   []RentRollEntry `json:"entries"`
}

// PaidInMonth reports whether paidAt falls in the same calendar month and year as now.
func PaidInMonth(paidAt *time.Time, now time.Time) bool {
	if paidAt == nil {
		return false
	}
	p := paidAt.In(now.Location())
	return p.Year() == now.Year() && p.Month() == now.Month()
}

// BuildRentRoll lists occupied beds in floor, room, bed order.
func BuildRentRoll(l Listing, now time.Time) RentRoll {
	roll := RentRoll{ListingID: l.ID, Month: now.Format("January 2006"), Entries: []RentRollEntry{}}
	for _, f := range l.Floors {
		for _, r := range f.Rooms {
			for _, b := range r.Beds {
				if !b.Occupied() {
					continue
				}
				paid := PaidInMonth(b.LastPaymentDate, now)
				if paid {
					roll.Paid++
				}
				roll.Entries = append(roll.Entries, RentRollEntry{
					RoomNumber:      r.RoomNumber,
					BedID:           b.ID,
					StudentName:     b.StudentName,
					Rent:            r.Price,
					LastPaymentDate: b.LastPaymentDate,
					PaidThisMonth:   paid,
				})
			}
		}
	}
	return roll
}

type OccupancyStats struct {
	ListingID        string  `json:"listingId"`
	TotalBeds        int     `json:"totalBeds"`
	OccupiedBeds     int     `json:"occupiedBeds"`
	EmptyBeds        int     `json:"emptyBeds"`
	OccupancyPercent int     `json:"occupancyPercent"`
	MonthlyRevenue   float64 `json:"monthlyRevenue"`
}

// BuildOccupancy counts beds and sums room rent over occupied beds.
func BuildOccupancy(l Listing) OccupancyStats {
	stats := OccupancyStats{ListingID: l.ID}
	for _, f := range l.Floors {
		for _, r := range f.Rooms {
			for _, b := range r.Beds {
				stats.TotalBeds++
				if b.Occupied() {
					stats.OccupiedBeds++
					stats.MonthlyRevenue += r.Price
				}
			}
		}
	}
	stats.EmptyBeds = stats.TotalBeds - stats.OccupiedBeds
	if stats.TotalBeds > 0 {
		stats.OccupancyPercent = stats.OccupiedBeds * 100 / stats.TotalBeds
	}
	return stats
}

// Booking locates a student's bed.
type Booking struct {
	Listing Listing `json:"listing"`
	Room    Room    `json:"room"`
	Bed     Bed     `json:"bed"`
}
