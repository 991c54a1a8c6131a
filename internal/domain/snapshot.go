package domain

// Snapshot is the full persisted state: listings plus applications.
type Snapshot struct {
	Listings     []Listing     `json:"listings"`
	Applications []Application `json:"applications"`
}

func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Listings:     make([]Listing, len(s.Listings)),
		Applications: make([]Application, len(s.Applications)),
	}
	for i, l := range s.Listings {
		out.Listings[i] = l.Clone()
	}
	copy(out.Applications, s.Applications)
	return out
}

func (s Snapshot) ListingIndex(id string) (int, bool) {
	for i, l := range s.Listings {
		if l.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (s Snapshot) ApplicationIndex(id string) (int, bool) {
	for i, a := range s.Applications {
		if a.ID == id {
			return i, true
		}
	}
	return -1, false
}

// OccupancyGrid flattens each listing's beds (floor, room, bed order) into occupied flags.
func (s Snapshot) OccupancyGrid() map[string][]bool {
	grid := make(map[string][]bool, len(s.Listings))
	for _, l := range s.Listings {
		cells := []bool{}
		for _, f := range l.Floors {
			for _, r := range f.Rooms {
				for _, b := range r.Beds {
					cells = append(cells, b.Occupied())
				}
			}
		}
		grid[l.ID] = cells
	}
	return grid
}
