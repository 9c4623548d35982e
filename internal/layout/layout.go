package layout

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// SeatCategory classifies how a seat is priced.
type SeatCategory string

const (
	CategoryStandard SeatCategory = "STANDARD"
	CategoryVIP      SeatCategory = "VIP"
	CategoryCouple   SeatCategory = "COUPLE"
)

// Seat identifies one physical seat inside a theater.
type Seat struct {
	Row    string `json:"row"`
	Number int    `json:"number"`
}

// Label renders a seat as its display label, e.g. "A12".
func (s Seat) Label() string {
	return fmt.Sprintf("%s%d", s.Row, s.Number)
}

// ParseSeatLabel parses labels like "A12" or "AA3" back into a Seat.
func ParseSeatLabel(label string) (Seat, error) {
	i := 0
	for i < len(label) && unicode.IsLetter(rune(label[i])) {
		i++
	}
	if i == 0 || i == len(label) {
		return Seat{}, fmt.Errorf("invalid seat label: %q", label)
	}
	number, err := strconv.Atoi(label[i:])
	if err != nil || number <= 0 {
		return Seat{}, fmt.Errorf("invalid seat label: %q", label)
	}
	return Seat{Row: strings.ToUpper(label[:i]), Number: number}, nil
}

// CouplePair marks two adjacent seats sold as a single unit.
type CouplePair struct {
	Row       string `json:"row"`
	StartSeat int    `json:"start_seat"`
	EndSeat   int    `json:"end_seat"`
}

// Seats returns both members of the pair in seat-number order.
func (p CouplePair) Seats() []Seat {
	return []Seat{
		{Row: p.Row, Number: p.StartSeat},
		{Row: p.Row, Number: p.EndSeat},
	}
}

// SeatLayout is the static per-theater geometry produced by the authoring
// tool. The engine only reads it.
type SeatLayout struct {
	Rows          int          `json:"rows"`
	SeatsPerRow   int          `json:"seats_per_row"`
	RowLabels     []string     `json:"row_labels"`
	VIPRows       []string     `json:"vip_rows"`
	CoupleSeats   []CouplePair `json:"couple_seats"`
	DisabledSeats []Seat       `json:"disabled_seats"`
}

// Validate checks the authored geometry for internal consistency.
func (l *SeatLayout) Validate() error {
	if l.Rows <= 0 || l.SeatsPerRow <= 0 {
		return fmt.Errorf("layout must have positive rows and seats per row")
	}
	if len(l.RowLabels) != l.Rows {
		return fmt.Errorf("layout has %d rows but %d row labels", l.Rows, len(l.RowLabels))
	}

	rows := make(map[string]bool, len(l.RowLabels))
	for _, r := range l.RowLabels {
		if rows[r] {
			return fmt.Errorf("duplicate row label %q", r)
		}
		rows[r] = true
	}
	for _, r := range l.VIPRows {
		if !rows[r] {
			return fmt.Errorf("vip row %q is not a layout row", r)
		}
	}

	disabled := make(map[Seat]bool, len(l.DisabledSeats))
	for _, s := range l.DisabledSeats {
		if !l.contains(s) {
			return fmt.Errorf("disabled seat %s is outside the layout", s.Label())
		}
		disabled[s] = true
	}

	// Couple pairs: exactly 2 adjacent seats, never overlapping each other
	// and never covering a disabled seat.
	claimed := make(map[Seat]bool)
	for _, p := range l.CoupleSeats {
		if p.EndSeat != p.StartSeat+1 {
			return fmt.Errorf("couple pair %s%d-%d must span exactly 2 adjacent seats", p.Row, p.StartSeat, p.EndSeat)
		}
		for n := p.StartSeat; n <= p.EndSeat; n++ {
			seat := Seat{Row: p.Row, Number: n}
			if !l.contains(seat) {
				return fmt.Errorf("couple pair seat %s is outside the layout", seat.Label())
			}
			if disabled[seat] {
				return fmt.Errorf("seat %s cannot be both disabled and part of a couple pair", seat.Label())
			}
			if claimed[seat] {
				return fmt.Errorf("couple pairs overlap at seat %s", seat.Label())
			}
			claimed[seat] = true
		}
	}

	return nil
}

func (l *SeatLayout) contains(s Seat) bool {
	if s.Number < 1 || s.Number > l.SeatsPerRow {
		return false
	}
	for _, r := range l.RowLabels {
		if r == s.Row {
			return true
		}
	}
	return false
}

// IsDisabled reports whether the authored layout blocks this seat.
func (l *SeatLayout) IsDisabled(s Seat) bool {
	for _, d := range l.DisabledSeats {
		if d == s {
			return true
		}
	}
	return false
}

// PairFor returns the couple pair covering the seat, if any.
func (l *SeatLayout) PairFor(s Seat) (CouplePair, bool) {
	for _, p := range l.CoupleSeats {
		if p.Row == s.Row && s.Number >= p.StartSeat && s.Number <= p.EndSeat {
			return p, true
		}
	}
	return CouplePair{}, false
}

// Categorize resolves a seat to its pricing category.
func (l *SeatLayout) Categorize(s Seat) SeatCategory {
	if _, ok := l.PairFor(s); ok {
		return CategoryCouple
	}
	for _, r := range l.VIPRows {
		if r == s.Row {
			return CategoryVIP
		}
	}
	return CategoryStandard
}

// ExpandPairs returns the seat set with every couple pair completed: asking
// for one half of a pair claims the whole pair, since the pair is a single
// purchasable unit. The result is deduplicated and deterministically ordered.
func (l *SeatLayout) ExpandPairs(seats []Seat) ([]Seat, error) {
	set := make(map[Seat]bool)
	for _, s := range seats {
		if !l.contains(s) {
			return nil, fmt.Errorf("seat %s is outside the layout", s.Label())
		}
		if l.IsDisabled(s) {
			return nil, fmt.Errorf("seat %s is disabled", s.Label())
		}
		if p, ok := l.PairFor(s); ok {
			set[Seat{Row: p.Row, Number: p.StartSeat}] = true
			set[Seat{Row: p.Row, Number: p.EndSeat}] = true
			continue
		}
		set[s] = true
	}

	expanded := make([]Seat, 0, len(set))
	for s := range set {
		expanded = append(expanded, s)
	}
	sort.Slice(expanded, func(i, j int) bool {
		if expanded[i].Row != expanded[j].Row {
			return expanded[i].Row < expanded[j].Row
		}
		return expanded[i].Number < expanded[j].Number
	})
	return expanded, nil
}

// SeatUnit is one priced unit: a single standard/VIP seat, or both seats of a
// couple pair.
type SeatUnit struct {
	Category SeatCategory
	Seats    []Seat
}

// Units groups an expanded seat set into priced units. The input must already
// contain both halves of every requested couple pair (see ExpandPairs).
func (l *SeatLayout) Units(seats []Seat) ([]SeatUnit, error) {
	var units []SeatUnit
	pairDone := make(map[CouplePair]bool)

	for _, s := range seats {
		p, ok := l.PairFor(s)
		if !ok {
			units = append(units, SeatUnit{Category: l.Categorize(s), Seats: []Seat{s}})
			continue
		}
		if pairDone[p] {
			continue
		}
		lead := Seat{Row: p.Row, Number: p.StartSeat}
		partner := Seat{Row: p.Row, Number: p.EndSeat}
		if !containsSeat(seats, lead) || !containsSeat(seats, partner) {
			return nil, fmt.Errorf("couple pair %s-%s must be booked together", lead.Label(), partner.Label())
		}
		units = append(units, SeatUnit{Category: CategoryCouple, Seats: []Seat{lead, partner}})
		pairDone[p] = true
	}

	return units, nil
}

func containsSeat(seats []Seat, want Seat) bool {
	for _, s := range seats {
		if s == want {
			return true
		}
	}
	return false
}
