package layout

import (
	"testing"
)

func testLayout() *SeatLayout {
	return &SeatLayout{
		Rows:        5,
		SeatsPerRow: 10,
		RowLabels:   []string{"A", "B", "C", "D", "E"},
		VIPRows:     []string{"C", "D"},
		CoupleSeats: []CouplePair{
			{Row: "E", StartSeat: 1, EndSeat: 2},
			{Row: "E", StartSeat: 3, EndSeat: 4},
		},
		DisabledSeats: []Seat{
			{Row: "A", Number: 10},
		},
	}
}

func TestParseSeatLabel(t *testing.T) {
	tests := []struct {
		label   string
		want    Seat
		wantErr bool
	}{
		{label: "A12", want: Seat{Row: "A", Number: 12}},
		{label: "AA3", want: Seat{Row: "AA", Number: 3}},
		{label: "e5", want: Seat{Row: "E", Number: 5}},
		{label: "12", wantErr: true},
		{label: "A", wantErr: true},
		{label: "A0", wantErr: true},
		{label: "A-1", wantErr: true},
		{label: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ParseSeatLabel(tt.label)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSeatLabel(%q) error = %v, wantErr %v", tt.label, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseSeatLabel(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestSeatLayout_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(l *SeatLayout)
		wantErr bool
	}{
		{
			name:   "valid layout",
			mutate: func(l *SeatLayout) {},
		},
		{
			name:    "row label count mismatch",
			mutate:  func(l *SeatLayout) { l.RowLabels = []string{"A", "B"} },
			wantErr: true,
		},
		{
			name:    "duplicate row label",
			mutate:  func(l *SeatLayout) { l.RowLabels = []string{"A", "B", "C", "D", "A"} },
			wantErr: true,
		},
		{
			name:    "vip row not in layout",
			mutate:  func(l *SeatLayout) { l.VIPRows = []string{"Z"} },
			wantErr: true,
		},
		{
			name:    "disabled seat outside layout",
			mutate:  func(l *SeatLayout) { l.DisabledSeats = []Seat{{Row: "A", Number: 11}} },
			wantErr: true,
		},
		{
			name: "couple pair not adjacent",
			mutate: func(l *SeatLayout) {
				l.CoupleSeats = []CouplePair{{Row: "E", StartSeat: 1, EndSeat: 3}}
			},
			wantErr: true,
		},
		{
			name: "couple pairs overlap",
			mutate: func(l *SeatLayout) {
				l.CoupleSeats = []CouplePair{
					{Row: "E", StartSeat: 1, EndSeat: 2},
					{Row: "E", StartSeat: 2, EndSeat: 3},
				}
			},
			wantErr: true,
		},
		{
			name: "couple pair covers disabled seat",
			mutate: func(l *SeatLayout) {
				l.DisabledSeats = []Seat{{Row: "E", Number: 1}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := testLayout()
			tt.mutate(l)
			err := l.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSeatLayout_Categorize(t *testing.T) {
	l := testLayout()

	tests := []struct {
		seat Seat
		want SeatCategory
	}{
		{Seat{Row: "A", Number: 1}, CategoryStandard},
		{Seat{Row: "C", Number: 5}, CategoryVIP},
		{Seat{Row: "D", Number: 10}, CategoryVIP},
		{Seat{Row: "E", Number: 1}, CategoryCouple},
		{Seat{Row: "E", Number: 4}, CategoryCouple},
		{Seat{Row: "E", Number: 5}, CategoryStandard},
	}

	for _, tt := range tests {
		if got := l.Categorize(tt.seat); got != tt.want {
			t.Errorf("Categorize(%s) = %v, want %v", tt.seat.Label(), got, tt.want)
		}
	}
}

func TestSeatLayout_ExpandPairs(t *testing.T) {
	l := testLayout()

	t.Run("half of a pair claims the whole pair", func(t *testing.T) {
		got, err := l.ExpandPairs([]Seat{{Row: "E", Number: 2}})
		if err != nil {
			t.Fatalf("ExpandPairs() error = %v", err)
		}
		want := []Seat{{Row: "E", Number: 1}, {Row: "E", Number: 2}}
		if len(got) != len(want) {
			t.Fatalf("ExpandPairs() returned %d seats, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("ExpandPairs()[%d] = %v, want %v", i, got[i], want[i])
			}
		}
	})

	t.Run("deduplicates and orders", func(t *testing.T) {
		got, err := l.ExpandPairs([]Seat{
			{Row: "B", Number: 3},
			{Row: "A", Number: 1},
			{Row: "A", Number: 1},
		})
		if err != nil {
			t.Fatalf("ExpandPairs() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("ExpandPairs() returned %d seats, want 2", len(got))
		}
		if got[0].Label() != "A1" || got[1].Label() != "B3" {
			t.Errorf("ExpandPairs() = [%s %s], want [A1 B3]", got[0].Label(), got[1].Label())
		}
	})

	t.Run("rejects disabled seat", func(t *testing.T) {
		if _, err := l.ExpandPairs([]Seat{{Row: "A", Number: 10}}); err == nil {
			t.Error("ExpandPairs() expected error for disabled seat")
		}
	})

	t.Run("rejects seat outside layout", func(t *testing.T) {
		if _, err := l.ExpandPairs([]Seat{{Row: "Z", Number: 1}}); err == nil {
			t.Error("ExpandPairs() expected error for unknown row")
		}
	})
}

func TestSeatLayout_Units(t *testing.T) {
	l := testLayout()

	t.Run("groups a couple pair into one unit", func(t *testing.T) {
		seats := []Seat{
			{Row: "A", Number: 1},
			{Row: "E", Number: 1},
			{Row: "E", Number: 2},
		}
		units, err := l.Units(seats)
		if err != nil {
			t.Fatalf("Units() error = %v", err)
		}
		if len(units) != 2 {
			t.Fatalf("Units() returned %d units, want 2", len(units))
		}
		if units[0].Category != CategoryStandard || len(units[0].Seats) != 1 {
			t.Errorf("unit 0 = %+v, want single standard seat", units[0])
		}
		if units[1].Category != CategoryCouple || len(units[1].Seats) != 2 {
			t.Errorf("unit 1 = %+v, want couple pair", units[1])
		}
	})

	t.Run("rejects incomplete pair", func(t *testing.T) {
		if _, err := l.Units([]Seat{{Row: "E", Number: 1}}); err == nil {
			t.Error("Units() expected error for half a couple pair")
		}
	})
}
