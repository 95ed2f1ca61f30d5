package domain

import "sort"

const (
	NumbersPerDraw = 6
	MaxNumber      = 49
	// Superzahl is drawn from 0..9.
	SuperzahlCount = 10
)

// Draw is one historical 6 aus 49 draw as produced by the transform command.
type Draw struct {
	Zahl1      int    `json:"Zahl1"`
	Zahl2      int    `json:"Zahl2"`
	Zahl3      int    `json:"Zahl3"`
	Zahl4      int    `json:"Zahl4"`
	Zahl5      int    `json:"Zahl5"`
	Zahl6      int    `json:"Zahl6"`
	Zusatzzahl *int   `json:"Zusatzzahl,omitempty"`
	Superzahl  int    `json:"Superzahl"`
	Date       string `json:"date"`
}

func (d *Draw) Numbers() [NumbersPerDraw]int {
	return [NumbersPerDraw]int{d.Zahl1, d.Zahl2, d.Zahl3, d.Zahl4, d.Zahl5, d.Zahl6}
}

func NewDraw(date string, numbers [NumbersPerDraw]int, superzahl int) Draw {
	return Draw{
		Zahl1:     numbers[0],
		Zahl2:     numbers[1],
		Zahl3:     numbers[2],
		Zahl4:     numbers[3],
		Zahl5:     numbers[4],
		Zahl6:     numbers[5],
		Superzahl: superzahl,
		Date:      date,
	}
}

// Bet is a decoded prediction.
type Bet struct {
	Zahlen    [NumbersPerDraw]int `json:"Zahlen"`
	Superzahl int                 `json:"Superzahl"`
}

func NewBet(numbers [NumbersPerDraw]int, superzahl int) Bet {
	sort.Ints(numbers[:])
	return Bet{
		Zahlen:    numbers,
		Superzahl: superzahl,
	}
}

// HasRepeats reports whether sorted Zahlen contain adjacent equal values.
func (b *Bet) HasRepeats() bool {
	for i := 1; i < len(b.Zahlen); i++ {
		if b.Zahlen[i] == b.Zahlen[i-1] {
			return true
		}
	}
	return false
}
