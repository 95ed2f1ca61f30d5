package dataset

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ChizhovVadim/lottoflow/internal/domain"
	"github.com/shopspring/decimal"
)

// FieldStats describes the most frequent value of one draw field.
type FieldStats struct {
	Field       string
	Number      int
	Frequency   int
	Probability decimal.Decimal
	Dates       []string
}

type fieldGetter struct {
	name string
	get  func(d *domain.Draw) (int, bool)
}

func drawFields(draws []domain.Draw) []fieldGetter {
	var res []fieldGetter
	for i := 0; i < domain.NumbersPerDraw; i++ {
		var index = i
		res = append(res, fieldGetter{
			name: fmt.Sprintf("Zahl%v", i+1),
			get:  func(d *domain.Draw) (int, bool) { return d.Numbers()[index], true },
		})
	}
	for i := range draws {
		if draws[i].Zusatzzahl != nil {
			res = append(res, fieldGetter{
				name: "Zusatzzahl",
				get: func(d *domain.Draw) (int, bool) {
					if d.Zusatzzahl == nil {
						return 0, false
					}
					return *d.Zusatzzahl, true
				},
			})
			break
		}
	}
	res = append(res, fieldGetter{
		name: "Superzahl",
		get:  func(d *domain.Draw) (int, bool) { return d.Superzahl, true },
	})
	return res
}

// Analyze finds the most frequent value of every field. On equal frequency the larger value wins.
func Analyze(draws []domain.Draw) []FieldStats {
	if len(draws) == 0 {
		return nil
	}
	var total = decimal.NewFromInt(int64(len(draws)))
	var result []FieldStats
	for _, field := range drawFields(draws) {
		var frequency = make(map[int]int)
		var dates = make(map[int][]string)
		for i := range draws {
			var value, ok = field.get(&draws[i])
			if !ok {
				continue
			}
			frequency[value]++
			dates[value] = append(dates[value], draws[i].Date)
		}
		var values = make([]int, 0, len(frequency))
		for v := range frequency {
			values = append(values, v)
		}
		sort.Ints(values)

		var best = FieldStats{Field: field.name}
		for _, v := range values {
			if frequency[v] >= best.Frequency {
				best.Number = v
				best.Frequency = frequency[v]
			}
		}
		best.Dates = dates[best.Number]
		best.Probability = decimal.NewFromInt(int64(best.Frequency)).
			Mul(decimal.NewFromInt(100)).
			Div(total)
		result = append(result, best)
	}
	return result
}

func PrintStats(w io.Writer, stats []FieldStats) {
	for _, s := range stats {
		fmt.Fprintf(w, "For %v:\n", s.Field)
		fmt.Fprintf(w, "Most frequent number: %v\n", s.Number)
		fmt.Fprintf(w, "Frequency: %v\n", s.Frequency)
		fmt.Fprintf(w, "Probability: %v%%\n", s.Probability.StringFixed(2))
		fmt.Fprintf(w, "Dates: %v\n", strings.Join(s.Dates, ", "))
		fmt.Fprintln(w, "----------------------------------")
	}
}
