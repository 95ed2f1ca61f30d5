package decoder

import (
	"fmt"
	"io"
	"strings"

	"github.com/ChizhovVadim/lottoflow/internal/domain"
)

const edgeItems = 3

// WritePredictions prints the shape and an abbreviated view of prediction rows.
func WritePredictions(w io.Writer, predictions [][]float64) {
	var cols int
	if len(predictions) != 0 {
		cols = len(predictions[0])
	}
	fmt.Fprintf(w, "Predictions shape: [%v,%v]\n", len(predictions), cols)
	fmt.Fprintln(w, "[")
	for i, row := range predictions {
		if len(predictions) > 2*edgeItems && i == edgeItems {
			fmt.Fprintln(w, " ...,")
		}
		if len(predictions) > 2*edgeItems && i >= edgeItems && i < len(predictions)-edgeItems {
			continue
		}
		fmt.Fprintf(w, " [%v],\n", formatRow(row))
	}
	fmt.Fprintln(w, "]")
}

func formatRow(row []float64) string {
	var parts []string
	for i, v := range row {
		if len(row) > 2*edgeItems && i == edgeItems {
			parts = append(parts, "...")
		}
		if len(row) > 2*edgeItems && i >= edgeItems && i < len(row)-edgeItems {
			continue
		}
		parts = append(parts, fmt.Sprintf("%.4f", v))
	}
	return strings.Join(parts, ", ")
}

func FormatBet(b domain.Bet) string {
	var numbers = make([]string, len(b.Zahlen))
	for i, n := range b.Zahlen {
		numbers[i] = fmt.Sprint(n)
	}
	return fmt.Sprintf("Zahlen: %v Superzahl: %v", strings.Join(numbers, " "), b.Superzahl)
}

func WriteBets(w io.Writer, title string, bets []domain.Bet) {
	fmt.Fprintf(w, "%v (%v):\n", title, len(bets))
	for i, b := range bets {
		fmt.Fprintf(w, "%3d. %v\n", i+1, FormatBet(b))
	}
}
