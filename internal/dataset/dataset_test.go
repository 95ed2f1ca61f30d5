package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChizhovVadim/lottoflow/internal/domain"
)

const testHistory = "Tag\tMonat\tJahr\tZahl1\tZahl2\tZahl3\tZahl4\tZahl5\tZahl6\tZusatzzahl\tSuperzahl\tSpieltag\n" +
	"4\t1\t2020\t3\t17\t22\t8\t45\t12\t\t7\tSa\n" +
	"8\t1\t2020\t1\t2\t3\t4\t5\t6\t\tx\tMi\n" +
	"11\t1\t2020\t10\t20\t30\t40\t41\t42\n"

func TestParseRows(t *testing.T) {
	var rows, err = ParseRows(strings.NewReader(testHistory))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %v", len(rows))
	}
	var first = rows[0]
	if first["date"] != "2020-01-04" {
		t.Errorf("date %v", first["date"])
	}
	if first["Zahl1"] != 3 || first["Superzahl"] != 7 {
		t.Errorf("unexpected row %v", first)
	}
	if first["Spieltag"] != "Sa" {
		t.Errorf("string column %v", first["Spieltag"])
	}
	for _, name := range []string{"Tag", "Monat", "Jahr", "Zusatzzahl"} {
		if _, found := first[name]; found {
			t.Errorf("column %v must not be present", name)
		}
	}
	if _, found := rows[1]["Superzahl"]; found {
		t.Errorf("malformed Superzahl must be skipped: %v", rows[1])
	}
	if rows[1]["Zahl6"] != 6 {
		t.Errorf("row with malformed field must keep other fields: %v", rows[1])
	}
	if _, found := rows[2]["Superzahl"]; found {
		t.Errorf("missing Superzahl must be skipped: %v", rows[2])
	}
	if rows[2]["date"] != "2020-01-11" {
		t.Errorf("date %v", rows[2]["date"])
	}
}

func TestTransformFileRoundTrip(t *testing.T) {
	var dir = t.TempDir()
	var input = filepath.Join(dir, "lotto.csv")
	var output = filepath.Join(dir, "lotto.json")
	var err = os.WriteFile(input, []byte(testHistory), 0644)
	if err != nil {
		t.Fatal(err)
	}
	_, err = TransformFile(input, output)
	if err != nil {
		t.Fatal(err)
	}
	draws, err := LoadDraws(output)
	if err != nil {
		t.Fatal(err)
	}
	if len(draws) != 3 {
		t.Fatalf("expected 3 draws, got %v", len(draws))
	}
	if draws[0].Numbers() != [domain.NumbersPerDraw]int{3, 17, 22, 8, 45, 12} ||
		draws[0].Superzahl != 7 || draws[0].Date != "2020-01-04" {
		t.Errorf("unexpected draw %+v", draws[0])
	}
	if draws[0].Zusatzzahl != nil {
		t.Errorf("Zusatzzahl must be absent")
	}
}

func TestLoadDrawsMissingFile(t *testing.T) {
	var _, err = LoadDraws(filepath.Join(t.TempDir(), "missing.json"))
	if !os.IsNotExist(err) {
		t.Errorf("expected not exist error, got %v", err)
	}
}

func TestAnalyze(t *testing.T) {
	var draws = []domain.Draw{
		domain.NewDraw("2020-01-01", [domain.NumbersPerDraw]int{1, 2, 3, 4, 5, 6}, 3),
		domain.NewDraw("2020-01-02", [domain.NumbersPerDraw]int{1, 9, 3, 4, 5, 6}, 3),
		domain.NewDraw("2020-01-03", [domain.NumbersPerDraw]int{7, 9, 3, 4, 5, 6}, 5),
		domain.NewDraw("2020-01-04", [domain.NumbersPerDraw]int{7, 9, 3, 4, 5, 6}, 5),
	}
	var stats = Analyze(draws)
	if len(stats) != domain.NumbersPerDraw+1 {
		t.Fatalf("expected %v fields, got %v", domain.NumbersPerDraw+1, len(stats))
	}
	var zahl1 = stats[0]
	// 1 and 7 occur twice, the larger value wins
	if zahl1.Field != "Zahl1" || zahl1.Number != 7 || zahl1.Frequency != 2 {
		t.Errorf("unexpected Zahl1 stats %+v", zahl1)
	}
	if strings.Join(zahl1.Dates, ",") != "2020-01-03,2020-01-04" {
		t.Errorf("dates %v", zahl1.Dates)
	}
	if zahl1.Probability.StringFixed(2) != "50.00" {
		t.Errorf("probability %v", zahl1.Probability)
	}
	var zahl2 = stats[1]
	if zahl2.Number != 9 || zahl2.Frequency != 3 || zahl2.Probability.StringFixed(2) != "75.00" {
		t.Errorf("unexpected Zahl2 stats %+v", zahl2)
	}
	var superzahl = stats[len(stats)-1]
	if superzahl.Field != "Superzahl" || superzahl.Number != 5 {
		t.Errorf("unexpected Superzahl stats %+v", superzahl)
	}
}

func TestArchive(t *testing.T) {
	var archive, err = OpenArchive(filepath.Join(t.TempDir(), "lotto.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer archive.Close()

	var ctx = context.Background()
	var draws = []domain.Draw{
		domain.NewDraw("2020-01-08", [domain.NumbersPerDraw]int{1, 2, 3, 4, 5, 6}, 1),
		domain.NewDraw("2020-01-04", [domain.NumbersPerDraw]int{7, 8, 9, 10, 11, 12}, 2),
	}
	err = archive.ImportDraws(ctx, draws)
	if err != nil {
		t.Fatal(err)
	}
	// same date replaces the archived draw
	draws[0].Superzahl = 9
	err = archive.ImportDraws(ctx, draws[:1])
	if err != nil {
		t.Fatal(err)
	}

	loaded, err := archive.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 draws, got %v", len(loaded))
	}
	if loaded[0].Date != "2020-01-04" || loaded[1].Superzahl != 9 {
		t.Errorf("unexpected draws %+v", loaded)
	}

	var bets = []domain.Bet{
		domain.NewBet([domain.NumbersPerDraw]int{6, 5, 4, 3, 2, 1}, 4),
	}
	err = archive.SaveBets(ctx, "model-1", StrategyBest, bets)
	if err != nil {
		t.Fatal(err)
	}
	stored, err := archive.Bets(ctx, "model-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0] != bets[0] {
		t.Errorf("unexpected bets %+v", stored)
	}
}
