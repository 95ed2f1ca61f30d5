package dataset

import (
	"context"
	"fmt"
	"os"

	"github.com/ChizhovVadim/lottoflow/internal/domain"
	"github.com/goccy/go-json"
)

// JSONProvider reads the draws produced by the transform command.
type JSONProvider struct {
	FilePath string
}

func (dp *JSONProvider) Load(ctx context.Context) ([]domain.Draw, error) {
	return LoadDraws(dp.FilePath)
}

func LoadDraws(filePath string) ([]domain.Draw, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var draws []domain.Draw
	err = json.Unmarshal(data, &draws)
	if err != nil {
		return nil, fmt.Errorf("parse %v: %w", filePath, err)
	}
	return draws, nil
}

func SaveDraws(filePath string, draws []domain.Draw) error {
	data, err := json.MarshalIndent(draws, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
