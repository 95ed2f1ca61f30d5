package dataset

import (
	"context"
	"time"

	"github.com/ChizhovVadim/lottoflow/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DrawRecord is the archived form of a draw, unique by date.
type DrawRecord struct {
	ID         int64  `gorm:"primaryKey"`
	Date       string `gorm:"type:varchar(10);uniqueIndex;not null"`
	Zahl1      int
	Zahl2      int
	Zahl3      int
	Zahl4      int
	Zahl5      int
	Zahl6      int
	Zusatzzahl *int
	Superzahl  int
}

// BetRecord is a bet produced by the model with the given ModelID.
type BetRecord struct {
	ID        int64  `gorm:"primaryKey"`
	ModelID   string `gorm:"type:varchar(36);index;not null"`
	Strategy  string `gorm:"type:varchar(16);not null"`
	Zahl1     int
	Zahl2     int
	Zahl3     int
	Zahl4     int
	Zahl5     int
	Zahl6     int
	Superzahl int
	CreatedAt time.Time `gorm:"not null"`
}

const (
	StrategyBest   = "best"
	StrategySample = "sample"
)

// Archive keeps draws and generated bets in SQLite.
type Archive struct {
	db *gorm.DB
}

func OpenArchive(dsn string) (*Archive, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	err = db.AutoMigrate(&DrawRecord{}, &BetRecord{})
	if err != nil {
		return nil, err
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ImportDraws inserts draws, replacing archived draws with the same date.
func (a *Archive) ImportDraws(ctx context.Context, draws []domain.Draw) error {
	if len(draws) == 0 {
		return nil
	}
	var records = make([]DrawRecord, len(draws))
	for i := range draws {
		var d = &draws[i]
		records[i] = DrawRecord{
			Date:       d.Date,
			Zahl1:      d.Zahl1,
			Zahl2:      d.Zahl2,
			Zahl3:      d.Zahl3,
			Zahl4:      d.Zahl4,
			Zahl5:      d.Zahl5,
			Zahl6:      d.Zahl6,
			Zusatzzahl: d.Zusatzzahl,
			Superzahl:  d.Superzahl,
		}
	}
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			UpdateAll: true,
		}).CreateInBatches(&records, 500).Error
	})
}

// Load returns archived draws ordered by date.
func (a *Archive) Load(ctx context.Context) ([]domain.Draw, error) {
	var records []DrawRecord
	var err = a.db.WithContext(ctx).Order("date asc").Find(&records).Error
	if err != nil {
		return nil, err
	}
	var draws = make([]domain.Draw, len(records))
	for i := range records {
		var r = &records[i]
		draws[i] = domain.Draw{
			Zahl1:      r.Zahl1,
			Zahl2:      r.Zahl2,
			Zahl3:      r.Zahl3,
			Zahl4:      r.Zahl4,
			Zahl5:      r.Zahl5,
			Zahl6:      r.Zahl6,
			Zusatzzahl: r.Zusatzzahl,
			Superzahl:  r.Superzahl,
			Date:       r.Date,
		}
	}
	return draws, nil
}

func (a *Archive) SaveBets(ctx context.Context, modelID, strategy string, bets []domain.Bet) error {
	if len(bets) == 0 {
		return nil
	}
	var now = time.Now().UTC()
	var records = make([]BetRecord, len(bets))
	for i, b := range bets {
		records[i] = BetRecord{
			ModelID:   modelID,
			Strategy:  strategy,
			Zahl1:     b.Zahlen[0],
			Zahl2:     b.Zahlen[1],
			Zahl3:     b.Zahlen[2],
			Zahl4:     b.Zahlen[3],
			Zahl5:     b.Zahlen[4],
			Zahl6:     b.Zahlen[5],
			Superzahl: b.Superzahl,
			CreatedAt: now,
		}
	}
	return a.db.WithContext(ctx).Create(&records).Error
}

func (a *Archive) Bets(ctx context.Context, modelID string) ([]domain.Bet, error) {
	var records []BetRecord
	var err = a.db.WithContext(ctx).
		Where("model_id = ?", modelID).
		Order("id asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	var bets = make([]domain.Bet, len(records))
	for i, r := range records {
		bets[i] = domain.Bet{
			Zahlen:    [domain.NumbersPerDraw]int{r.Zahl1, r.Zahl2, r.Zahl3, r.Zahl4, r.Zahl5, r.Zahl6},
			Superzahl: r.Superzahl,
		}
	}
	return bets, nil
}
