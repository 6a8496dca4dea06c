package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"CandlePull/internal/domain/models"
	domrepo "CandlePull/internal/domain/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	glogger "gorm.io/gorm/logger"
)

// BarModel is the persisted OHLCV row. Primary key (symbol, interval, ts);
// symbols are stored uppercase, ts is unix seconds UTC at bucket start.
type BarModel struct {
	Symbol   string  `gorm:"primaryKey;size:32"`
	Interval string  `gorm:"primaryKey;size:8"`
	Ts       int64   `gorm:"primaryKey;autoIncrement:false"`
	Open     float64 `gorm:"not null"`
	High     float64 `gorm:"not null"`
	Low      float64 `gorm:"not null"`
	Close    float64 `gorm:"not null"`
	Volume   float64 `gorm:"not null"`
}

func (BarModel) TableName() string { return "bars" }

// SQLiteBarStore implements BarStore on an embedded SQLite database via gorm.
type SQLiteBarStore struct {
	db *gorm.DB
}

var _ domrepo.BarStore = (*SQLiteBarStore)(nil)

// NewSQLiteBarStore opens (or creates) the database file at path.
// Use ":memory:" for an ephemeral store.
func NewSQLiteBarStore(path string) (*SQLiteBarStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create store dir: %w", err)
			}
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &SQLiteBarStore{db: db}, nil
}

// NewSQLiteBarStoreFromDB wraps an existing gorm handle (tests).
func NewSQLiteBarStoreFromDB(db *gorm.DB) *SQLiteBarStore {
	return &SQLiteBarStore{db: db}
}

// Init creates the bars table if missing.
func (s *SQLiteBarStore) Init(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&BarModel{}); err != nil {
		return fmt.Errorf("migrate bars: %w", err)
	}
	return nil
}

// UpsertBars inserts bars, overwriting OHLCV on primary key conflict.
func (s *SQLiteBarStore) UpsertBars(ctx context.Context, bars []models.Bar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}
	rows := make([]BarModel, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, BarModel{
			Symbol:   b.Symbol,
			Interval: b.Interval,
			Ts:       b.Ts,
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			Volume:   b.Volume,
		})
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "interval"}, {Name: "ts"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
	}).Create(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("upsert bars: %w", err)
	}
	return len(rows), nil
}

// FetchBars returns the most recent limit bars ordered oldest first.
func (s *SQLiteBarStore) FetchBars(ctx context.Context, symbol string, interval domrepo.Interval, limit int) ([]models.Bar, error) {
	var rows []BarModel
	err := s.db.WithContext(ctx).
		Where("symbol = ? AND interval = ?", symbol, string(interval)).
		Order("ts DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}

	out := make([]models.Bar, len(rows))
	for i, r := range rows {
		// reverse newest-first rows into ascending order
		out[len(rows)-1-i] = models.Bar{
			Symbol:   r.Symbol,
			Interval: r.Interval,
			Ts:       r.Ts,
			Open:     r.Open,
			High:     r.High,
			Low:      r.Low,
			Close:    r.Close,
			Volume:   r.Volume,
		}
	}
	return out, nil
}

func (s *SQLiteBarStore) CountBars(ctx context.Context, symbol string, interval domrepo.Interval) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&BarModel{}).
		Where("symbol = ? AND interval = ?", symbol, string(interval)).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count bars: %w", err)
	}
	return int(n), nil
}

func (s *SQLiteBarStore) DistinctSymbols(ctx context.Context, interval domrepo.Interval) ([]string, error) {
	var symbols []string
	err := s.db.WithContext(ctx).Model(&BarModel{}).
		Where("interval = ?", string(interval)).
		Distinct("symbol").
		Order("symbol ASC").
		Pluck("symbol", &symbols).Error
	if err != nil {
		return nil, fmt.Errorf("distinct symbols: %w", err)
	}
	return symbols, nil
}

func (s *SQLiteBarStore) DistinctIntervals(ctx context.Context) ([]domrepo.Interval, error) {
	var raw []string
	err := s.db.WithContext(ctx).Model(&BarModel{}).
		Distinct("interval").
		Pluck("interval", &raw).Error
	if err != nil {
		return nil, fmt.Errorf("distinct intervals: %w", err)
	}
	out := make([]domrepo.Interval, 0, len(raw))
	for _, r := range raw {
		out = append(out, domrepo.Interval(r))
	}
	return out, nil
}

func (s *SQLiteBarStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLiteBarStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
