package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/himanishpuri/EmotionRelay/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const errDBClientNil = "db client is nil"

// ErrNotFound is returned when no analysis has the requested ID.
var ErrNotFound = errors.New("analysis not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type Analysis struct {
	ID              string `gorm:"primaryKey;type:varchar(36)"`
	Filename        string
	Ext             string `gorm:"type:varchar(8)"`
	SizeBytes       int64
	Status          int    `gorm:"index:idx_analysis_status"`
	TopLabel        string `gorm:"index:idx_analysis_label"`
	TopScore        float64
	PredictionCount int
	Error           string
	AudioDurationMs int
	ElapsedMs       int64
	CreatedAt       time.Time `gorm:"index:idx_analysis_created"`
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	// one writer keeps the pure-Go driver from returning SQLITE_BUSY under load
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Analysis{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *DBClient) SaveAnalysis(a *models.Analysis) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	row := fromModel(a)
	if err := c.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("inserting analysis %s: %w", a.ID, err)
	}
	return nil
}

func (c *DBClient) GetAnalysis(id string) (*models.Analysis, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var row Analysis
	err := c.DB.First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying analysis %s: %w", id, err)
	}

	a := row.toModel()
	return &a, nil
}

// ListAnalyses returns up to limit records, newest first.
func (c *DBClient) ListAnalyses(limit int) ([]models.Analysis, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var rows []Analysis
	q := c.DB.Order("created_at DESC").Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}

	out := make([]models.Analysis, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

func (c *DBClient) CountAnalyses() (int64, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}
	var n int64
	if err := c.DB.Model(&Analysis{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting analyses: %w", err)
	}
	return n, nil
}

func fromModel(a *models.Analysis) Analysis {
	return Analysis{
		ID:              a.ID,
		Filename:        a.Filename,
		Ext:             a.Ext,
		SizeBytes:       a.SizeBytes,
		Status:          a.Status,
		TopLabel:        a.TopLabel,
		TopScore:        a.TopScore,
		PredictionCount: a.PredictionCount,
		Error:           a.Error,
		AudioDurationMs: a.AudioDurationMs,
		ElapsedMs:       a.ElapsedMs,
		CreatedAt:       a.CreatedAt,
	}
}

func (r Analysis) toModel() models.Analysis {
	return models.Analysis{
		ID:              r.ID,
		Filename:        r.Filename,
		Ext:             r.Ext,
		SizeBytes:       r.SizeBytes,
		Status:          r.Status,
		TopLabel:        r.TopLabel,
		TopScore:        r.TopScore,
		PredictionCount: r.PredictionCount,
		Error:           r.Error,
		AudioDurationMs: r.AudioDurationMs,
		ElapsedMs:       r.ElapsedMs,
		CreatedAt:       r.CreatedAt,
	}
}
