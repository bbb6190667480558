package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "melodyanalyzer.sqlite3"

const errDBClientNil = "db client is nil"

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// AnalysisRun is one persisted analysis: what was analyzed and what came out
// on top. The full ranking is recomputed on demand, only the headline result
// is stored.
type AnalysisRun struct {
	ID            string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Source        string  `gorm:"index:idx_run_source" json:"source"`
	Title         string  `json:"title"`
	Instrument    string  `json:"instrument"`
	DetectedNotes string  `json:"detected_notes"`
	PitchClasses  string  `json:"pitch_classes"`
	TopScale      string  `json:"top_scale"`
	TopScore      float64 `json:"top_score"`
	DurationMs    int     `json:"duration_ms"`
	CreatedAt     time.Time
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("MELODY_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&AnalysisRun{}); err != nil {
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

// SaveRun persists a run and returns its generated ID.
func (c *DBClient) SaveRun(run *AnalysisRun) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if err := c.DB.Create(run).Error; err != nil {
		return "", fmt.Errorf("creating analysis run: %w", err)
	}
	return run.ID, nil
}

func (c *DBClient) GetRunByID(id string) (*AnalysisRun, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var run AnalysisRun
	if err := c.DB.Where("id = ?", id).First(&run).Error; err != nil {
		return nil, fmt.Errorf("querying analysis run: %w", err)
	}
	return &run, nil
}

// ListRuns returns all runs, newest first.
func (c *DBClient) ListRuns() ([]AnalysisRun, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var runs []AnalysisRun
	if err := c.DB.Order("created_at DESC").Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("listing analysis runs: %w", err)
	}
	return runs, nil
}

func (c *DBClient) DeleteRunByID(id string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	result := c.DB.Where("id = ?", id).Delete(&AnalysisRun{})
	if result.Error != nil {
		return fmt.Errorf("deleting analysis run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
