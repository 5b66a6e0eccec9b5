package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arnavshah/storeplan-api/pkg/config"
)

// DateLayout is the day bucket used by usage rows
const DateLayout = "2006-01-02"

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	Name       string     `gorm:"not null" json:"name"`
	KeyPreview string     `json:"key_preview"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// ToolUsage represents the tool_usages table: one row per key, tool and day
type ToolUsage struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	KeyID        uint   `gorm:"uniqueIndex:idx_key_tool_date;not null" json:"key_id"`
	Tool         string `gorm:"uniqueIndex:idx_key_tool_date;not null" json:"tool"`
	Date         string `gorm:"uniqueIndex:idx_key_tool_date;not null" json:"date"`
	RequestCount int    `gorm:"default:0" json:"request_count"`
	TotalFiles   int    `gorm:"default:0" json:"total_files"`
	TotalRows    int    `gorm:"default:0" json:"total_rows"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Open connects to Postgres when a URL is configured, SQLite otherwise,
// and migrates the schema.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if cfg.URL != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.URL,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		path := cfg.Path
		if path == "" {
			path = "storeplan.db"
		}
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&APIKey{}, &ToolUsage{}, &MasterUser{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

// RecordUsage adds one request to the key's counters for the tool and day
func RecordUsage(db *gorm.DB, keyID uint, tool string, day time.Time, files, rows int) error {
	// single-query upsert, supported by both Postgres and SQLite
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "tool"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count": gorm.Expr("request_count + ?", 1),
			"total_files":   gorm.Expr("total_files + ?", files),
			"total_rows":    gorm.Expr("total_rows + ?", rows),
		}),
	}).Create(&ToolUsage{
		KeyID:        keyID,
		Tool:         tool,
		Date:         day.Format(DateLayout),
		RequestCount: 1,
		TotalFiles:   files,
		TotalRows:    rows,
	}).Error
}

// RequestsOn counts the key's requests across all tools for a day
func RequestsOn(db *gorm.DB, keyID uint, day time.Time) (int64, error) {
	var total int64
	err := db.Model(&ToolUsage{}).
		Where("key_id = ? AND date = ?", keyID, day.Format(DateLayout)).
		Select("COALESCE(SUM(request_count), 0)").
		Scan(&total).Error
	return total, err
}

// RecentUsage returns the key's usage rows, newest day first
func RecentUsage(db *gorm.DB, keyID uint, limit int) ([]ToolUsage, error) {
	var usage []ToolUsage
	err := db.Where("key_id = ?", keyID).Order("date desc, tool").Limit(limit).Find(&usage).Error
	return usage, err
}
