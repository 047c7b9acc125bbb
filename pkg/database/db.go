package database

import (
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

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

// APIUsage tracks per-key per-day activity against the gateway
type APIUsage struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	KeyID         uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date          string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount  int    `gorm:"default:0" json:"request_count"`
	RunsSubmitted int    `gorm:"default:0" json:"runs_submitted"`
	RunsApplied   int    `gorm:"default:0" json:"runs_applied"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Init opens the database connection and migrates the schema. A non-empty
// databaseURL selects postgres; otherwise a local sqlite file at dataPath.
func Init(databaseURL, dataPath string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if databaseURL != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  databaseURL,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		if dataPath == "" {
			dataPath = "gateway.db"
		}
		db, err = gorm.Open(sqlite.Open(dataPath), &gorm.Config{})
	}
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&APIKey{}, &APIUsage{}, &MasterUser{}); err != nil {
		return nil, err
	}
	return db, nil
}
