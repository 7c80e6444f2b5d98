package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrSessionNotFound is returned when no session is stored for a profile
var ErrSessionNotFound = errors.New("session not found")

// Session is a persisted token pair for one profile
type Session struct {
	ID           uint   `gorm:"primaryKey"`
	Profile      string `gorm:"uniqueIndex;not null"`
	AccessToken  string `gorm:"not null"`
	RefreshToken string
	UserID       int64
	Username     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Database wraps the GORM handle holding local client state
type Database struct {
	db *gorm.DB
}

// NewDatabase opens (or creates) the SQLite database at path
func NewDatabase(path string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&Session{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{db: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveSession inserts or replaces the session of a profile
func (d *Database) SaveSession(s *Session) error {
	return d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "user_id", "username", "updated_at"}),
	}).Create(s).Error
}

// GetSession retrieves the session stored for a profile
func (d *Database) GetSession(profile string) (*Session, error) {
	var s Session
	err := d.db.Where("profile = ?", profile).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateAccessToken replaces the access token of a stored session
func (d *Database) UpdateAccessToken(profile, token string) error {
	res := d.db.Model(&Session{}).Where("profile = ?", profile).Updates(map[string]interface{}{
		"access_token": token,
		"updated_at":   time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteSession removes the session of a profile
func (d *Database) DeleteSession(profile string) error {
	return d.db.Where("profile = ?", profile).Delete(&Session{}).Error
}
