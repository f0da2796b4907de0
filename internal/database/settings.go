package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// SettingLastSync records when subscriptions were last pulled from the dashboard.
const SettingLastSync = "subscriptions.last_sync"

// GetSetting returns the stored value for key.
// Returns empty string if the key was never saved (not an error)
func GetSetting(db *gorm.DB, key string) (string, error) {
	var s Setting
	err := db.Where("key = ?", key).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return s.Value, nil
}

// SaveSetting stores or updates a setting
// Upserts using GORM Save (updates if exists, inserts if new)
func SaveSetting(db *gorm.DB, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("setting key cannot be empty")
	}
	return db.Save(&Setting{Key: key, Value: value}).Error
}
