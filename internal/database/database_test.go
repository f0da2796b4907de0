package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mpdash/mpctl/internal/config"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(&config.DatabaseConfig{
		Path:           filepath.Join(t.TempDir(), "cache", "test.db"),
		MaxConnections: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestOpen_AppliesMigrations(t *testing.T) {
	db := openTestDB(t)

	var applied []string
	require.NoError(t, db.Table("schema_migrations").Pluck("name", &applied).Error)
	assert.Contains(t, applied, "20261019_subscription_name_index")

	var count int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_subscriptions_name'").Scan(&count).Error)
	assert.Equal(t, int64(1), count)

	// running again is a no-op
	assert.NoError(t, RunMigrations(db))
}

func TestMigrationKey(t *testing.T) {
	key, ok := migrationKey("20261019_subscription_name_index.sql")
	assert.True(t, ok)
	assert.Equal(t, "20261019_subscription_name_index", key)

	_, ok = migrationKey("notes.sql")
	assert.False(t, ok)
}

func TestApplyMigrations_SameDay(t *testing.T) {
	db := openTestDB(t)

	fsys := fstest.MapFS{
		"20261101_add_tags.sql":      {Data: []byte("CREATE TABLE tags (name TEXT PRIMARY KEY);")},
		"20261101_add_tag_links.sql": {Data: []byte("CREATE TABLE tag_links (tag TEXT REFERENCES tags(name));")},
		"README.md":                  {Data: []byte("not a migration")},
	}
	require.NoError(t, applyMigrations(db, fsys))

	var applied []string
	require.NoError(t, db.Table("schema_migrations").Order("name").Pluck("name", &applied).Error)
	assert.Contains(t, applied, "20261101_add_tags")
	assert.Contains(t, applied, "20261101_add_tag_links")

	for _, table := range []string{"tags", "tag_links"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	// already recorded, so nothing runs twice
	assert.NoError(t, applyMigrations(db, fsys))
}

func TestApplyMigrations_FailureRollsBack(t *testing.T) {
	db := openTestDB(t)

	fsys := fstest.MapFS{
		"20261102_broken.sql": {Data: []byte("CREATE TABLE nope (")},
	}
	err := applyMigrations(db, fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "20261102_broken")

	var count int64
	require.NoError(t, db.Table("schema_migrations").Where("name = ?", "20261102_broken").Count(&count).Error)
	assert.Zero(t, count)
}

func TestApplyMigrations_BadName(t *testing.T) {
	db := openTestDB(t)

	err := applyMigrations(db, fstest.MapFS{"add_tags.sql": {Data: []byte("SELECT 1;")}})
	assert.ErrorContains(t, err, "add_tags.sql")
}

func TestEpisodeList_Persistence(t *testing.T) {
	db := openTestDB(t)

	sub := Subscription{
		ID:       uuid.NewString(),
		RemoteID: 7,
		Name:     "Frieren",
		Type:     "电视剧",
		Season:   1,
		Missing:  EpisodeList{9, 1, 2, 3, 5, 3},
	}
	require.NoError(t, db.Create(&sub).Error)

	var raw string
	require.NoError(t, db.Raw("SELECT missing FROM subscriptions WHERE id = ?", sub.ID).Scan(&raw).Error)
	assert.Equal(t, "1-3,5,9", raw)

	var loaded Subscription
	require.NoError(t, db.First(&loaded, "id = ?", sub.ID).Error)
	assert.Equal(t, EpisodeList{1, 2, 3, 5, 9}, loaded.Missing)
}

func TestEpisodeList_Scan(t *testing.T) {
	var l EpisodeList

	require.NoError(t, l.Scan([]byte("1-2,4")))
	assert.Equal(t, EpisodeList{1, 2, 4}, l)

	require.NoError(t, l.Scan(nil))
	assert.Nil(t, l)

	assert.Error(t, l.Scan(42))
	assert.Error(t, l.Scan("x-y"))
}

func TestSettings(t *testing.T) {
	db := openTestDB(t)

	v, err := GetSetting(db, SettingLastSync)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, SaveSetting(db, SettingLastSync, "2024-06-01T12:00:00Z"))
	require.NoError(t, SaveSetting(db, SettingLastSync, "2024-06-02T12:00:00Z"))

	v, err = GetSetting(db, SettingLastSync)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-02T12:00:00Z", v)

	assert.Error(t, SaveSetting(db, " ", "x"))
}
