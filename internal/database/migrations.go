package database

import (
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationFileRe matches YYYYMMDD_description.sql. Files sort by date, then
// by description, and the full stem is the key recorded once applied.
var migrationFileRe = regexp.MustCompile(`^(\d{8}_[a-z0-9_]+)\.sql$`)

type migration struct {
	key string
	sql string
}

// schemaMigration is one row of the applied-migrations ledger.
type schemaMigration struct {
	Name      string    `gorm:"primaryKey"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

// RunMigrations applies the embedded SQL migrations that are not yet recorded.
func RunMigrations(db *gorm.DB) error {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	return applyMigrations(db, sub)
}

func applyMigrations(db *gorm.DB, fsys fs.FS) error {
	if err := db.AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	pending, err := loadMigrations(fsys)
	if err != nil {
		return err
	}

	var applied []string
	if err := db.Model(&schemaMigration{}).Pluck("name", &applied).Error; err != nil {
		return fmt.Errorf("failed to list applied migrations: %w", err)
	}

	for _, m := range pending {
		if slices.Contains(applied, m.key) {
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(m.sql).Error; err != nil {
				return err
			}
			return tx.Create(&schemaMigration{Name: m.key}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.key, err)
		}
	}

	return nil
}

// loadMigrations reads every .sql file in fsys in key order. A file that does
// not follow the naming scheme is an error rather than being skipped.
func loadMigrations(fsys fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		key, ok := migrationKey(entry.Name())
		if !ok {
			return nil, fmt.Errorf("migration %q is not named YYYYMMDD_description.sql", entry.Name())
		}

		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		migrations = append(migrations, migration{key: key, sql: string(content)})
	}

	slices.SortFunc(migrations, func(a, b migration) int {
		return strings.Compare(a.key, b.key)
	})
	return migrations, nil
}

func migrationKey(filename string) (string, bool) {
	m := migrationFileRe.FindStringSubmatch(filename)
	if m == nil {
		return "", false
	}
	return m[1], true
}
