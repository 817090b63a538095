package db

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"

	embeddedmigrations "github.com/terraincognita07/khare/migrations"
	"gorm.io/gorm"
)

var (
	migrationNamePattern = regexp.MustCompile(`^(\d+)_[\w-]+\.sql$`)
	addColumnPattern     = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+(\S+)\s+ADD\s+COLUMN\s+(\S+)`)
)

// migration is one forward-only SQL file. Version is the numeric prefix as written.
type migration struct {
	Version string
	Name    string
	order   int
	body    string
}

func applyEmbeddedMigrations(database *gorm.DB) error {
	if err := database.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`).Error; err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	all, err := loadEmbeddedMigrations()
	if err != nil {
		return err
	}

	var applied []string
	if err := database.Table("schema_migrations").Pluck("version", &applied).Error; err != nil {
		return fmt.Errorf("load applied migration versions: %w", err)
	}

	for _, pending := range all {
		if slices.Contains(applied, pending.Version) {
			continue
		}
		if err := runMigration(database, pending); err != nil {
			return err
		}
		slog.Default().Debug("migration applied", "name", pending.Name)
	}
	return nil
}

func loadEmbeddedMigrations() ([]migration, error) {
	return readMigrations(embeddedmigrations.Files)
}

// readMigrations collects the *.sql files at the root of fsys ordered by version.
// Files that do not look like NNN_name.sql are ignored.
func readMigrations(fsys fs.FS) ([]migration, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	byVersion := make(map[string]string, len(names))
	found := make([]migration, 0, len(names))
	for _, name := range names {
		match := migrationNamePattern.FindStringSubmatch(path.Base(name))
		if match == nil {
			continue
		}
		version := match[1]
		if previous, dup := byVersion[version]; dup {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s", version, previous, name)
		}
		byVersion[version] = name

		order, err := strconv.Atoi(version)
		if err != nil {
			return nil, fmt.Errorf("parse migration version from %s: %w", name, err)
		}
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		found = append(found, migration{Version: version, Name: name, order: order, body: string(body)})
	}

	slices.SortFunc(found, func(a, b migration) int {
		if a.order != b.order {
			return a.order - b.order
		}
		return strings.Compare(a.Name, b.Name)
	})
	return found, nil
}

func runMigration(database *gorm.DB, m migration) error {
	statements := splitSQLStatements(m.body)
	if len(statements) == 0 {
		return fmt.Errorf("migration %s: %w", m.Name, errors.New("no SQL statements"))
	}

	return database.Transaction(func(tx *gorm.DB) error {
		for _, statement := range statements {
			present, err := columnAlreadyPresent(tx, statement)
			if err != nil {
				return fmt.Errorf("inspect migration %s: %w", m.Name, err)
			}
			if present {
				continue
			}
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("execute migration %s statement %q: %w", m.Name, statement, err)
			}
		}

		if err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES (?, ?)`, m.Version, m.Name).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", m.Name, err)
		}
		return nil
	})
}

func splitSQLStatements(body string) []string {
	var statements []string
	for _, part := range strings.Split(body, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

// columnAlreadyPresent reports whether statement adds a column that some
// earlier deployment already created by hand.
func columnAlreadyPresent(database *gorm.DB, statement string) (bool, error) {
	match := addColumnPattern.FindStringSubmatch(statement)
	if match == nil {
		return false, nil
	}

	table := unquoteIdentifier(match[1])
	column := unquoteIdentifier(match[2])
	migrator := database.Migrator()
	if !migrator.HasTable(table) {
		return false, fmt.Errorf("table %s does not exist", table)
	}
	return migrator.HasColumn(table, column), nil
}

func unquoteIdentifier(identifier string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(identifier), "\"`[]"))
}
