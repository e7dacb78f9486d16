// Package store persists registered projects, their scanned profiles,
// and each project's active item set in a local SQLite database. The
// active set backs the "already added" exclusion the suggestion
// surfaces apply, and the activity table backs the activity feed.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/agentdeckhq/agentdeck/pkg/catalog"
	"github.com/agentdeckhq/agentdeck/pkg/db"
	"github.com/agentdeckhq/agentdeck/pkg/project"
)

// ErrNotFound is returned when a project or item does not exist.
var ErrNotFound = errors.New("not found")

// Store provides access to the local project database.
type Store struct {
	db *sqlx.DB
}

// Open opens the database at the given path (or the default path when
// empty) and runs pending migrations.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if dbPath == "" {
		var err error
		dbPath, err = db.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	database, err := db.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	runner := db.NewMigrationRunner(database)
	if err := runner.Run(ctx, Migrations()); err != nil {
		database.Close()
		return nil, errors.Wrap(err, "failed to run migrations")
	}

	return &Store{db: database}, nil
}

// NewWithDB wraps an already opened and migrated database. Used by tests.
func NewWithDB(database *sqlx.DB) *Store {
	return &Store{db: database}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrations returns the schema migrations for the project store.
func Migrations() []db.Migration {
	return []db.Migration{
		{
			Version:     20250310120000,
			Description: "create projects, project_items, and activity tables",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS projects (
						id TEXT PRIMARY KEY,
						name TEXT NOT NULL,
						path TEXT NOT NULL UNIQUE,
						profile TEXT,
						scanned_at DATETIME,
						created_at DATETIME NOT NULL
					)`,
					`CREATE TABLE IF NOT EXISTS project_items (
						project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
						slug TEXT NOT NULL,
						name TEXT NOT NULL,
						kind TEXT NOT NULL,
						added_at DATETIME NOT NULL,
						PRIMARY KEY (project_id, slug)
					)`,
					`CREATE TABLE IF NOT EXISTS activity (
						id INTEGER PRIMARY KEY AUTOINCREMENT,
						project_id TEXT NOT NULL,
						event TEXT NOT NULL,
						detail TEXT NOT NULL,
						created_at DATETIME NOT NULL
					)`,
					`CREATE INDEX IF NOT EXISTS idx_activity_created_at ON activity(created_at DESC)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}

// CreateProject registers a project directory. The path must not be
// registered already.
func (s *Store) CreateProject(ctx context.Context, name, path string) (*Project, error) {
	p := &Project{
		ID:        uuid.NewString(),
		Name:      name,
		Path:      path,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (id, name, path, created_at) VALUES (?, ?, ?, ?)",
		p.ID, p.Name, p.Path, p.CreatedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create project %s", name)
	}
	return p, nil
}

// GetProject returns a project by id.
func (s *Store) GetProject(ctx context.Context, id string) (*Project, error) {
	var p Project
	err := s.db.GetContext(ctx, &p, "SELECT * FROM projects WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "project %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get project %s", id)
	}
	return &p, nil
}

// GetProjectByPath returns a project by its registered path.
func (s *Store) GetProjectByPath(ctx context.Context, path string) (*Project, error) {
	var p Project
	err := s.db.GetContext(ctx, &p, "SELECT * FROM projects WHERE path = ?", path)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "project at %s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get project at %s", path)
	}
	return &p, nil
}

// ListProjects returns all registered projects, most recent first.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	err := s.db.SelectContext(ctx, &projects, "SELECT * FROM projects ORDER BY created_at DESC")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list projects")
	}
	return projects, nil
}

// SaveProfile stores the scan result for a project and records the
// scan in the activity feed.
func (s *Store) SaveProfile(ctx context.Context, projectID string, profile *project.Profile) error {
	encoded, err := json.Marshal(profile)
	if err != nil {
		return errors.Wrap(err, "failed to encode profile")
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"UPDATE projects SET profile = ?, scanned_at = ? WHERE id = ?",
		string(encoded), now, projectID)
	if err != nil {
		return errors.Wrapf(err, "failed to save profile for project %s", projectID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(ErrNotFound, "project %s", projectID)
	}

	return s.recordActivity(ctx, projectID, EventScanned, string(profile.Type))
}

// AddItem adds a catalog item to the project's active set.
func (s *Store) AddItem(ctx context.Context, projectID string, item catalog.Item) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO project_items (project_id, slug, name, kind, added_at) VALUES (?, ?, ?, ?, ?)",
		projectID, item.Slug, item.Name, string(item.Kind), time.Now().UTC())
	if err != nil {
		return errors.Wrapf(err, "failed to add item %s to project %s", item.Slug, projectID)
	}
	return s.recordActivity(ctx, projectID, EventItemAdded, item.Name)
}

// RemoveItem removes an item from the project's active set.
func (s *Store) RemoveItem(ctx context.Context, projectID, slug string) error {
	var name string
	err := s.db.GetContext(ctx, &name,
		"SELECT name FROM project_items WHERE project_id = ? AND slug = ?", projectID, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Wrapf(ErrNotFound, "item %s in project %s", slug, projectID)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to look up item %s", slug)
	}

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM project_items WHERE project_id = ? AND slug = ?", projectID, slug); err != nil {
		return errors.Wrapf(err, "failed to remove item %s from project %s", slug, projectID)
	}
	return s.recordActivity(ctx, projectID, EventItemRemoved, name)
}

// ListItems returns the project's active set in addition order.
func (s *Store) ListItems(ctx context.Context, projectID string) ([]ProjectItem, error) {
	var items []ProjectItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM project_items WHERE project_id = ? ORDER BY added_at, slug", projectID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list items for project %s", projectID)
	}
	return items, nil
}

// ItemNames returns the display names of the project's active set, for
// the suggestion surfaces' exclusion filter.
func (s *Store) ItemNames(ctx context.Context, projectID string) ([]string, error) {
	var names []string
	err := s.db.SelectContext(ctx, &names,
		"SELECT name FROM project_items WHERE project_id = ? ORDER BY added_at, slug", projectID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list item names for project %s", projectID)
	}
	return names, nil
}

// RecentActivity returns the latest activity entries, newest first.
func (s *Store) RecentActivity(ctx context.Context, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []Activity
	err := s.db.SelectContext(ctx, &entries,
		"SELECT * FROM activity ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list activity")
	}
	return entries, nil
}

func (s *Store) recordActivity(ctx context.Context, projectID, event, detail string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO activity (project_id, event, detail, created_at) VALUES (?, ?, ?, ?)",
		projectID, event, detail, time.Now().UTC())
	return errors.Wrap(err, "failed to record activity")
}
