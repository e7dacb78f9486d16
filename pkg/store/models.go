package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/agentdeckhq/agentdeck/pkg/project"
)

// Project is a registered project and its last scanned profile.
type Project struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Path        string         `db:"path" json:"path"`
	ProfileJSON sql.NullString `db:"profile" json:"-"`
	ScannedAt   sql.NullTime   `db:"scanned_at" json:"scannedAt,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
}

// Profile decodes the stored profile. Returns nil when the project has
// never been scanned.
func (p *Project) Profile() (*project.Profile, error) {
	if !p.ProfileJSON.Valid || p.ProfileJSON.String == "" {
		return nil, nil
	}
	var profile project.Profile
	if err := json.Unmarshal([]byte(p.ProfileJSON.String), &profile); err != nil {
		return nil, errors.Wrapf(err, "failed to decode profile for project %s", p.ID)
	}
	return &profile, nil
}

// ProjectItem is a catalog item in a project's active set.
type ProjectItem struct {
	ProjectID string    `db:"project_id" json:"projectId"`
	Slug      string    `db:"slug" json:"slug"`
	Name      string    `db:"name" json:"name"`
	Kind      string    `db:"kind" json:"kind"`
	AddedAt   time.Time `db:"added_at" json:"addedAt"`
}

// Activity event types.
const (
	EventItemAdded   = "item_added"
	EventItemRemoved = "item_removed"
	EventScanned     = "scanned"
)

// Activity is one entry in the activity feed.
type Activity struct {
	ID        int64     `db:"id" json:"id"`
	ProjectID string    `db:"project_id" json:"projectId"`
	Event     string    `db:"event" json:"event"`
	Detail    string    `db:"detail" json:"detail"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
