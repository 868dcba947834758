package project

import "time"

// Status is the lifecycle status of a project. Deletion is soft.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// Project is a processing configuration: where files come from, where cut
// results go, and the geometry used while basing them.
type Project struct {
	ID                  string           `json:"project_id"`
	Name                string           `json:"project_name"`
	SourceFolder        string           `json:"source_folder"`
	DestinationFolder   string           `json:"destination_folder"`
	PalateConfiguration string           `json:"palate_configuration"`
	BaseHeight          float64          `json:"base_height"`
	Status              Status           `json:"project_status"`
	ChangeLog           []ChangeLogEntry `json:"change_log"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// ChangeLogEntry is the snapshot of a project's fields taken right before an update.
type ChangeLogEntry struct {
	Name                string    `json:"project_name"`
	SourceFolder        string    `json:"source_folder"`
	DestinationFolder   string    `json:"destination_folder"`
	PalateConfiguration string    `json:"palate_configuration"`
	BaseHeight          float64   `json:"base_height"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Summary is the lightweight listing representation.
type Summary struct {
	Name string `json:"project_name"`
	ID   string `json:"project_id"`
}

// Config holds the user-editable fields of a project.
type Config struct {
	Name                string  `json:"project_name" validate:"notblank"`
	SourceFolder        string  `json:"source_folder" validate:"notblank"`
	DestinationFolder   string  `json:"destination_folder" validate:"notblank"`
	BaseHeight          float64 `json:"base_height" validate:"finite,gte=0"`
	PalateConfiguration string  `json:"palate_configuration" validate:"notblank"`
}

// Snapshot captures the current fields as a change log entry.
func (p *Project) Snapshot() ChangeLogEntry {
	return ChangeLogEntry{
		Name:                p.Name,
		SourceFolder:        p.SourceFolder,
		DestinationFolder:   p.DestinationFolder,
		PalateConfiguration: p.PalateConfiguration,
		BaseHeight:          p.BaseHeight,
		UpdatedAt:           p.UpdatedAt,
	}
}

// Apply overwrites the editable fields with cfg.
func (p *Project) Apply(cfg Config) {
	p.Name = cfg.Name
	p.SourceFolder = cfg.SourceFolder
	p.DestinationFolder = cfg.DestinationFolder
	p.PalateConfiguration = cfg.PalateConfiguration
	p.BaseHeight = cfg.BaseHeight
}
