package models

import (
	"strings"
	"time"

	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// ProjectStatus is the lifecycle status of a project. Only active projects
// may spend money.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusSuspended ProjectStatus = "suspended"
)

var projectStatuses = []ProjectStatus{ProjectStatusActive, ProjectStatusCompleted, ProjectStatusSuspended}

// Project is the highest level of organization. All category allocations and
// transactions reference a project.
type Project struct {
	DefaultModel
	Name        string
	WorkGroup   string
	Responsible string
	Status      ProjectStatus
	StartDate   *time.Time
	EndDate     *time.Time
	FiscalYear  int
	Note        string
}

func (p Project) Self() string {
	return "Project"
}

// BeforeSave defaults the status to active and trims whitespace
// from all strings
func (p *Project) BeforeSave(_ *gorm.DB) error {
	p.Name = strings.TrimSpace(p.Name)
	p.WorkGroup = strings.TrimSpace(p.WorkGroup)
	p.Responsible = strings.TrimSpace(p.Responsible)
	p.Note = strings.TrimSpace(p.Note)

	if p.Status == "" {
		p.Status = ProjectStatusActive
	}

	if !slices.Contains(projectStatuses, p.Status) {
		return ErrProjectStatusInvalid
	}

	return nil
}

// BeforeUpdate preserves audit integrity: once any transaction references
// the project, the status transition is the only permitted mutation.
func (p *Project) BeforeUpdate(tx *gorm.DB) error {
	if !tx.Statement.Changed("Name", "WorkGroup", "Responsible", "StartDate", "EndDate", "FiscalYear", "Note") {
		return nil
	}

	var count int64
	err := tx.Model(&Transaction{}).Where("project_id = ?", p.ID).Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrProjectImmutable
	}

	return nil
}
