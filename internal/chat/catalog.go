package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"guestchat-backend/internal/database"
)

// JobCatalog and RecruiterDirectory are owned by the host platform; the
// engine only reads from them to validate references and render summaries.

type JobCatalog interface {
	GetJob(ctx context.Context, id uuid.UUID) (*database.Job, error)
}

type RecruiterDirectory interface {
	GetRecruiter(ctx context.Context, id uuid.UUID) (*database.Recruiter, error)
}

type GormJobCatalog struct {
	db *gorm.DB
}

func NewGormJobCatalog(db *gorm.DB) *GormJobCatalog {
	return &GormJobCatalog{db: db}
}

func (c *GormJobCatalog) GetJob(ctx context.Context, id uuid.UUID) (*database.Job, error) {
	var job database.Job
	if err := c.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("unable to load job: %w", err)
	}
	return &job, nil
}

type GormRecruiterDirectory struct {
	db *gorm.DB
}

func NewGormRecruiterDirectory(db *gorm.DB) *GormRecruiterDirectory {
	return &GormRecruiterDirectory{db: db}
}

func (d *GormRecruiterDirectory) GetRecruiter(ctx context.Context, id uuid.UUID) (*database.Recruiter, error) {
	var recruiter database.Recruiter
	if err := d.db.WithContext(ctx).First(&recruiter, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("unable to load recruiter: %w", err)
	}
	return &recruiter, nil
}
