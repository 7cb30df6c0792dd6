package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no newsletter has the requested id.
var ErrNotFound = errors.New("newsletter not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Newsletters

// SaveNewsletter stores a rendered newsletter as a draft under a fresh id.
func (r *Repository) SaveNewsletter(ctx context.Context, html string, createdAt time.Time) (*Newsletter, error) {
	n := &Newsletter{
		ID:          uuid.NewString(),
		CreatedAt:   createdAt,
		HTMLContent: html,
		Status:      StatusDraft,
	}
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

func (r *Repository) GetNewsletter(ctx context.Context, id string) (*Newsletter, error) {
	var n Newsletter
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNewsletters returns summaries, newest first. A non-positive limit
// returns all of them.
func (r *Repository) ListNewsletters(ctx context.Context, limit int) ([]NewsletterSummary, error) {
	q := r.db.WithContext(ctx).Model(&Newsletter{}).
		Select("id", "created_at", "status").
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var out []NewsletterSummary
	err := q.Scan(&out).Error
	return out, err
}

func (r *Repository) MarkSent(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&Newsletter{}).Where("id = ?", id).
		Updates(map[string]any{"status": StatusSent, "sent_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) UpdateEditorNotes(ctx context.Context, id, notes string) error {
	res := r.db.WithContext(ctx).Model(&Newsletter{}).Where("id = ?", id).
		Update("editor_notes", notes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Generation runs

func (r *Repository) SaveGenerationRun(ctx context.Context, run *GenerationRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *Repository) RecentRuns(ctx context.Context, limit int) ([]GenerationRun, error) {
	var runs []GenerationRun
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}
