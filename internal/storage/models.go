package storage

import "time"

const (
	StatusDraft = "draft"
	StatusSent  = "sent"
)

type Newsletter struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	HTMLContent string     `gorm:"column:html_content;type:text;not null" json:"html_content"`
	Status      string     `gorm:"not null;default:'draft'" json:"status"` // draft or sent
	EditorNotes *string    `gorm:"type:text" json:"editor_notes"`
	SentAt      *time.Time `json:"sent_at"`
}

// NewsletterSummary is the listing projection of a Newsletter.
type NewsletterSummary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
}

// GenerationRun records one pipeline run, successful or not.
type GenerationRun struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Trigger      string `gorm:"not null" json:"trigger"` // manual, cron, cli
	Provider     string `json:"provider"`
	NewsletterID string `gorm:"index" json:"newsletter_id"`

	QuotesFound  int    `json:"quotes_found"`
	NewsResults  int    `json:"news_results"`
	SearchErrors string `gorm:"type:text" json:"search_errors"`
	ContentChars int    `json:"content_chars"`
	Mentions     int    `json:"mentions"`

	GenerationSeconds float64 `json:"generation_seconds"`
	TotalSeconds      float64 `json:"total_seconds"`
	Error             string  `json:"error"`
}
