package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/dukaanlabs/dukaan/internal/domain"
)

const archiveBatchSize = 500

// ArchiveRepository lists and removes interactions past retention.
type ArchiveRepository interface {
	ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Interaction, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}

// ArchiveUploader writes archive objects to long-term storage.
type ArchiveUploader interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
}

// ArchiveProcessor moves interactions older than the retention window out of
// Postgres and into object storage as JSON lines. Implements JobProcessor.
type ArchiveProcessor struct {
	repo      ArchiveRepository
	uploader  ArchiveUploader
	retention time.Duration
	now       func() time.Time
}

// NewArchiveProcessor creates a new ArchiveProcessor instance
func NewArchiveProcessor(repo ArchiveRepository, uploader ArchiveUploader, retention time.Duration) *ArchiveProcessor {
	return &ArchiveProcessor{
		repo:      repo,
		uploader:  uploader,
		retention: retention,
		now:       time.Now,
	}
}

type archivedShortlistEntry struct {
	ShopID   string `json:"shop_id"`
	Position int    `json:"position"`
	Reason   string `json:"reason,omitempty"`
}

type archivedInteraction struct {
	ID           string                   `json:"id"`
	SessionID    string                   `json:"session_id"`
	UserID       string                   `json:"user_id,omitempty"`
	Query        string                   `json:"query"`
	Language     string                   `json:"language,omitempty"`
	Category     string                   `json:"category,omitempty"`
	Lat          *float64                 `json:"lat,omitempty"`
	Lng          *float64                 `json:"lng,omitempty"`
	Shortlist    []archivedShortlistEntry `json:"shortlist,omitempty"`
	Outcome      *bool                    `json:"outcome,omitempty"`
	ChosenShopID string                   `json:"chosen_shop_id,omitempty"`
	CreatedAt    string                   `json:"created_at"`
}

// ProcessJobs archives one batch of expired interactions. Batches repeat on
// subsequent ticks until the backlog drains.
func (p *ArchiveProcessor) ProcessJobs(ctx context.Context) error {
	_, err := p.ProcessBatch(ctx)
	return err
}

// ProcessBatch archives at most one batch and reports whether the backlog
// is drained.
func (p *ArchiveProcessor) ProcessBatch(ctx context.Context) (bool, error) {
	cutoff := p.now().UTC().Add(-p.retention)

	batch, err := p.repo.ListOlderThan(ctx, cutoff, archiveBatchSize)
	if err != nil {
		return false, fmt.Errorf("failed to list expired interactions: %w", err)
	}
	if len(batch) == 0 {
		return true, nil
	}

	body, err := encodeArchive(batch)
	if err != nil {
		return false, fmt.Errorf("failed to encode archive batch: %w", err)
	}

	key := archiveKey(batch[0].CreatedAt, batch[0].ID)
	if err := p.uploader.PutObject(ctx, key, body, "application/x-ndjson"); err != nil {
		return false, fmt.Errorf("failed to upload archive %s: %w", key, err)
	}

	ids := make([]string, len(batch))
	for i, in := range batch {
		ids[i] = in.ID
	}
	// Upload succeeded, so a delete failure here at worst re-archives the
	// same rows under a different key next tick.
	if err := p.repo.DeleteByIDs(ctx, ids); err != nil {
		return false, fmt.Errorf("failed to delete archived interactions: %w", err)
	}

	log.Printf("Archived %d interactions to %s", len(batch), key)
	return len(batch) < archiveBatchSize, nil
}

func encodeArchive(batch []*domain.Interaction) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, in := range batch {
		rec := archivedInteraction{
			ID:           in.ID,
			SessionID:    in.SessionID,
			UserID:       in.UserID,
			Query:        in.Query,
			Language:     string(in.Language),
			Category:     in.Category,
			Outcome:      in.Outcome,
			ChosenShopID: in.ChosenShopID,
			CreatedAt:    in.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
		if in.Location != nil {
			lat, lng := in.Location.Lat, in.Location.Lng
			rec.Lat, rec.Lng = &lat, &lng
		}
		for _, s := range in.Shortlist {
			rec.Shortlist = append(rec.Shortlist, archivedShortlistEntry{
				ShopID:   s.ShopID,
				Position: s.Position,
				Reason:   s.Reason,
			})
		}
		if err := enc.Encode(rec); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func archiveKey(oldest time.Time, firstID string) string {
	return fmt.Sprintf("interactions/%s/%s-%s.jsonl",
		oldest.UTC().Format("2006/01/02"),
		oldest.UTC().Format("150405"),
		firstID,
	)
}
