// Package history keeps the quizzes generated on this device.
package history

import (
	"context"

	"github.com/dmitrijs2005/quizera/internal/client/models"
)

// Repository stores generated quizzes.
type Repository interface {
	// Add inserts a new entry. The entry's ID must be unique.
	Add(ctx context.Context, e *models.HistoryEntry) error

	// ListRecent returns up to limit entries, newest first, without their
	// question bodies. A limit of zero or less means no limit.
	ListRecent(ctx context.Context, limit int) ([]models.HistoryEntry, error)

	// GetByID returns a full entry, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.HistoryEntry, error)

	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}
