package repository

import (
	"context"

	"bpp-notes/internal/model"
)

// NoteRepository is the storage capability behind the note service.
// Implementations must serialize Create/Delete and give Search a consistent
// snapshot of the store.
type NoteRepository interface {
	// Create stores a new note under a freshly assigned ID and returns it.
	Create(ctx context.Context, note model.Note) (model.Note, error)

	// Delete removes the note and returns its last state.
	// Returns model.ErrNoteNotFound if no such note exists.
	Delete(ctx context.Context, id string) (model.Note, error)

	// Search returns matching notes in insertion order.
	// An empty result is not an error.
	Search(ctx context.Context, query string, all bool) ([]model.Note, error)

	// Close releases the resources held by the store.
	Close() error
}
