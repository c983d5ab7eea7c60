package service

import (
	"context"

	"bpp-notes/internal/model"
)

// NoteService is the business contract of the notes service.
type NoteService interface {
	// Name is the configured display name of the service.
	Name() string

	// Add creates a note. Both title and content must be non-empty.
	Add(ctx context.Context, title, content string) (*model.Note, error)

	// Remove deletes the note with the given ID and returns it.
	// A nil note with a nil error means nothing was removed.
	Remove(ctx context.Context, id string) (*model.Note, error)

	// Search matches the query against titles, or titles and contents when
	// all is set. No match is an empty slice, not an error.
	Search(ctx context.Context, query string, all bool) ([]model.Note, error)
}
