package memory

import (
	"context"
	"slices"
	"sync"

	"bpp-notes/internal/model"
	"bpp-notes/internal/repository"

	"github.com/google/uuid"
)

var _ repository.NoteRepository = (*repo)(nil)

type repo struct {
	mu    sync.RWMutex
	notes map[string]model.Note
	order []string // ids in insertion order
	newID func() string
}

// NewRepository creates a map-based in-memory note store.
func NewRepository() repository.NoteRepository {
	return newRepo(func() string { return uuid.New().String() })
}

func newRepo(newID func() string) *repo {
	return &repo{
		notes: make(map[string]model.Note),
		newID: newID,
	}
}

// Create assigns a new ID and stores the note.
func (r *repo) Create(ctx context.Context, note model.Note) (model.Note, error) {
	if err := ctx.Err(); err != nil {
		return model.Note{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newID()
	for _, taken := r.notes[id]; taken; _, taken = r.notes[id] {
		id = r.newID()
	}
	note.ID = id

	r.notes[id] = note
	r.order = append(r.order, id)

	return note, nil
}

// Delete removes the note by ID and returns what was stored.
func (r *repo) Delete(ctx context.Context, id string) (model.Note, error) {
	if err := ctx.Err(); err != nil {
		return model.Note{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	note, exists := r.notes[id]
	if !exists {
		return model.Note{}, model.ErrNoteNotFound
	}

	delete(r.notes, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}

	return note, nil
}

// Search scans notes under a read lock, so a concurrent Delete is either
// fully visible or not visible at all.
func (r *repo) Search(ctx context.Context, query string, all bool) ([]model.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]model.Note, 0)
	for _, id := range r.order {
		note := r.notes[id]
		if note.Matches(query, all) {
			found = append(found, note)
		}
	}

	return found, nil
}

func (r *repo) Close() error {
	return nil
}
