package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"bpp-notes/internal/logger"
	"bpp-notes/internal/model"
	"bpp-notes/internal/repository"
	svc "bpp-notes/internal/service"
)

var _ svc.NoteService = (*service)(nil)

// ErrValidation marks caller mistakes that never reach the store.
var ErrValidation = errors.New("validation failed")

type service struct {
	name           string
	noteRepository repository.NoteRepository
	log            *slog.Logger
}

// NewNoteService binds a named service to its store. Both are required.
func NewNoteService(name string, noteRepository repository.NoteRepository, log *slog.Logger) (svc.NoteService, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: service name is required", model.ErrConfigInvalid)
	}
	if noteRepository == nil {
		return nil, fmt.Errorf("%w: note storage is required", model.ErrConfigInvalid)
	}
	if log == nil {
		log = logger.Discard()
	}

	return &service{
		name:           name,
		noteRepository: noteRepository,
		log:            log.With(slog.String("service", name)),
	}, nil
}

func (s *service) Name() string {
	return s.name
}

// Add creates a note with the given title and content.
func (s *service) Add(ctx context.Context, title, content string) (*model.Note, error) {
	note := model.Note{Title: title, Content: content}
	if err := note.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	created, err := s.noteRepository.Create(ctx, note)
	if err != nil {
		return nil, model.NewOperationError(model.OpAdd, err)
	}

	s.log.DebugContext(ctx, "note added", slog.String("note_id", created.ID))

	return &created, nil
}

// Remove deletes the note by ID. The ID is used as given; one that matches
// no note, blank included, yields (nil, nil).
func (s *service) Remove(ctx context.Context, id string) (*model.Note, error) {
	removed, err := s.noteRepository.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNoteNotFound) {
			s.log.DebugContext(ctx, "nothing to remove", slog.String("note_id", id))
			return nil, nil
		}
		return nil, model.NewOperationError(model.OpRemove, err)
	}

	s.log.DebugContext(ctx, "note removed", slog.String("note_id", id))

	return &removed, nil
}

// Search returns notes matching the query.
func (s *service) Search(ctx context.Context, query string, all bool) ([]model.Note, error) {
	found, err := s.noteRepository.Search(ctx, query, all)
	if err != nil {
		return nil, model.NewOperationError(model.OpSearch, err)
	}
	if found == nil {
		found = []model.Note{}
	}

	return found, nil
}
