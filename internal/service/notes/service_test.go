package notes

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"bpp-notes/internal/model"
	"bpp-notes/internal/repository"
	"bpp-notes/internal/repository/memory"
	svc "bpp-notes/internal/service"
)

// mockRepository is a minimal store with injectable failures.
type mockRepository struct {
	notes       map[string]model.Note
	order       []string
	nextID      int
	createError error
	deleteError error
	searchError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		notes: make(map[string]model.Note),
	}
}

func (m *mockRepository) Create(ctx context.Context, note model.Note) (model.Note, error) {
	if m.createError != nil {
		return model.Note{}, m.createError
	}

	m.nextID++
	note.ID = fmt.Sprintf("n%d", m.nextID)
	m.notes[note.ID] = note
	m.order = append(m.order, note.ID)
	return note, nil
}

func (m *mockRepository) Delete(ctx context.Context, id string) (model.Note, error) {
	if m.deleteError != nil {
		return model.Note{}, m.deleteError
	}

	note, exists := m.notes[id]
	if !exists {
		return model.Note{}, model.ErrNoteNotFound
	}

	delete(m.notes, id)
	return note, nil
}

func (m *mockRepository) Search(ctx context.Context, query string, all bool) ([]model.Note, error) {
	if m.searchError != nil {
		return nil, m.searchError
	}

	var found []model.Note
	for _, id := range m.order {
		note, ok := m.notes[id]
		if ok && note.Matches(query, all) {
			found = append(found, note)
		}
	}
	return found, nil
}

func (m *mockRepository) Close() error {
	return nil
}

var _ repository.NoteRepository = (*mockRepository)(nil)

func newTestService(t *testing.T, repo repository.NoteRepository) svc.NoteService {
	t.Helper()

	service, err := NewNoteService("NoteService", repo, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	return service
}

func TestNewNoteService_ConfigInvalid(t *testing.T) {
	if _, err := NewNoteService("", newMockRepository(), nil); !errors.Is(err, model.ErrConfigInvalid) {
		t.Errorf("Expected ErrConfigInvalid for empty name, got: %v", err)
	}

	if _, err := NewNoteService("NoteService", nil, nil); !errors.Is(err, model.ErrConfigInvalid) {
		t.Errorf("Expected ErrConfigInvalid for missing storage, got: %v", err)
	}
}

func TestNoteService_Name(t *testing.T) {
	service := newTestService(t, newMockRepository())

	if service.Name() != "NoteService" {
		t.Errorf("Expected name %q, got %q", "NoteService", service.Name())
	}
}

func TestNoteService_Add_Success(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, newMockRepository())

	note, err := service.Add(ctx, "Groceries", "milk, eggs")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if note == nil {
		t.Fatal("Expected note, got nil")
	}

	if note.ID != "n1" {
		t.Errorf("Expected ID %q, got %q", "n1", note.ID)
	}

	if note.String() != "Groceries: milk, eggs" {
		t.Errorf("Expected rendering %q, got %q", "Groceries: milk, eggs", note.String())
	}
}

func TestNoteService_Add_MissingFields(t *testing.T) {
	ctx := context.Background()
	mockRepo := newMockRepository()
	service := newTestService(t, mockRepo)

	for _, tc := range [][2]string{{"", "content"}, {"title", ""}, {"  ", "  "}} {
		note, err := service.Add(ctx, tc[0], tc[1])

		if !errors.Is(err, ErrValidation) {
			t.Errorf("Expected ErrValidation for %q, got: %v", tc, err)
		}

		if note != nil {
			t.Errorf("Expected nil note on error, got %+v", note)
		}
	}

	if len(mockRepo.notes) != 0 {
		t.Errorf("Expected store to stay empty, got %d notes", len(mockRepo.notes))
	}
}

func TestNoteService_Add_StoreFailure(t *testing.T) {
	ctx := context.Background()
	mockRepo := newMockRepository()
	mockRepo.createError = errors.New("disk full")
	service := newTestService(t, mockRepo)

	_, err := service.Add(ctx, "title", "content")

	if !errors.Is(err, model.ErrAddFailed) {
		t.Errorf("Expected ErrAddFailed, got: %v", err)
	}
}

func TestNoteService_Remove_Success(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, newMockRepository())

	added, err := service.Add(ctx, "Groceries", "milk, eggs")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	removed, err := service.Remove(ctx, added.ID)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if removed == nil || *removed != *added {
		t.Errorf("Expected removed note %+v, got %+v", added, removed)
	}

	found, err := service.Search(ctx, "Groceries", false)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(found) != 0 {
		t.Errorf("Expected no notes after removal, got %d", len(found))
	}
}

func TestNoteService_Remove_Idempotent(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, newMockRepository())

	added, err := service.Add(ctx, "title", "content")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if _, err := service.Remove(ctx, added.ID); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	removed, err := service.Remove(ctx, added.ID)
	if err != nil {
		t.Errorf("Expected no error on second remove, got: %v", err)
	}

	if removed != nil {
		t.Errorf("Expected absent result, got %+v", removed)
	}
}

func TestNoteService_Remove_BlankID(t *testing.T) {
	mockRepo := newMockRepository()
	service := newTestService(t, mockRepo)
	ctx := context.Background()

	if _, err := service.Add(ctx, "Groceries", "milk"); err != nil {
		t.Fatalf("Failed to add note: %v", err)
	}

	for _, id := range []string{"", "   "} {
		removed, err := service.Remove(ctx, id)
		if err != nil {
			t.Errorf("Remove(%q): expected no error, got: %v", id, err)
		}
		if removed != nil {
			t.Errorf("Remove(%q): expected absent result, got %+v", id, removed)
		}
	}

	if len(mockRepo.notes) != 1 {
		t.Errorf("Expected the stored note to remain, got %d notes", len(mockRepo.notes))
	}
}

func TestNoteService_Remove_StoreFailure(t *testing.T) {
	mockRepo := newMockRepository()
	mockRepo.deleteError = errors.New("connection reset")
	service := newTestService(t, mockRepo)

	_, err := service.Remove(context.Background(), "n1")

	if !errors.Is(err, model.ErrRemoveFailed) {
		t.Errorf("Expected ErrRemoveFailed, got: %v", err)
	}
}

func TestNoteService_Search_EmptyIsNotError(t *testing.T) {
	service := newTestService(t, newMockRepository())

	found, err := service.Search(context.Background(), "anything", true)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if found == nil || len(found) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", found)
	}
}

func TestNoteService_Search_StoreFailure(t *testing.T) {
	mockRepo := newMockRepository()
	mockRepo.searchError = errors.New("timeout")
	service := newTestService(t, mockRepo)

	_, err := service.Search(context.Background(), "q", false)

	if !errors.Is(err, model.ErrSearchFailed) {
		t.Errorf("Expected ErrSearchFailed, got: %v", err)
	}
}

// Scenarios run against the real in-memory store.
func TestNoteService_Scenarios(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, memory.NewRepository())

	added, err := service.Add(ctx, "Groceries", "milk, eggs")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// A: content match with all=true.
	found, err := service.Search(ctx, "milk", true)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(found) != 1 || found[0] != *added {
		t.Fatalf("Expected [%+v], got %+v", *added, found)
	}

	// B: title-only search ignores content.
	found, err = service.Search(ctx, "milk", false)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("Expected no notes, got %+v", found)
	}

	// C: removal hides the note.
	removed, err := service.Remove(ctx, added.ID)
	if err != nil || removed == nil {
		t.Fatalf("Expected removed note, got %+v, %v", removed, err)
	}
	found, err = service.Search(ctx, "Groceries", false)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("Expected no notes after removal, got %+v", found)
	}
}
