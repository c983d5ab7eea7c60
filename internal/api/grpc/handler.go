package grpc

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"bpp-notes/internal/converter"
	"bpp-notes/internal/model"
	svc "bpp-notes/internal/service"
	"bpp-notes/internal/service/notes"
	notesv1 "bpp-notes/pkg/api/notes/v1"
)

// ErrorDomain is the ErrorInfo domain of every error this service returns.
const ErrorDomain = notesv1.ErrorDomain

// Error reasons carried in ErrorInfo.
const (
	ReasonValidation   = notesv1.ReasonValidation
	ReasonAddFailed    = "ADD_FAILED"
	ReasonRemoveFailed = "REMOVE_FAILED"
	ReasonSearchFailed = "SEARCH_FAILED"
	ReasonInternal     = "INTERNAL_ERROR"
)

// NoteCounter is told about every note created or removed.
type NoteCounter interface {
	NoteAdded()
	NoteRemoved()
}

type noopCounter struct{}

func (noopCounter) NoteAdded()   {}
func (noopCounter) NoteRemoved() {}

// Handler implements notesv1.NotesServiceServer on top of a NoteService.
type Handler struct {
	notesv1.UnimplementedNotesServiceServer

	noteService svc.NoteService
	counter     NoteCounter
}

// NewHandler creates the gRPC handler. counter may be nil.
func NewHandler(noteService svc.NoteService, counter NoteCounter) *Handler {
	if counter == nil {
		counter = noopCounter{}
	}

	return &Handler{
		noteService: noteService,
		counter:     counter,
	}
}

// Add creates a note.
func (h *Handler) Add(ctx context.Context, req *notesv1.AddRequest) (*notesv1.AddResponse, error) {
	note, err := h.noteService.Add(ctx, req.GetTitle(), req.GetContent())
	if err != nil {
		return nil, handleError(err, nil)
	}
	if note != nil {
		h.counter.NoteAdded()
	}

	return &notesv1.AddResponse{
		Note: converter.ModelToProto(note),
	}, nil
}

// Remove deletes a note. An unknown id is answered with an empty response.
func (h *Handler) Remove(ctx context.Context, req *notesv1.RemoveRequest) (*notesv1.RemoveResponse, error) {
	note, err := h.noteService.Remove(ctx, req.GetId())
	if err != nil {
		return nil, handleError(err, map[string]string{"note_id": req.GetId()})
	}
	if note != nil {
		h.counter.NoteRemoved()
	}

	return &notesv1.RemoveResponse{
		Note: converter.ModelToProto(note),
	}, nil
}

// Search lists matching notes.
func (h *Handler) Search(ctx context.Context, req *notesv1.SearchRequest) (*notesv1.SearchResponse, error) {
	found, err := h.noteService.Search(ctx, req.GetQuery(), req.GetAll())
	if err != nil {
		return nil, handleError(err, nil)
	}

	return &notesv1.SearchResponse{
		Notes: converter.ModelsToProtos(found),
	}, nil
}

// handleError maps service errors to gRPC statuses with an ErrorInfo detail.
func handleError(err error, metadata map[string]string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}

	code, reason, msg := codes.Internal, ReasonInternal, "internal error"
	switch {
	case errors.Is(err, notes.ErrValidation):
		code, reason, msg = codes.InvalidArgument, ReasonValidation, err.Error()
	case errors.Is(err, model.ErrAddFailed):
		reason, msg = ReasonAddFailed, model.ErrAddFailed.Error()
	case errors.Is(err, model.ErrRemoveFailed):
		reason, msg = ReasonRemoveFailed, model.ErrRemoveFailed.Error()
	case errors.Is(err, model.ErrSearchFailed):
		reason, msg = ReasonSearchFailed, model.ErrSearchFailed.Error()
	}

	st, detailErr := status.New(code, msg).WithDetails(&errdetails.ErrorInfo{
		Reason:   reason,
		Domain:   ErrorDomain,
		Metadata: metadata,
	})
	if detailErr != nil {
		return status.Error(code, msg)
	}

	return st.Err()
}
