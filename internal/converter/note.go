package converter

import (
	"bpp-notes/internal/model"
	notesv1 "bpp-notes/pkg/api/notes/v1"
)

// ProtoToModel converts a wire note to the domain model.
func ProtoToModel(protoNote *notesv1.Note) model.Note {
	if protoNote == nil {
		return model.Note{}
	}

	return model.Note{
		ID:      protoNote.GetId(),
		Title:   protoNote.GetTitle(),
		Content: protoNote.GetContent(),
	}
}

// ModelToProto converts a domain note to the wire type. A nil note stays nil.
func ModelToProto(note *model.Note) *notesv1.Note {
	if note == nil {
		return nil
	}

	return &notesv1.Note{
		Id:      note.ID,
		Title:   note.Title,
		Content: note.Content,
	}
}

// ModelsToProtos converts a slice; the result is never nil so an empty
// search still serializes as [].
func ModelsToProtos(notes []model.Note) []*notesv1.Note {
	protoNotes := make([]*notesv1.Note, len(notes))
	for i := range notes {
		protoNotes[i] = ModelToProto(&notes[i])
	}

	return protoNotes
}

// ProtosToModels converts wire notes back to domain notes.
func ProtosToModels(protoNotes []*notesv1.Note) []model.Note {
	notes := make([]model.Note, 0, len(protoNotes))
	for _, n := range protoNotes {
		if n == nil {
			continue
		}
		notes = append(notes, ProtoToModel(n))
	}

	return notes
}
