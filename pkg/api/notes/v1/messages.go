// Package notesv1 is the wire contract of notes.v1.NotesService.
//
// Messages travel as JSON over gRPC (content-subtype "json"), so the package
// needs no generated protobuf code. Field names and optionality are part of
// the contract: a note is {id, title, content}; Add and Remove answer with an
// optional note, Search with a list.
package notesv1

import (
	"errors"
	"strings"
)

// ErrorDomain is the google.rpc.ErrorInfo domain of every service error.
const ErrorDomain = "notes.v1"

// ReasonValidation is the ErrorInfo reason of a rejected request.
const ReasonValidation = "VALIDATION_ERROR"

// Note is a note as seen on the wire.
type Note struct {
	Id      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (x *Note) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

func (x *Note) GetTitle() string {
	if x != nil {
		return x.Title
	}
	return ""
}

func (x *Note) GetContent() string {
	if x != nil {
		return x.Content
	}
	return ""
}

type AddRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (x *AddRequest) GetTitle() string {
	if x != nil {
		return x.Title
	}
	return ""
}

func (x *AddRequest) GetContent() string {
	if x != nil {
		return x.Content
	}
	return ""
}

// Validate requires a non-blank title and content.
func (x *AddRequest) Validate() error {
	if strings.TrimSpace(x.GetTitle()) == "" {
		return errors.New("invalid AddRequest.Title: value length must be at least 1 non-blank rune")
	}
	if strings.TrimSpace(x.GetContent()) == "" {
		return errors.New("invalid AddRequest.Content: value length must be at least 1 non-blank rune")
	}
	return nil
}

type AddResponse struct {
	Note *Note `json:"note,omitempty"`
}

func (x *AddResponse) GetNote() *Note {
	if x != nil {
		return x.Note
	}
	return nil
}

type RemoveRequest struct {
	Id string `json:"id"`
}

func (x *RemoveRequest) GetId() string {
	if x != nil {
		return x.Id
	}
	return ""
}

type RemoveResponse struct {
	Note *Note `json:"note,omitempty"`
}

func (x *RemoveResponse) GetNote() *Note {
	if x != nil {
		return x.Note
	}
	return nil
}

type SearchRequest struct {
	Query string `json:"query"`
	All   bool   `json:"all"`
}

func (x *SearchRequest) GetQuery() string {
	if x != nil {
		return x.Query
	}
	return ""
}

func (x *SearchRequest) GetAll() bool {
	if x != nil {
		return x.All
	}
	return false
}

type SearchResponse struct {
	Notes []*Note `json:"notes"`
}

func (x *SearchResponse) GetNotes() []*Note {
	if x != nil {
		return x.Notes
	}
	return nil
}
