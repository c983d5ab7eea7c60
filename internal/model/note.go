package model

import (
	"errors"
	"strings"
)

// Note is a stored text note.
type Note struct {
	ID      string // assigned by the store, never changes
	Title   string // first line of user input
	Content string // everything after the first line
}

// String renders the note as "{title}: {content}".
func (n Note) String() string {
	return n.Title + ": " + n.Content
}

// Validate checks the fields a new note must carry.
func (n *Note) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return errors.New("title cannot be empty")
	}
	if strings.TrimSpace(n.Content) == "" {
		return errors.New("content cannot be empty")
	}
	return nil
}

// Matches reports whether query is a case-sensitive substring of the title,
// or of the title or content when all is set.
func (n *Note) Matches(query string, all bool) bool {
	if strings.Contains(n.Title, query) {
		return true
	}
	return all && strings.Contains(n.Content, query)
}
