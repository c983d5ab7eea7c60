// Package editor composes a note in the user's text editor.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"bpp-notes/internal/model"
)

// DefaultCommand is used when $EDITOR is not set.
const DefaultCommand = "vim"

// ErrNoLineBreak means the composed text has no title/content separator.
var ErrNoLineBreak = errors.New("Invalid text: More than one line required. (First line is the title)")

// Editor runs an editor command on a scratch file.
type Editor struct {
	// Command is run through /bin/sh -c with the file path appended.
	Command string
	// Dir holds the scratch files; empty means os.TempDir().
	Dir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns an editor running $EDITOR, or vim, attached to the terminal.
func New() *Editor {
	cmd := strings.TrimSpace(os.Getenv("EDITOR"))
	if cmd == "" {
		cmd = DefaultCommand
	}

	return &Editor{
		Command: cmd,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Compose opens a fresh note_*.bpp file in the editor, waits for it to exit
// and returns what was written. The file is removed on every path.
func (e *Editor) Compose(ctx context.Context) (text string, err error) {
	f, err := os.CreateTemp(e.Dir, "note_*.bpp")
	if err != nil {
		return "", fmt.Errorf("%w: create scratch file: %v", model.ErrEditorFailed, err)
	}
	path := f.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = fmt.Errorf("%w: remove scratch file: %v", model.ErrEditorFailed, rmErr)
		}
	}()
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: close scratch file: %v", model.ErrEditorFailed, err)
	}

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", e.Command+` "$1"`, "sh", path)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: run %q: %v", model.ErrEditorFailed, e.Command, err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read scratch file: %v", model.ErrEditorFailed, err)
	}

	return string(b), nil
}

// Split cuts composed text at the first line break into title and content.
// The newline editors append to the last line is not a line break.
func Split(text string) (title, content string, err error) {
	text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")

	title, content, ok := strings.Cut(text, "\n")
	if !ok {
		return "", "", ErrNoLineBreak
	}

	return strings.TrimSuffix(title, "\r"), content, nil
}
