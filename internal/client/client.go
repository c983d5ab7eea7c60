// Package client dispatches notes operations to the server and turns the
// outcome into terminal output and a process exit status.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"bpp-notes/internal/converter"
	"bpp-notes/internal/editor"
	"bpp-notes/internal/logger"
	"bpp-notes/internal/model"
	notesv1 "bpp-notes/pkg/api/notes/v1"
)

// Exit statuses.
const (
	ExitOK       = 0
	ExitNoResult = 1
	ExitError    = 2
)

const (
	// DefaultAddress is where the server listens unless told otherwise.
	DefaultAddress = "[::1]:8085"
	// DefaultTimeout bounds every request.
	DefaultTimeout = 10 * time.Second
	// Separator follows every note printed by Search.
	Separator = "--------"
)

// Conn is a client connection to the notes server.
type Conn struct {
	cc *grpc.ClientConn
}

// Dial prepares a plaintext connection to addr. The connection is
// established lazily, so an unreachable server shows up on the first call.
func Dial(addr string, opts ...grpc.DialOption) (*Conn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	cc, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrConnectionFailed, addr, err)
	}

	return &Conn{cc: cc}, nil
}

// Notes returns the notes service client bound to the connection.
func (c *Conn) Notes() notesv1.NotesServiceClient {
	return notesv1.NewNotesServiceClient(c.cc)
}

// Close releases the connection.
func (c *Conn) Close() error {
	return c.cc.Close()
}

// Composer produces note text interactively.
type Composer interface {
	Compose(ctx context.Context) (string, error)
}

// Invoker runs one operation per call against the notes service.
type Invoker struct {
	api      notesv1.NotesServiceClient
	out      io.Writer
	timeout  time.Duration
	composer Composer
	log      *slog.Logger
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithOutput sets where results are printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(i *Invoker) { i.out = w }
}

// WithTimeout bounds each request. Non-positive values keep DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(i *Invoker) {
		if d > 0 {
			i.timeout = d
		}
	}
}

// WithComposer sets the composer used by Add in edit mode.
func WithComposer(c Composer) Option {
	return func(i *Invoker) { i.composer = c }
}

// WithLogger sets the debug logger.
func WithLogger(log *slog.Logger) Option {
	return func(i *Invoker) { i.log = log }
}

// New creates an Invoker on top of api.
func New(api notesv1.NotesServiceClient, opts ...Option) *Invoker {
	i := &Invoker{
		api:     api,
		out:     os.Stdout,
		timeout: DefaultTimeout,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(i)
	}

	return i
}

// AddParams are the caller-supplied fields of Add.
type AddParams struct {
	Title   string
	Content string
	// Edit composes title and content interactively instead.
	Edit bool
}

// Add creates a note. Missing fields fail with model.ErrInvalidParameters
// before anything is sent. Composed text without a line break prints a
// warning and returns ExitNoResult.
func (i *Invoker) Add(ctx context.Context, p AddParams) (int, error) {
	title, content := p.Title, p.Content

	if p.Edit {
		if i.composer == nil {
			return ExitError, fmt.Errorf("%w: no editor configured", model.ErrEditorFailed)
		}

		text, err := i.composer.Compose(ctx)
		if err != nil {
			return ExitError, err
		}

		title, content, err = editor.Split(text)
		if errors.Is(err, editor.ErrNoLineBreak) {
			fmt.Fprintln(i.out, err)
			return ExitNoResult, nil
		}
	}

	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return ExitError, fmt.Errorf("%w: title and content cannot be empty", model.ErrInvalidParameters)
	}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	i.log.Debug("sending request", slog.String("method", notesv1.NotesService_Add_FullMethodName))
	resp, err := i.api.Add(ctx, &notesv1.AddRequest{Title: title, Content: content})
	if err != nil {
		return ExitError, i.classify(model.OpAdd, err)
	}

	note := resp.GetNote()
	if note == nil {
		return ExitNoResult, nil
	}

	fmt.Fprintf(i.out, "Note added! #%s\n", note.GetId())
	return ExitOK, nil
}

// Remove deletes the note with id. An unknown id returns ExitNoResult.
func (i *Invoker) Remove(ctx context.Context, id string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	i.log.Debug("sending request", slog.String("method", notesv1.NotesService_Remove_FullMethodName))
	resp, err := i.api.Remove(ctx, &notesv1.RemoveRequest{Id: id})
	if err != nil {
		return ExitError, i.classify(model.OpRemove, err)
	}

	note := resp.GetNote()
	if note == nil {
		return ExitNoResult, nil
	}

	fmt.Fprintf(i.out, "Note removed! #%s\n", note.GetId())
	return ExitOK, nil
}

// Search prints every matching note followed by a separator line.
func (i *Invoker) Search(ctx context.Context, query string, all bool) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	i.log.Debug("sending request", slog.String("method", notesv1.NotesService_Search_FullMethodName))
	resp, err := i.api.Search(ctx, &notesv1.SearchRequest{Query: query, All: all})
	if err != nil {
		return ExitError, i.classify(model.OpSearch, err)
	}

	found := converter.ProtosToModels(resp.GetNotes())
	if len(found) == 0 {
		fmt.Fprintln(i.out, "No notes found!")
		return ExitOK, nil
	}

	for _, note := range found {
		fmt.Fprintln(i.out, note.String())
		fmt.Fprintln(i.out, Separator)
	}

	return ExitOK, nil
}

// classify turns an RPC error into model.ErrConnectionFailed or an
// OperationError for op.
func (i *Invoker) classify(op model.Op, err error) error {
	st := status.Convert(err)

	attrs := []any{slog.String("op", string(op)), slog.String("code", st.Code().String())}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			attrs = append(attrs, slog.String("reason", info.GetReason()))
		}
	}
	i.log.Debug("request failed", attrs...)

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", model.ErrConnectionFailed, st.Message())
	default:
		return model.NewOperationError(op, errors.New(st.Message()))
	}
}
