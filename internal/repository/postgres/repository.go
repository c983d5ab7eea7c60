// Package postgres is the durable NoteRepository backed by PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"bpp-notes/internal/model"
	"bpp-notes/internal/repository"
	"bpp-notes/migrations"
)

const uniqueViolation = "23505"

const (
	insertNote = `INSERT INTO notes (id, title, content) VALUES ($1, $2, $3)
RETURNING id, title, content`
	deleteNote = `DELETE FROM notes WHERE id = $1
RETURNING id, title, content`
	searchNotes = `SELECT id, title, content FROM notes
WHERE strpos(title, $1) > 0 OR ($2 AND strpos(content, $1) > 0)
ORDER BY seq`
)

var _ repository.NoteRepository = (*Repository)(nil)

// Options configures the connection pool.
type Options struct {
	// ConnectionStr is "user@host:port/dbname" or a full postgres:// URL.
	ConnectionStr string
	Password      string
	RetryAttempts uint
	RetryDelay    time.Duration
	Logger        *slog.Logger
}

// Repository stores notes in the notes table.
type Repository struct {
	pool  *pgxpool.Pool
	newID func() string
}

// New connects, pings with retries and applies migrations.
func New(ctx context.Context, opts Options) (*Repository, error) {
	dsn, err := DSN(opts.ConnectionStr, opts.Password)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.RetryAttempts == 0 {
		opts.RetryAttempts = 1
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = 300 * time.Millisecond
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pgx pool: %w", err)
	}

	if err := retry.Do(
		func() error { return pool.Ping(ctx) },
		retry.Context(ctx),
		retry.Delay(opts.RetryDelay),
		retry.Attempts(opts.RetryAttempts),
		retry.OnRetry(func(attempt uint, err error) {
			opts.Logger.WarnContext(ctx, "failed ping to database",
				slog.Any("err", err),
				slog.Uint64("attempt", uint64(attempt)),
			)
		}),
	); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Migrate(pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &Repository{pool: pool, newID: func() string { return uuid.New().String() }}, nil
}

// Migrate applies the embedded goose migrations.
func Migrate(pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// DSN turns the configured connection string and password into a postgres URL.
func DSN(connectionStr, password string) (string, error) {
	connectionStr = strings.TrimSpace(connectionStr)
	if connectionStr == "" {
		return "", fmt.Errorf("%w: database connection string is required", model.ErrConfigInvalid)
	}

	if strings.HasPrefix(connectionStr, "postgres://") || strings.HasPrefix(connectionStr, "postgresql://") {
		u, err := url.Parse(connectionStr)
		if err != nil {
			return "", fmt.Errorf("%w: parse connection string: %v", model.ErrConfigInvalid, err)
		}
		if password != "" && u.User != nil {
			u.User = url.UserPassword(u.User.Username(), password)
		}
		return u.String(), nil
	}

	user, rest, ok := strings.Cut(connectionStr, "@")
	if !ok || user == "" || rest == "" {
		return "", fmt.Errorf("%w: connection string must look like user@host:port/dbname", model.ErrConfigInvalid)
	}
	host, database, _ := strings.Cut(rest, "/")

	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, password),
		Host:   host,
		Path:   database,
	}
	if password == "" {
		u.User = url.User(user)
	}

	return u.String(), nil
}

// Create inserts the note under a new UUID, retrying once on an id clash.
func (r *Repository) Create(ctx context.Context, note model.Note) (model.Note, error) {
	var created model.Note
	err := retry.Do(
		func() error {
			row := r.pool.QueryRow(ctx, insertNote, r.newID(), note.Title, note.Content)
			return row.Scan(&created.ID, &created.Title, &created.Content)
		},
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(0),
		retry.LastErrorOnly(true),
		retry.RetryIf(isUniqueViolation),
	)
	if err != nil {
		return model.Note{}, fmt.Errorf("insert note: %w", err)
	}

	return created, nil
}

// Delete removes the note and returns the deleted row.
func (r *Repository) Delete(ctx context.Context, id string) (model.Note, error) {
	var note model.Note
	err := r.pool.QueryRow(ctx, deleteNote, id).Scan(&note.ID, &note.Title, &note.Content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Note{}, model.ErrNoteNotFound
		}
		return model.Note{}, fmt.Errorf("delete note: %w", err)
	}

	return note, nil
}

// Search runs a single SELECT, which sees one snapshot of the table.
func (r *Repository) Search(ctx context.Context, query string, all bool) ([]model.Note, error) {
	rows, err := r.pool.Query(ctx, searchNotes, query, all)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}

	notes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Note, error) {
		var n model.Note
		err := row.Scan(&n.ID, &n.Title, &n.Content)
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan notes: %w", err)
	}
	if notes == nil {
		notes = []model.Note{}
	}

	return notes, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
