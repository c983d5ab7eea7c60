package gateway

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	grpcapi "bpp-notes/internal/api/grpc"
	"bpp-notes/internal/api/http/middleware"
	"bpp-notes/internal/logger"
	"bpp-notes/internal/metrics"
	"bpp-notes/internal/repository/memory"
	"bpp-notes/internal/service/notes"
	notesv1 "bpp-notes/pkg/api/notes/v1"
)

func newTestGateway(t *testing.T) (http.Handler, *metrics.Metrics) {
	t.Helper()

	log := logger.Discard()
	m := metrics.New()

	noteSvc, err := notes.NewNoteService("NoteService", memory.NewRepository(), log)
	require.NoError(t, err)

	srv := grpcapi.NewServer(grpcapi.NewHandler(noteSvc, m), log, grpcapi.ServerOptions{
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		Interceptors:   []grpc.UnaryServerInterceptor{m.UnaryServerInterceptor()},
	})

	lis := bufconn.Listen(1024 * 1024)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	h, err := New(conn, log, Options{
		CORSAllowedOrigins: "*",
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
		Metrics:            m.Handler(),
		Observers:          []middleware.Observer{m.ObserveHTTP},
	})
	require.NoError(t, err)

	return h, m
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGateway_AddSearchRemove(t *testing.T) {
	h, _ := newTestGateway(t)

	rec := do(t, h, http.MethodPost, "/v1/notes", `{"title":"Groceries","content":"milk, eggs"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var added notesv1.AddResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &added))
	require.NotNil(t, added.Note)
	id := added.Note.Id
	assert.NotEmpty(t, id)

	rec = do(t, h, http.MethodGet, "/v1/notes?query=milk&all=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var found notesv1.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Len(t, found.Notes, 1)
	assert.Equal(t, "Groceries", found.Notes[0].Title)

	rec = do(t, h, http.MethodGet, "/v1/notes?query=milk", "")
	found = notesv1.SearchResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	assert.Empty(t, found.Notes, "title-only search misses content")

	rec = do(t, h, http.MethodDelete, "/v1/notes/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var removed notesv1.RemoveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &removed))
	require.NotNil(t, removed.Note)
	assert.Equal(t, id, removed.Note.Id)

	rec = do(t, h, http.MethodDelete, "/v1/notes/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	removed = notesv1.RemoveResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &removed))
	assert.Nil(t, removed.Note, "second removal is absent")
}

func TestGateway_AddValidation(t *testing.T) {
	h, _ := newTestGateway(t)

	rec := do(t, h, http.MethodPost, "/v1/notes", `{"title":"","content":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/notes", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGateway_SearchBadAll(t *testing.T) {
	h, _ := newTestGateway(t)

	rec := do(t, h, http.MethodGet, "/v1/notes?query=x&all=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGateway_HealthAndMetrics(t *testing.T) {
	h, _ := newTestGateway(t)

	rec := do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SERVING")

	do(t, h, http.MethodPost, "/v1/notes", `{"title":"t","content":"c"}`)

	rec = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "notes_added_total 1")
	assert.Contains(t, rec.Body.String(), `notes_http_requests_total{method="POST",status="201"} 1`)
}

func TestGateway_CORS(t *testing.T) {
	h, _ := newTestGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
