package server

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bpp-notes/internal/client"
	"bpp-notes/internal/config"
	"bpp-notes/internal/logger"
	"bpp-notes/internal/model"
)

func testConfig(gateway bool) *config.Config {
	return &config.Config{
		Service:  &config.ConfigService{Name: "NoteService"},
		Database: &config.ConfigDatabase{Driver: config.DriverMemory},
		Logging:  &config.ConfigLogging{Level: "debug"},
		Server: &config.ConfigServer{
			PortGRPC:                8085,
			PortHTTP:                8086,
			GracefulShutdownTimeout: 1,
			RateLimitRPS:            1000,
			RateLimitBurst:          1000,
		},
		Gateway: &config.ConfigGateway{Enabled: gateway, CORSAllowedOrigins: "*"},
	}
}

func listen(t *testing.T) net.Listener {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return lis
}

func TestServer_ServeAndShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := New(ctx, testConfig(true), logger.Discard())
	require.NoError(t, err)

	grpcLis, httpLis := listen(t), listen(t)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, grpcLis, httpLis) }()

	conn, err := client.Dial(grpcLis.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	out := &bytes.Buffer{}
	invoker := client.New(conn.Notes(), client.WithOutput(out), client.WithTimeout(5*time.Second))

	code, err := invoker.Add(ctx, client.AddParams{Title: "Groceries", Content: "milk, eggs"})
	require.NoError(t, err)
	assert.Equal(t, client.ExitOK, code)

	resp, err := http.Get("http://" + httpLis.Addr().String() + "/v1/notes?query=Groceries")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "milk, eggs")

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_GatewayDisabled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	srv, err := New(ctx, testConfig(false), logger.Discard())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listen(t), nil) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig(false)
	cfg.Service.Name = ""

	_, err := New(context.Background(), cfg, logger.Discard())

	assert.ErrorIs(t, err, model.ErrConfigInvalid)
}

func TestNew_PostgresBadConnectionString(t *testing.T) {
	cfg := testConfig(false)
	cfg.Database = &config.ConfigDatabase{Driver: config.DriverPostgres, ConnectionStr: "not a dsn"}

	_, err := New(context.Background(), cfg, logger.Discard())

	assert.ErrorIs(t, err, model.ErrConfigInvalid)
}

func TestDialTarget(t *testing.T) {
	assert.Equal(t, "localhost:8085", dialTarget(&net.TCPAddr{IP: net.IPv6unspecified, Port: 8085}))
	assert.Equal(t, "127.0.0.1:9000", dialTarget(&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9000}))
}
