package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olgasafonova/commons-mcp-server/internal/commons"
	"github.com/olgasafonova/commons-mcp-server/internal/config"
)

// withUpstream points every endpoint at a test server and isolates config discovery
func withUpstream(t *testing.T, handler http.Handler) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("LANG", "en_US.UTF-8")
	t.Setenv("COMMONS_ENDPOINTS_TOOLFORGE", srv.URL+"/toolforge")
	t.Setenv("COMMONS_ENDPOINTS_SPARQL", srv.URL+"/sparql")
	t.Setenv("COMMONS_ENDPOINTS_CAMPAIGNS", srv.URL+"/campaigns.json")
	t.Setenv("COMMONS_ENDPOINTS_COMMONS_API", srv.URL+"/w/api.php")
	t.Setenv("COMMONS_LOG_LEVEL", "error")
	return dir
}

// run executes the command line and returns stdout
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestUploadsCommand(t *testing.T) {
	withUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/toolforge/uploadsbyuser.py", r.URL.Path)
		assert.Equal(t, "Jane", r.URL.Query().Get("user"))
		fmt.Fprint(w, "17")
	}))

	out, err := run(t, "uploads", "Jane")
	require.NoError(t, err)

	var got commons.CountResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, commons.CountResult{User: "Jane", Count: 17}, got)
}

func TestUploadsCommand_RequiresUser(t *testing.T) {
	withUpstream(t, http.NotFoundHandler())

	_, err := run(t, "uploads")
	assert.Error(t, err)
}

func TestUploadsCommand_UpstreamFailure(t *testing.T) {
	withUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))

	out, err := run(t, "uploads", "Jane")
	require.Error(t, err)
	assert.Empty(t, out)
}

func TestNearbyCommand_RequiresCoordinates(t *testing.T) {
	withUpstream(t, http.NotFoundHandler())

	_, err := run(t, "nearby", "--lat", "52.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lon")
}

func TestNearbyCommand(t *testing.T) {
	withUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sparql", r.URL.Path)
		query := r.URL.Query().Get("query")
		assert.Contains(t, query, "Point(13.4000 52.5000)")
		assert.Contains(t, query, `"de"`)
		w.Header().Set("Content-Type", "application/sparql-results+json")
		fmt.Fprint(w, `{"results": {"bindings": [{
			"item": {"type": "uri", "value": "http://www.wikidata.org/entity/Q64"},
			"label": {"type": "literal", "value": "Berlin"},
			"location": {"type": "literal", "value": "Point(13.4 52.5)"}
		}]}}`)
	}))

	out, err := run(t, "nearby", "--lat", "52.5", "--lon", "13.4", "--lang", "de")
	require.NoError(t, err)

	var got commons.NearbyPlacesResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, 1, got.Count)
	assert.Equal(t, "Q64", got.Places[0].WikidataID)
	assert.Equal(t, "Berlin", got.Places[0].Label)
}

func TestMediaCommand_ResumesAcrossRunsWithSQLite(t *testing.T) {
	var calls []string
	dir := withUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/w/api.php", r.URL.Path)
		cont := r.URL.Query().Get("gcmcontinue")
		calls = append(calls, cont)
		w.Header().Set("Content-Type", "application/json")
		if cont == "" {
			fmt.Fprint(w, `{"continue": {"gcmcontinue": "next", "continue": "gcmcontinue||"},
				"query": {"pages": {"1": {"pageid": 1, "ns": 6, "title": "File:A.jpg",
					"imageinfo": [{"url": "https://upload.example.org/a.jpg"}]}}}}`)
			return
		}
		fmt.Fprint(w, `{"batchcomplete": "", "query": {"pages": {"2": {"pageid": 2, "ns": 6, "title": "File:B.jpg",
			"imageinfo": [{"url": "https://upload.example.org/b.jpg"}]}}}}`)
	}))
	t.Setenv("COMMONS_STORE_DRIVER", "sqlite")
	t.Setenv("COMMONS_STORE_PATH", filepath.Join(dir, "state.db"))

	out, err := run(t, "media", "Category:Bridges")
	require.NoError(t, err)
	var first commons.MediaListResult
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	require.Len(t, first.Media, 1)
	assert.Equal(t, "File:A.jpg", first.Media[0].Title)
	assert.True(t, first.HasMore)

	// A fresh process reads the position written by the previous one.
	out, err = run(t, "media", "Category:Bridges")
	require.NoError(t, err)
	var second commons.MediaListResult
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	require.Len(t, second.Media, 1)
	assert.Equal(t, "File:B.jpg", second.Media[0].Title)
	assert.False(t, second.HasMore)

	assert.Equal(t, []string{"", "next"}, calls)
}

func TestServe_WithTracing(t *testing.T) {
	withUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/toolforge/uploadsbyuser.py", r.URL.Path)
		fmt.Fprint(w, "5")
	}))
	t.Setenv("COMMONS_TRACING_ENABLED", "true")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.True(t, cfg.Tracing.Enabled)

	var spans bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := &app{
		cfg:    cfg,
		logger: logger,
		stderr: &spans,
		client: commons.NewClient(cfg.CommonsEndpoints(), nil, commons.WithLogger(logger)),
	}

	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: "test"}, nil)
	serverT, clientT := mcp.NewInMemoryTransports()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, server, serverT) }()

	session, err := mcp.NewClient(&mcp.Implementation{Name: "cli-test", Version: "0.0.0"}, nil).Connect(ctx, clientT, nil)
	require.NoError(t, err)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "commons_upload_count",
		Arguments: map[string]any{"user": "Jane"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	cancel()
	require.NoError(t, <-done, "serve must start and stop cleanly with tracing enabled")
	_ = session.Close()

	// serve flushes the exporter before returning
	assert.Contains(t, spans.String(), "mcp.tool.commons_upload_count")
	assert.Contains(t, spans.String(), "upstream.toolforge.")
}

func TestResetCommand(t *testing.T) {
	withUpstream(t, http.NotFoundHandler())

	out, err := run(t, "reset-continuation", "Category:Bridges")
	require.NoError(t, err)

	var got commons.ResetContinuationResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, commons.ResetContinuationResult{Keyword: "Category:Bridges", Reset: true}, got)
}

func TestInvalidConfig(t *testing.T) {
	withUpstream(t, http.NotFoundHandler())
	t.Setenv("COMMONS_STORE_DRIVER", "etcd")

	_, err := run(t, "campaigns")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestCommandsRegistered(t *testing.T) {
	root := NewRootCmd()
	want := []string{
		"serve", "uploads", "edits", "achievements", "stats", "nearby",
		"campaigns", "potd", "media", "reset-continuation", "recent", "first-revision",
	}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if assert.NoError(t, err, name) {
			assert.Equal(t, name, cmd.Name())
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "commons.log")

	logger, closer, err := newLogger(config.LogConfig{Level: "info", Format: "text", File: path}, os.Stderr)
	require.NoError(t, err)
	logger.Info("to file", "n", 1)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "to file"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}
