package cmd

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/icons/cmd/icons/internal/cachedir"
	"github.com/go-drift/icons/pkg/fetch"
	"github.com/go-drift/icons/pkg/icon"
	"github.com/go-drift/icons/pkg/manager"
	"github.com/go-drift/icons/pkg/provider"
)

const homeSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="24" height="24"><path d="M3 12l9-9 9 9"/></svg>`

const projectConfig = `
attributes:
  class: icon
providers:
  - prefix: app
    type: directory
    path: icons
aliases:
  house: app:home
`

const mdiJSON = `{"prefix":"mdi","width":24,"height":24,"icons":{"account":{"body":"<circle r=\"4\"/>"}}}`

// captureOutput redirects command output for the rest of the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

// newProject creates a project directory with icons.yaml and an isolated
// cache, and makes it the working directory.
func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "icons.yaml"), []byte(projectConfig), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "icons"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "icons", "home.svg"), []byte(homeSVG), 0o644))
	t.Setenv("ICONS_CACHE_DIR", filepath.Join(root, ".cache"))
	t.Chdir(root)
	t.Cleanup(func() { cachedir.SetCacheDir("") })
	return root
}

func TestRunHelpAndVersion(t *testing.T) {
	out := captureOutput(t)
	require.NoError(t, run(nil))
	assert.Contains(t, out.String(), "Commands:")
	for _, name := range []string{"get", "has", "list", "fetch", "cache", "serve"} {
		assert.Contains(t, out.String(), name)
	}

	out.Reset()
	require.NoError(t, run([]string{"--version"}))
	assert.Contains(t, out.String(), "icons version "+Version)

	out.Reset()
	require.NoError(t, run([]string{"get", "--help"}))
	assert.Contains(t, out.String(), "icons get")
}

func TestRunUnknownCommand(t *testing.T) {
	captureOutput(t)
	assert.ErrorContains(t, run([]string{"frobnicate"}), "unknown command")
	assert.ErrorContains(t, run([]string{"--cache-dir"}), "requires a directory")
}

func TestGetCommand(t *testing.T) {
	newProject(t)
	out := captureOutput(t)

	require.NoError(t, run([]string{"get", "--attr", "aria-label=Home", "--class", "lg", "app:home", "house"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, lines[0], lines[1])
	assert.Contains(t, lines[0], `class="icon lg"`)
	assert.Contains(t, lines[0], `role="img"`)
	assert.NotContains(t, lines[0], "aria-hidden")

	assert.ErrorContains(t, run([]string{"get", "app:missing"}), "icon not found")
	assert.ErrorContains(t, run([]string{"get"}), "at least one")
	assert.ErrorContains(t, run([]string{"get", "--bogus", "app:home"}), "unknown flag")
}

func TestHasAndListCommands(t *testing.T) {
	newProject(t)
	out := captureOutput(t)

	require.NoError(t, run([]string{"has", "app:home", "house"}))
	assert.Equal(t, "app:home: found\nhouse: found\n", out.String())

	out.Reset()
	err := run([]string{"has", "app:home", "::"})
	assert.ErrorContains(t, err, "1 of 2 icons missing")
	assert.Contains(t, out.String(), ":: missing")

	out.Reset()
	require.NoError(t, run([]string{"list"}))
	assert.Equal(t, "app\n", out.String())

	out.Reset()
	require.NoError(t, run([]string{"list", "app"}))
	assert.Equal(t, "app:home\n", out.String())
}

func TestFetchRegistersCollection(t *testing.T) {
	root := newProject(t)
	out := captureOutput(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mdiJSON))
	}))
	t.Cleanup(srv.Close)

	sum := sha256.Sum256([]byte(mdiJSON))
	require.NoError(t, run([]string{"fetch", "--url", srv.URL + "/mdi.json", "--sha256", hex.EncodeToString(sum[:]), "mdi"}))
	assert.Contains(t, out.String(), "1 icons")
	assert.FileExists(t, filepath.Join(root, ".cache", "collections", "mdi.json"))

	out.Reset()
	require.NoError(t, run([]string{"get", "mdi:account"}))
	assert.Contains(t, out.String(), `<circle r="4"/>`)

	out.Reset()
	require.NoError(t, run([]string{"list"}))
	assert.Equal(t, "app\nmdi\n", out.String())
}

func TestFetchCollectionsRejectsInvalidDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prefix":"x"}`))
	}))
	t.Cleanup(srv.Close)
	captureOutput(t)

	dir := t.TempDir()
	d := fetch.NewDownloaderWithClient(srv.Client())
	err := FetchCollections(context.Background(), d, dir, FetchOptions{Prefixes: []string{"x"}, URL: srv.URL})
	assert.ErrorContains(t, err, "invalid source data")
	assert.NoFileExists(t, filepath.Join(dir, "x.json"))

	err = FetchCollections(context.Background(), d, dir, FetchOptions{Prefixes: []string{"a", "b"}, URL: srv.URL})
	assert.ErrorContains(t, err, "exactly one prefix")

	err = FetchCollections(context.Background(), d, dir, FetchOptions{Prefixes: []string{"../etc"}})
	assert.ErrorContains(t, err, "invalid collection prefix")
}

func TestCacheCommands(t *testing.T) {
	root := newProject(t)
	out := captureOutput(t)

	require.NoError(t, run([]string{"cache", "info"}))
	assert.Contains(t, out.String(), "Backend:  file")
	assert.Contains(t, out.String(), "Entries:  0")
	assert.Contains(t, out.String(), filepath.Join(root, ".cache"))

	out.Reset()
	require.NoError(t, run([]string{"cache", "prune"}))
	assert.Contains(t, out.String(), "Removed 0 expired entries")

	out.Reset()
	require.NoError(t, run([]string{"cache", "clear"}))
	assert.Contains(t, out.String(), "Cache cleared")

	out.Reset()
	require.NoError(t, run([]string{"--cache-dir", filepath.Join(root, "other"), "cache", "clear", "--all"}))
	assert.Contains(t, out.String(), filepath.Join(root, "other"))

	assert.ErrorContains(t, run([]string{"cache", "bogus"}), "unknown cache subcommand")
}

func TestParseAttrFlags(t *testing.T) {
	attrs, rest, err := parseAttrFlags([]string{"a:b", "--attr", "fill=red", "--attr=stroke=none", "--size", "32", "--class", "x", "--class", "y", "c:d"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a:b", "c:d"}, rest)
	assert.Equal(t, []string{"fill", "stroke", "width", "height", "class"}, attrs.Names())
	assert.Equal(t, "x y", attrs.Value("class"))
	assert.Equal(t, "32", attrs.Value("height"))

	_, _, err = parseAttrFlags([]string{"--attr", "novalue"})
	assert.ErrorContains(t, err, "expected name=value")
	_, _, err = parseAttrFlags([]string{"--attr"})
	assert.Error(t, err)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	m := manager.New(manager.Options{})
	require.NoError(t, m.Register("mdi", provider.NewCollection([]byte(mdiJSON))))
	srv := httptest.NewServer(newServer(m, slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, http.Header, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header, string(body)
}

func TestServeIcon(t *testing.T) {
	srv := newTestServer(t)

	status, header, body := get(t, srv.URL+"/mdi/account.svg?class=big&aria-label=Account")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "image/svg+xml", header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "<svg "))
	assert.Contains(t, body, `xmlns="http://www.w3.org/2000/svg"`)
	assert.Contains(t, body, `class="big"`)
	assert.Contains(t, body, `role="img"`)

	status, _, _ = get(t, srv.URL+"/mdi/missing.svg")
	assert.Equal(t, http.StatusNotFound, status)
	status, _, _ = get(t, srv.URL+"/nope/account.svg")
	assert.Equal(t, http.StatusNotFound, status)
	status, _, _ = get(t, srv.URL+"/mdi/account.png")
	assert.Equal(t, http.StatusNotFound, status)
	status, _, _ = get(t, srv.URL+"/mdi/a:b.svg")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _, body = get(t, srv.URL+"/prefixes")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `["mdi"]`, body)

	status, _, body = get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)
}

func TestQueryAttributesAreSorted(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x/y.svg?width=2&class=a&class=b", nil)
	attrs := queryAttributes(req)
	assert.True(t, attrs.Equal(icon.NewAttributes("class", "a", "width", "2")))
}

func TestQueryAttributesDropEventHandlers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x/y.svg?onmouseover=alert(1)&ONLOAD=x&href=javascript:alert(2)&class=a", nil)
	attrs := queryAttributes(req)
	assert.True(t, attrs.Equal(icon.NewAttributes("class", "a", "href", "#")))
}

func TestServeStripsEventHandlers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "home.svg"),
		[]byte(`<svg onload="alert(2)" width="24"><path d="M0"/></svg>`), 0o644))
	d, err := provider.NewDirectory(dir)
	require.NoError(t, err)
	m := manager.New(manager.Options{})
	require.NoError(t, m.Register("t", d))
	srv := httptest.NewServer(newServer(m, slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(srv.Close)

	status, _, body := get(t, srv.URL+"/t/home.svg?onmouseover=alert(1)")
	assert.Equal(t, http.StatusOK, status)
	assert.NotContains(t, strings.ToLower(body), "onload")
	assert.NotContains(t, strings.ToLower(body), "onmouseover")
	assert.Contains(t, body, `<path d="M0"/>`)
}
