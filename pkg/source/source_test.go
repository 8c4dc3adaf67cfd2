package source_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reportpipe/pkg/source"
)

func req(t *testing.T, params map[string]any) source.Request {
	t.Helper()
	return source.Request{Service: "svc", Report: "rpt", DataDir: t.TempDir(), Params: params}
}

func TestGetUnknown(t *testing.T) {
	if _, err := source.Get("nope"); err == nil {
		t.Fatal("expected error for unknown downloader")
	}
}

func TestLocalPath(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "report.csv")
	if err := os.WriteFile(src, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := source.Get("localpath")
	if err != nil {
		t.Fatal(err)
	}
	r := req(t, map[string]any{"path": src})
	paths, err := d.Fetch(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 {
		t.Fatalf("paths: %v", paths)
	}
	// lands inside the service/report folder, original untouched
	if !strings.Contains(paths[0], filepath.Join("svc", "rpt")) {
		t.Fatalf("unexpected destination: %s", paths[0])
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatal("source file should remain in place")
	}
	b, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "a,b\n1,2\n" {
		t.Fatalf("content mismatch: %q", b)
	}
}

func TestLocalPathMissingParam(t *testing.T) {
	d, _ := source.Get("localpath")
	if _, err := d.Fetch(context.Background(), req(t, nil)); err == nil {
		t.Fatal("expected error without path")
	}
}

func TestLocalFolderPattern(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a.csv", "b.csv", "ignore.txt"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	d, _ := source.Get("localfolder")
	paths, err := d.Fetch(context.Background(), req(t, map[string]any{"path": dir, "pattern": "*.csv"}))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 files, got %v", paths)
	}
}

func TestLocalFolderNoMatches(t *testing.T) {
	d, _ := source.Get("localfolder")
	_, err := d.Fetch(context.Background(), req(t, map[string]any{"path": t.TempDir(), "pattern": "*.csv"}))
	if err == nil {
		t.Fatal("expected error when nothing matches")
	}
}

func TestHTTPFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sekret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte("a,b\n1,2\n"))
	}))
	defer srv.Close()
	t.Setenv("TEST_API_TOKEN", "sekret")

	d, err := source.Get("httpfile")
	if err != nil {
		t.Fatal(err)
	}
	paths, err := d.Fetch(context.Background(), req(t, map[string]any{
		"url":       srv.URL,
		"token_env": "TEST_API_TOKEN",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || filepath.Ext(paths[0]) != ".csv" {
		t.Fatalf("paths: %v", paths)
	}
	b, _ := os.ReadFile(paths[0])
	if string(b) != "a,b\n1,2\n" {
		t.Fatalf("content: %q", b)
	}
}

func TestHTTPFileStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	d, _ := source.Get("httpfile")
	if _, err := d.Fetch(context.Background(), req(t, map[string]any{"url": srv.URL})); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestHTTPFileTokenEnvUnset(t *testing.T) {
	d, _ := source.Get("httpfile")
	_, err := d.Fetch(context.Background(), req(t, map[string]any{
		"url":       "http://127.0.0.1:0/",
		"token_env": "REPORTPIPE_NO_SUCH_TOKEN",
	}))
	if err == nil {
		t.Fatal("expected error when token env is unset")
	}
}
