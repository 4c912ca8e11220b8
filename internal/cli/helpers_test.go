package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vburojevic/cfdbg/internal/config"
)

// testGlobals creates a Globals struct with captured stdout/stderr
func testGlobals(format string) (*Globals, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &Globals{
		Format:         format,
		Quiet:          false,
		Verbose:        false,
		URL:            "http://127.0.0.1:1",
		RequestTimeout: 2 * time.Second,
		Stdin:          strings.NewReader(""),
		Stdout:         stdout,
		Stderr:         stderr,
		Config:         config.Default(),
	}, stdout, stderr
}

// syncBuffer is a bytes.Buffer safe for concurrent writers
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// fakeServer answers debug server requests from a route table keyed by
// path or by path?query
type fakeServer struct {
	*httptest.Server
	mu     sync.Mutex
	routes map[string]string
	hits   map[string]int
}

func newFakeServer(t *testing.T, routes map[string]string) *fakeServer {
	t.Helper()
	f := &fakeServer{routes: routes, hits: make(map[string]int)}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		key := r.URL.RequestURI()
		body, ok := f.routes[key]
		if !ok {
			key = r.URL.Path
			body, ok = f.routes[key]
		}
		f.hits[key]++
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("not json"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeServer) set(key, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[key] = body
}

func (f *fakeServer) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
