package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestHTTPShimCall(t *testing.T) {
	t.Run("decodes a JSON body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, PathPoll, r.URL.Path)
			w.Write([]byte(`{"execution":"Running"}`))
		}))
		defer srv.Close()

		shim := NewHTTPShim(time.Second)
		res, err := shim.Call(context.Background(), srv.URL, PathPoll)
		require.NoError(t, err)
		assert.Equal(t, "Running", res.Get("execution").String())
	})

	t.Run("ignores status codes", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`[1,2]`))
		}))
		defer srv.Close()

		res, err := NewHTTPShim(time.Second).Call(context.Background(), srv.URL, "/breakpoints/set")
		require.NoError(t, err)
		assert.True(t, res.IsArray())
		assert.Len(t, res.Array(), 2)
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		_, err := NewHTTPShim(time.Second).Call(context.Background(), srv.URL, PathPoll)
		require.ErrorIs(t, err, ErrDecode)
	})

	t.Run("reports unreachable servers", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		_, err := NewHTTPShim(time.Second).Call(context.Background(), url, PathPoll)
		require.ErrorIs(t, err, ErrRequest)
	})

	t.Run("passes the query through", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/src/main.cf", r.URL.Query().Get("path"))
			assert.Equal(t, "3,7", r.URL.Query().Get("lines"))
			w.Write([]byte(`[3,7]`))
		}))
		defer srv.Close()

		shim := NewHTTPShimWithClient(srv.Client())
		_, err := shim.Call(context.Background(), srv.URL, SetBreakpointsPath("/src/main.cf", []int{3, 7}))
		require.NoError(t, err)
	})
}

func TestShimFunc(t *testing.T) {
	var gotPath string
	shim := ShimFunc(func(ctx context.Context, baseURL, path string) (gjson.Result, error) {
		gotPath = baseURL + path
		return gjson.Parse(`{"content":"x"}`), nil
	})

	res, err := shim.Call(context.Background(), "http://x", PathStackTrace)
	require.NoError(t, err)
	assert.Equal(t, "http://x/stacktrace", gotPath)
	assert.Equal(t, "x", res.Get("content").String())
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/sources/content?uri=file%3A%2F%2F%2Fa+b.cf", SourceContentPath("file:///a b.cf"))
	assert.Equal(t, "/breakpoints/set?path=main.cf&lines=1,2,30", SetBreakpointsPath("main.cf", []int{1, 2, 30}))
	assert.Equal(t, "/breakpoints/set?path=main.cf&lines=", SetBreakpointsPath("main.cf", nil))
}
