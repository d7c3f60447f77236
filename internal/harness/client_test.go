package harness

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contract_testing/internal/testutil"
)

func TestNewClientValidatesBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost/api", "ftp://host/x", "http://", "://bad"} {
		_, err := NewClient(raw, nil, nil)
		assert.Error(t, err, raw)
	}

	c, err := NewClient("http://localhost/api_testing/", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/api_testing", c.BaseURL())
	assert.Equal(t, "http://localhost/api_testing/product/read_one.php?id=2",
		c.URL(Endpoint{Method: http.MethodGet, Path: "/product/read_one.php"}, map[string]string{"id": "2"}))
}

type captured struct {
	method      string
	path        string
	query       string
	contentType string
	custom      string
	body        string
}

func captureServer(t *testing.T, status int, body string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		*got = captured{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.RawQuery,
			contentType: r.Header.Get("Content-Type"),
			custom:      r.Header.Get("X-Trace"),
			body:        string(raw),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestExecuteSendsRequest(t *testing.T) {
	srv, got := captureServer(t, http.StatusCreated, `{"message":"Product was created."}`)
	c, err := NewClient(srv.URL+"/api_testing", nil, nil)
	require.NoError(t, err)

	ep := Endpoint{Method: http.MethodPost, Path: "/product/create.php"}
	resp, err := c.Execute(context.Background(), ep, Request{
		Query:   map[string]string{"a": "1"},
		Header:  map[string]string{"X-Trace": "t1"},
		Payload: map[string]any{"name": "Water Bottle", "price": 12},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api_testing/product/create.php", got.path)
	assert.Equal(t, "a=1", got.query)
	assert.Equal(t, "application/json", got.contentType)
	assert.Equal(t, "t1", got.custom)
	assert.JSONEq(t, `{"name":"Water Bottle","price":12}`, got.body)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, ep, resp.Endpoint)
	assert.Equal(t, got.body, resp.RequestBody)
	assert.Equal(t, `{"message":"Product was created."}`, string(resp.Body))
	assert.Equal(t, "application/json", resp.Header.Get("content-type"))
	assert.True(t, strings.HasPrefix(resp.Curl, "curl -X POST "))
	assert.Contains(t, resp.Curl, "-H 'X-Trace: t1'")
	assert.Contains(t, resp.Curl, srv.URL+"/api_testing/product/create.php?a=1")
}

func TestExecuteRawBodyIsSentVerbatim(t *testing.T) {
	srv, got := captureServer(t, http.StatusOK, `{}`)
	c, err := NewClient(srv.URL, nil, nil)
	require.NoError(t, err)

	body := `{"name":"Water Bottle","price":12}`
	_, err = c.Execute(context.Background(), Endpoint{Method: http.MethodPut, Path: "/x"}, Request{Body: body})
	require.NoError(t, err)
	assert.Equal(t, body, got.body)
}

func TestExecuteGetHasNoContentType(t *testing.T) {
	srv, got := captureServer(t, http.StatusOK, `{}`)
	c, err := NewClient(srv.URL, nil, nil)
	require.NoError(t, err)

	_, err = c.Execute(context.Background(), Endpoint{Method: http.MethodGet, Path: "/x"}, Request{})
	require.NoError(t, err)
	assert.Empty(t, got.contentType)
	assert.Empty(t, got.body)
}

func TestExecuteNon2xxIsNotAnError(t *testing.T) {
	srv, _ := captureServer(t, http.StatusNotFound, `{"message":"Product does not exist."}`)
	c, err := NewClient(srv.URL, nil, nil)
	require.NoError(t, err)

	resp, err := c.Execute(context.Background(), Endpoint{Method: http.MethodGet, Path: "/x"}, Request{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExecuteRejectsInvalidRequest(t *testing.T) {
	c, err := NewClient("http://localhost", nil, nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		ep   Endpoint
		req  Request
	}{
		{"empty method", Endpoint{Path: "/x"}, Request{}},
		{"empty path", Endpoint{Method: http.MethodGet}, Request{}},
		{"unsupported method", Endpoint{Method: "PATCH", Path: "/x"}, Request{}},
		{"body and payload", Endpoint{Method: http.MethodPost, Path: "/x"}, Request{Body: "{}", Payload: map[string]int{}}},
		{"unencodable payload", Endpoint{Method: http.MethodPost, Path: "/x"}, Request{Payload: make(chan int)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Execute(context.Background(), tt.ep, tt.req)
			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, "request", Kind(err))
		})
	}
}

func TestExecuteTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClient(base, nil, nil)
	require.NoError(t, err)

	_, err = c.Execute(context.Background(), Endpoint{Method: http.MethodGet, Path: "/product/read.php"}, Request{})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, base+"/product/read.php", te.URL)
	assert.Equal(t, "transport", Kind(err))
}

func TestExecuteTimeoutIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, &http.Client{Timeout: 50 * time.Millisecond}, nil)
	require.NoError(t, err)

	_, err = c.Execute(context.Background(), Endpoint{Method: http.MethodGet, Path: "/slow"}, Request{})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.False(t, te.Canceled)
	assert.Equal(t, "transport", Kind(err))
}

func TestExecuteCanceledContext(t *testing.T) {
	srv, _ := captureServer(t, http.StatusOK, `{}`)
	c, err := NewClient(srv.URL, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Execute(ctx, Endpoint{Method: http.MethodGet, Path: "/x"}, Request{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.True(t, te.Canceled)
	assert.Equal(t, "canceled", Kind(err))
}

func TestExecuteContextDeadlineIsCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Execute(ctx, Endpoint{Method: http.MethodGet, Path: "/slow"}, Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "canceled", Kind(err))
}

func TestExecuteAgainstCatalog(t *testing.T) {
	srv := testutil.NewServer(t)
	c, err := NewClient(srv.BaseURL, nil, nil)
	require.NoError(t, err)

	resp, err := c.Execute(context.Background(),
		Endpoint{Method: http.MethodGet, Path: "/product/read_one.php"},
		Request{Query: map[string]string{"id": "2"}})
	require.NoError(t, err)

	v, err := resp.JSON()
	require.NoError(t, err)
	assert.Equal(t, `"Cross-Back Training Tank"`, v.Get("name").String())
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))
}
