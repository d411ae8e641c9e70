package helpers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "sjsage522/machineryworker/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() FetchOptions {
	return FetchOptions{
		UserAgent:       "machinery-test-agent/1.0",
		Timeout:         2 * time.Second,
		FollowRedirects: true,
		Site:            "Test",
	}
}

func TestFetchDocument(t *testing.T) {
	// Create a test server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check that headers are set
		assert.Equal(t, "machinery-test-agent/1.0", r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("Accept-Language"))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>Trator John Deere</body></html>"))
	}))
	defer server.Close()

	reader, err := FetchDocument(context.Background(), server.URL, testOptions())
	require.NoError(t, err)

	body, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "Trator John Deere")
}

func TestFetchDocumentNonUTF8(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.WriteHeader(http.StatusOK)
		// "Publicação" in ISO-8859-1
		w.Write([]byte("<html><body>Publica\xe7\xe3o</body></html>"))
	}))
	defer server.Close()

	reader, err := FetchDocument(context.Background(), server.URL, testOptions())
	require.NoError(t, err)

	body, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "Publicação")
}

func TestFetchDocumentErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := FetchDocument(context.Background(), server.URL, testOptions())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 500")
	assert.Equal(t, apperrors.ErrorTypeHTTPStatus, apperrors.TypeOf(err))

	// Test with rate limiting
	serverRateLimited := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer serverRateLimited.Close()

	_, err = FetchDocument(context.Background(), serverRateLimited.URL, testOptions())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited for 1m0s")
	assert.Equal(t, apperrors.ErrorTypeRateLimit, apperrors.TypeOf(err))
}

func TestFetchDocumentTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	opts := testOptions()
	opts.Timeout = 50 * time.Millisecond

	_, err := FetchDocument(context.Background(), server.URL, opts)
	assert.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeNetwork, apperrors.TypeOf(err))
}

func TestFetchDocumentRedirectPolicy(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>moved here</body></html>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	reader, err := FetchDocument(context.Background(), server.URL+"/old", testOptions())
	require.NoError(t, err)
	body, _ := io.ReadAll(reader)
	assert.Contains(t, string(body), "moved here")

	opts := testOptions()
	opts.FollowRedirects = false
	_, err = FetchDocument(context.Background(), server.URL+"/old", opts)
	assert.Error(t, err)
}

func TestFetchDocumentInvalidURL(t *testing.T) {
	_, err := FetchDocument(context.Background(), "http://invalid.url.that.does.not.exist", testOptions())
	assert.Error(t, err)

	_, err = FetchDocument(context.Background(), "://bad", testOptions())
	assert.Error(t, err)
}
