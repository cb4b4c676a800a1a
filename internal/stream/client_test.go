package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkedServer writes each chunk separately, flushing in between
func chunkedServer(t *testing.T, chunks ...string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, StreamPath, r.URL.Path)

		var req Request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.AIModel)

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, chunk := range chunks {
			_, _ = w.Write([]byte(chunk))
			flusher.Flush()
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestClientStream(t *testing.T) {
	srv, _ := chunkedServer(t,
		"data: {\"token\":\"Hoi\"}\n",
		"data: {\"tok",
		"en\":\" daar\"}\n",
		"data: {\"done\":true}\n",
	)

	var partials []string
	client := NewClient(srv.URL)
	text, err := client.Stream(context.Background(), "Hallo", func(s string) { partials = append(partials, s) })

	require.NoError(t, err)
	assert.Equal(t, "Hoi daar", text)
	assert.Equal(t, []string{"Hoi", "Hoi daar"}, partials)
}

func TestClientStreamErrorPayload(t *testing.T) {
	srv, _ := chunkedServer(t,
		"data: {\"token\":\"Ha\"}\n",
		"data: {\"error\":true,\"message\":\"quota exceeded\"}\n",
	)

	text, err := NewClient(srv.URL).Stream(context.Background(), "Hallo", nil)

	assert.Empty(t, text)
	var streamErr *StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, "quota exceeded", streamErr.Message)
	assert.False(t, IsCanceled(err))
}

func TestClientStreamEOFWithoutDone(t *testing.T) {
	srv, _ := chunkedServer(t, "data: {\"token\":\"Ha\"}\n")

	_, err := NewClient(srv.URL).Stream(context.Background(), "Hallo", nil)
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestClientStreamValidation(t *testing.T) {
	srv, calls := chunkedServer(t, "data: {\"done\":true}\n")
	client := NewClient(srv.URL)

	_, err := client.Stream(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, ErrEmptyPrompt)

	_, err = client.Stream(context.Background(), strings.Repeat("ë", MaxPromptLength+1), nil)
	assert.ErrorIs(t, err, ErrPromptTooLong)
	assert.True(t, IsValidation(err))

	assert.Equal(t, int32(0), calls.Load(), "validation must happen before any network call")
}

func TestValidatePromptCountsCharacters(t *testing.T) {
	assert.NoError(t, ValidatePrompt(strings.Repeat("ë", MaxPromptLength)))
	assert.ErrorIs(t, ValidatePrompt(strings.Repeat("a", MaxPromptLength+1)), ErrPromptTooLong)
}

func TestClientStreamHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"API key not configured"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Stream(context.Background(), "Hallo", nil)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Equal(t, "API key not configured", httpErr.Message)
	assert.Contains(t, err.Error(), "HTTP error! status: 500")
}

func TestClientStreamCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: {\"token\":\"Hoi\"}\n"))
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	var afterCancel atomic.Int32
	var canceled atomic.Bool

	text, err := NewClient(srv.URL).Stream(ctx, "Hallo", func(s string) {
		if canceled.Load() {
			afterCancel.Add(1)
		}
		canceled.Store(true)
		cancel()
	})

	assert.Empty(t, text)
	assert.ErrorIs(t, err, ErrCanceled)
	assert.True(t, IsCanceled(err))
	assert.Equal(t, int32(0), afterCancel.Load())
}

func TestClientStreamDeadlineIsNotCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(srv.URL).Stream(ctx, "Hallo", nil)
	require.Error(t, err)
	assert.False(t, IsCanceled(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, CompletePath, r.URL.Path)
		var req Request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "fast", req.AIModel)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Response{Response: "Dag " + req.Message, Success: true})
	}))
	defer srv.Close()

	text, err := NewClient(srv.URL+"/", WithModel("fast")).Complete(context.Background(), "Sarah")
	require.NoError(t, err)
	assert.Equal(t, "Dag Sarah", text)
}
