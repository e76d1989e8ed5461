package internal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayen-ai/bayen-go/pkg/models"
	"github.com/bayen-ai/bayen-go/pkg/role"
)

func TestCallSetsHeadersAndBody(t *testing.T) {
	var gotHeaders http.Header
	var gotBody map[string]any
	testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		gotHeaders = req.Header.Clone()
		require.NoError(t, json.NewDecoder(req.Body).Decode(&gotBody))
		res.WriteHeader(http.StatusOK)
		_, _ = res.Write([]byte("ok"))
	}))
	defer testServer.Close()

	wrapper := NewWrapperImpl(testServer.URL, "sk-bayen-test", 5*time.Second)
	res, err := wrapper.Call(context.Background(), &ChatRequest{
		Model:     models.BayenLite,
		Messages:  []ChatMessage{{Role: role.User, Content: "سؤال"}},
		MaxTokens: 256,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, []byte("ok"), res.Body)

	assert.Equal(t, "sk-bayen-test", gotHeaders.Get("X-API-Key"))
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))

	assert.Equal(t, models.BayenLite, gotBody["model"])
	assert.Equal(t, float64(256), gotBody["max_tokens"])
	_, present := gotBody["structured_output"]
	assert.False(t, present, "structured_output must be omitted when unset")
}

func TestCallSendsStructuredOutputFalse(t *testing.T) {
	var gotBody map[string]any
	testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		require.NoError(t, json.NewDecoder(req.Body).Decode(&gotBody))
		_, _ = res.Write([]byte("## answer"))
	}))
	defer testServer.Close()

	structured := false
	wrapper := NewWrapperImpl(testServer.URL, "sk-bayen-test", 5*time.Second)
	_, err := wrapper.Call(context.Background(), &ChatRequest{
		Model:            models.BayenPro,
		Messages:         []ChatMessage{{Role: role.User, Content: "سؤال"}},
		StructuredOutput: &structured,
	})
	require.NoError(t, err)
	assert.Equal(t, false, gotBody["structured_output"])
}

func TestCallReturnsNonOKStatusWithoutError(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		res.WriteHeader(http.StatusBadGateway)
		_, _ = res.Write([]byte("upstream down"))
	}))
	defer testServer.Close()

	wrapper := NewWrapperImpl(testServer.URL, "sk-bayen-test", 5*time.Second)
	res, err := wrapper.Call(context.Background(), &ChatRequest{
		Model:    models.BayenPro,
		Messages: []ChatMessage{{Role: role.User, Content: "سؤال"}},
	})
	require.NoError(t, err, "transport is single-attempt and does not classify")
	assert.Equal(t, http.StatusBadGateway, res.Status)
	assert.Equal(t, "upstream down", string(res.Body))
}

func TestCallTimeout(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		select {
		case <-req.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer testServer.Close()

	wrapper := NewWrapperImpl(testServer.URL, "sk-bayen-test", 30*time.Millisecond)
	_, err := wrapper.Call(context.Background(), &ChatRequest{
		Model:    models.BayenPro,
		Messages: []ChatMessage{{Role: role.User, Content: "سؤال"}},
	})
	require.Error(t, err)
	kind, retryable := classifyNetErr(err)
	assert.True(t, retryable)
	assert.Equal(t, "timeout", kind.String())
}

func TestCallCancellation(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		// Drain the body so the server's background read can observe the
		// client disconnect and cancel the request context.
		_, _ = io.Copy(io.Discard, req.Body)
		<-req.Context().Done()
	}))
	defer testServer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	wrapper := NewWrapperImpl(testServer.URL, "sk-bayen-test", 5*time.Second)
	_, err := wrapper.Call(ctx, &ChatRequest{
		Model:    models.BayenPro,
		Messages: []ChatMessage{{Role: role.User, Content: "سؤال"}},
	})
	assert.ErrorIs(t, err, context.Canceled)
}
