package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/myrjola/sherlockchat/internal/e2etest"
	"github.com/stretchr/testify/require"
)

// testEnv returns a lookupEnv that serves the test cases from an in-memory database with the mock LLM.
func testEnv(overrides map[string]string) func(string) (string, bool) {
	env := map[string]string{
		"SHERLOCK_ADDR":         "localhost:0",
		"SHERLOCK_PPROF_ADDR":   "",
		"SHERLOCK_SQLITE_URL":   ":memory:",
		"SHERLOCK_CASES_DIR":    "testdata/cases",
		"SHERLOCK_RULES_DIR":    "testdata/cases/rules",
		"SHERLOCK_LLM_PROVIDER": "mock",
	}
	for k, v := range overrides {
		env[k] = v
	}
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func startTestServer(t *testing.T, overrides map[string]string) *e2etest.Server {
	t.Helper()
	server, err := e2etest.StartServer(context.Background(), io.Discard, testEnv(overrides), run)
	require.NoError(t, err)
	t.Cleanup(server.Stop)
	return server
}

// newFakeOpenAI answers every chat completion with reply.
func newFakeOpenAI(t *testing.T, reply string) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": reply}}},
		})
	}))
	t.Cleanup(server.Close)
	return server.URL + "/v1"
}
