package main

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/myrjola/sherlockchat/internal/e2etest"
	"github.com/myrjola/sherlockchat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthy(t *testing.T) {
	server := startTestServer(t, nil)
	var body map[string]string
	status, err := server.Client().Do(context.Background(), http.MethodGet, "/api/healthy", nil, &body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", body["status"])
}

func TestChat_playThroughCase(t *testing.T) {
	for _, store := range []string{"sqlite", "redis"} {
		t.Run(store, func(t *testing.T) {
			overrides := map[string]string{"SHERLOCK_SESSION_STORE": store}
			if store == "redis" {
				overrides["SHERLOCK_REDIS_ADDR"] = miniredis.RunT(t).Addr()
			}
			client := startTestServer(t, overrides).Client()
			ctx := context.Background()

			first, err := client.Chat(ctx, models.ChatRequest{Message: "바닥에 발자국이 있었나요?", Mode: "하"})
			require.NoError(t, err)
			require.NotEmpty(t, first.SessionID)
			require.Equal(t, []string{"발자국"}, first.Clues)
			require.Equal(t, []string{"'발자국'은 사건의 핵심 단서입니다."}, first.Hints)
			require.False(t, first.Terminal)

			second, err := client.Chat(ctx, models.ChatRequest{Message: "독약 냄새는요?", Mode: "하"})
			require.NoError(t, err)
			require.Equal(t, first.SessionID, second.SessionID, "cookie session keeps the game session")
			require.Equal(t, []string{"독극물"}, second.Clues)
			require.True(t, second.Terminal)
			require.Contains(t, second.Reply, "모든 단서가 모였습니다.")

			state, err := client.Session(ctx)
			require.NoError(t, err)
			require.Equal(t, "case_low", state.CaseID)
			require.Equal(t, []string{"발자국", "독극물"}, state.DiscoveredClueIDs)
			require.True(t, state.Terminal)
			require.Len(t, state.History, 4)

			require.NoError(t, client.ResetSession(ctx))
			_, err = client.Session(ctx)
			require.ErrorIs(t, err, e2etest.ErrUnexpectedStatus)
		})
	}
}

func TestChat_directMention(t *testing.T) {
	client := startTestServer(t, nil).Client()
	ctx := context.Background()

	resp, err := client.Chat(ctx, models.ChatRequest{Message: "한서진은 어떤 사람이야?"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(resp.Reply, "연구소장. 사건 당일 밤 늦게까지 연구소에 남아 있었다."))
	require.Equal(t, []string{"한서진"}, resp.Clues)

	resp, err = client.Chat(ctx, models.ChatRequest{Message: "식당을 뒤져보자"})
	require.NoError(t, err)
	require.Contains(t, resp.Reply, "❌")
	require.Empty(t, resp.Clues)
}

func TestChat_explicitSessionAndHistory(t *testing.T) {
	server := startTestServer(t, nil)
	ctx := context.Background()

	history := []models.Turn{
		{Role: models.RoleUser, Text: "안녕"},
		{Role: models.RoleAssistant, Text: "반가워요"},
	}
	resp, err := server.Client().Chat(ctx, models.ChatRequest{
		Message:   "무슨 일이 있었지?",
		SessionID: "stateless-1",
		History:   history,
	})
	require.NoError(t, err)
	require.Equal(t, "stateless-1", resp.SessionID)

	var state models.SessionState
	status, err := server.Client().Do(ctx, http.MethodGet, "/api/session?session_id=stateless-1", nil, &state)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, state.History, 4)
	require.Equal(t, "안녕", state.History[0].Text)
}

func TestChat_systemTurnsInHistoryAreSkipped(t *testing.T) {
	server := startTestServer(t, nil)
	ctx := context.Background()

	resp, err := server.Client().Chat(ctx, models.ChatRequest{
		Message:   "안녕",
		SessionID: "greeted",
		History: []models.Turn{
			{Role: "system", Text: "사건 파일을 열었습니다. 무엇이든 물어보세요."},
			{Role: models.RoleUser, Text: "시작하자"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "greeted", resp.SessionID)

	var state models.SessionState
	status, err := server.Client().Do(ctx, http.MethodGet, "/api/session?session_id=greeted", nil, &state)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, state.History, 3)
	require.Equal(t, models.RoleUser, state.History[0].Role)
	require.Equal(t, "시작하자", state.History[0].Text)
	require.Equal(t, "안녕", state.History[1].Text)
}

func TestChat_caseSwitchStartsOver(t *testing.T) {
	for _, store := range []string{"sqlite", "redis"} {
		t.Run(store, func(t *testing.T) {
			overrides := map[string]string{"SHERLOCK_SESSION_STORE": store}
			if store == "redis" {
				overrides["SHERLOCK_REDIS_ADDR"] = miniredis.RunT(t).Addr()
			}
			client := startTestServer(t, overrides).Client()
			ctx := context.Background()

			first, err := client.Chat(ctx, models.ChatRequest{Message: "바닥에 발자국이 있었나요?", Mode: "하"})
			require.NoError(t, err)
			require.Equal(t, []string{"발자국"}, first.Clues)
			_, err = client.Chat(ctx, models.ChatRequest{Message: "그리고 또?", Mode: "하"})
			require.NoError(t, err)

			switched, err := client.Chat(ctx, models.ChatRequest{Message: "여기서는 무슨 일이 있었지?", CaseID: "case_mid"})
			require.NoError(t, err)
			require.Equal(t, first.SessionID, switched.SessionID)

			state, err := client.Session(ctx)
			require.NoError(t, err)
			require.Equal(t, "case_mid", state.CaseID)
			require.Empty(t, state.DiscoveredClueIDs)
			require.Len(t, state.History, 2)
			require.Equal(t, "여기서는 무슨 일이 있었지?", state.History[0].Text)

			next, err := client.Chat(ctx, models.ChatRequest{Message: "문 손잡이에 지문이 있었어", CaseID: "case_mid"})
			require.NoError(t, err)
			require.Equal(t, []string{"지문"}, next.Clues)
			require.True(t, next.Terminal)
		})
	}
}

func TestChat_clientErrors(t *testing.T) {
	client := startTestServer(t, nil).Client()
	ctx := context.Background()

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{name: "blank message", body: models.ChatRequest{Message: "   "}, wantStatus: http.StatusBadRequest},
		{name: "unknown case", body: models.ChatRequest{Message: "안녕", Mode: "case_nope"}, wantStatus: http.StatusNotFound},
		{name: "invalid case id", body: models.ChatRequest{Message: "안녕", CaseID: "../etc"}, wantStatus: http.StatusNotFound},
		{name: "not json", body: "hello", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errResp models.ErrorResponse
			status, err := client.Do(ctx, http.MethodPost, "/api/chat", tt.body, &errResp)
			require.NoError(t, err)
			require.Equal(t, tt.wantStatus, status)
			require.NotEmpty(t, errResp.Error)
		})
	}
}

func TestChat_openAIProvider(t *testing.T) {
	baseURL := newFakeOpenAI(t, "현장에 남은 발자국이 수상하군요. 사고사로 보이네요.")
	client := startTestServer(t, map[string]string{
		"SHERLOCK_LLM_PROVIDER": "openai",
		"OPENAI_API_KEY":        "test",
		"OPENAI_BASE_URL":       baseURL,
	}).Client()

	resp, err := client.Chat(context.Background(), models.ChatRequest{Message: "무엇이 보이나요?"})
	require.NoError(t, err)
	require.Equal(t, []string{"발자국"}, resp.Clues)
	require.NotEmpty(t, resp.Inconsistency)
	require.False(t, resp.Degraded)
}

func TestChat_concurrentTurnsInOneSession(t *testing.T) {
	server := startTestServer(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, msg := range []string{"발자국을 봤어요", "독극물 병이 있어요", "무엇을 해야 하죠?"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := server.Client().Chat(ctx, models.ChatRequest{Message: msg, SessionID: "shared"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var state models.SessionState
	_, err := server.Client().Do(ctx, http.MethodGet, "/api/session?session_id=shared", nil, &state)
	require.NoError(t, err)
	require.Len(t, state.History, 6)
	require.ElementsMatch(t, []string{"발자국", "독극물"}, state.DiscoveredClueIDs)
	require.True(t, state.Terminal)
}

func TestReport(t *testing.T) {
	client := startTestServer(t, nil).Client()
	ctx := context.Background()

	report, err := client.Report(ctx, "하")
	require.NoError(t, err)
	require.Equal(t, "사막의 밤", report.Case.Title)
	require.Contains(t, report.Story, "두 사람만 남아 있었다")

	_, err = client.Report(ctx, "상")
	require.ErrorIs(t, err, e2etest.ErrUnexpectedStatus)
}

func TestSubmitAnswer(t *testing.T) {
	t.Run("graded", func(t *testing.T) {
		baseURL := newFakeOpenAI(t, "```json\n{\"score\": 87.6, \"feedback\": \"범인과 동기를 정확히 짚었어요.\"}\n```")
		client := startTestServer(t, map[string]string{
			"SHERLOCK_LLM_PROVIDER": "openai",
			"OPENAI_API_KEY":        "test",
			"OPENAI_BASE_URL":       baseURL,
		}).Client()

		score, err := client.SubmitAnswer(context.Background(), "하", "범인은 한서진이고 연구 성과를 독점하려 했다.")
		require.NoError(t, err)
		require.Equal(t, 88, score.Score)
		require.Equal(t, "범인과 동기를 정확히 짚었어요.", score.Feedback)
	})

	t.Run("malformed grade degrades", func(t *testing.T) {
		client := startTestServer(t, nil).Client()
		score, err := client.SubmitAnswer(context.Background(), "하", "범인은 한서진이다.")
		require.NoError(t, err)
		require.Equal(t, 0, score.Score)
		require.Equal(t, "채점 중 오류가 발생했습니다.", score.Feedback)
	})
}

func TestStory(t *testing.T) {
	client := startTestServer(t, nil).Client()
	ctx := context.Background()

	node, err := client.StoryNode(ctx, "case_low", "start")
	require.NoError(t, err)
	require.Equal(t, []string{"연구소로 간다", "창고로 간다"}, node.Choices)

	next, err := client.Choose(ctx, "하", "start", "창고로 간다")
	require.NoError(t, err)
	require.Equal(t, "storage", next.ID)

	status, err := client.Do(ctx, http.MethodPost, "/api/story/case_low/start", models.ChoiceRequest{Choice: "도망친다"}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, status)

	status, err = client.Do(ctx, http.MethodGet, "/api/story/case_low/nowhere", nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, status)
}

func TestCORSPreflight(t *testing.T) {
	server := startTestServer(t, map[string]string{"SHERLOCK_ALLOWED_ORIGIN": "http://localhost:3000"})

	req, err := http.NewRequestWithContext(context.Background(), http.MethodOptions, server.URL()+"/api/chat", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}
