package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	neturl "net/url"
	"time"

	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
)

// ErrUnexpectedStatus is returned by the typed helpers when the server does not answer with 2xx.
var ErrUnexpectedStatus = errors.NewSentinel("unexpected status code")

// Client talks to the JSON API and keeps the session cookie between calls.
type Client struct {
	client *http.Client
	url    string
}

func NewClient(url string) (*Client, error) {
	jar, err := newUnsafeCookieJar()
	if err != nil {
		return nil, errors.Wrap(err, "create unsafe cookie jar")
	}
	return &Client{
		client: &http.Client{Jar: jar}, //nolint:exhaustruct // defaults are fine
		url:    url,
	}, nil
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = c.client.Do(req); err == nil {
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Do sends body as JSON and decodes a JSON response into out when out is non-nil.
//
// Only transport and decoding failures are errors. The status code is returned for the caller to check.
func (c *Client) Do(ctx context.Context, method, urlPath string, body, out any) (int, error) {
	var (
		err    error
		req    *http.Request
		resp   *http.Response
		reader io.Reader
	)
	if body != nil {
		var data []byte
		if data, err = json.Marshal(body); err != nil {
			return 0, errors.Wrap(err, "marshal body")
		}
		reader = bytes.NewReader(data)
	}
	if req, err = c.newRequestWithContext(ctx, method, urlPath, reader); err != nil {
		return 0, errors.Wrap(err, "new request with context")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if resp, err = c.client.Do(req); err != nil {
		return 0, errors.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, errors.Wrap(err, "decode response", slog.Int("status", resp.StatusCode))
	}
	return resp.StatusCode, nil
}

func (c *Client) expect(ctx context.Context, method, urlPath string, body, out any) error {
	status, err := c.Do(ctx, method, urlPath, body, out)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return errors.Wrap(ErrUnexpectedStatus, "check status",
			slog.String("method", method), slog.String("path", urlPath), slog.Int("status", status))
	}
	return nil
}

func (c *Client) newRequestWithContext(
	ctx context.Context,
	method, urlPath string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url+urlPath, body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	return req, nil
}

// Chat plays one turn in the session carried by the cookie jar unless req names one.
func (c *Client) Chat(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	var resp models.ChatResponse
	if err := c.expect(ctx, http.MethodPost, "/api/chat", req, &resp); err != nil {
		return resp, errors.Wrap(err, "chat")
	}
	return resp, nil
}

func (c *Client) Report(ctx context.Context, mode string) (models.ReportResponse, error) {
	var resp models.ReportResponse
	if err := c.expect(ctx, http.MethodGet, "/api/report?mode="+neturl.QueryEscape(mode), nil, &resp); err != nil {
		return resp, errors.Wrap(err, "report")
	}
	return resp, nil
}

func (c *Client) SubmitAnswer(ctx context.Context, mode, answer string) (models.Score, error) {
	var score models.Score
	req := models.AnswerRequest{Mode: mode, Answer: answer, SessionID: ""}
	if err := c.expect(ctx, http.MethodPost, "/api/submit_answer", req, &score); err != nil {
		return score, errors.Wrap(err, "submit answer")
	}
	return score, nil
}

func (c *Client) Session(ctx context.Context) (models.SessionState, error) {
	var state models.SessionState
	if err := c.expect(ctx, http.MethodGet, "/api/session", nil, &state); err != nil {
		return state, errors.Wrap(err, "get session")
	}
	return state, nil
}

func (c *Client) ResetSession(ctx context.Context) error {
	if err := c.expect(ctx, http.MethodDelete, "/api/session", nil, nil); err != nil {
		return errors.Wrap(err, "reset session")
	}
	return nil
}

func (c *Client) StoryNode(ctx context.Context, caseID, nodeID string) (models.StoryNode, error) {
	var node models.StoryNode
	if err := c.expect(ctx, http.MethodGet, storyPath(caseID, nodeID), nil, &node); err != nil {
		return node, errors.Wrap(err, "get story node")
	}
	return node, nil
}

func (c *Client) Choose(ctx context.Context, caseID, nodeID, choice string) (models.StoryNode, error) {
	var node models.StoryNode
	req := models.ChoiceRequest{Choice: choice}
	if err := c.expect(ctx, http.MethodPost, storyPath(caseID, nodeID), req, &node); err != nil {
		return node, errors.Wrap(err, "choose story branch")
	}
	return node, nil
}

func storyPath(caseID, nodeID string) string {
	return "/api/story/" + neturl.PathEscape(caseID) + "/" + neturl.PathEscape(nodeID)
}
