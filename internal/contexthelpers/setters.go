package contexthelpers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/myrjola/sherlockchat/internal/logging"
)

// SetSessionID stores the session id and adds it to the log attributes of the request context.
func SetSessionID(r *http.Request, sessionID string) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, sessionIDContextKey, sessionID)
	ctx = logging.WithAttrs(ctx, slog.String("session_id", sessionID))
	return r.WithContext(ctx)
}

func SetRequestID(r *http.Request, requestID string) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, requestIDContextKey, requestID)
	ctx = logging.WithAttrs(ctx, slog.String("request_id", requestID))
	return r.WithContext(ctx)
}

func SetCurrentPath(r *http.Request, currentPath string) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, currentPathContextKey, currentPath)
	return r.WithContext(ctx)
}
