package contexthelpers

type contextKey string

const sessionIDContextKey = contextKey("sessionID")
const requestIDContextKey = contextKey("requestID")
const currentPathContextKey = contextKey("currentPath")
