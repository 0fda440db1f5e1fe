package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// CurrentUserID returns the session user, or fallback when the request
// carries no signed-in user.
func CurrentUserID(ctx context.Context, fallback int64) int64 {
	if sess := SessionFromContext(ctx); sess != nil && sess.UserID() > 0 {
		return sess.UserID()
	}
	return fallback
}
