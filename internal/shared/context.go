package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session in the request context. The
// authenticated principal has its own context key in the authz package;
// this one only carries the raw session.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session, nil when middleware did not run.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
