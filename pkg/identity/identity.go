package identity

import "context"

type ctxKey string

const userIDKey ctxKey = "user_id"

// WithUserID returns a context carrying the authenticated user's id
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID retrieves the user id from the context, zero when absent
func UserID(ctx context.Context) uint {
	if userID, ok := ctx.Value(userIDKey).(uint); ok {
		return userID
	}
	return 0
}
