package internal

import (
	"context"
	"time"

	"github.com/frahmantamala/stock-management/internal/core/user"
)

type ctxKey string

const ContextUserKey ctxKey = "userID"

func UserIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if userID, ok := ctx.Value(ContextUserKey).(int64); ok {
		return userID
	}
	return 0
}

func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}

const contextPrincipalKey ctxKey = "principal"

func ContextWithPrincipal(ctx context.Context, p *user.Principal) context.Context {
	return context.WithValue(ctx, contextPrincipalKey, p)
}

// PrincipalFromContext returns the authenticated account placed on the
// request by the auth middleware.
func PrincipalFromContext(ctx context.Context) (*user.Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(contextPrincipalKey).(*user.Principal)
	return p, ok && p != nil
}
