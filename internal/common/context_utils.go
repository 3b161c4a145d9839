package common

import (
	"context"
	"strings"
)

type contextKey string

const (
	UserIDKey     contextKey = "caller_uid"
	AuthMethodKey contextKey = "auth_method"
)

const (
	AuthMethodBearer = "bearer"
	AuthMethodHeader = "header"
)

// WithUserID stores the caller's identity-provider uid in ctx.
func WithUserID(ctx context.Context, uid, method string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, uid)
	return context.WithValue(ctx, AuthMethodKey, method)
}

// GetUserIDFromContext extracts the caller uid from the request context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(UserIDKey).(string)
	if !ok || strings.TrimSpace(uid) == "" {
		return "", false
	}
	return uid, true
}

// GetAuthMethodFromContext reports how the caller was identified.
func GetAuthMethodFromContext(ctx context.Context) string {
	method, _ := ctx.Value(AuthMethodKey).(string)
	return method
}

// SafeString safely handles string pointer operations
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns nil for empty strings.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Coalesce returns the first non-empty value.
func Coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
