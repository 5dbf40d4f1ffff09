package auth

import (
	"context"
)

// Context keys for authentication data
type contextKey string

const (
	// ContextKeyAdminAddress is the context key for the authenticated admin address
	ContextKeyAdminAddress contextKey = "admin_address"
)

// WithAdminAddress adds the authenticated admin address to the context
func WithAdminAddress(ctx context.Context, address string) context.Context {
	return context.WithValue(ctx, ContextKeyAdminAddress, address)
}

// AdminAddressFromContext retrieves the authenticated admin address from the context
func AdminAddressFromContext(ctx context.Context) (string, bool) {
	addr, ok := ctx.Value(ContextKeyAdminAddress).(string)
	return addr, ok
}
