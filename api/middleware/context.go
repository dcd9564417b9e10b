package middleware

import "context"

type contextKey string

const (
	ctxPhone      contextKey = "phone"
	ctxRetailerID contextKey = "retailer_id"
	ctxIsAdmin    contextKey = "is_admin"
)

func PhoneFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxPhone).(string); ok {
		return v
	}
	return ""
}

func RetailerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRetailerID).(string); ok {
		return v
	}
	return ""
}

func IsAdminFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	if v, ok := ctx.Value(ctxIsAdmin).(bool); ok {
		return v
	}
	return false
}

// WithPhone injects the caller's verified phone into the context.
func WithPhone(ctx context.Context, phone string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPhone, phone)
}

// WithRetailerID injects the retailer identifier into the context for
// downstream handlers.
func WithRetailerID(ctx context.Context, retailerID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRetailerID, retailerID)
}

// WithIsAdmin marks the context as belonging to an operator.
func WithIsAdmin(ctx context.Context, isAdmin bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIsAdmin, isAdmin)
}
