package reqctx

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const (
	keyRID       ctxKey = "request_id"
	keyAccountID ctxKey = "account_id"
)

// WithRID stores the request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, keyRID, rid)
}

// RID returns correlation id if present.
func RID(ctx context.Context) string {
	v, _ := ctx.Value(keyRID).(string)
	return v
}

// WithAccountID stores the authenticated account id.
func WithAccountID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, keyAccountID, id)
}

// AccountID returns the account id if present.
func AccountID(ctx context.Context) uint64 {
	v, _ := ctx.Value(keyAccountID).(uint64)
	return v
}

// Fields returns the correlation fields present in ctx, for use in log calls.
func Fields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if rid := RID(ctx); rid != "" {
		fields = append(fields, zap.String("request_id", rid))
	}
	if id := AccountID(ctx); id != 0 {
		fields = append(fields, zap.Uint64("actor_account_id", id))
	}
	return fields
}
