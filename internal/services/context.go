package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	nodeKeyKey contextKey = "node_key"
)

// WithRunID attaches an export run identifier to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext extracts the export run identifier, if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// WithNodeKey attaches the current plan-node key to the context.
func WithNodeKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, nodeKeyKey, key)
}

// NodeKeyFromContext extracts the current plan-node key, if present.
func NodeKeyFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	key, ok := ctx.Value(nodeKeyKey).(string)
	return key, ok && key != ""
}
