package shared

import "context"

type tokenContextKey struct{}

// ContextWithToken stores the resolved bearer token in context.
func ContextWithToken(ctx context.Context, tok *Token) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, tok)
}

// TokenFromContext extracts the bearer token from context, nil when absent.
func TokenFromContext(ctx context.Context) *Token {
	tok, _ := ctx.Value(tokenContextKey{}).(*Token)
	return tok
}
