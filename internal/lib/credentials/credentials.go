// Package credentials переносит токен пользователя через context.Context,
// чтобы удалённые вызовы выполнялись от имени вызывающего.
package credentials

import "context"

type ctxKey struct{}

// WithToken кладёт bearer-токен пользователя в контекст.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKey{}, token)
}

// Token достаёт bearer-токен из контекста.
func Token(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(ctxKey{}).(string)
	return token, ok && token != ""
}
