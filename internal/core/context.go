package core

import "context"

type contextKey struct{}

// ClientInfo identifies who started a load. It is copied into history entries.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// WithClientInfo attaches the requesting client to ctx.
func WithClientInfo(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, contextKey{}, info)
}

// ClientInfoFromContext returns the client stored by WithClientInfo, or the
// zero value for loads that did not come through HTTP.
func ClientInfoFromContext(ctx context.Context) ClientInfo {
	info, _ := ctx.Value(contextKey{}).(ClientInfo)
	return info
}
