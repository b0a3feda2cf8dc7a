// Package application contains use-case orchestration services.
package application

import "context"

// Caller describes who made the current request.
type Caller struct {
	IP        string
	UserAgent string
	Admin     bool
}

type callerKey struct{}

// WithCaller returns a copy of ctx carrying c.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the Caller stored in ctx. An anonymous caller with
// unknown address is returned when none was set.
func CallerFrom(ctx context.Context) Caller {
	if c, ok := ctx.Value(callerKey{}).(Caller); ok {
		return c
	}
	return Caller{IP: "Unknown"}
}
