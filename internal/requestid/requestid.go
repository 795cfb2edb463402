// Package requestid carries request-scoped correlation values through
// context: the HTTP request ID on the control plane and the campaign
// ID during a run, so every log line of a run can be traced back.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

type requestKey struct{}
type campaignKey struct{}

// New generates a random UUID v4 request ID.
func New() string {
	return uuid.NewString()
}

// WithRequestID returns a copy of ctx with the request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestKey{}, id)
}

// FromContext extracts the request ID from ctx. Returns "" if absent.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestKey{}).(string)
	return id
}

// WithCampaign returns a copy of ctx tagged with the campaign being run.
func WithCampaign(ctx context.Context, campaignID string) context.Context {
	return context.WithValue(ctx, campaignKey{}, campaignID)
}

// CampaignFromContext extracts the campaign ID from ctx. Returns "" if absent.
func CampaignFromContext(ctx context.Context) string {
	id, _ := ctx.Value(campaignKey{}).(string)
	return id
}
