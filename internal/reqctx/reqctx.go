// Package reqctx carries the per-request identity the rest of the core
// reads to stamp audit entries, scope tenant data, and pick booking
// source. It holds these fields as an explicit context.Context value,
// rather than stashed on a gin.Context, so they survive into goroutines
// the HTTP request itself doesn't own (queue fan-out).
package reqctx

import (
	"context"
	"sync"
)

type ctxKey struct{}

// RequestContext is the logical per-request dictionary.
// UserID, OrganizationID, and APIKeyID are pointers because auth
// middleware populates them after Run has already started the request
// (they are nil until then); the mutex lets later middleware mutate
// them while earlier-scheduled continuations still observe updates.
type RequestContext struct {
	mu sync.RWMutex

	RequestID      string
	userID         *string
	organizationID *string
	apiKeyID       *string
	IPAddress      string
	UserAgent      string
}

// New creates a RequestContext with the fields known at request start.
func New(requestID, ipAddress, userAgent string) *RequestContext {
	return &RequestContext{
		RequestID: requestID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// Run installs rc into ctx and invokes fn. Every read of the context
// from within fn, and from continuations fn schedules that retain the
// returned context, observes rc.
func Run(ctx context.Context, rc *RequestContext, fn func(context.Context) error) error {
	return fn(context.WithValue(ctx, ctxKey{}, rc))
}

// From retrieves the RequestContext installed by Run, if any.
func From(ctx context.Context) (*RequestContext, bool) {
	rc, ok := ctx.Value(ctxKey{}).(*RequestContext)
	return rc, ok
}

// SetUser records the authenticated user, once auth middleware resolves
// it. Safe to call after Run has already started the request.
func (rc *RequestContext) SetUser(userID string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.userID = &userID
}

// SetOrganization records the tenant scope for this request.
func (rc *RequestContext) SetOrganization(organizationID string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.organizationID = &organizationID
}

// SetAPIKey records the API key used to authenticate this request.
func (rc *RequestContext) SetAPIKey(apiKeyID string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.apiKeyID = &apiKeyID
}

func (rc *RequestContext) UserID() (string, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	if rc.userID == nil {
		return "", false
	}
	return *rc.userID, true
}

func (rc *RequestContext) OrganizationID() (string, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	if rc.organizationID == nil {
		return "", false
	}
	return *rc.organizationID, true
}

func (rc *RequestContext) APIKeyID() (string, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	if rc.apiKeyID == nil {
		return "", false
	}
	return *rc.apiKeyID, true
}

// ActorType classifies who drove a mutation: API_KEY if an API key
// authenticated the request, else USER if a user is attached, else
// SYSTEM for background jobs with no attached identity.
type ActorType string

const (
	ActorUser   ActorType = "USER"
	ActorAPIKey ActorType = "API_KEY"
	ActorSystem ActorType = "SYSTEM"
)

// Actor returns the actor type and, when applicable, the actor's ID.
func Actor(ctx context.Context) (ActorType, string) {
	rc, ok := From(ctx)
	if !ok {
		return ActorSystem, ""
	}
	if apiKeyID, ok := rc.APIKeyID(); ok {
		return ActorAPIKey, apiKeyID
	}
	if userID, ok := rc.UserID(); ok {
		return ActorUser, userID
	}
	return ActorSystem, ""
}

// BookingSource reports API if apiKeyId is set, else WEB; INTERNAL when
// ctx carries no RequestContext.
func BookingSource(ctx context.Context) string {
	rc, ok := From(ctx)
	if !ok {
		return "INTERNAL"
	}
	if _, ok := rc.APIKeyID(); ok {
		return "API"
	}
	return "WEB"
}
