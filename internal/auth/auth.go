// Package auth turns per-call metadata or the process-wide credential slot
// into an authenticated upstream session.
package auth

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/colthorp/garmin-mcp-go/internal/api"
)

// ErrNotAuthenticated is returned when no usable credential material is
// available for a call.
var ErrNotAuthenticated = errors.New("Not authenticated. Call garmin_login() or set_garmin_session() first, or pass sport_platform_token in the request context.")

// Metadata keys read from params._meta.context.
const (
	TokenKey       = "sport_platform_token"
	DisplayNameKey = "display_name"
	FullNameKey    = "full_name"
)

// CallContext is the credential-related metadata of one tool call.
type CallContext struct {
	Token       string
	DisplayName string
	FullName    string
}

// FromMeta extracts the call context from an MCP _meta object. Missing or
// non-string values are treated as absent.
func FromMeta(meta map[string]any) CallContext {
	ctx, _ := meta["context"].(map[string]any)
	if len(ctx) == 0 {
		return CallContext{}
	}
	str := func(key string) string {
		s, _ := ctx[key].(string)
		return strings.TrimSpace(s)
	}
	return CallContext{
		Token:       str(TokenKey),
		DisplayName: str(DisplayNameKey),
		FullName:    str(FullNameKey),
	}
}

// SessionFactory builds the upstream client for a decoded session.
type SessionFactory func(*api.Session) api.Upstream

// Resolver picks the credential material for a call: the call metadata
// first, then the in-memory slot.
type Resolver struct {
	slot    *Slot
	factory SessionFactory
	logger  *slog.Logger
}

// NewResolver creates a resolver over slot. A nil slot gets a fresh one.
func NewResolver(slot *Slot, factory SessionFactory, logger *slog.Logger) *Resolver {
	if slot == nil {
		slot = &Slot{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{slot: slot, factory: factory, logger: logger.With(slog.String("component", "auth"))}
}

// Resolve returns an upstream client for call or ErrNotAuthenticated.
// Identity fields from the metadata are only used with the metadata token.
func (r *Resolver) Resolve(call CallContext) (api.Upstream, error) {
	if call.Token != "" {
		return r.open(call.Token, api.Identity{DisplayName: call.DisplayName, FullName: call.FullName}, "metadata")
	}
	if material, ok := r.slot.Load(); ok {
		return r.open(material, api.Identity{}, "slot")
	}
	return nil, ErrNotAuthenticated
}

func (r *Resolver) open(material string, id api.Identity, source string) (api.Upstream, error) {
	session, err := api.NewSession(material, id)
	if err != nil {
		r.logger.Debug("rejected credential material", slog.String("source", source), slog.Any("error", err))
		return nil, ErrNotAuthenticated
	}
	return r.factory(session), nil
}

// Store validates material and places it in the slot.
func (r *Resolver) Store(material string) (*api.Session, error) {
	session, err := api.NewSession(material, api.Identity{})
	if err != nil {
		return nil, err
	}
	r.slot.Store(material)
	return session, nil
}

// Clear empties the slot. The material itself is not revoked upstream.
func (r *Resolver) Clear() {
	r.slot.Clear()
}

// Authenticated reports whether the slot currently holds material.
func (r *Resolver) Authenticated() bool {
	_, ok := r.slot.Load()
	return ok
}
