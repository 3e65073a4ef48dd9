package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// OAuth1Token is the long-lived token obtained from the SSO ticket exchange.
type OAuth1Token struct {
	Token                  string  `json:"oauth_token"`
	Secret                 string  `json:"oauth_token_secret"`
	MFAToken               *string `json:"mfa_token"`
	MFAExpirationTimestamp *string `json:"mfa_expiration_timestamp"`
	Domain                 string  `json:"domain"`
}

// OAuth2Token is the bearer token used for API calls.
type OAuth2Token struct {
	Scope                 string `json:"scope"`
	JTI                   string `json:"jti"`
	TokenType             string `json:"token_type"`
	AccessToken           string `json:"access_token"`
	RefreshToken          string `json:"refresh_token"`
	ExpiresIn             int64  `json:"expires_in"`
	ExpiresAt             int64  `json:"expires_at"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
	RefreshTokenExpiresAt int64  `json:"refresh_token_expires_at"`
}

// Tokens is the decoded form of credential material.
type Tokens struct {
	OAuth1 OAuth1Token
	OAuth2 OAuth2Token
}

// EncodeTokens serializes tokens as base64 of the JSON pair [oauth1, oauth2].
func EncodeTokens(t Tokens) (string, error) {
	data, err := json.Marshal([]any{t.OAuth1, t.OAuth2})
	if err != nil {
		return "", fmt.Errorf("encoding tokens: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeTokens parses credential material produced by EncodeTokens. Any
// failure wraps ErrMalformedTokens.
func DecodeTokens(material string) (Tokens, error) {
	material = strings.TrimSpace(material)
	if material == "" {
		return Tokens{}, fmt.Errorf("%w: empty", ErrMalformedTokens)
	}
	raw, err := base64.StdEncoding.DecodeString(material)
	if err != nil {
		if raw, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(material, "=")); err != nil {
			return Tokens{}, fmt.Errorf("%w: not base64", ErrMalformedTokens)
		}
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return Tokens{}, fmt.Errorf("%w: expected [oauth1, oauth2]", ErrMalformedTokens)
	}
	var t Tokens
	if err := strictUnmarshal(pair[0], &t.OAuth1); err != nil {
		return Tokens{}, fmt.Errorf("%w: oauth1: %v", ErrMalformedTokens, err)
	}
	if err := strictUnmarshal(pair[1], &t.OAuth2); err != nil {
		return Tokens{}, fmt.Errorf("%w: oauth2: %v", ErrMalformedTokens, err)
	}
	if t.OAuth2.AccessToken == "" {
		return Tokens{}, fmt.Errorf("%w: missing access token", ErrMalformedTokens)
	}
	return t, nil
}

func strictUnmarshal(data []byte, v any) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fmt.Errorf("null token")
	}
	return json.Unmarshal(data, v)
}

// Identity is the optional cached identity carried alongside credential material.
type Identity struct {
	DisplayName string
	FullName    string
}

// Session is a request-scoped, decoded credential handle.
type Session struct {
	Tokens   Tokens
	Identity Identity
}

// NewSession decodes material into a Session. It never returns a Session
// without a usable access token.
func NewSession(material string, id Identity) (*Session, error) {
	tokens, err := DecodeTokens(material)
	if err != nil {
		return nil, err
	}
	return &Session{Tokens: tokens, Identity: id}, nil
}
