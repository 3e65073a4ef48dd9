package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/colthorp/garmin-mcp-go/internal/core"
)

const (
	preauthorizedPath = "/oauth-service/oauth/preauthorized"
	exchangePath      = "/oauth-service/oauth/exchange/user/2.0"
)

var (
	csrfRe   = regexp.MustCompile(`name="_csrf"\s+value="([^"]+)"`)
	titleRe  = regexp.MustCompile(`<title>(.+?)</title>`)
	ticketRe = regexp.MustCompile(`embed\?ticket=([^"]+)"`)
)

// LoginResult is a freshly authenticated session and its encoded material.
type LoginResult struct {
	Session  *Session
	Material string
}

// Authenticator performs the Garmin SSO username/password login and the
// OAuth1 to OAuth2 token exchange.
type Authenticator struct {
	cfg    core.UpstreamConfig
	logger *slog.Logger
	now    func() time.Time
	nonce  func() string
}

// NewAuthenticator creates an authenticator for the configured endpoints.
func NewAuthenticator(cfg core.UpstreamConfig, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Authenticator{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "sso")),
		now:    time.Now,
		nonce:  func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

// Login signs in with email and password and returns the resulting session.
// Accounts with multi-factor authentication fail with ErrMFARequired.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	jar, _ := cookiejar.New(nil)
	hc := &http.Client{Timeout: a.cfg.Timeout, Jar: jar}

	ticket, err := a.signIn(ctx, hc, email, password)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("obtained service ticket")

	oauth1, err := a.preauthorize(ctx, hc, ticket)
	if err != nil {
		return nil, err
	}
	oauth2, err := a.exchange(ctx, hc, oauth1)
	if err != nil {
		return nil, err
	}
	tokens := Tokens{OAuth1: oauth1, OAuth2: oauth2}
	material, err := EncodeTokens(tokens)
	if err != nil {
		return nil, err
	}

	g := NewGarmin(NewClient(a.cfg, oauth2.AccessToken, a.logger), Identity{})
	var id Identity
	if p, err := g.SocialProfile(ctx); err != nil {
		a.logger.Warn("profile lookup after login failed", slog.Any("error", err))
	} else if p != nil {
		if p.DisplayName != nil {
			id.DisplayName = *p.DisplayName
		}
		if p.FullName != nil {
			id.FullName = *p.FullName
		}
	}
	return &LoginResult{Session: &Session{Tokens: tokens, Identity: id}, Material: material}, nil
}

func (a *Authenticator) signIn(ctx context.Context, hc *http.Client, email, password string) (string, error) {
	sso := a.cfg.SSOBaseURL
	embed := sso + "/embed"
	embedParams := url.Values{
		"id":          {"gauth-widget"},
		"embedWidget": {"true"},
		"gauthHost":   {sso},
	}
	signinParams := url.Values{
		"id":                              {"gauth-widget"},
		"embedWidget":                     {"true"},
		"gauthHost":                       {embed},
		"service":                         {embed},
		"source":                          {embed},
		"redirectAfterAccountLoginUrl":    {embed},
		"redirectAfterAccountCreationUrl": {embed},
	}
	if _, err := a.fetch(ctx, hc, http.MethodGet, embed+"?"+embedParams.Encode(), nil, ""); err != nil {
		return "", err
	}
	signinURL := sso + "/signin?" + signinParams.Encode()
	page, err := a.fetch(ctx, hc, http.MethodGet, signinURL, nil, "")
	if err != nil {
		return "", err
	}
	m := csrfRe.FindStringSubmatch(page)
	if m == nil {
		return "", fmt.Errorf("sign-in page has no csrf token")
	}

	form := url.Values{
		"username": {email},
		"password": {password},
		"embed":    {"true"},
		"_csrf":    {m[1]},
	}
	page, err = a.fetch(ctx, hc, http.MethodPost, signinURL, strings.NewReader(form.Encode()), signinURL)
	if err != nil {
		return "", err
	}

	title := ""
	if t := titleRe.FindStringSubmatch(page); t != nil {
		title = t[1]
	}
	switch {
	case strings.Contains(title, "MFA"):
		return "", ErrMFARequired
	case title != "Success":
		return "", ErrInvalidCredentials
	}
	t := ticketRe.FindStringSubmatch(page)
	if t == nil {
		return "", fmt.Errorf("sign-in response has no service ticket")
	}
	return t[1], nil
}

// fetch performs one SSO page request and maps auth failures to sentinels.
func (a *Authenticator) fetch(ctx context.Context, hc *http.Client, method, rawURL string, body io.Reader, referer string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", core.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("sso request failed: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", ErrInvalidCredentials
	case resp.StatusCode >= 400:
		return "", &APIError{StatusCode: resp.StatusCode, Message: string(data)}
	}
	return string(data), nil
}

func (a *Authenticator) preauthorize(ctx context.Context, hc *http.Client, ticket string) (OAuth1Token, error) {
	params := url.Values{
		"ticket":             {ticket},
		"login-url":          {a.cfg.SSOBaseURL + "/embed"},
		"accepts-mfa-tokens": {"true"},
	}
	endpoint := a.cfg.APIBaseURL + preauthorizedPath
	data, err := a.signed(ctx, hc, http.MethodGet, endpoint, params, nil, "", "")
	if err != nil {
		return OAuth1Token{}, err
	}
	vals, err := url.ParseQuery(string(data))
	if err != nil {
		return OAuth1Token{}, fmt.Errorf("decoding oauth1 token: %w", err)
	}
	tok := OAuth1Token{
		Token:  vals.Get("oauth_token"),
		Secret: vals.Get("oauth_token_secret"),
		Domain: "garmin.com",
	}
	if v := vals.Get("mfa_token"); v != "" {
		tok.MFAToken = &v
	}
	if tok.Token == "" || tok.Secret == "" {
		return OAuth1Token{}, fmt.Errorf("preauthorized response has no oauth1 token")
	}
	return tok, nil
}

func (a *Authenticator) exchange(ctx context.Context, hc *http.Client, oauth1 OAuth1Token) (OAuth2Token, error) {
	form := url.Values{}
	if oauth1.MFAToken != nil {
		form.Set("mfa_token", *oauth1.MFAToken)
	}
	endpoint := a.cfg.APIBaseURL + exchangePath
	data, err := a.signed(ctx, hc, http.MethodPost, endpoint, nil, form, oauth1.Token, oauth1.Secret)
	if err != nil {
		return OAuth2Token{}, err
	}
	var tok OAuth2Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return OAuth2Token{}, fmt.Errorf("decoding oauth2 token: %w", err)
	}
	if tok.AccessToken == "" {
		return OAuth2Token{}, fmt.Errorf("exchange response has no access token")
	}
	now := a.now().Unix()
	tok.ExpiresAt = now + tok.ExpiresIn
	tok.RefreshTokenExpiresAt = now + tok.RefreshTokenExpiresIn
	return tok, nil
}

// signed sends an OAuth1-signed request with the consumer credentials and
// the optional token.
func (a *Authenticator) signed(ctx context.Context, hc *http.Client, method, endpoint string, query, form url.Values, token, secret string) ([]byte, error) {
	all := url.Values{}
	for k, v := range query {
		all[k] = v
	}
	for k, v := range form {
		all[k] = v
	}
	auth := oauth1Header(method, endpoint, all, oauth1Params{
		ConsumerKey:    a.cfg.ConsumerKey,
		ConsumerSecret: a.cfg.ConsumerSecret,
		Token:          token,
		TokenSecret:    secret,
		Nonce:          a.nonce(),
		Timestamp:      strconv.FormatInt(a.now().Unix(), 10),
	})

	rawURL := endpoint
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}
	var body io.Reader
	if method != http.MethodGet {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("User-Agent", core.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 400:
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(data)}
	}
	return data, nil
}

type oauth1Params struct {
	ConsumerKey    string
	ConsumerSecret string
	Token          string
	TokenSecret    string
	Nonce          string
	Timestamp      string
}

// oauth1Header builds an HMAC-SHA1 OAuth 1.0a Authorization header.
func oauth1Header(method, endpoint string, params url.Values, p oauth1Params) string {
	oauth := map[string]string{
		"oauth_consumer_key":     p.ConsumerKey,
		"oauth_nonce":            p.Nonce,
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        p.Timestamp,
		"oauth_version":          "1.0",
	}
	if p.Token != "" {
		oauth["oauth_token"] = p.Token
	}

	var pairs []string
	for k, vs := range params {
		for _, v := range vs {
			pairs = append(pairs, percentEncode(k)+"="+percentEncode(v))
		}
	}
	for k, v := range oauth {
		pairs = append(pairs, percentEncode(k)+"="+percentEncode(v))
	}
	sort.Strings(pairs)

	base := strings.ToUpper(method) + "&" + percentEncode(endpoint) + "&" + percentEncode(strings.Join(pairs, "&"))
	mac := hmac.New(sha1.New, []byte(percentEncode(p.ConsumerSecret)+"&"+percentEncode(p.TokenSecret)))
	mac.Write([]byte(base))
	oauth["oauth_signature"] = base64.StdEncoding.EncodeToString(mac.Sum(nil))

	keys := make([]string, 0, len(oauth))
	for k := range oauth {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf(`%s="%s"`, k, percentEncode(oauth[k]))
	}
	return "OAuth " + strings.Join(parts, ", ")
}

// percentEncode applies RFC 3986 encoding.
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
