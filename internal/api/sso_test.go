package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colthorp/garmin-mcp-go/internal/core"
)

func TestOAuth1HeaderSignature(t *testing.T) {
	params := url.Values{
		"ticket":             {"ST-1 x"},
		"login-url":          {"https://sso.garmin.com/sso/embed"},
		"accepts-mfa-tokens": {"true"},
	}
	header := oauth1Header("GET", "https://connectapi.garmin.com/oauth-service/oauth/preauthorized", params, oauth1Params{
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		Token:          "tok",
		TokenSecret:    "ts",
		Nonce:          "abc",
		Timestamp:      "1700000000",
	})
	assert.True(t, strings.HasPrefix(header, "OAuth "))
	assert.Contains(t, header, `oauth_signature="pQoLcSKVAJT3jc8iRGr%2B9uY5f%2BE%3D"`)
	assert.Contains(t, header, `oauth_token="tok"`)
	assert.NotContains(t, header, "ticket")
}

func TestPercentEncode(t *testing.T) {
	assert.Equal(t, "a%20b", percentEncode("a b"))
	assert.Equal(t, "a-b_c.d~e", percentEncode("a-b_c.d~e"))
	assert.Equal(t, "%2B%26%3D", percentEncode("+&="))
}

func newSSOServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/sso/embed", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "GARMIN-SSO", Value: "1", Path: "/"})
		fmt.Fprint(w, "<html></html>")
	})
	mux.HandleFunc("/sso/signin", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, `<form><input type="hidden" name="_csrf" value="csrf-1" /></form>`)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("_csrf") != "csrf-1" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		switch r.PostForm.Get("password") {
		case "pw":
			fmt.Fprint(w, `<title>Success</title><script>var u = "https://sso.garmin.com/sso/embed?ticket=ST-123";</script>`)
		case "mfa":
			fmt.Fprint(w, `<title>Enter MFA code for login</title>`)
		case "busy":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			fmt.Fprint(w, `<title>GARMIN Authentication Application</title>`)
		}
	})
	mux.HandleFunc(preauthorizedPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ticket") != "ST-123" || !strings.HasPrefix(r.Header.Get("Authorization"), "OAuth ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, "oauth_token=t1&oauth_token_secret=s1")
	})
	mux.HandleFunc(exchangePath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.Contains(r.Header.Get("Authorization"), `oauth_token="t1"`) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"token_type":"Bearer","access_token":"acc","refresh_token":"ref","expires_in":3600,"refresh_token_expires_in":7200}`)
	})
	mux.HandleFunc(socialProfilePath, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer acc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"displayName":"runner1","fullName":"Pat Runner"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestAuthenticator(srv *httptest.Server) *Authenticator {
	a := NewAuthenticator(core.UpstreamConfig{
		APIBaseURL:     srv.URL,
		SSOBaseURL:     srv.URL + "/sso",
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		Timeout:        5 * time.Second,
		MaxRetries:     1,
	}, nil)
	a.now = func() time.Time { return time.Unix(1700000000, 0) }
	return a
}

func TestLoginSuccess(t *testing.T) {
	a := newTestAuthenticator(newSSOServer(t))

	res, err := a.Login(context.Background(), "pat@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "acc", res.Session.Tokens.OAuth2.AccessToken)
	assert.Equal(t, int64(1700003600), res.Session.Tokens.OAuth2.ExpiresAt)
	assert.Equal(t, "t1", res.Session.Tokens.OAuth1.Token)
	assert.Equal(t, "runner1", res.Session.Identity.DisplayName)
	assert.Equal(t, "Pat Runner", res.Session.Identity.FullName)

	decoded, err := DecodeTokens(res.Material)
	require.NoError(t, err)
	assert.Equal(t, "acc", decoded.OAuth2.AccessToken)
}

func TestLoginFailures(t *testing.T) {
	a := newTestAuthenticator(newSSOServer(t))

	tests := []struct {
		password string
		want     error
	}{
		{"wrong", ErrInvalidCredentials},
		{"mfa", ErrMFARequired},
		{"busy", ErrRateLimited},
		{"", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			_, err := a.Login(context.Background(), "pat@example.com", tt.password)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
