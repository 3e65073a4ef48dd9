package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colthorp/garmin-mcp-go/internal/api"
	"github.com/colthorp/garmin-mcp-go/internal/auth"
	"github.com/colthorp/garmin-mcp-go/internal/core"
	"github.com/colthorp/garmin-mcp-go/internal/tokenstore"
)

const (
	indicatorsPath = "/userprofile-service/userprofile/usage-indicators"
	summaryPath    = "/usersummary-service/usersummary/daily/runner42"
)

type fakeLogin struct {
	res   *api.LoginResult
	err   error
	calls int
}

func (f *fakeLogin) Login(_ context.Context, email, password string) (*api.LoginResult, error) {
	f.calls++
	return f.res, f.err
}

type testEnv struct {
	srv       *Server
	transport *api.MockTransport
	store     *tokenstore.MemoryBackend
	login     *fakeLogin
}

func newTestEnv(t *testing.T, tools ...*Tool) *testEnv {
	t.Helper()
	env := &testEnv{
		transport: api.NewMockTransport(nil),
		store:     tokenstore.NewMemoryBackend(),
		login:     &fakeLogin{},
	}
	resolver := auth.NewResolver(nil, func(s *api.Session) api.Upstream {
		return api.NewGarmin(env.transport, s.Identity)
	}, nil)
	env.srv = NewServer(ServerOptions{
		Resolver: resolver,
		Login:    env.login,
		Store:    env.store,
		Tools:    tools,
	})
	return env
}

func material(t *testing.T) string {
	t.Helper()
	m, err := api.EncodeTokens(api.Tokens{
		OAuth1: api.OAuth1Token{Token: "o1", Secret: "s1"},
		OAuth2: api.OAuth2Token{AccessToken: "access", TokenType: "Bearer"},
	})
	require.NoError(t, err)
	return m
}

func request(t *testing.T, id any, method string, params any) *MCPRequest {
	t.Helper()
	req := &MCPRequest{JSONRPC: "2.0", ID: id, Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		require.NoError(t, err)
		req.Params = raw
	}
	return req
}

// toolOutput decodes the text content of a tools/call response.
func toolOutput(t *testing.T, resp *MCPResponse) (map[string]any, bool) {
	t.Helper()
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	body, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	content, ok := body["content"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, content, 1)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(content[0]["text"].(string)), &out))
	isError, _ := body["isError"].(bool)
	return out, isError
}

func toolNames(infos []MCPToolInfo) []string {
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}

func TestHandleInitialize(t *testing.T) {
	env := newTestEnv(t)
	resp := env.srv.Handle(context.Background(), request(t, 1, "initialize", nil))
	require.NotNil(t, resp)

	result, ok := resp.Result.(MCPInitializeResult)
	require.True(t, ok)
	assert.Equal(t, core.ProtocolVersion, result.ProtocolVersion)
	assert.Equal(t, core.ServerName, result.ServerInfo.Name)
	assert.Equal(t, 1, resp.ID)
}

func TestHandleNotificationsAndUnknownMethods(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.Nil(t, env.srv.Handle(ctx, request(t, nil, "notifications/initialized", nil)))
	assert.Nil(t, env.srv.Handle(ctx, request(t, nil, "resources/list", nil)))

	resp := env.srv.Handle(ctx, request(t, 7, "resources/list", nil))
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeMethodNotFound, resp.Error.Code)

	resp = env.srv.Handle(ctx, request(t, 8, "ping", nil))
	assert.Nil(t, resp.Error)
}

func TestToolsListHidesUnsupportedTools(t *testing.T) {
	env := newTestEnv(t)
	env.transport.Set(http.MethodGet, indicatorsPath, `{
		"deviceBasedIndicators": {"hasHrvStatusCapableDevice": false}
	}`)

	all := toolNames(env.srv.ListTools())
	assert.Contains(t, all, "get_hrv_data")
	assert.Len(t, all, len(Catalog()))

	caps, err := env.srv.Restore(context.Background(), material(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"get_hrv_data"}, caps.DisabledTools)

	resp := env.srv.Handle(context.Background(), request(t, 2, "tools/list", nil))
	listed := toolNames(resp.Result.(map[string]any)["tools"].([]MCPToolInfo))
	assert.NotContains(t, listed, "get_hrv_data")
	assert.Contains(t, listed, "get_stats")

	env.srv.Logout()
	assert.Contains(t, toolNames(env.srv.ListTools()), "get_hrv_data")
}

func TestToolsCallWithMetadataToken(t *testing.T) {
	env := newTestEnv(t)
	env.transport.Set(http.MethodGet, summaryPath, `{"calendarDate": "2024-06-01", "totalSteps": 8421}`)

	resp := env.srv.Handle(context.Background(), request(t, 3, "tools/call", map[string]any{
		"name":      "get_stats",
		"arguments": map[string]any{"date": "2024-06-01"},
		"_meta": map[string]any{"context": map[string]any{
			"sport_platform_token": material(t),
			"display_name":         "runner42",
		}},
	}))

	out, isError := toolOutput(t, resp)
	assert.False(t, isError)
	assert.Equal(t, "2024-06-01", out["date"])
	assert.EqualValues(t, 8421, out["total_steps"])

	reqs := env.transport.Requests(http.MethodGet, summaryPath)
	require.Len(t, reqs, 1)
	assert.Equal(t, "2024-06-01", reqs[0].Params["calendarDate"])
	assert.False(t, env.srv.resolver.Authenticated(), "metadata tokens are not retained")
}

func TestToolsCallErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("not authenticated", func(t *testing.T) {
		resp := env.srv.Handle(ctx, request(t, 4, "tools/call", map[string]any{
			"name":      "get_stats",
			"arguments": map[string]any{"date": "2024-06-01"},
		}))
		out, isError := toolOutput(t, resp)
		assert.True(t, isError)
		assert.Contains(t, out["error"], "Not authenticated")
	})

	t.Run("unknown tool", func(t *testing.T) {
		resp := env.srv.Handle(ctx, request(t, 5, "tools/call", map[string]any{"name": "get_everything"}))
		require.NotNil(t, resp.Error)
		assert.Equal(t, codeInvalidParams, resp.Error.Code)
	})

	t.Run("arguments not an object", func(t *testing.T) {
		resp := env.srv.Handle(ctx, request(t, 6, "tools/call", map[string]any{
			"name":      "get_stats",
			"arguments": []int{1},
		}))
		out, isError := toolOutput(t, resp)
		assert.True(t, isError)
		assert.Contains(t, out["error"], "arguments must be an object")
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := env.srv.Restore(ctx, material(t))
		require.NoError(t, err)
		result, isError := env.srv.CallTool(ctx, "get_stats", Args{"date": "2024-02-30"}, auth.CallContext{})
		assert.True(t, isError)
		assert.Contains(t, result.(map[string]any)["error"], "2024-02-30")
	})
}

func TestCallToolRecoversPanics(t *testing.T) {
	env := newTestEnv(t, &Tool{
		Name:        "explode",
		InputSchema: noParams,
		Handler: func(context.Context, *Call) (any, error) {
			panic("boom")
		},
	})

	result, isError := env.srv.CallTool(context.Background(), "explode", Args{}, auth.CallContext{})
	assert.True(t, isError)
	assert.Equal(t, map[string]any{"error": "boom"}, result)
}

func TestLoginTool(t *testing.T) {
	env := newTestEnv(t)
	env.store.Seed(tokenstore.Entry{UserID: "jean_at_example_com", Material: "stored"})
	m := material(t)
	session, err := api.NewSession(m, api.Identity{DisplayName: "runner42", FullName: "Jean Dupont"})
	require.NoError(t, err)
	env.login.res = &api.LoginResult{Session: session, Material: m}

	result, isError := env.srv.CallTool(context.Background(), "garmin_login",
		Args{"email": "Jean@Example.com", "password": "secret", "user_id": "jean_at_example_com"}, auth.CallContext{})
	require.False(t, isError, "%v", result)

	out := result.(map[string]any)
	assert.Equal(t, true, out["success"])
	assert.NotContains(t, out, "user_id")
	assert.Equal(t, m, out["tokens"])
	assert.Equal(t, "runner42", out["display_name"])
	assert.Equal(t, "Jean Dupont", out["full_name"])
	assert.Equal(t, []string{}, out["disabled_tools"])
	assert.True(t, env.srv.resolver.Authenticated())

	ids, err := env.store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"jean_at_example_com"}, ids)
	entry, err := env.store.Read("jean_at_example_com")
	require.NoError(t, err)
	assert.Equal(t, "stored", entry.Material, "logging in through a tool leaves stored sessions untouched")

	result, _ = env.srv.CallTool(context.Background(), "garmin_logout", Args{}, auth.CallContext{})
	assert.Equal(t, true, result.(map[string]any)["success"])
	assert.False(t, env.srv.resolver.Authenticated())
}

func TestLoginToolDoesNotPersist(t *testing.T) {
	env := newTestEnv(t)
	m := material(t)
	session, err := api.NewSession(m, api.Identity{})
	require.NoError(t, err)
	env.login.res = &api.LoginResult{Session: session, Material: m}

	_, isError := env.srv.CallTool(context.Background(), "garmin_login",
		Args{"email": "a@b.c", "password": "x"}, auth.CallContext{})
	require.False(t, isError)

	ids, err := env.store.List()
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NotContains(t, env.srv.index["garmin_login"].InputSchema["properties"], "user_id")
}

func TestLoginToolFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category string
	}{
		{"mfa", api.ErrMFARequired, "mfa_required"},
		{"bad password", api.ErrInvalidCredentials, "invalid_credentials"},
		{"unauthorized", &api.APIError{StatusCode: http.StatusUnauthorized}, "invalid_credentials"},
		{"rate limited", api.ErrRateLimited, "rate_limited"},
		{"too many requests", &api.APIError{StatusCode: http.StatusTooManyRequests}, "rate_limited"},
		{"forbidden", &api.APIError{StatusCode: http.StatusForbidden}, "location_blocked"},
		{"other", errors.New("connection reset"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.login.err = tt.err

			result, isError := env.srv.CallTool(context.Background(), "garmin_login",
				Args{"email": "a@b.c", "password": "x"}, auth.CallContext{})
			assert.False(t, isError)
			out := result.(map[string]any)
			assert.Equal(t, false, out["success"])
			assert.Equal(t, tt.category, out["error_category"])
			assert.Equal(t, tt.category == "mfa_required", out["mfa_required"] == true)
			assert.False(t, env.srv.resolver.Authenticated())
		})
	}
}

func TestLoginToolRequiresCredentials(t *testing.T) {
	env := newTestEnv(t)
	result, isError := env.srv.CallTool(context.Background(), "garmin_login", Args{"email": "a@b.c"}, auth.CallContext{})
	assert.True(t, isError)
	assert.Equal(t, "password is required", result.(map[string]any)["error"])
	assert.Zero(t, env.login.calls)
}

func TestSetSessionTool(t *testing.T) {
	env := newTestEnv(t)

	result, isError := env.srv.CallTool(context.Background(), "set_garmin_session", Args{"tokens": "garbage"}, auth.CallContext{})
	assert.True(t, isError)
	assert.Contains(t, result.(map[string]any)["error"], "invalid session tokens")

	result, isError = env.srv.CallTool(context.Background(), "set_garmin_session", Args{"tokens": material(t)}, auth.CallContext{})
	require.False(t, isError, "%v", result)
	assert.Equal(t, "Session restored", result.(map[string]any)["message"])
	assert.True(t, env.srv.resolver.Authenticated())

	ids, err := env.store.List()
	require.NoError(t, err)
	assert.Empty(t, ids, "restored sessions are not persisted")
}

func TestArgs(t *testing.T) {
	args, err := ParseArgs(json.RawMessage(`{
		"limit": 5,
		"half": 2.5,
		"text_limit": "7",
		"id": 123,
		"negative": -1,
		"flag": "true",
		"obj": {"a": 1},
		"obj_text": "{\"b\": 2}",
		"name": "  run  "
	}`))
	require.NoError(t, err)

	n, err := args.Int("limit", 20)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = args.Int("missing", 20)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	n, err = args.Int("text_limit", 20)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = args.Int("half", 0)
	assert.EqualError(t, err, "half must be an integer")

	huge := Args{"start": 1e20, "id": 1e20, "low": -1e20}
	_, err = huge.Int("start", 0)
	assert.EqualError(t, err, "start must be an integer")
	_, err = huge.Int("low", 0)
	assert.EqualError(t, err, "low must be an integer")
	_, err = huge.ID("id")
	assert.EqualError(t, err, "id must be a positive integer")

	id, err := args.ID("id")
	require.NoError(t, err)
	assert.EqualValues(t, 123, id)

	_, err = args.ID("negative")
	assert.EqualError(t, err, "negative must be a positive integer")
	_, err = args.ID("missing")
	assert.EqualError(t, err, "missing is required")

	b, err := args.Bool("flag", false)
	require.NoError(t, err)
	assert.True(t, b)
	b, err = args.Bool("missing", true)
	require.NoError(t, err)
	assert.True(t, b)
	_, err = args.Bool("name", false)
	assert.Error(t, err)

	obj, err := args.Object("obj")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, obj)
	obj, err = args.Object("obj_text")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"b": float64(2)}, obj)
	_, err = args.Object("name")
	assert.Error(t, err)

	assert.Equal(t, "run", args.String("name"))
	assert.Equal(t, "123", args.String("id"))

	empty, err := ParseArgs(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCallDate(t *testing.T) {
	env := newTestEnv(t)
	call := func(args Args) *Call { return &Call{Args: args, srv: env.srv} }

	got, err := call(Args{"date": "2024-06-01"}).Date("date")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", got)

	got, err = call(Args{"date": "yesterday"}).Date("date")
	require.NoError(t, err)
	assert.Equal(t, time.Now().UTC().AddDate(0, 0, -1).Format(core.APIDateFmt), got)

	_, err = call(Args{}).Date("date")
	assert.EqualError(t, err, "date is required (YYYY-MM-DD)")

	_, err = call(Args{"date": "June 1st"}).Date("date")
	assert.Error(t, err)

	got, err = call(Args{}).OptionalDate("end_date", "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", got)
}

func TestCatalogIsWellFormed(t *testing.T) {
	seen := map[string]bool{}
	for _, tool := range Catalog() {
		assert.False(t, seen[tool.Name], "duplicate tool %s", tool.Name)
		seen[tool.Name] = true
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.NotNil(t, tool.Handler, tool.Name)
		assert.Equal(t, "object", tool.InputSchema["type"], tool.Name)

		props, _ := tool.InputSchema["properties"].(map[string]any)
		required, _ := tool.InputSchema["required"].([]string)
		for _, r := range required {
			assert.Contains(t, props, r, "%s requires undeclared %s", tool.Name, r)
		}
	}
	for _, name := range []string{"garmin_login", "get_activities", "get_stats", "get_device_capabilities", "create_workout", "get_training_plan_workouts"} {
		assert.True(t, seen[name], name)
	}
}

func TestCatalogEntries(t *testing.T) {
	entries := catalogEntries([]*Tool{{
		Name:        "get_stats",
		Description: "Daily summary.",
		InputSchema: jsonSchema(map[string]any{
			"date":  propDate("Day"),
			"extra": propString("Extra"),
		}, "date"),
	}})
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"date", "extra"}, entries[0].Params)
	assert.Equal(t, []string{"date"}, entries[0].Required)
}

func TestArgValue(t *testing.T) {
	assert.Equal(t, float64(5), argValue("5"))
	assert.Equal(t, true, argValue("true"))
	assert.Equal(t, "2024-06-01", argValue("2024-06-01"))
	assert.Equal(t, map[string]any{"a": "b"}, argValue(`{"a":"b"}`))
}

func TestRouter(t *testing.T) {
	env := newTestEnv(t)
	router := env.srv.Router()

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status": "ok", "authenticated": false}`, rec.Body.String())
	})

	t.Run("initialize", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := `{"jsonrpc": "2.0", "id": 1, "method": "initialize"}`
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(sessionHeader))

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, core.ProtocolVersion, resp["result"].(map[string]any)["protocolVersion"])
	})

	t.Run("notification", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := `{"jsonrpc": "2.0", "method": "notifications/initialized"}`
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body)))
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("parse error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "-32700")
	})
}

func TestServeStdio(t *testing.T) {
	env := newTestEnv(t)
	in := strings.Join([]string{
		`{"jsonrpc": "2.0", "id": 1, "method": "initialize"}`,
		`{"jsonrpc": "2.0", "method": "notifications/initialized"}`,
		`not json`,
		``,
		`{"jsonrpc": "2.0", "id": 2, "method": "tools/list"}`,
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, env.srv.ServeStdio(context.Background(), strings.NewReader(in), &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.EqualValues(t, 1, first["id"])
	assert.EqualValues(t, 2, second["id"])
	tools := second["result"].(map[string]any)["tools"].([]any)
	assert.Len(t, tools, len(Catalog()))
}
