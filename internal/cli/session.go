package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/colthorp/garmin-mcp-go/internal/api"
)

func sessionTools() []*Tool {
	return []*Tool{
		{
			Name: "garmin_login",
			Description: "Log in to Garmin Connect with email and password. The session is kept for later calls " +
				"and the returned tokens can be passed to set_garmin_session or as sport_platform_token.",
			InputSchema: jsonSchema(map[string]any{
				"email":    propString("Garmin Connect email"),
				"password": propString("Garmin Connect password"),
			}, "email", "password"),
			Handler: loginTool,
		},
		{
			Name:        "set_garmin_session",
			Description: "Restore a session from tokens returned by an earlier garmin_login.",
			InputSchema: jsonSchema(map[string]any{
				"tokens": propString("Session tokens"),
			}, "tokens"),
			Handler: setSessionTool,
		},
		{
			Name:        "garmin_logout",
			Description: "Forget the current session.",
			InputSchema: noParams,
			Handler: func(_ context.Context, c *Call) (any, error) {
				c.srv.Logout()
				return map[string]any{"success": true, "message": "Logged out"}, nil
			},
		},
	}
}

func loginTool(ctx context.Context, c *Call) (any, error) {
	email := c.Args.String("email")
	password, _ := c.Args["password"].(string)
	if email == "" {
		return nil, errRequired("email")
	}
	if password == "" {
		return nil, errRequired("password")
	}

	res, err := c.srv.login.Login(ctx, email, password)
	if err != nil {
		c.srv.logger.Info("login failed", slog.String("call_id", c.ID), slog.Any("error", err))
		return loginFailure(err), nil
	}
	caps, err := c.srv.Restore(ctx, res.Material)
	if err != nil {
		return nil, err
	}

	out := map[string]any{
		"success":        true,
		"message":        "Login successful",
		"tokens":         res.Material,
		"disabled_tools": caps.Map()["disabled_tools"],
	}
	if name := res.Session.Identity.DisplayName; name != "" {
		out["display_name"] = name
	}
	if name := res.Session.Identity.FullName; name != "" {
		out["full_name"] = name
	}
	return out, nil
}

func setSessionTool(ctx context.Context, c *Call) (any, error) {
	tokens := c.Args.String("tokens")
	if tokens == "" {
		return nil, errRequired("tokens")
	}
	caps, err := c.srv.Restore(ctx, tokens)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"success":        true,
		"message":        "Session restored",
		"disabled_tools": caps.Map()["disabled_tools"],
	}, nil
}

func loginFailure(err error) map[string]any {
	out := map[string]any{"success": false}
	switch {
	case errors.Is(err, api.ErrMFARequired):
		out["error"] = "MFA required. Log in with the garmin-mcp login command and restore the session with set_garmin_session."
		out["error_category"] = "mfa_required"
		out["mfa_required"] = true
	case errors.Is(err, api.ErrInvalidCredentials), api.IsStatus(err, http.StatusUnauthorized):
		out["error"] = "Invalid email or password"
		out["error_category"] = "invalid_credentials"
	case errors.Is(err, api.ErrRateLimited), api.IsStatus(err, http.StatusTooManyRequests):
		out["error"] = "Rate limited. Please wait and try again."
		out["error_category"] = "rate_limited"
	case api.IsStatus(err, http.StatusForbidden):
		out["error"] = "Authentication blocked: suspicious location detected"
		out["error_category"] = "location_blocked"
	default:
		out["error"] = "Authentication error: " + err.Error()
		out["error_category"] = "unknown"
	}
	return out
}
