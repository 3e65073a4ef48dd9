package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/colthorp/garmin-mcp-go/internal/api"
	"github.com/colthorp/garmin-mcp-go/internal/auth"
	"github.com/colthorp/garmin-mcp-go/internal/core"
	"github.com/colthorp/garmin-mcp-go/internal/curate"
)

// Tool is one entry of the MCP tool catalog.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
	Handler     func(ctx context.Context, c *Call) (any, error)
}

// Info returns the tools/list representation.
func (t *Tool) Info() MCPToolInfo {
	return MCPToolInfo{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema}
}

// Call is one tool invocation.
type Call struct {
	Tool string
	ID   string
	Args Args
	Meta auth.CallContext

	srv *Server
}

// Upstream resolves the session for this call.
func (c *Call) Upstream() (api.Upstream, error) {
	return c.srv.resolver.Resolve(c.Meta)
}

// Date resolves a required date argument in the server's timezone.
func (c *Call) Date(key string) (string, error) {
	raw := c.Args.String(key)
	if raw == "" {
		return "", fmt.Errorf("%s is required (YYYY-MM-DD)", key)
	}
	return core.ResolveDate(raw, c.srv.loc)
}

// OptionalDate is Date for arguments that may be omitted; fallback is
// returned unchanged in that case.
func (c *Call) OptionalDate(key, fallback string) (string, error) {
	if c.Args.String(key) == "" {
		return fallback, nil
	}
	return c.Date(key)
}

// Today is the current date in the server's timezone.
func (c *Call) Today() time.Time {
	return core.DateOnly(c.srv.now().In(c.srv.loc))
}

type curateFunc func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error)

// upstream wraps a curation handler with session resolution.
func upstream(fn curateFunc) func(ctx context.Context, c *Call) (any, error) {
	return func(ctx context.Context, c *Call) (any, error) {
		up, err := c.Upstream()
		if err != nil {
			return nil, err
		}
		return fn(ctx, up, c)
	}
}

// dated is the common shape of tools taking a single date argument.
func dated(fn func(ctx context.Context, up api.Upstream, date string) (curate.Result, error)) func(ctx context.Context, c *Call) (any, error) {
	return upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
		date, err := c.Date("date")
		if err != nil {
			return nil, err
		}
		return fn(ctx, up, date)
	})
}

// byActivity is the common shape of tools taking an activity id.
func byActivity(fn func(ctx context.Context, up api.Upstream, id int64) (curate.Result, error)) func(ctx context.Context, c *Call) (any, error) {
	return upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
		id, err := c.Args.ID("activity_id")
		if err != nil {
			return nil, err
		}
		return fn(ctx, up, id)
	})
}

// Args are the decoded arguments of a tool call.
type Args map[string]any

// ParseArgs decodes a JSON arguments object. Empty input yields no args.
func ParseArgs(raw json.RawMessage) (Args, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Args{}, nil
	}
	var a Args
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("arguments must be an object: %w", err)
	}
	if a == nil {
		a = Args{}
	}
	return a, nil
}

// String returns the trimmed string value of key, or "".
func (a Args) String(key string) string {
	switch v := a[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func (a Args) number(key string) (float64, bool, error) {
	switch v := a[key].(type) {
	case nil:
		return 0, false, nil
	case float64:
		return v, true, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false, fmt.Errorf("%s must be a number, got: %s", key, v)
		}
		return f, true, nil
	default:
		return 0, false, fmt.Errorf("%s must be a number", key)
	}
}

// Float returns a required numeric argument.
func (a Args) Float(key string) (float64, error) {
	f, ok, err := a.number(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errRequired(key)
	}
	return f, nil
}

// Int returns an integer argument, or def when absent.
func (a Args) Int(key string, def int) (int, error) {
	f, ok, err := a.number(key)
	if err != nil || !ok {
		return def, err
	}
	if f != math.Trunc(f) || f < math.MinInt || f >= math.MaxInt {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return int(f), nil
}

// ID returns a required positive integer identifier.
func (a Args) ID(key string) (int64, error) {
	f, ok, err := a.number(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errRequired(key)
	}
	if f <= 0 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return int64(f), nil
}

// Bool returns a boolean argument, or def when absent.
func (a Args) Bool(key string, def bool) (bool, error) {
	switch v := a[key].(type) {
	case nil:
		return def, nil
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return def, fmt.Errorf("%s must be true or false", key)
		}
		return b, nil
	default:
		return def, fmt.Errorf("%s must be a boolean", key)
	}
}

// Object returns a required JSON object argument. A string holding a JSON
// object is accepted too.
func (a Args) Object(key string) (map[string]any, error) {
	switch v := a[key].(type) {
	case map[string]any:
		return v, nil
	case string:
		var m map[string]any
		if err := json.Unmarshal([]byte(v), &m); err != nil || m == nil {
			return nil, fmt.Errorf("%s must be a JSON object", key)
		}
		return m, nil
	case nil:
		return nil, errRequired(key)
	default:
		return nil, fmt.Errorf("%s must be a JSON object", key)
	}
}

func errRequired(key string) error {
	return fmt.Errorf("%s is required", key)
}

func jsonSchema(properties map[string]any, required ...string) map[string]any {
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func propString(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func propStringEnum(description string, values []string, def string) map[string]any {
	return map[string]any{"type": "string", "description": description, "enum": values, "default": def}
}

func propDate(description string) map[string]any {
	return propString(description + " (YYYY-MM-DD, 'today', 'yesterday' or d-N)")
}

func propInteger(description string, def ...int) map[string]any {
	p := map[string]any{"type": "integer", "description": description}
	if len(def) > 0 {
		p["default"] = def[0]
	}
	return p
}

func propNumber(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

func propBoolean(description string, def bool) map[string]any {
	return map[string]any{"type": "boolean", "description": description, "default": def}
}

func propObject(description string) map[string]any {
	return map[string]any{"type": "object", "description": description}
}

var noParams = jsonSchema(map[string]any{})
