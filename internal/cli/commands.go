package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.etcd.io/bbolt"

	"github.com/colthorp/garmin-mcp-go/internal/api"
	"github.com/colthorp/garmin-mcp-go/internal/auth"
	"github.com/colthorp/garmin-mcp-go/internal/core"
	"github.com/colthorp/garmin-mcp-go/internal/output"
	"github.com/colthorp/garmin-mcp-go/internal/tokenstore"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(callCmd)

	// Serve command flags
	serveCmd.Flags().Bool("http", false, "Serve over HTTP instead of stdio")
	serveCmd.Flags().String("host", "", fmt.Sprintf("HTTP listen host (default %s)", core.DefaultHTTPHost))
	serveCmd.Flags().Int("port", 0, fmt.Sprintf("HTTP listen port (default %d)", core.DefaultHTTPPort))
	serveCmd.Flags().String("user", "", "Restore the session stored for this user id")

	// Login command flags
	loginCmd.Flags().String("email", os.Getenv(core.EmailEnvVar), "Garmin Connect email")
	loginCmd.Flags().String("user", "", "User id to store the session under (default derived from email)")
	loginCmd.Flags().Bool("show-tokens", false, "Print the session tokens")

	// Logout command flags
	logoutCmd.Flags().String("user", "", "User id whose stored session is removed")
	logoutCmd.MarkFlagRequired("user")

	// Tools command flags
	toolsCmd.Flags().String("user", "", "Mark tools unsupported by this stored user's devices")

	// Call command flags
	callCmd.Flags().StringArray("arg", nil, "Tool argument as key=value (repeatable)")
	callCmd.Flags().String("json", "", "Tool arguments as a JSON object")
	callCmd.Flags().String("user", "", "Use the session stored for this user id")
	callCmd.Flags().String("token", "", "Use these session tokens")
	callCmd.Flags().String("format", output.FormatJSON, "Output format (json or yaml)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio by default)",
	Args:  cobra.NoArgs,
	RunE:  handleServe,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to Garmin Connect and store the session",
	Long: fmt.Sprintf(`Log in with email and password and store the session tokens locally.
The password is read from %s or prompted for on stdin.`, core.PasswordEnvVar),
	Args: cobra.NoArgs,
	RunE: handleLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove a stored session",
	Args:  cobra.NoArgs,
	RunE:  handleLogout,
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the MCP tool catalog",
	Args:  cobra.NoArgs,
	RunE:  handleTools,
}

var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Invoke one tool and print its result",
	Example: `  garmin-mcp call get_stats --user jean_at_example_com --arg date=yesterday
  garmin-mcp call get_activities --user jean_at_example_com --arg limit=5 --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: handleCall,
}

// newServer assembles a server from the loaded config. The returned func
// closes the token store.
func newServer() (*Server, func()) {
	var store tokenstore.Backend
	closeStore := func() {}
	db, err := tokenstore.OpenBolt(cfg.TokenDB, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		logger.Warn("token store unavailable", slog.String("path", cfg.TokenDB), slog.Any("error", err))
	} else {
		store = db
		closeStore = func() { db.Close() }
	}

	resolver := auth.NewResolver(nil, func(s *api.Session) api.Upstream {
		return api.NewGarminFromSession(s, cfg.Upstream, logger)
	}, logger)

	srv := NewServer(ServerOptions{
		Resolver: resolver,
		Login:    api.NewAuthenticator(cfg.Upstream, logger),
		Store:    store,
		Location: core.GetTZ(cfg.Timezone),
		Logger:   logger,
	})
	return srv, closeStore
}

func storedEntry(srv *Server, userID string) (*tokenstore.Entry, error) {
	if srv.store == nil {
		return nil, fmt.Errorf("token store unavailable at %s", cfg.TokenDB)
	}
	entry, err := srv.store.Read(userID)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return nil, fmt.Errorf("no stored session for %q; run garmin-mcp login first", userID)
	}
	return entry, err
}

// bootstrapSession fills the credential slot before serving: from the token
// store when user is set, otherwise from GARMIN_EMAIL/GARMIN_PASSWORD.
func bootstrapSession(ctx context.Context, srv *Server, user string) error {
	if user != "" {
		entry, err := storedEntry(srv, user)
		if err != nil {
			return err
		}
		if _, err := srv.Restore(ctx, entry.Material); err != nil {
			return err
		}
		logger.Info("restored stored session", slog.String("user_id", user))
		return nil
	}

	email, password := os.Getenv(core.EmailEnvVar), os.Getenv(core.PasswordEnvVar)
	if email == "" || password == "" {
		logger.Info("no pre-configured credentials; use the garmin_login tool or pass sport_platform_token")
		return nil
	}
	res, err := srv.login.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login from environment: %w", err)
	}
	if err := saveSession(srv, tokenstore.UserID(email), res); err != nil {
		logger.Warn("saving session failed", slog.String("email", email), slog.Any("error", err))
	}
	_, err = srv.Restore(ctx, res.Material)
	return err
}

// saveSession persists a login result under userID. Only the command line
// writes the token store.
func saveSession(srv *Server, userID string, res *api.LoginResult) error {
	if srv.store == nil {
		return fmt.Errorf("token store unavailable at %s", cfg.TokenDB)
	}
	return srv.store.Write(&tokenstore.Entry{
		UserID:      userID,
		Material:    res.Material,
		DisplayName: res.Session.Identity.DisplayName,
		FullName:    res.Session.Identity.FullName,
		SavedAt:     time.Now().UTC(),
	})
}

func handleServe(cmd *cobra.Command, args []string) error {
	httpMode, _ := cmd.Flags().GetBool("http")
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")
	user, _ := cmd.Flags().GetString("user")
	if host != "" {
		cfg.Server.Host = host
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	srv, closeStore := newServer()
	defer closeStore()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrapSession(ctx, srv, user); err != nil {
		return err
	}

	if !httpMode {
		logger.Info("serving MCP on stdio", slog.String("version", core.Version))
		return srv.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	}
	return serveHTTP(ctx, srv, net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)))
}

func serveHTTP(ctx context.Context, srv *Server, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			done <- fmt.Errorf("server failed: %w", err)
			return
		}
		done <- nil
	}()
	logger.Info("serving MCP over HTTP", slog.String("url", "http://"+addr+"/mcp"))

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-done:
		return err
	}
}

func handleLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	user, _ := cmd.Flags().GetString("user")
	showTokens, _ := cmd.Flags().GetBool("show-tokens")
	if email == "" {
		return fmt.Errorf("--email is required (or set %s)", core.EmailEnvVar)
	}
	password := os.Getenv(core.PasswordEnvVar)
	if password == "" {
		var err error
		if password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
			return err
		}
	}
	if user == "" {
		user = tokenstore.UserID(email)
	}

	srv, closeStore := newServer()
	defer closeStore()
	if srv.store == nil {
		return fmt.Errorf("token store unavailable at %s", cfg.TokenDB)
	}

	core.Eprint(fmt.Sprintf("Logging in as %s…", email), true)
	res, err := srv.login.Login(cmd.Context(), email, password)
	if err != nil {
		return fmt.Errorf("login failed: %v", loginFailure(err)["error"])
	}
	if err := saveSession(srv, user, res); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	caps, err := srv.Restore(cmd.Context(), res.Material)
	if err != nil {
		return err
	}

	summary := map[string]any{
		"user_id":        user,
		"display_name":   res.Session.Identity.DisplayName,
		"full_name":      res.Session.Identity.FullName,
		"disabled_tools": caps.Map()["disabled_tools"],
	}
	if showTokens {
		summary["tokens"] = res.Material
	}
	return output.PrintJSON(cmd.OutOrStdout(), summary)
}

func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "Password: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("password is required")
	}
	return line, nil
}

func handleLogout(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetString("user")
	srv, closeStore := newServer()
	defer closeStore()
	if _, err := storedEntry(srv, user); err != nil {
		return err
	}
	if err := srv.store.Delete(user); err != nil {
		return fmt.Errorf("removing session: %w", err)
	}
	core.Eprint(fmt.Sprintf("Removed stored session for %s", user), true)
	return nil
}

func handleTools(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetString("user")
	entries := catalogEntries(Catalog())
	if user != "" {
		srv, closeStore := newServer()
		defer closeStore()
		if err := bootstrapSession(cmd.Context(), srv, user); err != nil {
			return err
		}
		if caps := srv.caps.Load(); caps != nil {
			for i := range entries {
				entries[i].Disabled = caps.Disabled(entries[i].Name)
			}
		}
	}
	return output.RenderCatalog(cmd.OutOrStdout(), entries)
}

func catalogEntries(tools []*Tool) []output.CatalogEntry {
	entries := make([]output.CatalogEntry, 0, len(tools))
	for _, t := range tools {
		e := output.CatalogEntry{Name: t.Name, Description: t.Description}
		if props, ok := t.InputSchema["properties"].(map[string]any); ok {
			for name := range props {
				e.Params = append(e.Params, name)
			}
			slices.Sort(e.Params)
		}
		e.Required, _ = t.InputSchema["required"].([]string)
		entries = append(entries, e)
	}
	return entries
}

func handleCall(cmd *cobra.Command, args []string) error {
	rawJSON, _ := cmd.Flags().GetString("json")
	pairs, _ := cmd.Flags().GetStringArray("arg")
	user, _ := cmd.Flags().GetString("user")
	token, _ := cmd.Flags().GetString("token")
	format, _ := cmd.Flags().GetString("format")

	toolArgs, err := ParseArgs(json.RawMessage(rawJSON))
	if err != nil {
		return err
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return fmt.Errorf("--arg must be key=value, got %q", pair)
		}
		toolArgs[key] = argValue(value)
	}

	srv, closeStore := newServer()
	defer closeStore()
	if user != "" {
		entry, err := storedEntry(srv, user)
		if err != nil {
			return err
		}
		if _, err := srv.resolver.Store(entry.Material); err != nil {
			return fmt.Errorf("stored session for %q is unusable: %w", user, err)
		}
	}

	core.Eprint(fmt.Sprintf("Calling %s…", args[0]), verbose)
	result, isError := srv.CallTool(cmd.Context(), args[0], toolArgs, auth.CallContext{Token: token})
	if err := output.Print(cmd.OutOrStdout(), result, format); err != nil {
		return err
	}
	if isError {
		return fmt.Errorf("%s failed", args[0])
	}
	return nil
}

// argValue interprets a --arg value as JSON when it parses, else as a string.
func argValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}
