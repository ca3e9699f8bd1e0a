// ABOUTME: Gateway assembly: wires store, auth service, and provider validators
// ABOUTME: Serves the HTTP API over TCP or a Tailscale tsnet listener

package gateway

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/2389/gatekeeper/internal/auth"
	"github.com/2389/gatekeeper/internal/config"
	"github.com/2389/gatekeeper/internal/provider"
	"github.com/2389/gatekeeper/internal/replay"
	"github.com/2389/gatekeeper/internal/store"
)

// replayGuardTTL bounds how long an accepted Microsoft authorization code is
// remembered. Codes are short-lived at the provider, so ten minutes covers
// the whole usable window.
const (
	replayGuardTTL     = 10 * time.Minute
	replayGuardMaxSize = 10000
)

// Gateway owns the HTTP server and all authentication components.
type Gateway struct {
	config *config.Config
	logger *slog.Logger

	store    store.UserStore
	authSvc  *auth.Service
	google   provider.Validator
	msCode   provider.Validator
	msToken  provider.Validator
	replayed *replay.Guard

	httpServer  *http.Server
	tsnetServer *tsnet.Server
}

// Option overrides a Gateway component, used by tests to substitute fakes.
type Option func(*Gateway)

// WithStore replaces the SQLite store.
func WithStore(s store.UserStore) Option {
	return func(g *Gateway) { g.store = s }
}

// WithGoogleValidator replaces the Google ID-token validator.
func WithGoogleValidator(v provider.Validator) Option {
	return func(g *Gateway) { g.google = v }
}

// WithMicrosoftValidator replaces the Microsoft code exchanger.
func WithMicrosoftValidator(v provider.Validator) Option {
	return func(g *Gateway) { g.msCode = v }
}

// WithMicrosoftTokenDecoder replaces the unverified Microsoft token decoder.
func WithMicrosoftTokenDecoder(v provider.Validator) Option {
	return func(g *Gateway) { g.msToken = v }
}

// New creates a Gateway from configuration. Options are applied before the
// auth service is constructed so test fakes participate in the full wiring.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	gw := &Gateway{
		config:   cfg,
		logger:   logger.With("component", "gateway"),
		google:   provider.NewGoogleValidator(cfg.Providers.Google.ClientID),
		msToken:  provider.NewMicrosoftTokenDecoder(),
		replayed: replay.New(replayGuardTTL, replayGuardMaxSize),
	}
	gw.msCode = provider.NewMicrosoftExchanger(provider.MicrosoftConfig{
		ClientID:     cfg.Providers.Microsoft.ClientID,
		ClientSecret: cfg.Providers.Microsoft.ClientSecret,
		TenantID:     cfg.Providers.Microsoft.TenantID,
		RedirectURI:  cfg.Providers.Microsoft.RedirectURI,
		GraphURL:     cfg.Providers.Microsoft.GraphURL,
	})

	for _, opt := range opts {
		opt(gw)
	}

	if gw.store == nil {
		s, err := store.NewSQLiteStore(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("creating store: %w", err)
		}
		gw.store = s
	}

	signer, err := auth.NewJWTSigner([]byte(cfg.Auth.JWTSecret), cfg.Auth.JWTAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("creating token signer: %w", err)
	}

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	gw.authSvc = auth.NewService(gw.store, hasher, signer, cfg.Auth.TokenTTL, logger)

	mux := http.NewServeMux()
	gw.registerRoutes(mux, signer)

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           gw.corsMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := g.setupListener(ctx)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown gracefully stops the HTTP server and releases resources.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))

	if g.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", g.tsnetServer.Close())
	}
	errs = appendCloseError(errs, "store close", g.store.Close())

	g.replayed.Close()

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// setupListener creates the listener based on configuration (Tailscale or TCP).
func (g *Gateway) setupListener(ctx context.Context) (net.Listener, error) {
	if g.config.Tailscale.Enabled {
		if g.config.Server.HTTPAddr != "" {
			g.logger.Warn("server.http_addr is ignored when tailscale is enabled",
				"http_addr", g.config.Server.HTTPAddr)
		}
		return g.setupTailscaleListener(ctx)
	}

	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// setupTailscaleListener creates a tsnet server and returns its HTTP listener.
func (g *Gateway) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := g.config.Tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, err
	}

	g.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	g.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	status, err := g.tsnetServer.Up(ctx)
	if err != nil {
		_ = g.tsnetServer.Close()
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}
	g.logTailscaleStatus(tsCfg.Hostname, status)

	switch {
	case tsCfg.Funnel:
		g.logger.Info("enabling tailscale funnel (public HTTPS) on :443")
		ln, err := g.tsnetServer.ListenFunnel("tcp", ":443")
		if err != nil {
			_ = g.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale funnel: %w", err)
		}
		return ln, nil
	case tsCfg.HTTPS:
		return g.createTailscaleTLSListener()
	default:
		ln, err := g.tsnetServer.Listen("tcp", ":80")
		if err != nil {
			_ = g.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale HTTP port: %w", err)
		}
		return ln, nil
	}
}

// createTailscaleTLSListener creates a TLS listener using Tailscale's auto-provisioned certs.
func (g *Gateway) createTailscaleTLSListener() (net.Listener, error) {
	g.logger.Info("enabling HTTPS with Tailscale certs on :443")
	ln, err := g.tsnetServer.Listen("tcp", ":443")
	if err != nil {
		_ = g.tsnetServer.Close()
		return nil, fmt.Errorf("listening on tailscale HTTPS port: %w", err)
	}
	lc, err := g.tsnetServer.LocalClient()
	if err != nil {
		_ = ln.Close()
		_ = g.tsnetServer.Close()
		return nil, fmt.Errorf("getting tailscale local client: %w", err)
	}
	return tls.NewListener(ln, &tls.Config{
		GetCertificate: lc.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}), nil
}

// logTailscaleStatus logs info about the tailscale node status.
func (g *Gateway) logTailscaleStatus(hostname string, status *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(status.TailscaleIPs) > 0 {
		tsAddr = status.TailscaleIPs[0].String()
	} else {
		g.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if status.Self != nil {
		dnsName = status.Self.DNSName
	}
	g.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}

// resolveTailscaleStateDir returns the state directory, using default if not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "gatekeeper", "tailscale"), nil
}

// resolveTailscaleAuthKey returns the auth key from config or environment.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set auth_key in config or TS_AUTHKEY environment variable (get one at https://login.tailscale.com/admin/settings/keys)")
	}
	return authKey, nil
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}
