package googletasks

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"taskboard/internal/service"
)

const (
	// OAuth callback timeout
	oauthCallbackTimeout = 5 * time.Minute

	// Token exchange timeout
	tokenExchangeTimeout = 30 * time.Second

	// Starting port for OAuth callback server
	oauthStartPort = 8085

	// Max port attempts
	oauthMaxPortAttempts = 5
)

// Login implements service.API with the OAuth loopback flow.
// Email and password are ignored: Google authenticates in the browser.
// An existing token that still refreshes is reused.
func (c *Client) Login(ctx context.Context, email, password string) (service.User, error) {
	oauthConfig, err := c.oauthConfig()
	if err != nil {
		return service.User{}, err
	}

	if c.tokenValid(ctx, oauthConfig) {
		return c.CheckAuth(ctx)
	}

	port, listener, err := findAvailablePort()
	if err != nil {
		return service.User{}, errors.New("could not bind to local port for OAuth callback")
	}
	defer listener.Close()

	oauthConfig.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)
	verifier := oauth2.GenerateVerifier()
	authURL := oauthConfig.AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	fmt.Fprintln(c.Prompt, "Open this URL in your browser:")
	fmt.Fprintln(c.Prompt, authURL)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "No code in callback", http.StatusBadRequest)
			errCh <- errors.New("no code in callback")
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Authentication successful</h1><p>You may close this window.</p></body></html>")
		codeCh <- code
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return service.User{}, err
	case <-time.After(oauthCallbackTimeout):
		return service.User{}, errors.New("oauth callback timed out")
	case <-ctx.Done():
		return service.User{}, ctx.Err()
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancel()
	token, err := oauthConfig.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return service.User{}, fmt.Errorf("%w: failed to exchange code for token: %v", service.ErrUnauthorized, err)
	}

	if err := c.cfg.EnsureDir(); err != nil {
		return service.User{}, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := saveToken(c.cfg.TokenPath(), token); err != nil {
		return service.User{}, fmt.Errorf("failed to save token: %w", err)
	}

	c.reset()
	return c.CheckAuth(ctx)
}

// tokenValid reports whether token.json holds a refresh token that still works.
func (c *Client) tokenValid(ctx context.Context, oauthConfig *oauth2.Config) bool {
	token, err := loadToken(c.cfg.TokenPath())
	if err != nil || token.RefreshToken == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err = oauthConfig.TokenSource(ctx, token).Token()
	return err == nil
}

// findAvailablePort tries to find an available port starting from oauthStartPort.
func findAvailablePort() (int, net.Listener, error) {
	for i := 0; i < oauthMaxPortAttempts; i++ {
		port := oauthStartPort + i
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return port, listener, nil
		}
	}
	return 0, nil, errors.New("no available port found")
}
