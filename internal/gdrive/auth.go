package gdrive

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/driveshift/driveshift/internal/tokenfile"
)

// ErrNotLoggedIn indicates no saved token exists for the requested account.
var ErrNotLoggedIn = errors.New("gdrive: not logged in")

// Built-in OAuth client registered for driveshift (installed application).
// The "secret" of a Google installed-app client is not confidential — it
// ships in every binary — but users can substitute their own registration
// via the [auth] config section.
const (
	defaultClientID     = "683275298471-r1dj7o4cfm2tqkbmv0jqgeb8fu3hcs9n.apps.googleusercontent.com"
	defaultClientSecret = "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"
)

// driveScope grants full Drive access. Ownership transfer modifies
// permissions on arbitrary files, which the narrower drive.file scope
// cannot reach.
var defaultScopes = []string{
	"https://www.googleapis.com/auth/drive",
}

// Credentials selects the OAuth client registration to use.
// Zero value means the built-in driveshift client.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// stateTokenBytes is the number of random bytes for the OAuth2 state parameter.
const stateTokenBytes = 16

// callbackPath is the HTTP path the OAuth2 redirect hits on the local server.
// Google's loopback redirect allows any port on 127.0.0.1 with a fixed path.
const callbackPath = "/"

// shutdownTimeout is how long to wait for the callback server to drain.
const shutdownTimeout = 5 * time.Second

// callbackResult carries the authorization code or error from the callback handler.
type callbackResult struct {
	code string
	err  error
}

// Login performs the authorization code + PKCE flow:
//  1. Binds a loopback HTTP server on a random port
//  2. Opens the browser to Google's authorization endpoint
//  3. Receives the callback with the authorization code
//  4. Exchanges the code for tokens using PKCE
//  5. Saves the token to disk at tokenPath
//  6. Returns a TokenSource for use with Client
//
// openURL is called with the authorization URL; the CLI uses it to launch the
// default browser. If openURL returns an error, the URL is printed to stderr
// so the user can open it manually.
//
// The returned TokenSource binds ctx to the underlying oauth2 token source.
// ctx must outlive the TokenSource — if ctx is canceled, silent token refresh
// will fail. Callers should pass context.Background() for long-lived use.
//
// The caller is responsible for computing tokenPath (via
// config.AccountTokenPath). This keeps gdrive/ free of any config import.
func Login(
	ctx context.Context,
	tokenPath string,
	creds Credentials,
	openURL func(string) error,
	logger *slog.Logger,
) (TokenSource, error) {
	cfg := oauthConfig(creds)

	return doLogin(ctx, tokenPath, cfg, openURL, logger)
}

// doLogin implements the authorization code + PKCE flow. Accepts a pre-built
// oauth2.Config so tests can inject a mock endpoint.
func doLogin(
	ctx context.Context,
	tokenPath string,
	cfg *oauth2.Config,
	openURL func(string) error,
	logger *slog.Logger,
) (TokenSource, error) {
	logger.Info("starting browser auth flow (authorization code + PKCE)",
		slog.String("path", tokenPath),
	)

	// Start the loopback callback server.
	resultCh := make(chan callbackResult, 1)
	mux := http.NewServeMux()

	srv, port, err := startCallbackServer(ctx, mux, resultCh, logger)
	if err != nil {
		return nil, err
	}

	defer shutdownCallbackServer(srv, logger)

	// Google's loopback flow requires the IP literal form, any port.
	cfg.RedirectURL = fmt.Sprintf("http://127.0.0.1:%d%s", port, callbackPath)

	// Generate PKCE verifier and random state, build auth URL.
	verifier := oauth2.GenerateVerifier()

	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("gdrive: generating state token: %w", err)
	}

	// Register the callback handler now that we know the state.
	registerCallbackHandler(mux, state, resultCh)

	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	// Open the browser and wait for callback.
	launchBrowser(authURL, openURL, logger)

	code, err := waitForCallback(ctx, resultCh)
	if err != nil {
		return nil, err
	}

	// Exchange and save.
	return exchangeAndSave(ctx, cfg, tokenPath, code, verifier, logger)
}

// startCallbackServer binds to 127.0.0.1:0 and starts an HTTP server with the
// given mux. Returns the server, the port, and any error.
func startCallbackServer(
	ctx context.Context,
	mux *http.ServeMux,
	resultCh chan<- callbackResult,
	logger *slog.Logger,
) (*http.Server, int, error) {
	lc := net.ListenConfig{}

	listener, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		return nil, 0, fmt.Errorf("gdrive: binding loopback listener: %w", err)
	}

	tcpAddr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		listener.Close()
		return nil, 0, fmt.Errorf("gdrive: listener address is not TCP")
	}

	port := tcpAddr.Port
	logger.Info("callback server listening", slog.Int("port", port))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}

	go func() {
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			resultCh <- callbackResult{err: fmt.Errorf("gdrive: callback server error: %w", serveErr)}
		}
	}()

	return srv, port, nil
}

// registerCallbackHandler adds the callback route to the mux.
// Must be called before the browser redirects back.
func registerCallbackHandler(mux *http.ServeMux, state string, resultCh chan<- callbackResult) {
	mux.HandleFunc("GET "+callbackPath, func(w http.ResponseWriter, r *http.Request) {
		handleOAuthCallback(w, r, state, resultCh)
	})
}

// handleOAuthCallback validates the state, extracts the code, and sends the result.
func handleOAuthCallback(w http.ResponseWriter, r *http.Request, state string, resultCh chan<- callbackResult) {
	// Validate state to prevent CSRF.
	if r.URL.Query().Get("state") != state {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		resultCh <- callbackResult{err: fmt.Errorf("gdrive: OAuth2 state mismatch (possible CSRF)")}

		return
	}

	// Check for error from the authorization server.
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		desc := r.URL.Query().Get("error_description")
		http.Error(w, "Authorization failed: "+errParam, http.StatusBadRequest)
		resultCh <- callbackResult{err: fmt.Errorf("gdrive: authorization failed: %s: %s", errParam, desc)}

		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		resultCh <- callbackResult{err: fmt.Errorf("gdrive: callback missing authorization code")}

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<html><body><h1>Authentication successful</h1>"+
		"<p>You can close this window and return to the terminal.</p></body></html>")
	resultCh <- callbackResult{code: code}
}

// shutdownCallbackServer gracefully shuts down the callback HTTP server.
func shutdownCallbackServer(srv *http.Server, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		// Best-effort shutdown — log but don't propagate since we're in a defer.
		logger.Warn("callback server shutdown error", slog.String("error", err.Error()))
	}
}

// launchBrowser attempts to open the auth URL. If it fails, prints the URL
// to stderr as a fallback so the user can copy-paste it.
func launchBrowser(authURL string, openURL func(string) error, logger *slog.Logger) {
	logger.Info("opening browser for authorization")

	if openErr := openURL(authURL); openErr != nil {
		logger.Warn("failed to open browser, printing URL",
			slog.String("error", openErr.Error()),
		)

		fmt.Fprintf(os.Stderr, "Open this URL in your browser:\n%s\n", authURL)
	}
}

// waitForCallback blocks until the callback fires or the context is canceled.
func waitForCallback(ctx context.Context, resultCh <-chan callbackResult) (string, error) {
	select {
	case result := <-resultCh:
		if result.err != nil {
			return "", result.err
		}

		return result.code, nil
	case <-ctx.Done():
		return "", fmt.Errorf("gdrive: browser auth canceled: %w", ctx.Err())
	}
}

// exchangeAndSave exchanges the auth code for a token and persists it.
func exchangeAndSave(
	ctx context.Context,
	cfg *oauth2.Config,
	tokenPath, code, verifier string,
	logger *slog.Logger,
) (TokenSource, error) {
	logger.Info("received authorization code, exchanging for token")

	tok, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("gdrive: token exchange failed: %w", err)
	}

	logger.Info("token exchange successful", slog.Time("expiry", tok.Expiry))

	if saveErr := tokenfile.Save(tokenPath, tok, nil); saveErr != nil {
		return nil, fmt.Errorf("gdrive: saving token: %w", saveErr)
	}

	logger.Info("login successful",
		slog.String("path", tokenPath),
		slog.Time("expiry", tok.Expiry),
	)

	return newPersistingSource(cfg.TokenSource(ctx, tok), tokenPath, tok.AccessToken, nil, logger), nil
}

// generateState produces a cryptographically random hex string for the OAuth2
// state parameter. Using crypto/rand prevents CSRF attacks.
func generateState() (string, error) {
	b := make([]byte, stateTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// TokenSourceFromPath loads a saved token from the given path and returns a
// TokenSource with auto-refresh; refreshed tokens are written back to disk
// so the next invocation does not repeat the refresh.
// Returns ErrNotLoggedIn if no token file exists at the path.
//
// The returned TokenSource binds ctx to the underlying oauth2 token source.
// ctx must outlive the TokenSource — if ctx is canceled, silent token refresh
// will fail. Callers should pass context.Background() for long-lived use.
func TokenSourceFromPath(ctx context.Context, tokenPath string, creds Credentials, logger *slog.Logger) (TokenSource, error) {
	tok, meta, err := tokenfile.Load(tokenPath)
	if err != nil {
		return nil, err
	}

	if tok == nil {
		return nil, ErrNotLoggedIn
	}

	expired := !tok.Expiry.IsZero() && tok.Expiry.Before(time.Now())
	logger.Info("loaded saved token",
		slog.String("path", tokenPath),
		slog.Time("expiry", tok.Expiry),
		slog.Bool("expired", expired),
	)

	cfg := oauthConfig(creds)
	src := cfg.TokenSource(ctx, tok)

	return newPersistingSource(src, tokenPath, tok.AccessToken, meta, logger), nil
}

// Logout removes the saved token file at the given path.
// Returns nil if the token file does not exist (already logged out).
func Logout(tokenPath string, logger *slog.Logger) error {
	err := os.Remove(tokenPath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("logout: no token file to remove (already logged out)",
			slog.String("path", tokenPath),
		)

		return nil
	}

	if err != nil {
		return err
	}

	logger.Info("logout: removed token file",
		slog.String("path", tokenPath),
	)

	return nil
}

// oauthConfig builds an oauth2.Config for the given client registration,
// falling back to the built-in driveshift client.
func oauthConfig(creds Credentials) *oauth2.Config {
	clientID := creds.ClientID
	clientSecret := creds.ClientSecret

	if clientID == "" {
		clientID = defaultClientID
		clientSecret = defaultClientSecret
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       defaultScopes,
		Endpoint:     google.Endpoint,
	}
}

// persistingSource adapts oauth2.TokenSource to gdrive.TokenSource and
// writes refreshed tokens back to disk. oauth2.ReuseTokenSource refreshes
// silently, so persistence has to happen here: whenever the access token
// differs from the last one seen, the new token is saved with the cached
// metadata preserved.
type persistingSource struct {
	src    oauth2.TokenSource
	path   string
	meta   map[string]string
	logger *slog.Logger

	mu         sync.Mutex
	lastAccess string
}

func newPersistingSource(
	src oauth2.TokenSource,
	path, lastAccess string,
	meta map[string]string,
	logger *slog.Logger,
) *persistingSource {
	return &persistingSource{
		src:        src,
		path:       path,
		meta:       meta,
		logger:     logger,
		lastAccess: lastAccess,
	}
}

func (p *persistingSource) Token() (string, error) {
	t, err := p.src.Token()
	if err != nil {
		p.logger.Warn("token acquisition failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("gdrive: obtaining token: %w", err)
	}

	p.mu.Lock()
	changed := t.AccessToken != p.lastAccess
	if changed {
		p.lastAccess = t.AccessToken
	}
	p.mu.Unlock()

	if changed {
		p.logger.Info("token refreshed, persisting",
			slog.String("path", p.path),
			slog.Time("new_expiry", t.Expiry),
		)

		if saveErr := tokenfile.Save(p.path, t, p.meta); saveErr != nil {
			// A failed save costs one extra refresh next run; not fatal.
			p.logger.Warn("failed to persist refreshed token",
				slog.String("path", p.path),
				slog.String("error", saveErr.Error()),
			)
		}
	}

	return t.AccessToken, nil
}
