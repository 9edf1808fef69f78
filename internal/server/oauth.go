package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// OAuthResult carries the outcome of the authorization code flow back to the
// command that started it.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler serves the provider's redirect back to the loopback server.
// It accepts exactly one callback: the state parameter must match the value
// generated for this flow, and replays after the first hit are rejected.
type OAuthHandler struct {
	config     *oauth2.Config
	state      string
	resultChan chan OAuthResult

	mu       sync.Mutex
	consumed bool
	sendOnce sync.Once
}

// NewOAuthHandler creates a handler for a single authorization attempt.
// state must be a fresh random token; it is compared against the redirect.
func NewOAuthHandler(config *oauth2.Config, state string) *OAuthHandler {
	return &OAuthHandler{
		config:     config,
		state:      state,
		resultChan: make(chan OAuthResult, 1),
	}
}

func (h *OAuthHandler) Routes() []string {
	return []string{"/callback"}
}

// Result yields exactly one OAuthResult, then the channel closes.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	replay := h.consumed
	h.consumed = true
	h.mu.Unlock()

	if replay {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}

	query := r.URL.Query()

	if query.Get("state") != h.state {
		h.fail(w, http.StatusBadRequest, "Invalid state parameter",
			fmt.Errorf("invalid state parameter"))
		return
	}

	code := query.Get("code")
	if code == "" {
		h.fail(w, http.StatusBadRequest, "Authorization failed",
			fmt.Errorf("authorization failed: %s - %s", query.Get("error"), query.Get("error_description")))
		return
	}

	token, err := h.config.Exchange(context.Background(), code)
	if err != nil {
		h.fail(w, http.StatusInternalServerError, "Token exchange failed",
			fmt.Errorf("token exchange failed: %w", err))
		return
	}

	h.deliver(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

func (h *OAuthHandler) fail(w http.ResponseWriter, status int, message string, err error) {
	h.deliver(OAuthResult{err: err})
	http.Error(w, message, status)
}

func (h *OAuthHandler) deliver(result OAuthResult) {
	h.sendOnce.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center;
               height: 100vh; margin: 0; background: #fafafa; }
        main { text-align: center; background: white; padding: 2rem 3rem;
               border-radius: 8px; box-shadow: 0 1px 3px rgba(0,0,0,0.12); }
        h1 { color: #1DB954; margin: 0 0 0.5rem 0; }
        p { color: #555; margin: 0; }
    </style>
</head>
<body>
    <main>
        <h1>✓ Authorization Successful</h1>
        <p>mixtape has your token. You can close this window.</p>
    </main>
</body>
</html>
`
