package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pretium/internal/metrics"
	"github.com/ternarybob/pretium/internal/transport"
)

const (
	// DefaultTTL is how long an acquired cookie is reused before the
	// landing page is fetched again.
	DefaultTTL = 30 * time.Minute

	// acquireTimeout bounds the one-shot landing page fetch.
	acquireTimeout = 15 * time.Second
)

// Options configures a Manager.
type Options struct {
	// BaseURL is the source root; its landing page hands out cookies.
	BaseURL string

	// Override, when set, is returned verbatim from Cookie and never
	// expires. Used to pin a logged-in browser session via config.
	Override string

	// TTL is the cookie reuse window. Zero means DefaultTTL.
	TTL time.Duration

	UserAgent string
}

// Manager caches the anonymous session cookie the source hands out on
// its landing page. It deliberately uses its own bare HTTP client: the
// retrying transport asks the Manager for cookies, so the Manager
// cannot call back into it.
type Manager struct {
	baseURL    string
	override   string
	ttl        time.Duration
	userAgent  string
	httpClient *http.Client
	logger     arbor.ILogger
	metrics    *metrics.Metrics

	mu         sync.Mutex
	cookie     string
	acquiredAt time.Time
}

var _ transport.SessionProvider = (*Manager)(nil)

// NewManager creates a session manager.
func NewManager(opts Options, logger arbor.ILogger, m *metrics.Metrics) *Manager {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = transport.DefaultUserAgent
	}

	return &Manager{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		override:   strings.TrimSpace(opts.Override),
		ttl:        ttl,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: acquireTimeout},
		logger:     logger,
		metrics:    m,
	}
}

// Cookie returns the session cookie to attach to requests. An override
// wins unconditionally. Otherwise a cached cookie is reused within its
// TTL and re-acquired after. Acquisition failures are swallowed: data
// endpoints mostly work unauthenticated, so a missing cookie degrades
// the response rather than failing the request.
func (m *Manager) Cookie(ctx context.Context) string {
	if m.override != "" {
		return m.override
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cookie != "" && time.Since(m.acquiredAt) < m.ttl {
		return m.cookie
	}

	cookie, err := m.acquire(ctx)
	if err != nil {
		if m.logger != nil {
			m.logger.Warn().Err(err).Msg("Session acquisition failed, continuing unauthenticated")
		}
		return ""
	}

	m.cookie = cookie
	m.acquiredAt = time.Now()

	if m.logger != nil {
		m.logger.Debug().Int("cookies", strings.Count(cookie, "=")).Msg("Session cookie acquired")
	}

	return cookie
}

// Invalidate discards the cached cookie so the next Cookie call
// acquires a fresh one. An override is never invalidated.
func (m *Manager) Invalidate() {
	if m.override != "" {
		return
	}

	m.mu.Lock()
	m.cookie = ""
	m.acquiredAt = time.Time{}
	m.mu.Unlock()
}

// acquire fetches the landing page and joins every cookie it sets into
// a single "name=value; name=value" header value.
func (m *Manager) acquire(ctx context.Context) (string, error) {
	m.metrics.RecordSessionAcquire()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", m.userAgent)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024*1024))

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("landing page returned status %d", resp.StatusCode)
	}

	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return "", errors.New("landing page set no cookies")
	}

	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}

	return strings.Join(pairs, "; "), nil
}
