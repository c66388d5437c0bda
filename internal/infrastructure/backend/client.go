package backend

import (
	"net/http"
	"strings"
	"time"

	"github.com/chargedocs/chargedocs/internal/core/domain"
	"github.com/chargedocs/chargedocs/internal/infrastructure/resilience"
	"github.com/chargedocs/chargedocs/internal/observability/metrics"
)

// TokenSource supplies the bearer token for each call. The session store
// satisfies it; the client never caches or mutates the token itself.
type TokenSource interface {
	Token() string
}

// Client is the repository client: a typed wrapper over the backend's
// document endpoints. It is stateless beyond the token it reads per call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	breaker    *resilience.Breaker
	metrics    *metrics.Metrics
	service    string

	// onUnauthorized fires once per 401 so the session store can drop
	// the local identity and push the views back to login.
	onUnauthorized func()
}

type Options struct {
	Timeout        time.Duration
	Breaker        *resilience.Breaker
	Metrics        *metrics.Metrics
	Service        string
	OnUnauthorized func()
}

func New(baseURL string, tokens TokenSource, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	service := options.Service
	if service == "" {
		service = "chargedocs"
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{Timeout: timeout},
		tokens:         tokens,
		breaker:        options.Breaker,
		metrics:        options.Metrics,
		service:        service,
		onUnauthorized: options.OnUnauthorized,
	}
}

// classifyBackendError keeps client-side mistakes from tripping the
// breaker; only backend/transport failures count.
func classifyBackendError(err error) resilience.Classification {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput),
		domain.IsKind(err, domain.ErrUnauthorized),
		domain.IsKind(err, domain.ErrDocumentNotFound),
		domain.IsKind(err, domain.ErrNameConflict):
		return resilience.Classification{RecordFailure: false}
	default:
		return resilience.Classification{RecordFailure: true}
	}
}
