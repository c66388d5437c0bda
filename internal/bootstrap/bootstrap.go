package bootstrap

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/chargedocs/chargedocs/internal/config"
	"github.com/chargedocs/chargedocs/internal/core/domain"
	"github.com/chargedocs/chargedocs/internal/core/ports"
	"github.com/chargedocs/chargedocs/internal/core/usecase"
	"github.com/chargedocs/chargedocs/internal/infrastructure/backend"
	"github.com/chargedocs/chargedocs/internal/infrastructure/imaging"
	"github.com/chargedocs/chargedocs/internal/infrastructure/push/ws"
	"github.com/chargedocs/chargedocs/internal/infrastructure/resilience"
	"github.com/chargedocs/chargedocs/internal/infrastructure/session"
	"github.com/chargedocs/chargedocs/internal/observability/metrics"
)

const serviceName = "chargedocs"

// App wires the client together: session store, repository client, push
// channel dialer, and the usecases the gateway exposes.
type App struct {
	Config  config.Config
	Metrics *metrics.Metrics

	Session  *session.Store
	API      ports.DocumentAPI
	Browser  *usecase.DocumentState
	Uploads  *usecase.UploadWorkflow
	Viewer   *usecase.StickerViewer
	Exporter *usecase.ExportUseCase
	Auth     *usecase.AuthUseCase
}

func New(cfg config.Config) *App {
	m := metrics.New(serviceName)

	sessionStore := session.NewStore()
	if cfg.Token != "" {
		sessionStore.Set(domain.Session{Token: cfg.Token})
	}

	breaker := resilience.NewBreaker(resilience.Config{
		Enabled:          cfg.BreakerEnabled,
		MinRequests:      uint32(cfg.BreakerMinRequests),
		FailureRatio:     cfg.BreakerFailureRatio,
		OpenTimeout:      time.Duration(cfg.BreakerOpenTimeoutSeconds) * time.Second,
		HalfOpenMaxCalls: uint32(cfg.BreakerHalfOpenMaxCalls),
	})

	api := backend.New(cfg.BackendBaseURL, sessionStore, backend.Options{
		Timeout: time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
		Breaker: breaker,
		Metrics: m,
		Service: serviceName,
		// 401 from any endpoint drops the local identity; the views see
		// an unauthenticated session and return to login.
		OnUnauthorized: sessionStore.Clear,
	})

	var limiter *rate.Limiter
	if cfg.SearchThrottleRPS > 0 {
		burst := cfg.SearchThrottleBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.SearchThrottleRPS), burst)
	}
	browser := usecase.NewDocumentState(api, limiter, func(err error) {
		m.RecordCacheRefresh(serviceName, err)
	})

	uploads := usecase.NewUploadWorkflow(api, imaging.NewCropper(), usecase.UploadOptions{
		Dialer:     ws.NewDialer(cfg.PushChannelURL),
		Refresh:    browser.Refresh,
		OnProgress: m.SetUploadProgress,
		JoinGrace:  time.Duration(cfg.UploadJoinGraceSeconds) * time.Second,
	})

	return &App{
		Config:   cfg,
		Metrics:  m,
		Session:  sessionStore,
		API:      api,
		Browser:  browser,
		Uploads:  uploads,
		Viewer:   usecase.NewStickerViewer(api),
		Exporter: usecase.NewExportUseCase(api, cfg.ExportDir),
		Auth:     usecase.NewAuthUseCase(api, sessionStore),
	}
}
