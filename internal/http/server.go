package http

import (
	"context"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"tiempos/internal/core"
	"tiempos/internal/export"
	"tiempos/internal/log"
	"tiempos/internal/services"
	appweb "tiempos/web"
)

// Options are the collaborators of the dashboard server.
type Options struct {
	Sessions   *services.SessionManager
	Dashboard  *services.Dashboard
	Auth       *Authenticator
	Exporter   export.PDFExporter
	TotalScope core.TotalScope
	// Ready checks the backing store for /readyz. Nil means always ready.
	Ready     func(ctx context.Context) error
	Logger    *log.Logger
	Now       func() time.Time
	RateLimit int // mutating requests per client per minute
}

type Server struct {
	http.Server
	templates   *template.Template
	sessions    *services.SessionManager
	dashboard   *services.Dashboard
	auth        *Authenticator
	exporter    export.PDFExporter
	scope       core.TotalScope
	ready       func(ctx context.Context) error
	logger      *log.Logger
	now         func() time.Time
	rateLimiter *rateLimiter
	metrics     *securityMetrics
	started     time.Time
	requests    atomic.Int64

	shutdownOnce sync.Once
}

// sessionHandler receives the caller's session and the notice produced
// when the session was first loaded, if any.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *services.Session, initial services.Notice)

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	auth := opts.Auth
	if auth == nil {
		auth = NewAuthenticator("")
	}
	dashboard := opts.Dashboard
	if dashboard == nil {
		dashboard = services.NewDashboard(256, 5*time.Minute)
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		sessions:    opts.Sessions,
		dashboard:   dashboard,
		auth:        auth,
		exporter:    opts.Exporter,
		scope:       opts.TotalScope,
		ready:       opts.Ready,
		logger:      logger.WithComponent(log.ComponentHTTP),
		now:         now,
		rateLimiter: newRateLimiter(opts.RateLimit),
		metrics:     &securityMetrics{},
		started:     now(),
	}

	t, err := appweb.Templates(templateFuncs)
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err)
	} else {
		s.templates = t
	}

	if sub, err := appweb.Static(); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /{$}", s.withSession(s.handleIndex))
	mux.HandleFunc("DELETE /api/session", s.handleEndSession)
	mux.HandleFunc("GET /api/clinics", s.withSession(s.handleListClinics))
	mux.HandleFunc("POST /api/clinics/select", s.withSession(s.handleSelectClinic))
	mux.HandleFunc("GET /api/records", s.withSession(s.handleListRecords))
	mux.HandleFunc("POST /api/records", s.withSession(s.handleCreateRecord))
	mux.HandleFunc("PUT /api/records/{number}", s.withSession(s.handleUpdateRecord))
	mux.HandleFunc("DELETE /api/records/{number}", s.withSession(s.handleDeleteRecord))
	mux.HandleFunc("GET /api/dashboard", s.withSession(s.handleDashboardJSON))
	mux.HandleFunc("GET /api/elapsed", s.handleElapsed)
	mux.HandleFunc("GET /report.pdf", s.withSession(s.handleReport))
	mux.HandleFunc("GET /ui/dashboard", s.withSession(s.handleDashboardPartial))

	s.Handler = s.withTracing(log.Middleware(s.logger, requestIDFromHeader)(mux))
	return s
}

// Shutdown gracefully shuts down the server and its cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

const requestIDHeader = "X-Request-ID"

func requestIDFromHeader(r *http.Request) string {
	return r.Header.Get(requestIDHeader)
}

// withTracing assigns a request ID, applies security headers and rate
// limiting, and logs the outcome of every request.
func (s *Server) withTracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.requests.Add(1)
		clientIP := extractClientIP(r)

		requestID := generateRequestID()
		r.Header.Set(requestIDHeader, requestID)
		w.Header().Set(requestIDHeader, requestID)
		l := s.logger.With(log.FieldRequestID, requestID)
		ctx := r.Context()

		setSecurityHeaders(w, r)
		if detectSuspiciousRequest(r, s.metrics) {
			l.WarnContext(ctx, "Suspicious request", log.FieldClientIP, clientIP, log.FieldPath, r.URL.Path)
		}

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if ok, retry := s.rateLimiter.allow(clientIP, s.metrics); !ok {
				l.WarnContext(ctx, "Rate limit exceeded", log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
				http.Error(w, "Demasiadas solicitudes. Intenta de nuevo en un minuto.", http.StatusTooManyRequests)
				log.LogHTTPEnd(ctx, l, r, http.StatusTooManyRequests, time.Since(start).Milliseconds(), clientIP)
				return
			}
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		log.LogHTTPEnd(ctx, l, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

// authenticate resolves the caller and attaches identity and user logger
// to the request context. On failure the 401 is already written.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (services.Identity, *http.Request, bool) {
	l := log.FromContext(r.Context())
	user, err := s.auth.Identify(r)
	if err != nil {
		atomic.AddInt64(&s.metrics.unauthenticated, 1)
		l.WarnContext(r.Context(), "Unauthenticated request", log.FieldComponent, log.ComponentAuth, log.FieldError, err)
		UnauthorizedError("Debes iniciar sesión para continuar.").Write(w)
		return services.Identity{}, r, false
	}
	ctx := withIdentity(r.Context(), user)
	ctx = log.NewContext(ctx, l.With(log.FieldUser, user.Email))
	return user, r.WithContext(ctx), true
}

// withSession authenticates the request and resolves the caller's session.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, r, ok := s.authenticate(w, r)
		if !ok {
			return
		}
		ctx := r.Context()

		sess, initial, err := s.sessions.Session(ctx, user)
		if err != nil {
			NewHTMXResponse().
				Status(http.StatusInternalServerError).
				TriggerNotice(initial).
				BodyJSON(mutationJSON{Notice: toNoticeJSON(initial)}).
				Write(w)
			return
		}
		next(w, r, sess, initial)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

var templateFuncs = template.FuncMap{
	"elapsed": func(r core.Record) string {
		if m, ok := r.Elapsed(); ok {
			return core.FormatMinutes(m)
		}
		return "N/A"
	},
	"minutes":   core.FormatMinutes,
	"monthName": core.MonthName,
	"deref": func(p *int) int {
		if p == nil {
			return -1
		}
		return *p
	},
}
