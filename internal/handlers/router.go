package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/volchd/projects-api/internal/middleware"
	"github.com/volchd/projects-api/pkg/api"
	"github.com/volchd/projects-api/pkg/observability"
)

// API Gateway cuts integrations off at 30s; answering just under that beats
// a gateway-shaped 503.
const defaultRequestTimeout = 29 * time.Second

// RouterConfig carries the cross-cutting pieces the router mounts. Zero
// values are usable: a nop logger, the Lambda authorizer identity, the
// default timeout, no metrics, no circuit breaker.
type RouterConfig struct {
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	RequestTimeout time.Duration

	// Identity resolves the caller and must put a user id on the context.
	// Nil means the API Gateway authorizer path.
	Identity func(http.Handler) http.Handler

	// CircuitBreaker, when set, mounts a fail-fast layer over the handlers.
	CircuitBreaker *middleware.CircuitBreakerConfig
}

// NewRouter assembles the full HTTP surface: middleware chain, health
// endpoint, and the project/task routes behind the identity middleware.
func NewRouter(projects *ProjectHandler, tasks *TaskHandler, cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	identity := cfg.Identity
	if identity == nil {
		identity = Authenticator(logger)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(cfg.Metrics))
	// CORS sits above identity so preflights never need credentials.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	// Timeout wraps Recovery so a panicking handler still produces the JSON
	// envelope from inside the timeout goroutine.
	r.Use(middleware.Timeout(logger, timeout))
	r.Use(middleware.Recovery(logger))
	if cfg.CircuitBreaker != nil {
		r.Use(middleware.CircuitBreaker(logger, *cfg.CircuitBreaker))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/projects", func(r chi.Router) {
		r.Use(identity)

		r.Post("/", projects.CreateProject)
		r.Get("/", projects.ListProjects)

		r.Route("/{projectId}", func(r chi.Router) {
			r.Get("/", projects.GetProject)
			r.Put("/", projects.UpdateProject)
			r.Delete("/", projects.DeleteProject)

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", tasks.CreateTask)
				r.Get("/", tasks.ListTasks)
				r.Get("/{taskId}", tasks.GetTask)
				r.Put("/{taskId}", tasks.UpdateTask)
				r.Delete("/{taskId}", tasks.DeleteTask)
			})
		})
	})

	return r
}
