package router

import (
	"net/http"

	"hospital-queue/internal/adapters/notify/logsink"
	mem "hospital-queue/internal/adapters/storage/memory"
	"hospital-queue/internal/domain/queue"
	"hospital-queue/internal/middleware"
	"hospital-queue/internal/platform/logger"
	"hospital-queue/internal/platform/metrics"

	_ "hospital-queue/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Opcional: si no viene, se arma un Manager en memoria con notificaciones al log.
	Manager *queue.Manager

	Logger  logger.Logger
	Metrics *metrics.Collector // nil => sin /metrics
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics(opts.Metrics))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	m := opts.Manager
	if m == nil {
		m = queue.NewManager(
			queue.WithLogger(log),
			queue.WithSinks(
				queue.PersistSink(mem.NewVisitRepo()),
				queue.NotifySink(logsink.New(log)),
			),
		)
	}

	queue.RegisterRoutes(r, m)

	return r
}
