package app

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"deeplinkqr/internal/config"
	mid "deeplinkqr/internal/middleware"
	"deeplinkqr/internal/repositories"
	"deeplinkqr/internal/services"
)

type App struct {
	cfg config.Config
	db  *gorm.DB

	recorder *services.ScanRecorder
}

func New(cfg config.Config, db *gorm.DB) *App {
	return &App{cfg: cfg, db: db}
}

func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	createRL := mid.NewRateLimiter(a.cfg.CreatePerMinute, 30*time.Minute)
	redirectRL := mid.NewRateLimiter(a.cfg.RedirectPerMinute, 30*time.Minute)
	stop := make(chan struct{})
	go createRL.CleanupLoop(stop)
	go redirectRL.CleanupLoop(stop)

	linkRepo := repositories.NewLinkRepo(a.db)
	scanRepo := repositories.NewScanRepo(a.db)

	idSvc := services.NewIDService(a.cfg, linkRepo)
	qrSvc := services.QRService{}
	deviceSvc := services.DeviceService{}
	redirectSvc := services.NewRedirectService()
	a.recorder = services.NewScanRecorder(scanRepo, a.cfg.ScanQueueSize)

	h := NewHandlers(a.cfg, linkRepo, scanRepo, idSvc, qrSvc, deviceSvc, redirectSvc, a.recorder)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("DeepLink QR is running"))
	})
	r.Get("/health", h.Health)

	r.Route("/api", func(api chi.Router) {
		api.With(mid.RateLimitMiddleware(createRL)).Post("/links", h.CreateLink)

		api.Get("/links", h.ListLinks)
		api.Get("/links/{linkID}", h.GetLink)
		api.Delete("/links/{linkID}", h.DeleteLink)
		api.Get("/analytics/{linkID}", h.Analytics)
	})

	r.With(mid.RateLimitMiddleware(redirectRL)).Get("/r/{linkID}", h.Redirect)

	return r
}

func (a *App) Run(addr string) error {
	log.Println("DeepLink QR backend running on", addr)
	return http.ListenAndServe(addr, a.Router())
}

// Close drains the scan queue; queued events are written, in-flight loss
// on hard kill is acceptable.
func (a *App) Close() {
	if a.recorder != nil {
		a.recorder.Close()
	}
}
