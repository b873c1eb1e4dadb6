package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"deeplinkqr/internal/config"
	"deeplinkqr/internal/dtos"
	"deeplinkqr/internal/entities"
	"deeplinkqr/internal/repositories"
	"deeplinkqr/internal/services"
	"deeplinkqr/internal/utils"
)

const recentScanLimit = 50

type Handlers struct {
	cfg config.Config

	linkRepo *repositories.LinkRepo
	scanRepo *repositories.ScanRepo

	idSvc       *services.IDService
	qrSvc       services.QRService
	deviceSvc   services.DeviceService
	redirectSvc *services.RedirectService
	recorder    *services.ScanRecorder
}

func NewHandlers(
	cfg config.Config,
	linkRepo *repositories.LinkRepo,
	scanRepo *repositories.ScanRepo,
	idSvc *services.IDService,
	qrSvc services.QRService,
	deviceSvc services.DeviceService,
	redirectSvc *services.RedirectService,
	recorder *services.ScanRecorder,
) *Handlers {
	return &Handlers{
		cfg:         cfg,
		linkRepo:    linkRepo,
		scanRepo:    scanRepo,
		idSvc:       idSvc,
		qrSvc:       qrSvc,
		deviceSvc:   deviceSvc,
		redirectSvc: redirectSvc,
		recorder:    recorder,
	}
}

func (h *Handlers) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	scheme := strings.TrimSpace(req.AppScheme)
	pkg := strings.TrimSpace(req.AppPackage)
	if scheme == "" || pkg == "" {
		http.Error(w, "app_scheme and app_package are required", http.StatusBadRequest)
		return
	}

	fallback := strings.TrimSpace(req.FallbackURL)
	if !isValidHTTPURL(fallback) {
		http.Error(w, "fallback_url must be an absolute http(s) URL", http.StatusBadRequest)
		return
	}

	id := strings.TrimSpace(req.CustomPath)
	if id != "" {
		if !h.idSvc.IsValidPath(id) {
			http.Error(w, "custom_path must be 1-64 chars, alphanumeric, - or _", http.StatusBadRequest)
			return
		}
		exists, err := h.linkRepo.ExistsID(id)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		if exists {
			http.Error(w, "custom_path already in use", http.StatusConflict)
			return
		}
	} else {
		var err error
		id, err = h.idSvc.NewID()
		if err != nil {
			http.Error(w, "could not generate id", http.StatusInternalServerError)
			return
		}
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Untitled Link"
	}

	l := entities.Link{
		ID:          id,
		AppScheme:   scheme,
		AppPackage:  pkg,
		DeepLink:    scheme + "://" + strings.TrimSpace(req.CustomPath),
		FallbackURL: fallback,
		Title:       title,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.linkRepo.Create(&l); err != nil {
		if utils.IsUniqueConstraint(err) && req.CustomPath == "" {
			id2, err2 := h.idSvc.NewID()
			if err2 == nil {
				l.ID = id2
				if err3 := h.linkRepo.Create(&l); err3 == nil {
					h.writeCreated(w, &l)
					return
				}
			}
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	h.writeCreated(w, &l)
}

func (h *Handlers) writeCreated(w http.ResponseWriter, l *entities.Link) {
	shortURL := h.cfg.BaseURL + "/r/" + l.ID

	qr, err := h.qrSvc.DataURI(shortURL, h.cfg.QRSize)
	if err != nil {
		http.Error(w, "could not generate qr", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, dtos.CreateLinkResponse{
		ID:           l.ID,
		ShortURL:     shortURL,
		QRCode:       qr,
		AnalyticsURL: h.cfg.BaseURL + "/api/analytics/" + l.ID,
	}, http.StatusCreated)
}

// Redirect is the core scan endpoint: resolve the link, classify the
// client, record the scan in the background, answer per strategy.
func (h *Handlers) Redirect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "linkID")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	l, err := h.linkRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	ua := r.UserAgent()
	device := h.deviceSvc.Classify(ua)

	h.recorder.Record(entities.ScanEvent{
		LinkID:     l.ID,
		CreatedAt:  time.Now().UTC(),
		UserAgent:  utils.Truncate(ua, 512),
		IPAddress:  utils.GetClientIP(r),
		Referrer:   utils.Truncate(r.Referer(), 512),
		DeviceType: device,
	})

	switch h.redirectSvc.Select(device) {
	case services.StrategySmartPage:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := h.redirectSvc.RenderSmartPage(w, l); err != nil {
			http.Error(w, "could not render redirect page", http.StatusInternalServerError)
		}
	case services.StrategyDeepLink:
		http.Redirect(w, r, l.DeepLink, http.StatusFound)
	case services.StrategyFallback:
		http.Redirect(w, r, l.FallbackURL, http.StatusFound)
	}
}

func (h *Handlers) Analytics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "linkID")

	l, err := h.linkRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	total, err := h.scanRepo.CountTotal(l.ID)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	byDevice := make(map[string]int64, len(entities.DeviceTypes))
	for _, d := range entities.DeviceTypes {
		byDevice[d.String()] = 0
	}
	rows, err := h.scanRepo.CountByDevice(l.ID)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	for _, row := range rows {
		byDevice[row.DeviceType.String()] = row.Count
	}

	events, err := h.scanRepo.Recent(l.ID, recentScanLimit)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	scans := make([]dtos.ScanSummary, 0, len(events))
	for _, evt := range events {
		scans = append(scans, dtos.ScanSummary{
			Timestamp:  evt.CreatedAt,
			DeviceType: evt.DeviceType.String(),
			IPAddress:  evt.IPAddress,
		})
	}

	utils.WriteJSON(w, dtos.AnalyticsResponse{
		LinkID:     l.ID,
		TotalScans: total,
		ByDevice:   byDevice,
		Scans:      scans,
	}, http.StatusOK)
}

func (h *Handlers) GetLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "linkID")

	l, err := h.linkRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, dtos.LinkResponse{
		ID:          l.ID,
		AppScheme:   l.AppScheme,
		AppPackage:  l.AppPackage,
		DeepLink:    l.DeepLink,
		FallbackURL: l.FallbackURL,
		Title:       l.Title,
		CreatedAt:   l.CreatedAt,
	}, http.StatusOK)
}

func (h *Handlers) ListLinks(w http.ResponseWriter, r *http.Request) {
	rows, err := h.linkRepo.ListWithScans()
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	out := make([]dtos.LinkListItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, dtos.LinkListItem{
			ID:          row.ID,
			ShortURL:    h.cfg.BaseURL + "/r/" + row.ID,
			Title:       row.Title,
			DeepLink:    row.DeepLink,
			FallbackURL: row.FallbackURL,
			CreatedAt:   row.CreatedAt,
			Scans:       row.Scans,
		})
	}

	utils.WriteJSON(w, out, http.StatusOK)
}

func (h *Handlers) DeleteLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "linkID")

	deleted, err := h.linkRepo.Delete(id)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, map[string]string{
		"status":  "healthy",
		"service": "deeplinkqr",
	}, http.StatusOK)
}

func isValidHTTPURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
