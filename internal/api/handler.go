package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"goldrefinery/m/internal/checkout"
	"goldrefinery/m/internal/metrics"
	"goldrefinery/m/internal/policy"
	"goldrefinery/m/internal/store"
)

const maxPerPage = 100

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db       *sqlx.DB
	secret   string
	checkout *checkout.Service
	metrics  *metrics.Metrics
	log      *zap.Logger
	loc      *time.Location
}

type Options struct {
	Secret   string
	Checkout *checkout.Service
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
	// Location is used for daily and monthly report boundaries.
	Location *time.Location
}

// New constructs a Handler.
func New(db *sqlx.DB, opts Options) *Handler {
	h := &Handler{
		db:       db,
		secret:   opts.Secret,
		checkout: opts.Checkout,
		metrics:  opts.Metrics,
		log:      opts.Logger,
		loc:      opts.Location,
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.metrics == nil {
		h.metrics = metrics.New()
	}
	if h.loc == nil {
		h.loc = time.Local
	}
	return h
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Get("/me", h.me)
			protected.Post("/reset-password", h.resetPassword)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/companies", func(r chi.Router) {
			r.Get("/", h.listCompanies)
			r.Post("/", h.createCompany)
			r.Get("/{id}", h.getCompany)
			r.Put("/{id}", h.updateCompany)
			r.Delete("/{id}", h.deleteCompany)
		})

		pr.Route("/users", func(r chi.Router) {
			r.Get("/", h.listUsers)
			r.Post("/", h.createUser)
			r.Get("/{id}", h.getUser)
			r.Put("/{id}", h.updateUser)
			r.Delete("/{id}", h.deleteUser)
		})

		pr.Route("/workers", func(r chi.Router) {
			r.Get("/", h.listWorkers)
			r.Post("/", h.createWorker)
			r.Get("/{id}", h.getWorker)
			r.Put("/{id}", h.updateWorker)
			r.Delete("/{id}", h.deleteWorker)
		})

		pr.Route("/machine-categories", func(r chi.Router) {
			r.Get("/", h.listMachineCategories)
			r.Post("/", h.createMachineCategory)
			r.Put("/{id}", h.updateMachineCategory)
			r.Delete("/{id}", h.deleteMachineCategory)
		})

		pr.Route("/machines", func(r chi.Router) {
			r.Get("/", h.listMachines)
			r.Post("/", h.createMachine)
			r.Get("/{id}", h.getMachine)
			r.Put("/{id}", h.updateMachine)
			r.Delete("/{id}", h.deleteMachine)
		})

		pr.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Post("/", h.createProduct)
			r.Put("/{id}", h.updateProduct)
		})

		pr.Route("/sales", func(r chi.Router) {
			r.Post("/", h.createSale)
			r.Get("/", h.listSales)
			r.Post("/quote", h.quoteSale)
			r.Get("/{id}", h.getSale)
		})

		pr.Route("/reports", func(r chi.Router) {
			r.Get("/sales/daily", h.dailySales)
			r.Get("/sales/monthly", h.monthlySales)
			r.Get("/sales", h.salesReport)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// accessLog writes one zap line per request and feeds the request metrics.
func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)
		h.metrics.ObserveRequest(route, status, elapsed)
		h.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// fail maps service and store errors onto HTTP responses.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, policy.ErrForbidden):
		respondError(w, http.StatusForbidden, "insufficient permissions")
	case errors.Is(err, checkout.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, checkout.ErrInsufficientStock):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrConflict):
		respondError(w, http.StatusConflict, "record already exists")
	default:
		h.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// bind decodes and validates a JSON body, writing the error response itself.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := decodeJSON(r, dest); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := checkout.Validate(dest); err != nil {
		h.fail(w, r, err)
		return false
	}
	return true
}

// Helpers

type paged[T any] struct {
	Data    []T   `json:"data"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}

func respondPage[T any](w http.ResponseWriter, items []T, total int64, page store.Page) {
	if items == nil {
		items = []T{}
	}
	respondJSON(w, http.StatusOK, paged[T]{Data: items, Total: total, Page: page.Page, PerPage: page.PerPage})
}

// pageParams reads page and per_page, clamping per_page to maxPerPage.
func pageParams(r *http.Request, perPage int) store.Page {
	p := store.Page{Page: 1, PerPage: perPage}
	if n, err := cast.ToIntE(r.URL.Query().Get("page")); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := cast.ToIntE(r.URL.Query().Get("per_page")); err == nil && n > 0 {
		p.PerPage = min(n, maxPerPage)
	}
	return p
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// companyParam reads an optional company_id query filter.
func companyParam(r *http.Request) *int64 {
	raw := r.URL.Query().Get("company_id")
	if raw == "" {
		return nil
	}
	id, err := cast.ToInt64E(raw)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

// targetCompany decides which tenant a new record belongs to. Admins name it,
// everyone else writes into their own company.
func targetCompany(s policy.Subject, requested *int64) (int64, error) {
	if s.IsAdmin() {
		if requested == nil || *requested <= 0 {
			return 0, &checkout.ValidationError{Fields: map[string]string{"company_id": "is required"}}
		}
		return *requested, nil
	}
	if s.CompanyID == nil {
		return 0, policy.ErrForbidden
	}
	return *s.CompanyID, nil
}

// listScope narrows an admin's list to company_id when given.
func listScope(r *http.Request, s policy.Subject) *int64 {
	if s.IsAdmin() {
		return companyParam(r)
	}
	return policy.Scope(s)
}

func nullIfEmpty(val string) *string {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
