// Package server provides the HTTP surface: the lead-capture form, the
// funnel dashboard, and the JSON API.
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/captaleads/funnelcast/internal/store"
	"github.com/captaleads/funnelcast/pkg/brnum"
	"github.com/captaleads/funnelcast/pkg/funnel"
	"github.com/captaleads/funnelcast/pkg/validation"
)

//go:embed templates/* static/*
var assets embed.FS

// Notices shown by the web pages. User-facing, pt-BR.
const (
	noticeCaptureSuccess = "Dados recebidos com sucesso. Vamos iniciar sua análise comercial!"
	noticeStoreFailure   = "Não foi possível salvar seus dados agora. Tente novamente em instantes."
)

const healthCheckTimeout = 2 * time.Second

var templateFuncs = template.FuncMap{
	"brmoney":   brnum.FormatCurrency,
	"brnumber":  brnum.FormatNumber,
	"brpercent": brnum.FormatPercent,
}

type handler struct {
	logger    *zap.Logger
	store     store.Store
	projector *funnel.Projector
	templates *template.Template
	version   string
}

// NewHandler constructs the HTTP handler that serves the web UI and funnel
// API. guard, when non-nil, wraps the capture submission route.
func NewHandler(logger *zap.Logger, st store.Store, guard func(next http.Handler) http.Handler, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:    logger,
		store:     st,
		projector: funnel.NewProjector(logger),
		templates: template.Must(template.New("").Funcs(templateFuncs).ParseFS(assets, "templates/*.html")),
		version:   trimmedVersion,
	}

	r := mux.NewRouter()

	// Lead capture
	r.HandleFunc("/", h.handleCaptureForm).Methods(http.MethodGet)
	capturePost := http.Handler(http.HandlerFunc(h.handleCaptureSubmit))
	if guard != nil {
		capturePost = guard(capturePost)
	}
	r.Handle("/", capturePost).Methods(http.MethodPost)

	// Legacy route from before the capture page replaced the login page
	r.HandleFunc("/login", h.handleLegacyLogin).Methods(http.MethodGet)
	r.HandleFunc("/logout", h.handleLogout).Methods(http.MethodPost)

	// Dashboard
	r.HandleFunc("/dashboard", h.handleDashboard).Methods(http.MethodGet, http.MethodPost)

	// JSON API
	r.HandleFunc("/api/funnel", h.handleFunnelAPI).Methods(http.MethodPost)
	r.HandleFunc("/api/version", h.handleVersion).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)

	// Static assets
	static, err := fs.Sub(assets, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	return r
}

type leadForm struct {
	Name    string
	Phone   string
	Email   string
	Company string
}

type capturePage struct {
	Form    leadForm
	Errors  map[string]string
	Notice  string
	Version string
	Year    int
}

type funnelForm struct {
	Investment     string
	CostPerLead    string
	SchedulingRate string
	AttendanceRate string
	ConversionRate string
	AverageTicket  string
}

type dashboardPage struct {
	Lead    *store.Lead
	Notice  string
	Form    funnelForm
	Results *funnel.Metrics
	Version string
	Year    int
}

func (h *handler) handleCaptureForm(w http.ResponseWriter, r *http.Request) {
	h.renderCapture(w, capturePage{})
}

func (h *handler) handleCaptureSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := leadForm{
		Name:    strings.TrimSpace(r.PostFormValue("name")),
		Phone:   strings.TrimSpace(r.PostFormValue("phone")),
		Email:   strings.TrimSpace(r.PostFormValue("email")),
		Company: strings.TrimSpace(r.PostFormValue("company")),
	}

	if fieldErrors := validation.ValidateLead(form.Name, form.Phone, form.Email); fieldErrors != nil {
		h.logger.Debug("capture submission rejected",
			zap.String("op", "server.handleCaptureSubmit"),
			zap.Int("missing_fields", len(fieldErrors)),
		)
		h.renderCapture(w, capturePage{Form: form, Errors: fieldErrors})
		return
	}

	lead := &store.Lead{
		Name:    form.Name,
		Phone:   form.Phone,
		Email:   form.Email,
		Company: form.Company,
	}
	if err := h.store.CreateLead(r.Context(), lead); err != nil {
		h.logger.Error("failed to persist lead",
			zap.String("op", "server.handleCaptureSubmit"),
			zap.Error(err),
		)
		h.renderCapture(w, capturePage{Form: form, Notice: noticeStoreFailure})
		return
	}

	h.logger.Info("lead captured",
		zap.String("op", "server.handleCaptureSubmit"),
		zap.Int64("lead_id", lead.ID),
	)
	http.Redirect(w, r, fmt.Sprintf("/dashboard?lead_id=%d", lead.ID), http.StatusSeeOther)
}

func (h *handler) handleLegacyLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusMovedPermanently)
}

func (h *handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var page dashboardPage

	if rawID := r.URL.Query().Get("lead_id"); rawID != "" {
		if id, err := strconv.ParseInt(rawID, 10, 64); err == nil {
			lead, err := h.store.GetLead(r.Context(), id)
			switch {
			case err == nil:
				page.Lead = lead
				page.Notice = noticeCaptureSuccess
			case errors.Is(err, store.ErrLeadNotFound):
				h.logger.Debug("dashboard requested unknown lead",
					zap.String("op", "server.handleDashboard"),
					zap.Int64("lead_id", id),
				)
			default:
				h.logger.Error("failed to load lead",
					zap.String("op", "server.handleDashboard"),
					zap.Int64("lead_id", id),
					zap.Error(err),
				)
			}
		}
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		page.Form = funnelForm{
			Investment:     r.PostFormValue("investimento"),
			CostPerLead:    r.PostFormValue("custo_lead"),
			SchedulingRate: r.PostFormValue("taxa_agendamento"),
			AttendanceRate: r.PostFormValue("taxa_comparecimento"),
			ConversionRate: r.PostFormValue("taxa_conversao"),
			AverageTicket:  r.PostFormValue("ticket_medio"),
		}

		metrics := h.projector.Project(funnel.Inputs{
			Investment:     brnum.ParseNumber(page.Form.Investment),
			CostPerLead:    brnum.ParseNumber(page.Form.CostPerLead),
			SchedulingRate: brnum.ParseNumber(page.Form.SchedulingRate),
			AttendanceRate: brnum.ParseNumber(page.Form.AttendanceRate),
			ConversionRate: brnum.ParseNumber(page.Form.ConversionRate),
			AverageTicket:  brnum.ParseNumber(page.Form.AverageTicket),
		})
		page.Results = &metrics
	}

	h.renderDashboard(w, page)
}

func (h *handler) handleFunnelAPI(w http.ResponseWriter, r *http.Request) {
	var inputs funnel.Inputs
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest,
			fmt.Sprintf("failed to decode funnel inputs: %v", err), "server.handleFunnelAPI")
		return
	}

	h.writeJSON(w, http.StatusOK, h.projector.Project(inputs))
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Error("store ping failed",
			zap.String("op", "server.handleHealth"),
			zap.Error(err),
		)
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) renderCapture(w http.ResponseWriter, page capturePage) {
	page.Version = h.version
	page.Year = time.Now().Year()
	h.render(w, "lead_capture.html", page)
}

func (h *handler) renderDashboard(w http.ResponseWriter, page dashboardPage) {
	page.Version = h.version
	page.Year = time.Now().Year()
	h.render(w, "dashboard.html", page)
}

// render buffers the template output so a failed render produces a clean 500
// instead of a half-written page.
func (h *handler) render(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("failed to render template",
			zap.String("op", "server.render"),
			zap.String("template", name),
			zap.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("failed to write response",
			zap.String("op", "server.render"),
			zap.Error(err),
		)
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
