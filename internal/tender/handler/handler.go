package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"procurement/internal/tender/models"
	id "procurement/pkg/domain"
	"procurement/pkg/platform/httputil"
	"procurement/pkg/requestcontext"
)

// Service is the tender registry surface the handler needs.
type Service interface {
	SetAuthorityPrincipal(ctx context.Context, principal id.Principal) error
	SetMaxTenders(ctx context.Context, n int64) error
	SetRegistrationFee(ctx context.Context, n int64) error
	CreateTender(ctx context.Context, req models.CreateTenderRequest) (id.TenderID, error)
	UpdateTender(ctx context.Context, tenderID id.TenderID, req models.UpdateTenderRequest) error
	CloseTender(ctx context.Context, tenderID id.TenderID) error
	GetTender(ctx context.Context, tenderID id.TenderID) (*models.Tender, bool)
	GetTenderCount(ctx context.Context) uint64
	GetTenderUpdate(ctx context.Context, tenderID id.TenderID) (*models.TenderUpdate, bool)
	FindTenderByTitle(ctx context.Context, title string) (*models.Tender, bool)
	GetAuthority() (id.Principal, bool)
	Settings() models.Settings
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/tenders", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/count", h.HandleCount)
		r.Get("/by-title", h.HandleFindByTitle)
		r.Get("/authority", h.HandleGetAuthority)
		r.Post("/authority", h.HandleSetAuthority)
		r.Get("/settings", h.HandleGetSettings)
		r.Put("/settings/max-tenders", h.HandleSetMaxTenders)
		r.Put("/settings/registration-fee", h.HandleSetRegistrationFee)
		r.Get("/{tenderID}", h.HandleGet)
		r.Put("/{tenderID}", h.HandleUpdate)
		r.Post("/{tenderID}/close", h.HandleClose)
		r.Get("/{tenderID}/update", h.HandleGetUpdate)
	})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTenderRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "create tender", err)
		return
	}
	tenderID, err := h.service.CreateTender(r.Context(), req)
	if err != nil {
		h.fail(w, r, "create tender", err)
		return
	}
	httputil.WriteResult(w, http.StatusCreated, tenderID)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	tenderID, err := id.ParseTenderID(chi.URLParam(r, "tenderID"))
	if err != nil {
		h.fail(w, r, "update tender", err)
		return
	}
	var req models.UpdateTenderRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "update tender", err)
		return
	}
	if err := h.service.UpdateTender(r.Context(), tenderID, req); err != nil {
		h.fail(w, r, "update tender", err)
		return
	}
	httputil.WriteResult(w, http.StatusOK, true)
}

func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	tenderID, err := id.ParseTenderID(chi.URLParam(r, "tenderID"))
	if err != nil {
		h.fail(w, r, "close tender", err)
		return
	}
	if err := h.service.CloseTender(r.Context(), tenderID); err != nil {
		h.fail(w, r, "close tender", err)
		return
	}
	httputil.WriteResult(w, http.StatusOK, true)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	tenderID, err := id.ParseTenderID(chi.URLParam(r, "tenderID"))
	if err != nil {
		h.fail(w, r, "get tender", err)
		return
	}
	t, ok := h.service.GetTender(r.Context(), tenderID)
	if !ok {
		httputil.WriteResult(w, http.StatusOK, nil)
		return
	}
	httputil.WriteResult(w, http.StatusOK, t)
}

func (h *Handler) HandleGetUpdate(w http.ResponseWriter, r *http.Request) {
	tenderID, err := id.ParseTenderID(chi.URLParam(r, "tenderID"))
	if err != nil {
		h.fail(w, r, "get tender update", err)
		return
	}
	u, ok := h.service.GetTenderUpdate(r.Context(), tenderID)
	if !ok {
		httputil.WriteResult(w, http.StatusOK, nil)
		return
	}
	httputil.WriteResult(w, http.StatusOK, u)
}

func (h *Handler) HandleFindByTitle(w http.ResponseWriter, r *http.Request) {
	t, ok := h.service.FindTenderByTitle(r.Context(), r.URL.Query().Get("title"))
	if !ok {
		httputil.WriteResult(w, http.StatusOK, nil)
		return
	}
	httputil.WriteResult(w, http.StatusOK, t)
}

func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	httputil.WriteResult(w, http.StatusOK, h.service.GetTenderCount(r.Context()))
}

func (h *Handler) HandleGetAuthority(w http.ResponseWriter, _ *http.Request) {
	p, ok := h.service.GetAuthority()
	if !ok {
		httputil.WriteResult(w, http.StatusOK, nil)
		return
	}
	httputil.WriteResult(w, http.StatusOK, p)
}

func (h *Handler) HandleSetAuthority(w http.ResponseWriter, r *http.Request) {
	var req models.SetAuthorityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "set authority", err)
		return
	}
	principal, err := id.ParsePrincipal(string(req.Principal))
	if err != nil {
		h.fail(w, r, "set authority", err)
		return
	}
	if err := h.service.SetAuthorityPrincipal(r.Context(), principal); err != nil {
		h.fail(w, r, "set authority", err)
		return
	}
	httputil.WriteResult(w, http.StatusOK, true)
}

func (h *Handler) HandleGetSettings(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteResult(w, http.StatusOK, h.service.Settings())
}

func (h *Handler) HandleSetMaxTenders(w http.ResponseWriter, r *http.Request) {
	h.setValue(w, r, "set max tenders", h.service.SetMaxTenders)
}

func (h *Handler) HandleSetRegistrationFee(w http.ResponseWriter, r *http.Request) {
	h.setValue(w, r, "set registration fee", h.service.SetRegistrationFee)
}

func (h *Handler) setValue(w http.ResponseWriter, r *http.Request, op string, apply func(context.Context, int64) error) {
	var req models.SetValueRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, op, err)
		return
	}
	if err := apply(r.Context(), req.Value); err != nil {
		h.fail(w, r, op, err)
		return
	}
	httputil.WriteResult(w, http.StatusOK, true)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	h.logger.WarnContext(ctx, op+" failed",
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
		"caller", requestcontext.Caller(ctx).String(),
	)
	httputil.WriteError(w, err)
}
