package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"procurement/internal/qualifier/models"
	id "procurement/pkg/domain"
	"procurement/pkg/platform/httputil"
	"procurement/pkg/requestcontext"
)

type Service interface {
	SetAuthorityPrincipal(ctx context.Context, principal id.Principal) error
	SetMaxBidders(ctx context.Context, n int64) error
	SetQualificationFee(ctx context.Context, n int64) error
	RegisterBidder(ctx context.Context, req models.RegisterBidderRequest) (id.BidderID, error)
	SetQualificationCriteria(ctx context.Context, tenderID id.TenderID, req models.SetCriteriaRequest) error
	QualifyBidderForTender(ctx context.Context, bidderID id.BidderID, tenderID id.TenderID) (bool, error)
	UpdateBidderStatus(ctx context.Context, bidderID id.BidderID, status string) error
	GetBidder(ctx context.Context, bidderID id.BidderID) (*models.Bidder, bool)
	GetBidderCount(ctx context.Context) uint64
	FindBidderByPrincipal(ctx context.Context, principal id.Principal) (*models.Bidder, bool)
	GetQualificationCriteria(ctx context.Context, tenderID id.TenderID) (*models.Criteria, bool)
	GetQualification(ctx context.Context, bidderID id.BidderID, tenderID id.TenderID) (models.Qualification, bool)
	RequireQualified(ctx context.Context, bidderID id.BidderID, tenderID id.TenderID) error
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
	r.Route("/bidders", func(r chi.Router) {
		r.Post("/", h.HandleRegister)
		r.Get("/count", h.HandleCount)
		r.Get("/by-principal", h.HandleFindByPrincipal)
		r.Get("/authority", h.HandleGetAuthority)
		r.Post("/authority", h.HandleSetAuthority)
		r.Get("/settings", h.HandleGetSettings)
		r.Put("/settings/max-bidders", h.HandleSetMaxBidders)
		r.Put("/settings/qualification-fee", h.HandleSetQualificationFee)
		r.Get("/{bidderID}", h.HandleGet)
		r.Put("/{bidderID}/status", h.HandleUpdateStatus)
		r.Post("/{bidderID}/qualifications/{tenderID}", h.HandleQualify)
		r.Get("/{bidderID}/qualifications/{tenderID}", h.HandleGetQualification)
		r.Get("/{bidderID}/qualifications/{tenderID}/required", h.HandleRequireQualified)
	})
	r.Route("/criteria/{tenderID}", func(r chi.Router) {
		r.Get("/", h.HandleGetCriteria)
		r.Put("/", h.HandleSetCriteria)
	})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterBidderRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "register bidder", err)
		return
	}
	bidderID, err := h.service.RegisterBidder(r.Context(), req)
	if err != nil {
		h.fail(w, r, "register bidder", err)
		return
	}
	httputil.WriteResult(w, http.StatusCreated, bidderID)
}

func (h *Handler) HandleSetCriteria(w http.ResponseWriter, r *http.Request) {
	tenderID, err := id.ParseTenderID(chi.URLParam(r, "tenderID"))
	if err != nil {
		h.fail(w, r, "set criteria", err)
		return
	}
	var req models.SetCriteriaRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "set criteria", err)
		return
	}
	if err := h.service.SetQualificationCriteria(r.Context(), tenderID, req); err != nil {
		h.fail(w, r, "set criteria", err)
		return
	}
	httputil.WriteResult(w, http.StatusOK, true)
}

func (h *Handler) HandleGetCriteria(w http.ResponseWriter, r *http.Request) {
	tenderID, err := id.ParseTenderID(chi.URLParam(r, "tenderID"))
	if err != nil {
		h.fail(w, r, "get criteria", err)
		return
	}
	c, ok := h.service.GetQualificationCriteria(r.Context(), tenderID)
	if !ok {
		httputil.WriteResult(w, http.StatusOK, nil)
		return
	}
	httputil.WriteResult(w, http.StatusOK, c)
}

func (h *Handler) HandleQualify(w http.ResponseWriter, r *http.Request) {
	bidderID, tenderID, err := pairParams(r)
	if err != nil {
		h.fail(w, r, "qualify bidder", err)
		return
	}
	qualified, err := h.service.QualifyBidderForTender(r.Context(), bidderID, tenderID)
	if err != nil {
		h.fail(w, r, "qualify bidder", err)
		return
	}
	httputil.WriteResult(w, http.StatusOK, qualified)
}

func (h *Handler) HandleGetQualification(w http.ResponseWriter, r *http.Request) {
	bidderID, tenderID, err := pairParams(r)
	if err != nil {
		h.fail(w, r, "get qualification", err)
		return
	}
	q, ok := h.service.GetQualification(r.Context(), bidderID, tenderID)
	if !ok {
		httputil.WriteResult(w, http.StatusOK, nil)
		return
	}
	httputil.WriteResult(w, http.StatusOK, q)
}

// HandleRequireQualified answers true, or 109 when no qualifying outcome
// is recorded for the pair.
func (h *Handler) HandleRequireQualified(w http.ResponseWriter, r *http.Request) {
	bidderID, tenderID, err := pairParams(r)
	if err != nil {
		h.fail(w, r, "require qualified", err)
		return
	}
	if err := h.service.RequireQualified(r.Context(), bidderID, tenderID); err != nil {
		h.fail(w, r, "require qualified", err)
		return
	}
	httputil.WriteResult(w, http.StatusOK, true)
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	bidderID, err := id.ParseBidderID(chi.URLParam(r, "bidderID"))
	if err != nil {
		h.fail(w, r, "update bidder status", err)
		return
	}
	var req models.UpdateStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "update bidder status", err)
		return
	}
	if err := h.service.UpdateBidderStatus(r.Context(), bidderID, req.Status); err != nil {
		h.fail(w, r, "update bidder status", err)
		return
	}
	httputil.WriteResult(w, http.StatusOK, true)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	bidderID, err := id.ParseBidderID(chi.URLParam(r, "bidderID"))
	if err != nil {
		h.fail(w, r, "get bidder", err)
		return
	}
	b, ok := h.service.GetBidder(r.Context(), bidderID)
	if !ok {
		httputil.WriteResult(w, http.StatusOK, nil)
		return
	}
	httputil.WriteResult(w, http.StatusOK, b)
}

func (h *Handler) HandleFindByPrincipal(w http.ResponseWriter, r *http.Request) {
	principal, err := id.ParsePrincipal(r.URL.Query().Get("principal"))
	if err != nil {
		h.fail(w, r, "find bidder", err)
		return
	}
	b, ok := h.service.FindBidderByPrincipal(r.Context(), principal)
	if !ok {
		httputil.WriteResult(w, http.StatusOK, nil)
		return
	}
	httputil.WriteResult(w, http.StatusOK, b)
}

func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	httputil.WriteResult(w, http.StatusOK, h.service.GetBidderCount(r.Context()))
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

func (h *Handler) HandleSetMaxBidders(w http.ResponseWriter, r *http.Request) {
	h.setValue(w, r, "set max bidders", h.service.SetMaxBidders)
}

func (h *Handler) HandleSetQualificationFee(w http.ResponseWriter, r *http.Request) {
	h.setValue(w, r, "set qualification fee", h.service.SetQualificationFee)
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

func pairParams(r *http.Request) (id.BidderID, id.TenderID, error) {
	bidderID, err := id.ParseBidderID(chi.URLParam(r, "bidderID"))
	if err != nil {
		return 0, 0, err
	}
	tenderID, err := id.ParseTenderID(chi.URLParam(r, "tenderID"))
	if err != nil {
		return 0, 0, err
	}
	return bidderID, tenderID, nil
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
