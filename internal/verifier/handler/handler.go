package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"procurement/internal/verifier/models"
	id "procurement/pkg/domain"
	"procurement/pkg/platform/httputil"
	"procurement/pkg/requestcontext"
)

type Service interface {
	SetAuthorityPrincipal(ctx context.Context, principal id.Principal) error
	SetMaxQueries(ctx context.Context, n int64) error
	RequestTenderVerification(ctx context.Context, tenderID id.TenderID) (id.RequestID, error)
	RequestBidVerification(ctx context.Context, tenderID id.TenderID, bidID id.BidID) (id.RequestID, error)
	VerifyRequest(ctx context.Context, requestID id.RequestID) error
	GetTenderAudit(ctx context.Context, tenderID id.TenderID) (*models.TenderAudit, bool)
	GetBidAudit(ctx context.Context, tenderID id.TenderID, bidID id.BidID) (*models.BidAudit, bool)
	GetVerificationRequest(ctx context.Context, requestID id.RequestID) (*models.VerificationRequest, bool)
	GetRequestCount(ctx context.Context) uint64
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
	r.Route("/verifier", func(r chi.Router) {
		r.Get("/authority", h.HandleGetAuthority)
		r.Post("/authority", h.HandleSetAuthority)
		r.Get("/settings", h.HandleGetSettings)
		r.Put("/settings/max-queries", h.HandleSetMaxQueries)

		r.Get("/audits/tenders/{tenderID}", h.HandleGetTenderAudit)
		r.Get("/audits/bids/{tenderID}/{bidID}", h.HandleGetBidAudit)

		r.Get("/requests/count", h.HandleCount)
		r.Post("/requests/tenders/{tenderID}", h.HandleRequestTender)
		r.Post("/requests/bids/{tenderID}/{bidID}", h.HandleRequestBid)
		r.Get("/requests/{requestID}", h.HandleGetRequest)
		r.Post("/requests/{requestID}/verify", h.HandleVerify)
	})
}

func (h *Handler) HandleRequestTender(w http.ResponseWriter, r *http.Request) {
	tenderID, err := tenderParam(r)
	if err != nil {
		h.fail(w, r, "request tender verification", err)
		return
	}
	requestID, err := h.service.RequestTenderVerification(r.Context(), tenderID)
	if err != nil {
		h.fail(w, r, "request tender verification", err)
		return
	}
	httputil.WriteResult(w, http.StatusCreated, requestID)
}

func (h *Handler) HandleRequestBid(w http.ResponseWriter, r *http.Request) {
	tenderID, bidID, err := bidParams(r)
	if err != nil {
		h.fail(w, r, "request bid verification", err)
		return
	}
	requestID, err := h.service.RequestBidVerification(r.Context(), tenderID, bidID)
	if err != nil {
		h.fail(w, r, "request bid verification", err)
		return
	}
	httputil.WriteResult(w, http.StatusCreated, requestID)
}

func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		h.fail(w, r, "verify request", models.ErrInvalidRequestID)
		return
	}
	if err := h.service.VerifyRequest(r.Context(), requestID); err != nil {
		h.fail(w, r, "verify request", err)
		return
	}
	httputil.WriteResult(w, http.StatusOK, true)
}

func (h *Handler) HandleGetRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteResult(w, http.StatusOK, nil)
		return
	}
	req, ok := h.service.GetVerificationRequest(r.Context(), requestID)
	if !ok {
		httputil.WriteResult(w, http.StatusOK, nil)
		return
	}
	httputil.WriteResult(w, http.StatusOK, req)
}

func (h *Handler) HandleGetTenderAudit(w http.ResponseWriter, r *http.Request) {
	tenderID, err := id.ParseTenderID(chi.URLParam(r, "tenderID"))
	if err != nil {
		httputil.WriteResult(w, http.StatusOK, nil)
		return
	}
	a, ok := h.service.GetTenderAudit(r.Context(), tenderID)
	if !ok {
		httputil.WriteResult(w, http.StatusOK, nil)
		return
	}
	httputil.WriteResult(w, http.StatusOK, a)
}

func (h *Handler) HandleGetBidAudit(w http.ResponseWriter, r *http.Request) {
	tenderID, bidID, err := bidParams(r)
	if err != nil {
		httputil.WriteResult(w, http.StatusOK, nil)
		return
	}
	a, ok := h.service.GetBidAudit(r.Context(), tenderID, bidID)
	if !ok {
		httputil.WriteResult(w, http.StatusOK, nil)
		return
	}
	httputil.WriteResult(w, http.StatusOK, a)
}

func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	httputil.WriteResult(w, http.StatusOK, h.service.GetRequestCount(r.Context()))
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

func (h *Handler) HandleSetMaxQueries(w http.ResponseWriter, r *http.Request) {
	var req models.SetValueRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "set max queries", err)
		return
	}
	if err := h.service.SetMaxQueries(r.Context(), req.Value); err != nil {
		h.fail(w, r, "set max queries", err)
		return
	}
	httputil.WriteResult(w, http.StatusOK, true)
}

// tenderParam and bidParams report unparseable path ids with the same
// ledger codes the service uses for zero ids.
func tenderParam(r *http.Request) (id.TenderID, error) {
	tenderID, err := id.ParseTenderID(chi.URLParam(r, "tenderID"))
	if err != nil {
		return 0, models.ErrInvalidTenderID
	}
	return tenderID, nil
}

func bidParams(r *http.Request) (id.TenderID, id.BidID, error) {
	tenderID, err := tenderParam(r)
	if err != nil {
		return 0, 0, err
	}
	bidID, err := id.ParseBidID(chi.URLParam(r, "bidID"))
	if err != nil {
		return 0, 0, models.ErrInvalidBidID
	}
	return tenderID, bidID, nil
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
