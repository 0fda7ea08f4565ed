package handler

import (
	"errors"
	"net/http"
	"strings"

	leadqual "github.com/leadqual/leadqual"
	"github.com/leadqual/leadqual/intake"
	"go.uber.org/zap"
)

type LeadHandler struct {
	service *intake.Service
	log     *zap.SugaredLogger
}

func NewLeadHandler(service *intake.Service, log *zap.SugaredLogger) *LeadHandler {
	return &LeadHandler{
		service: service,
		log:     log,
	}
}

func (lh LeadHandler) List(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	leads, err := lh.service.List(ctx)
	if err != nil {
		lh.log.Errorw("List", "error", err.Error())
		respondErr(ctx, rw, http.StatusInternalServerError, "Failed to fetch leads", nil)
		return
	}

	if leads == nil {
		leads = []leadqual.Lead{}
	}

	respondData(ctx, rw, http.StatusOK, leads, "")
}

func (lh LeadHandler) Submit(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in intake.SubmissionInput
	if err := decode(r, &in); err != nil {
		lh.log.Errorw("Submit", "error", err.Error())
		respondErr(ctx, rw, http.StatusBadRequest, "Invalid JSON payload", nil)
		return
	}

	lead, err := lh.service.Submit(ctx, clientIdentifier(r), in)
	if err != nil {
		var verr *intake.ValidationError
		switch {
		case errors.Is(err, leadqual.ErrRateLimited):
			respondErr(ctx, rw, http.StatusTooManyRequests,
				"Too many requests. Please try again later.", nil)
		case errors.As(err, &verr):
			respondErr(ctx, rw, http.StatusBadRequest, "Validation failed", verr.Fields)
		case errors.Is(err, leadqual.ErrDuplicatedLead):
			respondErr(ctx, rw, http.StatusConflict,
				"Lead with this email already exists", nil)
		default:
			lh.log.Errorw("Submit", "error", err.Error())
			respondErr(ctx, rw, http.StatusInternalServerError, "Internal Server Error", nil)
		}
		return
	}

	respondData(ctx, rw, http.StatusCreated, lead, "Lead submitted successfully")
}

// clientIdentifier keys rate limiting by the forwarding header, falling back
// to loopback when the header is absent.
func clientIdentifier(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(ip)
	}
	return "127.0.0.1"
}
