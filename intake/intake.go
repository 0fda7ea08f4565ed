// Package intake sequences a lead submission: admission control, validation,
// duplicate check, create, enrichment, scoring, and the final update.
package intake

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	leadqual "github.com/leadqual/leadqual"
	"github.com/leadqual/leadqual/pkg/metrics"
	"github.com/leadqual/leadqual/ratelimit"
	"github.com/leadqual/leadqual/scoring"
	"go.uber.org/zap"
)

// SubmissionInput is the payload accepted for a new lead.
type SubmissionInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Website string `json:"website" validate:"omitempty,url"`
}

// ValidationError carries the field-level errors of a rejected submission.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// Admitter decides whether a request identifier still has quota.
type Admitter interface {
	Check(identifier string) ratelimit.Result
}

// Enricher derives company/verification metadata for a submission.
type Enricher interface {
	Enrich(ctx context.Context, email, website string) leadqual.EnrichmentResult
}

// Service orchestrates lead submissions against the store.
type Service struct {
	store    leadqual.Store
	limiter  Admitter
	enricher Enricher
	validate *validator.Validate
	log      *zap.SugaredLogger
}

func NewService(store leadqual.Store, limiter Admitter, enricher Enricher, log *zap.SugaredLogger) *Service {
	v := validator.New()

	// Report errors under the json field names the client submitted.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Service{
		store:    store,
		limiter:  limiter,
		enricher: enricher,
		validate: v,
		log:      log,
	}
}

// List returns all leads, newest first.
func (s *Service) List(ctx context.Context) ([]leadqual.Lead, error) {
	return s.store.GetAll(ctx)
}

// Submit runs the full pipeline for one submission. Once the base record is
// created, later failures are returned to the caller but the record stays
// persisted in its pre-failure state.
func (s *Service) Submit(ctx context.Context, identifier string, in SubmissionInput) (leadqual.Lead, error) {
	if res := s.limiter.Check(identifier); !res.Allowed {
		metrics.RecordRateLimitRejection()
		metrics.RecordSubmission("rate_limited")
		return leadqual.Lead{}, leadqual.ErrRateLimited
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Website = strings.TrimSpace(in.Website)

	if err := s.validate.Struct(in); err != nil {
		metrics.RecordSubmission("validation_failed")
		return leadqual.Lead{}, asValidationError(err)
	}

	_, err := s.store.FindByEmail(ctx, in.Email)
	switch err {
	case leadqual.ErrLeadNotFound:
		// New email, carry on.
	case nil:
		metrics.RecordSubmission("duplicate")
		return leadqual.Lead{}, leadqual.ErrDuplicatedLead
	default:
		metrics.RecordSubmission("error")
		return leadqual.Lead{}, fmt.Errorf("duplicate check: %w", err)
	}

	lead, err := s.store.Create(ctx, leadqual.NewLead(in.Name, in.Email, in.Website))
	if err != nil {
		if err == leadqual.ErrDuplicatedLead {
			metrics.RecordSubmission("duplicate")
			return leadqual.Lead{}, err
		}
		metrics.RecordSubmission("error")
		return leadqual.Lead{}, fmt.Errorf("creating lead: %w", err)
	}

	enrichment := s.enricher.Enrich(ctx, lead.Email, lead.Website)

	score := scoring.Score(lead.Website, enrichment)
	status := scoring.Qualify(score)

	updated, err := s.store.Update(ctx, lead.ID, leadqual.LeadPatch{
		CompanyName: enrichment.CompanyName,
		Country:     enrichment.Country,
		EmailStatus: enrichment.EmailStatus,
		Score:       &score,
		Status:      &status,
	})
	if err != nil {
		// The base record is already persisted; report but do not roll back.
		s.log.Errorw("intake: scoring update failed", "lead_id", lead.ID, "error", err.Error())
		metrics.RecordSubmission("error")
		return leadqual.Lead{}, fmt.Errorf("updating lead: %w", err)
	}

	metrics.RecordSubmission("created")
	return updated, nil
}

func asValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Fields: map[string]string{"payload": err.Error()}}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "is required"
		case "email":
			fields[fe.Field()] = "must be a valid email address"
		case "url":
			fields[fe.Field()] = "must be a valid URL"
		default:
			fields[fe.Field()] = fmt.Sprintf("failed on %q", fe.Tag())
		}
	}
	return &ValidationError{Fields: fields}
}
