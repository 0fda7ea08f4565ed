package leadqual

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDuplicatedLead = errors.New("email already in use")
	ErrLeadNotFound   = errors.New("lead not found")
	ErrRateLimited    = errors.New("too many requests")
)

// LeadStatus is the qualification outcome of a scored lead.
type LeadStatus string

const (
	StatusUnqualified LeadStatus = "UNQUALIFIED"
	StatusQualified   LeadStatus = "QUALIFIED"
)

// Lead is a submitted prospect. CompanyName, Country and EmailStatus are nil
// until enrichment runs; nil means unknown, never empty string.
type Lead struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Website     string     `json:"website,omitempty"`
	CompanyName *string    `json:"companyName,omitempty"`
	Country     *string    `json:"country,omitempty"`
	EmailStatus *string    `json:"emailStatus,omitempty"`
	Score       int        `json:"score"`
	Status      LeadStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewLead builds the unenriched base record for a submission.
func NewLead(name, email, website string) Lead {
	now := time.Now().UTC()
	return Lead{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Website:   website,
		Score:     0,
		Status:    StatusUnqualified,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EnrichmentResult holds metadata derived for a lead. A zero value is a valid
// outcome meaning nothing could be derived.
type EnrichmentResult struct {
	CompanyName *string
	Country     *string
	EmailStatus *string
}

// Empty reports whether no field was derived.
func (e EnrichmentResult) Empty() bool {
	return e.CompanyName == nil && e.Country == nil && e.EmailStatus == nil
}

// Store is the persistence contract for leads. Implementations signal absence
// with ErrLeadNotFound and email collisions with ErrDuplicatedLead.
type Store interface {
	GetAll(ctx context.Context) ([]Lead, error)
	FindByEmail(ctx context.Context, email string) (Lead, error)
	Create(ctx context.Context, lead Lead) (Lead, error)
	Update(ctx context.Context, id string, patch LeadPatch) (Lead, error)
}
