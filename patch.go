package leadqual

import "time"

// LeadPatch is the set of fields Update may change. Identity fields (id, name,
// email, website, createdAt) are deliberately not part of the patch.
type LeadPatch struct {
	CompanyName *string
	Country     *string
	EmailStatus *string
	Score       *int
	Status      *LeadStatus
}

// String is a convenience for building patch fields from literals.
func String(s string) *string { return &s }

// Int is a convenience for building patch fields from literals.
func Int(i int) *int { return &i }

// Status is a convenience for building patch fields from literals.
func Status(s LeadStatus) *LeadStatus { return &s }

// Apply merges the patch onto a lead and refreshes UpdatedAt. An empty patch
// still advances UpdatedAt.
func (p LeadPatch) Apply(l Lead) Lead {
	if p.CompanyName != nil {
		l.CompanyName = p.CompanyName
	}
	if p.Country != nil {
		l.Country = p.Country
	}
	if p.EmailStatus != nil {
		l.EmailStatus = p.EmailStatus
	}
	if p.Score != nil {
		l.Score = *p.Score
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	l.UpdatedAt = time.Now().UTC()
	return l
}
