// Package enrich derives company metadata for a lead from its domain and,
// when a verification credential is configured, checks the email against an
// external verification API. Enrichment never fails: every error path
// degrades to a partial or empty result.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	leadqual "github.com/leadqual/leadqual"
	"go.uber.org/zap"
)

// StatusNotFound is recorded when the verification API has no answer for an
// email (4xx, or a success response without a status).
const StatusNotFound = "not_found"

// countryByTLD maps domain suffixes to countries. Suffixes outside the table
// leave the country unknown.
var countryByTLD = map[string]string{
	".uk": "UK",
	".ca": "Canada",
	".de": "Germany",
	".fr": "France",
	".au": "Australia",
	".ng": "Nigeria",
}

// Config is the required properties for the enrichment service. An empty
// APIKey disables the verification call; domain inference still runs offline.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type Service struct {
	cfg  Config
	http *http.Client
	log  *zap.SugaredLogger
}

func NewService(cfg Config, log *zap.SugaredLogger) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Service{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

// Enrich derives what it can for the submitted email and website. It returns
// an empty result, not an error, when nothing can be derived.
func (s *Service) Enrich(ctx context.Context, email, website string) leadqual.EnrichmentResult {
	var result leadqual.EnrichmentResult

	if domain := inferDomain(email, website); domain != "" {
		if company := companyFromDomain(domain); company != "" {
			result.CompanyName = &company
		}
		for tld, country := range countryByTLD {
			if strings.HasSuffix(domain, tld) {
				c := country
				result.Country = &c
				break
			}
		}
	}

	if s.cfg.APIKey != "" {
		if status := s.verify(ctx, email); status != "" {
			result.EmailStatus = &status
		}
	}

	return result
}

// inferDomain resolves the lead's domain from the website when parseable,
// falling back to the email's domain part.
func inferDomain(email, website string) string {
	if w := strings.TrimSpace(website); w != "" {
		if !strings.Contains(w, "://") {
			w = "https://" + w
		}
		if u, err := url.Parse(w); err == nil && u.Hostname() != "" {
			return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		}
	}

	if at := strings.LastIndex(email, "@"); at >= 0 && at+1 < len(email) {
		return strings.ToLower(email[at+1:])
	}
	return ""
}

// companyFromDomain takes the first label of the domain and capitalizes it.
func companyFromDomain(domain string) string {
	label, _, _ := strings.Cut(domain, ".")
	if label == "" {
		return ""
	}
	runes := []rune(label)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

type verifyRequest struct {
	Email string `json:"email"`
}

type verifyResponse struct {
	Status string `json:"status"`
}

// verify calls the verification API for one email. Transport failures and
// server errors return "" so the email status stays unknown.
func (s *Service) verify(ctx context.Context, email string) string {
	body, err := json.Marshal(verifyRequest{Email: email})
	if err != nil {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.cfg.BaseURL+"/v1/verify", bytes.NewReader(body))
	if err != nil {
		s.log.Warnw("enrich: building verify request", "error", err.Error())
		return ""
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.http.Do(req)
	if err != nil {
		s.log.Warnw("enrich: verify request failed", "error", err.Error())
		return ""
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		var vr verifyResponse
		if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
			s.log.Warnw("enrich: decoding verify response", "error", err.Error())
			return ""
		}
		if vr.Status == "" {
			return StatusNotFound
		}
		return vr.Status
	case resp.StatusCode >= 400 && resp.StatusCode <= 499:
		// The API rejected the email itself; that is an answer, not an outage.
		return StatusNotFound
	default:
		s.log.Warnw("enrich: verify server error", "status", resp.StatusCode)
		return ""
	}
}
