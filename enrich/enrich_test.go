package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testService(cfg Config) *Service {
	return NewService(cfg, zap.NewNop().Sugar())
}

func TestInferDomain(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		website string
		want    string
	}{
		{"website with scheme", "a@b.com", "https://acme.io/about", "acme.io"},
		{"website without scheme", "a@b.com", "acme.io", "acme.io"},
		{"strips www", "a@b.com", "https://www.acme.io", "acme.io"},
		{"unparseable website falls back to email", "a@b.com", "not a url", "b.com"},
		{"no website falls back to email", "a@sub.example.ng", "", "sub.example.ng"},
		{"lowercases", "a@b.com", "https://ACME.IO", "acme.io"},
		{"nothing to derive", "not-an-email", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inferDomain(tt.email, tt.website))
		})
	}
}

func TestEnrichOffline(t *testing.T) {
	s := testService(Config{})

	result := s.Enrich(context.Background(), "a@sub.example.ng", "")
	require.NotNil(t, result.CompanyName)
	assert.Equal(t, "Sub", *result.CompanyName)
	require.NotNil(t, result.Country)
	assert.Equal(t, "Nigeria", *result.Country)
	assert.Nil(t, result.EmailStatus)
}

func TestEnrichCompanyFromWebsite(t *testing.T) {
	s := testService(Config{})

	result := s.Enrich(context.Background(), "jane@google.com", "")
	require.NotNil(t, result.CompanyName)
	assert.Equal(t, "Google", *result.CompanyName)
	assert.Nil(t, result.Country) // .com is not in the TLD table
}

func TestEnrichEmptyResult(t *testing.T) {
	s := testService(Config{})

	result := s.Enrich(context.Background(), "garbage", "")
	assert.True(t, result.Empty())
}

func TestEnrichVerification(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus *string
	}{
		{
			name: "status recorded verbatim",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"valid"}`))
			},
			wantStatus: strPtr("valid"),
		},
		{
			name: "missing status on success means not_found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			},
			wantStatus: strPtr(StatusNotFound),
		},
		{
			name: "client error means not_found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
			},
			wantStatus: strPtr(StatusNotFound),
		},
		{
			name: "server error leaves status unknown",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantStatus: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			s := testService(Config{APIKey: "key", BaseURL: srv.URL})
			result := s.Enrich(context.Background(), "jane@acme.io", "")

			if tt.wantStatus == nil {
				assert.Nil(t, result.EmailStatus)
			} else {
				require.NotNil(t, result.EmailStatus)
				assert.Equal(t, *tt.wantStatus, *result.EmailStatus)
			}
		})
	}
}

func TestEnrichVerificationRequestShape(t *testing.T) {
	var gotPath, gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"status":"valid"}`))
	}))
	defer srv.Close()

	s := testService(Config{APIKey: "secret", BaseURL: srv.URL})
	s.Enrich(context.Background(), "jane@acme.io", "")

	assert.Equal(t, "/v1/verify", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestEnrichVerificationTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // the service hits a dead endpoint

	s := testService(Config{APIKey: "key", BaseURL: srv.URL})
	result := s.Enrich(context.Background(), "jane@acme.io", "")

	// Transport failure degrades: the domain-derived fields survive.
	require.NotNil(t, result.CompanyName)
	assert.Equal(t, "Acme", *result.CompanyName)
	assert.Nil(t, result.EmailStatus)
}

func strPtr(s string) *string { return &s }
