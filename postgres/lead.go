package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	leadqual "github.com/leadqual/leadqual"
	"github.com/lib/pq"
)

// lib/pq errorCodeNames
// https://github.com/lib/pq/blob/master/error.go#L178
const uniqueViolation = "23505"

const leadColumns = `
	id,
	name,
	email,
	website,
	company_name,
	country,
	email_status,
	score,
	status,
	created_at,
	updated_at`

// Store persists leads in postgres.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) GetAll(ctx context.Context) ([]leadqual.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []leadqual.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

func (s *Store) FindByEmail(ctx context.Context, email string) (leadqual.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE email=$1`

	lead, err := scanLead(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return leadqual.Lead{}, leadqual.ErrLeadNotFound
		}
		return leadqual.Lead{}, err
	}

	return lead, nil
}

func (s *Store) Create(ctx context.Context, lead leadqual.Lead) (leadqual.Lead, error) {
	query := `
	INSERT INTO leads (
		id, name, email, website, company_name, country, email_status,
		score, status, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
	)`

	_, err := s.db.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		lead.Email,
		nullString(lead.Website),
		lead.CompanyName,
		lead.Country,
		lead.EmailStatus,
		lead.Score,
		lead.Status,
		lead.CreatedAt,
		lead.UpdatedAt,
	)

	if err != nil {
		if pqerr, ok := err.(*pq.Error); ok && pqerr.Code == uniqueViolation {
			return leadqual.Lead{}, leadqual.ErrDuplicatedLead
		}
		return leadqual.Lead{}, err
	}

	return lead, nil
}

func (s *Store) Update(ctx context.Context, id string, patch leadqual.LeadPatch) (leadqual.Lead, error) {
	sets := []string{"updated_at = now() AT TIME ZONE 'utc'"}
	args := []interface{}{id}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.CompanyName != nil {
		add("company_name", *patch.CompanyName)
	}
	if patch.Country != nil {
		add("country", *patch.Country)
	}
	if patch.EmailStatus != nil {
		add("email_status", *patch.EmailStatus)
	}
	if patch.Score != nil {
		add("score", *patch.Score)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}

	query := `UPDATE leads SET ` + strings.Join(sets, ", ") +
		` WHERE id=$1 RETURNING ` + leadColumns

	lead, err := scanLead(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return leadqual.Lead{}, leadqual.ErrLeadNotFound
		}
		return leadqual.Lead{}, err
	}

	return lead, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (leadqual.Lead, error) {
	var (
		lead    leadqual.Lead
		website sql.NullString
	)

	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&website,
		&lead.CompanyName,
		&lead.Country,
		&lead.EmailStatus,
		&lead.Score,
		&lead.Status,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return leadqual.Lead{}, err
	}

	lead.Website = website.String
	return lead, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
