// Package directory implements the doctor directory lookup: filtered,
// formatted provider rows by specialty, city and ZIP prefix. The pipeline
// consumes it as a pass-through collaborator; a failing directory degrades
// to an empty provider list and never aborts a chat turn.
package directory

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/medibuddy-diagnosis-server/internal/domain"
)

// Directory looks providers up over database/sql. It works against either
// the Postgres (lib/pq) or the SQLite (modernc) driver; driver selects the
// placeholder style.
type Directory struct {
	db     *sql.DB
	driver string
	limit  int
	log    *logrus.Logger
}

// New creates a doctor directory over an open database handle.
func New(db *sql.DB, driver string, limit int, logger *logrus.Logger) *Directory {
	if limit <= 0 {
		limit = 10
	}
	return &Directory{
		db:     db,
		driver: driver,
		limit:  limit,
		log:    logger,
	}
}

// Lookup returns providers for a specialty, optionally narrowed by city
// and/or a 5-character ZIP prefix. Results are capped at the configured
// limit.
func (d *Directory) Lookup(ctx context.Context, specialty, city, zip string) ([]domain.Doctor, error) {
	specialty = strings.ToUpper(strings.TrimSpace(specialty))
	if specialty == "" {
		return []domain.Doctor{}, nil
	}

	query := `
		SELECT d.first_name, d.last_name, d.phone_number, d.address_line1,
		       d.city, d.state, d.zip_code
		FROM doctor d
		JOIN specialty s ON d.specialty_id = s.specialty_id
		WHERE UPPER(s.specialty_name) = ?`
	args := []interface{}{specialty}

	if city = strings.TrimSpace(city); city != "" {
		query += " AND UPPER(d.city) = ?"
		args = append(args, strings.ToUpper(city))
	}
	if prefix := zipPrefix(zip); prefix != "" {
		query += " AND substr(d.zip_code, 1, 5) = ?"
		args = append(args, prefix)
	}

	query += " ORDER BY d.last_name, d.first_name LIMIT ?"
	args = append(args, d.limit)

	rows, err := d.db.QueryContext(ctx, d.rebind(query), args...)
	if err != nil {
		d.log.WithFields(logrus.Fields{
			"specialty": specialty,
			"error":     err,
		}).Error("Doctor lookup failed")
		return nil, fmt.Errorf("looking up doctors: %w", err)
	}
	defer rows.Close()

	doctors := make([]domain.Doctor, 0, d.limit)
	for rows.Next() {
		var first, last, phone, facility, dcity, state, dzip sql.NullString
		if err := rows.Scan(&first, &last, &phone, &facility, &dcity, &state, &dzip); err != nil {
			return nil, fmt.Errorf("scanning doctor row: %w", err)
		}

		name := strings.TrimSpace(strings.TrimSpace(first.String) + " " + strings.TrimSpace(last.String))
		if name == "" {
			name = "Unknown name"
		}

		doctors = append(doctors, domain.Doctor{
			Name:      name,
			Specialty: specialty,
			Facility:  strings.TrimSpace(facility.String),
			Phone:     FormatPhone(phone.String),
			City:      strings.TrimSpace(dcity.String),
			State:     strings.TrimSpace(state.String),
			Zip:       strings.TrimSpace(dzip.String),
		})
	}
	return doctors, rows.Err()
}

// FormatPhone renders a US phone number as +1(AAA)BBBB-CCCC when at least
// ten digits are present, otherwise returns whatever digits were found.
func FormatPhone(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	ph := digits.String()
	if len(ph) >= 10 {
		end := 11
		if len(ph) < end {
			end = len(ph)
		}
		return fmt.Sprintf("+1(%s)%s-%s", ph[:3], ph[3:7], ph[7:end])
	}
	return ph
}

// zipPrefix normalizes a ZIP filter to its first five characters.
func zipPrefix(zip string) string {
	zip = strings.TrimSpace(zip)
	if len(zip) > 5 {
		zip = zip[:5]
	}
	return zip
}

// rebind converts ? placeholders to $n for the Postgres driver.
func (d *Directory) rebind(query string) string {
	if d.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
