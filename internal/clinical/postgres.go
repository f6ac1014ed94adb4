package clinical

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/medibuddy-diagnosis-server/internal/domain"
)

// PostgresStore implements domain.ClinicalStore on a pgx connection pool.
type PostgresStore struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewPostgresStore creates a Postgres-backed clinical store.
func NewPostgresStore(db *pgxpool.Pool, logger *logrus.Logger) *PostgresStore {
	return &PostgresStore{
		db:  db,
		log: logger,
	}
}

// MatchDiseases scores diseases by symptom overlap. The aggregation runs in
// SQL; the matched subset is recomputed in Go from the returned profile so
// the result carries both views.
func (s *PostgresStore) MatchDiseases(ctx context.Context, symptoms []string, topN int) ([]domain.DiseaseMatch, error) {
	if len(symptoms) == 0 {
		return []domain.DiseaseMatch{}, nil
	}
	if topN <= 0 {
		topN = 3
	}

	query := `
		SELECT
			d.disease_name,
			string_agg(DISTINCT s.symptom_name, ',') AS all_symptoms,
			SUM(CASE WHEN s.symptom_name = ANY($1) THEN 1 ELSE 0 END) AS match_count
		FROM disease d
		JOIN disease_symptom ds ON ds.disease_id = d.disease_id
		JOIN symptom s ON s.symptom_id = ds.symptom_id
		GROUP BY d.disease_id, d.disease_name
		HAVING SUM(CASE WHEN s.symptom_name = ANY($1) THEN 1 ELSE 0 END) > 0
		ORDER BY match_count DESC, d.disease_name ASC
		LIMIT $2`

	rows, err := s.db.Query(ctx, query, symptoms, topN)
	if err != nil {
		s.log.WithError(err).Error("Failed to match diseases")
		return nil, fmt.Errorf("matching diseases: %w", err)
	}
	defer rows.Close()

	matches := make([]domain.DiseaseMatch, 0, topN)
	for rows.Next() {
		var (
			name   string
			joined string
			count  int
		)
		if err := rows.Scan(&name, &joined, &count); err != nil {
			return nil, fmt.Errorf("scanning disease match: %w", err)
		}
		profile := splitProfile(joined)
		matches = append(matches, domain.DiseaseMatch{
			Disease:         name,
			Score:           count,
			MatchedSymptoms: intersect(profile, symptoms),
			AllSymptoms:     profile,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating disease matches: %w", err)
	}

	return matches, nil
}

// SpecialtyFor looks up the specialty linked to a disease by exact name.
func (s *PostgresStore) SpecialtyFor(ctx context.Context, disease string) (string, error) {
	query := `
		SELECT sp.specialty_name
		FROM disease d
		LEFT JOIN specialty sp ON d.specialty_id = sp.specialty_id
		WHERE d.disease_name = $1
		LIMIT 1`

	var name *string
	err := s.db.QueryRow(ctx, query, disease).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		s.log.WithFields(logrus.Fields{
			"disease": disease,
			"error":   err,
		}).Error("Failed to resolve specialty")
		return "", fmt.Errorf("resolving specialty: %w", err)
	}
	if name == nil || *name == "" {
		return "", domain.ErrNotFound
	}
	return *name, nil
}

// SymptomsFor returns the full symptom profile of a disease.
func (s *PostgresStore) SymptomsFor(ctx context.Context, disease string) ([]string, error) {
	query := `
		SELECT s.symptom_name
		FROM disease d
		JOIN disease_symptom ds ON ds.disease_id = d.disease_id
		JOIN symptom s ON s.symptom_id = ds.symptom_id
		WHERE d.disease_name = $1
		ORDER BY s.symptom_name`

	rows, err := s.db.Query(ctx, query, disease)
	if err != nil {
		return nil, fmt.Errorf("loading symptom profile: %w", err)
	}
	defer rows.Close()

	var profile []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning symptom: %w", err)
		}
		profile = append(profile, name)
	}
	return profile, rows.Err()
}

// UpsertDiseaseEntry creates or updates a disease with its specialty and
// symptom profile inside one transaction.
func (s *PostgresStore) UpsertDiseaseEntry(ctx context.Context, disease, specialization string, symptoms []string) error {
	disease = strings.TrimSpace(disease)
	specialization = strings.TrimSpace(specialization)
	symptoms = cleanSymptoms(symptoms)
	if disease == "" || specialization == "" {
		return fmt.Errorf("disease and specialization must be non-empty")
	}
	if len(symptoms) == 0 {
		return fmt.Errorf("symptom list must contain at least one entry")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning upsert transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	specialtyID, err := s.getOrCreateSpecialty(ctx, tx, specialization)
	if err != nil {
		return err
	}
	diseaseID, err := s.getOrCreateDisease(ctx, tx, disease, specialtyID)
	if err != nil {
		return err
	}

	for _, symptom := range symptoms {
		symptomID, err := s.getOrCreateSymptom(ctx, tx, symptom)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO disease_symptom (disease_id, symptom_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, diseaseID, symptomID)
		if err != nil {
			return fmt.Errorf("linking symptom %q: %w", symptom, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"disease":   disease,
		"specialty": specialization,
		"symptoms":  len(symptoms),
	}).Debug("Disease entry upserted")

	return nil
}

// Close releases the pool. The pool is shared with the directory, so the
// store does not own it; Close is a no-op for compatibility with the
// interface.
func (s *PostgresStore) Close() error {
	return nil
}

func (s *PostgresStore) getOrCreateSpecialty(ctx context.Context, tx pgx.Tx, name string) (string, error) {
	var id string
	err := tx.QueryRow(ctx,
		`SELECT specialty_id FROM specialty WHERE UPPER(specialty_name) = UPPER($1)`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("looking up specialty %q: %w", name, err)
	}

	id = uuid.NewString()
	if _, err := tx.Exec(ctx,
		`INSERT INTO specialty (specialty_id, specialty_name) VALUES ($1, $2)`, id, name); err != nil {
		return "", fmt.Errorf("creating specialty %q: %w", name, err)
	}
	return id, nil
}

func (s *PostgresStore) getOrCreateSymptom(ctx context.Context, tx pgx.Tx, name string) (string, error) {
	var id string
	err := tx.QueryRow(ctx,
		`SELECT symptom_id FROM symptom WHERE symptom_name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("looking up symptom %q: %w", name, err)
	}

	id = uuid.NewString()
	if _, err := tx.Exec(ctx,
		`INSERT INTO symptom (symptom_id, symptom_name) VALUES ($1, $2)`, id, name); err != nil {
		return "", fmt.Errorf("creating symptom %q: %w", name, err)
	}
	return id, nil
}

func (s *PostgresStore) getOrCreateDisease(ctx context.Context, tx pgx.Tx, name, specialtyID string) (string, error) {
	var id string
	err := tx.QueryRow(ctx,
		`SELECT disease_id FROM disease WHERE disease_name = $1`, name).Scan(&id)
	if err == nil {
		if specialtyID != "" {
			if _, err := tx.Exec(ctx,
				`UPDATE disease SET specialty_id = $1 WHERE disease_id = $2`, specialtyID, id); err != nil {
				return "", fmt.Errorf("updating disease %q: %w", name, err)
			}
		}
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("looking up disease %q: %w", name, err)
	}

	id = uuid.NewString()
	var specialty sql.NullString
	if specialtyID != "" {
		specialty = sql.NullString{String: specialtyID, Valid: true}
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO disease (disease_id, disease_name, specialty_id) VALUES ($1, $2, $3)`,
		id, name, specialty); err != nil {
		return "", fmt.Errorf("creating disease %q: %w", name, err)
	}
	return id, nil
}
