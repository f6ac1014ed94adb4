package clinical

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/medibuddy-diagnosis-server/internal/domain"
)

// SQLiteStore implements domain.ClinicalStore on a local SQLite file. It is
// the standalone backend: no external database required.
type SQLiteStore struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewSQLiteStore opens (and if necessary creates) the SQLite database and
// its schema.
func NewSQLiteStore(dbPath string, logger *logrus.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := createClinicalSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating clinical schema: %w", err)
	}

	logger.WithField("path", dbPath).Info("SQLite clinical store opened")

	return &SQLiteStore{db: db, log: logger}, nil
}

// DB exposes the underlying handle so the doctor directory can share the
// same database file.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func createClinicalSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS specialty (
		specialty_id TEXT PRIMARY KEY,
		specialty_name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS symptom (
		symptom_id TEXT PRIMARY KEY,
		symptom_name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS disease (
		disease_id TEXT PRIMARY KEY,
		disease_name TEXT NOT NULL UNIQUE,
		specialty_id TEXT REFERENCES specialty(specialty_id)
	);

	CREATE TABLE IF NOT EXISTS disease_symptom (
		disease_id TEXT NOT NULL REFERENCES disease(disease_id),
		symptom_id TEXT NOT NULL REFERENCES symptom(symptom_id),
		PRIMARY KEY (disease_id, symptom_id)
	);

	CREATE TABLE IF NOT EXISTS doctor (
		doctor_id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		address_line1 TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		zip_code TEXT NOT NULL DEFAULT '',
		specialty_id TEXT REFERENCES specialty(specialty_id)
	);

	CREATE INDEX IF NOT EXISTS idx_disease_name ON disease(disease_name);
	CREATE INDEX IF NOT EXISTS idx_symptom_name ON symptom(symptom_name);
	CREATE INDEX IF NOT EXISTS idx_doctor_specialty ON doctor(specialty_id);
	`
	_, err := db.Exec(schema)
	return err
}

// MatchDiseases mirrors the Postgres implementation using an IN list.
func (s *SQLiteStore) MatchDiseases(ctx context.Context, symptoms []string, topN int) ([]domain.DiseaseMatch, error) {
	if len(symptoms) == 0 {
		return []domain.DiseaseMatch{}, nil
	}
	if topN <= 0 {
		topN = 3
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(symptoms)), ",")
	query := fmt.Sprintf(`
		SELECT
			d.disease_name,
			group_concat(DISTINCT s.symptom_name) AS all_symptoms,
			SUM(CASE WHEN s.symptom_name IN (%s) THEN 1 ELSE 0 END) AS match_count
		FROM disease d
		JOIN disease_symptom ds ON ds.disease_id = d.disease_id
		JOIN symptom s ON s.symptom_id = ds.symptom_id
		GROUP BY d.disease_id, d.disease_name
		HAVING match_count > 0
		ORDER BY match_count DESC, d.disease_name ASC
		LIMIT ?`, placeholders)

	args := make([]interface{}, 0, len(symptoms)+1)
	for _, sym := range symptoms {
		args = append(args, sym)
	}
	args = append(args, topN)

	rows, err := s.db.QueryContext(ctx, query, args...)
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
func (s *SQLiteStore) SpecialtyFor(ctx context.Context, disease string) (string, error) {
	var name sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT sp.specialty_name
		FROM disease d
		LEFT JOIN specialty sp ON d.specialty_id = sp.specialty_id
		WHERE d.disease_name = ?
		LIMIT 1`, disease).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("resolving specialty: %w", err)
	}
	if !name.Valid || name.String == "" {
		return "", domain.ErrNotFound
	}
	return name.String, nil
}

// SymptomsFor returns the full symptom profile of a disease.
func (s *SQLiteStore) SymptomsFor(ctx context.Context, disease string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.symptom_name
		FROM disease d
		JOIN disease_symptom ds ON ds.disease_id = d.disease_id
		JOIN symptom s ON s.symptom_id = ds.symptom_id
		WHERE d.disease_name = ?
		ORDER BY s.symptom_name`, disease)
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
func (s *SQLiteStore) UpsertDiseaseEntry(ctx context.Context, disease, specialization string, symptoms []string) error {
	disease = strings.TrimSpace(disease)
	specialization = strings.TrimSpace(specialization)
	symptoms = cleanSymptoms(symptoms)
	if disease == "" || specialization == "" {
		return fmt.Errorf("disease and specialization must be non-empty")
	}
	if len(symptoms) == 0 {
		return fmt.Errorf("symptom list must contain at least one entry")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning upsert transaction: %w", err)
	}
	defer tx.Rollback()

	specialtyID, err := getOrCreateRow(ctx, tx,
		`SELECT specialty_id FROM specialty WHERE UPPER(specialty_name) = UPPER(?)`,
		`INSERT INTO specialty (specialty_id, specialty_name) VALUES (?, ?)`,
		specialization)
	if err != nil {
		return fmt.Errorf("upserting specialty %q: %w", specialization, err)
	}

	diseaseID, err := func() (string, error) {
		var id string
		err := tx.QueryRowContext(ctx,
			`SELECT disease_id FROM disease WHERE disease_name = ?`, disease).Scan(&id)
		if err == nil {
			_, err = tx.ExecContext(ctx,
				`UPDATE disease SET specialty_id = ? WHERE disease_id = ?`, specialtyID, id)
			return id, err
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
		id = uuid.NewString()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO disease (disease_id, disease_name, specialty_id) VALUES (?, ?, ?)`,
			id, disease, specialtyID)
		return id, err
	}()
	if err != nil {
		return fmt.Errorf("upserting disease %q: %w", disease, err)
	}

	for _, symptom := range symptoms {
		symptomID, err := getOrCreateRow(ctx, tx,
			`SELECT symptom_id FROM symptom WHERE symptom_name = ?`,
			`INSERT INTO symptom (symptom_id, symptom_name) VALUES (?, ?)`,
			symptom)
		if err != nil {
			return fmt.Errorf("upserting symptom %q: %w", symptom, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO disease_symptom (disease_id, symptom_id)
			VALUES (?, ?)`, diseaseID, symptomID); err != nil {
			return fmt.Errorf("linking symptom %q: %w", symptom, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	return nil
}

// Close closes the database file.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// getOrCreateRow looks a row up by name and inserts it with a fresh UUID
// when absent, returning the id either way.
func getOrCreateRow(ctx context.Context, tx *sql.Tx, selectQ, insertQ, name string) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, selectQ, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	id = uuid.NewString()
	if _, err := tx.ExecContext(ctx, insertQ, id, name); err != nil {
		return "", err
	}
	return id, nil
}
