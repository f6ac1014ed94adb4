package clinical

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibuddy-diagnosis-server/internal/domain"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "clinical.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func seedTestData(t *testing.T, store *SQLiteStore) {
	t.Helper()
	ctx := context.Background()

	entries := []struct {
		disease   string
		specialty string
		symptoms  []string
	}{
		{"Angina", "CARDIOVASCULAR DISEASE (CARDIOLOGY)", []string{"chest_pain", "breathlessness", "sweating"}},
		{"Influenza", "FAMILY PRACTICE", []string{"high_fever", "cough", "fatigue", "headache"}},
		{"Migraine", "NEUROLOGY", []string{"headache", "nausea", "visual_disturbances"}},
	}
	for _, e := range entries {
		require.NoError(t, store.UpsertDiseaseEntry(ctx, e.disease, e.specialty, e.symptoms))
	}
}

func TestSQLiteStore_MatchDiseases(t *testing.T) {
	store := createTestStore(t)
	seedTestData(t, store)
	ctx := context.Background()

	matches, err := store.MatchDiseases(ctx, []string{"chest_pain", "breathlessness"}, 3)
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	top := matches[0]
	assert.Equal(t, "Angina", top.Disease)
	assert.Equal(t, 2, top.Score)
	assert.Equal(t, []string{"breathlessness", "chest_pain"}, top.MatchedSymptoms)
	assert.Equal(t, []string{"breathlessness", "chest_pain", "sweating"}, top.AllSymptoms)
}

func TestSQLiteStore_MatchDiseases_ScoreBounds(t *testing.T) {
	store := createTestStore(t)
	seedTestData(t, store)
	ctx := context.Background()

	input := []string{"headache", "nausea", "cough"}
	matches, err := store.MatchDiseases(ctx, input, 10)
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	for _, m := range matches {
		assert.Greater(t, m.Score, 0, "only overlapping diseases are returned")
		assert.LessOrEqual(t, m.Score, len(input), "score is bounded by the input size")
		assert.Len(t, m.MatchedSymptoms, m.Score, "score equals the matched-symptom count")
	}

	// Descending order by score.
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
}

func TestSQLiteStore_MatchDiseases_EmptyInput(t *testing.T) {
	store := createTestStore(t)
	seedTestData(t, store)

	matches, err := store.MatchDiseases(context.Background(), nil, 3)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSQLiteStore_MatchDiseases_NoOverlap(t *testing.T) {
	store := createTestStore(t)
	seedTestData(t, store)

	matches, err := store.MatchDiseases(context.Background(), []string{"itching"}, 3)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSQLiteStore_MatchDiseases_Truncation(t *testing.T) {
	store := createTestStore(t)
	seedTestData(t, store)

	matches, err := store.MatchDiseases(context.Background(), []string{"headache"}, 1)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestSQLiteStore_SpecialtyFor(t *testing.T) {
	store := createTestStore(t)
	seedTestData(t, store)
	ctx := context.Background()

	specialty, err := store.SpecialtyFor(ctx, "Angina")
	require.NoError(t, err)
	assert.Equal(t, "CARDIOVASCULAR DISEASE (CARDIOLOGY)", specialty)

	_, err = store.SpecialtyFor(ctx, "angina")
	assert.ErrorIs(t, err, domain.ErrNotFound, "lookup is case-sensitive on the disease name")

	_, err = store.SpecialtyFor(ctx, "Unknown Disease")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteStore_SymptomsFor(t *testing.T) {
	store := createTestStore(t)
	seedTestData(t, store)

	profile, err := store.SymptomsFor(context.Background(), "Influenza")
	require.NoError(t, err)
	assert.Equal(t, []string{"cough", "fatigue", "headache", "high_fever"}, profile)
}

func TestSQLiteStore_UpsertDiseaseEntry_Idempotent(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, store.UpsertDiseaseEntry(ctx, "Angina",
			"CARDIOVASCULAR DISEASE (CARDIOLOGY)", []string{"chest_pain", "sweating"}))
	}

	profile, err := store.SymptomsFor(ctx, "Angina")
	require.NoError(t, err)
	assert.Len(t, profile, 2, "repeat upserts do not duplicate links")
}

func TestSQLiteStore_UpsertDiseaseEntry_UpdatesSpecialty(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertDiseaseEntry(ctx, "Migraine", "GENERAL PRACTICE", []string{"headache"}))
	require.NoError(t, store.UpsertDiseaseEntry(ctx, "Migraine", "NEUROLOGY", []string{"headache"}))

	specialty, err := store.SpecialtyFor(ctx, "Migraine")
	require.NoError(t, err)
	assert.Equal(t, "NEUROLOGY", specialty)
}

func TestSQLiteStore_UpsertDiseaseEntry_Validation(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.UpsertDiseaseEntry(ctx, "", "NEUROLOGY", []string{"headache"}))
	assert.Error(t, store.UpsertDiseaseEntry(ctx, "Migraine", "", []string{"headache"}))
	assert.Error(t, store.UpsertDiseaseEntry(ctx, "Migraine", "NEUROLOGY", []string{"  "}))
}
