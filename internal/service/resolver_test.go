package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibuddy-diagnosis-server/internal/domain"
)

// countingStore is a ClinicalStore stub that serves specialty lookups from
// a map and counts how often each disease reaches the store.
type countingStore struct {
	specialties map[string]string
	err         error
	calls       map[string]int
}

func newCountingStore(specialties map[string]string) *countingStore {
	return &countingStore{specialties: specialties, calls: map[string]int{}}
}

func (s *countingStore) MatchDiseases(context.Context, []string, int) ([]domain.DiseaseMatch, error) {
	return nil, nil
}

func (s *countingStore) SpecialtyFor(_ context.Context, disease string) (string, error) {
	s.calls[disease]++
	if s.err != nil {
		return "", s.err
	}
	specialty, ok := s.specialties[disease]
	if !ok {
		return "", domain.ErrNotFound
	}
	return specialty, nil
}

func (s *countingStore) SymptomsFor(context.Context, string) ([]string, error) {
	return nil, nil
}

func (s *countingStore) UpsertDiseaseEntry(context.Context, string, string, []string) error {
	return nil
}

func (s *countingStore) Close() error { return nil }

func TestResolveMemoizesHits(t *testing.T) {
	store := newCountingStore(map[string]string{"Angina": "CARDIOVASCULAR DISEASE (CARDIOLOGY)"})
	resolver, err := NewSpecialtyResolver(store, testLogger())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		specialty, err := resolver.Resolve(context.Background(), "Angina")
		require.NoError(t, err)
		assert.Equal(t, "CARDIOVASCULAR DISEASE (CARDIOLOGY)", specialty)
	}
	assert.Equal(t, 1, store.calls["Angina"])
}

func TestResolveMemoizesConfirmedMisses(t *testing.T) {
	store := newCountingStore(nil)
	resolver, err := NewSpecialtyResolver(store, testLogger())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := resolver.Resolve(context.Background(), "Dragon Pox")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
	assert.Equal(t, 1, store.calls["Dragon Pox"])
}

func TestResolveDoesNotCacheStoreFailures(t *testing.T) {
	store := newCountingStore(map[string]string{"Angina": "CARDIOVASCULAR DISEASE (CARDIOLOGY)"})
	store.err = errors.New("connection reset")
	resolver, err := NewSpecialtyResolver(store, testLogger())
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), "Angina")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	// Once the store recovers the lookup must go through.
	store.err = nil
	specialty, err := resolver.Resolve(context.Background(), "Angina")
	require.NoError(t, err)
	assert.Equal(t, "CARDIOVASCULAR DISEASE (CARDIOLOGY)", specialty)
	assert.Equal(t, 2, store.calls["Angina"])
}

func TestResolveNormalizesStoreValue(t *testing.T) {
	store := newCountingStore(map[string]string{"Migraine": " neurology "})
	resolver, err := NewSpecialtyResolver(store, testLogger())
	require.NoError(t, err)

	specialty, err := resolver.Resolve(context.Background(), "Migraine")
	require.NoError(t, err)
	assert.Equal(t, "NEUROLOGY", specialty)
}

func TestResolveRejectsUnknownVocabularyValue(t *testing.T) {
	store := newCountingStore(map[string]string{"Migraine": "HEAD SCIENCE"})
	resolver, err := NewSpecialtyResolver(store, testLogger())
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), "Migraine")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveEmptyDisease(t *testing.T) {
	store := newCountingStore(nil)
	resolver, err := NewSpecialtyResolver(store, testLogger())
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, store.calls)
}
