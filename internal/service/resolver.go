package service

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/medibuddy-diagnosis-server/internal/domain"
	"github.com/medibuddy-diagnosis-server/internal/vocab"
)

const resolverCacheSize = 256

// SpecialtyResolver maps a disease name to its medical specialization via
// the clinical store, memoizing both hits and confirmed misses. Store
// failures are never cached so transient outages do not poison lookups.
type SpecialtyResolver struct {
	store domain.ClinicalStore
	cache *lru.Cache[string, string]
	log   *logrus.Logger
}

// NewSpecialtyResolver creates a resolver backed by the given store.
func NewSpecialtyResolver(store domain.ClinicalStore, logger *logrus.Logger) (*SpecialtyResolver, error) {
	cache, err := lru.New[string, string](resolverCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create specialty cache: %w", err)
	}

	return &SpecialtyResolver{
		store: store,
		cache: cache,
		log:   logger,
	}, nil
}

// Resolve returns the specialization for a disease, or domain.ErrNotFound
// when the store has no mapping. The empty string is the cached sentinel
// for a confirmed miss.
func (r *SpecialtyResolver) Resolve(ctx context.Context, disease string) (string, error) {
	if disease == "" {
		return "", domain.ErrNotFound
	}

	if cached, ok := r.cache.Get(disease); ok {
		if cached == "" {
			return "", domain.ErrNotFound
		}
		return cached, nil
	}

	specialty, err := r.store.SpecialtyFor(ctx, disease)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.cache.Add(disease, "")
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("specialty lookup failed for %q: %w", disease, err)
	}

	specialty = vocab.NormalizeSpecialty(specialty)
	if !vocab.Specialties().Contains(specialty) {
		r.log.WithFields(logrus.Fields{
			"disease":   disease,
			"specialty": specialty,
		}).Warn("Store returned specialization outside the known vocabulary")
		r.cache.Add(disease, "")
		return "", domain.ErrNotFound
	}

	r.cache.Add(disease, specialty)
	return specialty, nil
}
