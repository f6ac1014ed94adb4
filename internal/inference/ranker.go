package inference

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/medibuddy-diagnosis-server/internal/domain"
)

// noiseFloor drops predictions the forest assigns negligible mass to.
const noiseFloor = 0.05

// defaultTopN bounds the candidate list when the caller passes no limit.
const defaultTopN = 3

// Ranker implements domain.DiseaseRanker over the persisted classifier
// artifacts. The ONNX session is created once and reused; Run calls are
// serialized with a mutex since the runtime session is not guaranteed to
// be safe for concurrent use.
type Ranker struct {
	manifest *EncoderManifest
	features map[string]int
	session  *ort.DynamicAdvancedSession
	mu       sync.Mutex
	log      *logrus.Logger
}

// NewRanker loads the manifest and the ONNX model. Any failure returns a
// disabled ranker and logs the cause: missing artifacts are an expected
// deployment state, not a startup error.
func NewRanker(cfg domain.ClassifierConfig, logger *logrus.Logger) *Ranker {
	r := &Ranker{log: logger}

	manifest, err := LoadManifest(cfg.EncoderPath)
	if err != nil {
		logger.WithError(err).Warn("Classifier encoder unavailable, ranker disabled")
		return r
	}

	if cfg.OrtLibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.OrtLibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			logger.WithError(err).Warn("ONNX runtime unavailable, ranker disabled")
			return r
		}
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{manifest.InputName}, []string{manifest.OutputName}, nil)
	if err != nil {
		logger.WithError(err).Warn("Classifier model unavailable, ranker disabled")
		return r
	}

	logger.WithFields(logrus.Fields{
		"features": len(manifest.Symptoms),
		"classes":  len(manifest.Classes),
		"model":    cfg.ModelPath,
	}).Info("Classifier artifacts loaded")

	r.manifest = manifest
	r.features = manifest.featureIndex()
	r.session = session
	return r
}

// Loaded reports whether the artifacts are available.
func (r *Ranker) Loaded() bool {
	return r.session != nil
}

// Rank returns the top disease predictions for a symptom set, descending
// by confidence, noise filtered and truncated. A disabled ranker or an
// empty input yields an empty slice.
func (r *Ranker) Rank(ctx context.Context, symptoms []string, topN int) []domain.ClassifierPrediction {
	if r.session == nil || len(symptoms) == 0 {
		return []domain.ClassifierPrediction{}
	}
	if topN <= 0 {
		topN = defaultTopN
	}

	vector := encode(symptoms, r.features, len(r.manifest.Symptoms))

	probs, err := r.infer(ctx, vector)
	if err != nil {
		r.log.WithError(err).Error("Classifier inference failed")
		return []domain.ClassifierPrediction{}
	}

	return rankProbabilities(r.manifest.Classes, probs, topN)
}

// infer runs one serialized forward pass.
func (r *Ranker) infer(ctx context.Context, vector []float32) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	input, err := ort.NewTensor(ort.NewShape(1, int64(len(vector))), vector)
	if err != nil {
		return nil, err
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := r.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, err
	}
	defer outputs[0].Destroy()

	probs := outputs[0].(*ort.Tensor[float32]).GetData()
	out := make([]float32, len(probs))
	copy(out, probs)
	return out, nil
}

// Close releases the ONNX session.
func (r *Ranker) Close() error {
	if r.session != nil {
		return r.session.Destroy()
	}
	return nil
}

// encode builds the multi-hot feature vector. Symptoms outside the
// training feature space contribute nothing.
func encode(symptoms []string, features map[string]int, width int) []float32 {
	vector := make([]float32, width)
	for _, s := range symptoms {
		if i, ok := features[s]; ok {
			vector[i] = 1
		}
	}
	return vector
}

// rankProbabilities applies the noise floor, rounds to two decimals, sorts
// descending and truncates. The sort is stable so ties keep the native
// class order.
func rankProbabilities(classes []string, probs []float32, topN int) []domain.ClassifierPrediction {
	n := len(classes)
	if len(probs) < n {
		n = len(probs)
	}

	preds := make([]domain.ClassifierPrediction, 0, n)
	for i := 0; i < n; i++ {
		p := float64(probs[i])
		if p <= noiseFloor {
			continue
		}
		preds = append(preds, domain.ClassifierPrediction{
			Disease:    classes[i],
			Confidence: math.Round(p*100) / 100,
		})
	}

	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Confidence > preds[j].Confidence
	})

	if len(preds) > topN {
		preds = preds[:topN]
	}
	return preds
}
