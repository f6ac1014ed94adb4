// Package inference wraps the pretrained disease classifier: a multi-hot
// symptom encoder described by a JSON manifest, and an ONNX model producing
// one probability per disease class. Artifacts are loaded once at process
// start; a ranker whose artifacts are missing or broken stays usable and
// simply reports no candidates, which routes the pipeline through its
// fallback path.
package inference

import (
	"encoding/json"
	"fmt"
	"os"
)

// EncoderManifest describes the feature space and class order the model
// was trained with. It is written by the offline trainer next to the ONNX
// model; the symptom order here is the multi-hot feature order and may
// differ from the canonical chat vocabulary.
type EncoderManifest struct {
	Symptoms   []string `json:"symptoms"`
	Classes    []string `json:"classes"`
	InputName  string   `json:"input_name"`
	OutputName string   `json:"output_name"`
}

// LoadManifest reads and validates the encoder manifest.
func LoadManifest(path string) (*EncoderManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading encoder manifest: %w", err)
	}

	var m EncoderManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing encoder manifest: %w", err)
	}
	if len(m.Symptoms) == 0 || len(m.Classes) == 0 {
		return nil, fmt.Errorf("encoder manifest is missing symptoms or classes")
	}
	if m.InputName == "" {
		m.InputName = "float_input"
	}
	if m.OutputName == "" {
		m.OutputName = "probabilities"
	}
	return &m, nil
}

// featureIndex maps each feature symptom to its multi-hot position.
func (m *EncoderManifest) featureIndex() map[string]int {
	idx := make(map[string]int, len(m.Symptoms))
	for i, s := range m.Symptoms {
		idx[s] = i
	}
	return idx
}
