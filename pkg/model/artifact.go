package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/dataset"
)

const artifactFileMode = 0600

// Artifact is a fitted model plus everything serving needs: the encoder that
// reproduces training-time features, the coefficient vector, and train-set
// feature means for attribution baselines.
type Artifact struct {
	Model        string           `json:"model"`
	RunID        string           `json:"run_id"`
	TrainedAt    time.Time        `json:"trained_at"`
	Intercept    float64          `json:"intercept"`
	Coefficients []float64        `json:"coefficients"`
	FeatureNames []string         `json:"feature_names"`
	FeatureMeans []float64        `json:"feature_means"`
	Encoder      *dataset.Encoder `json:"encoder"`
	Lambda       float64          `json:"lambda,omitempty"`
	Alpha        float64          `json:"alpha,omitempty"`
	L1Ratio      float64          `json:"l1_ratio,omitempty"`
	TestRMSE     float64          `json:"test_rmse"`
}

// NewArtifact captures a fitted regressor. The train matrix supplies the
// feature means.
func NewArtifact(reg Regressor, enc *dataset.Encoder, train mat.Matrix, runID string) (*Artifact, error) {
	if reg == nil || enc == nil {
		return nil, errors.New("regressor and encoder required")
	}
	coefs := reg.Coefficients()
	if coefs == nil {
		return nil, errNotFitted
	}

	a := &Artifact{
		Model:        reg.Name(),
		RunID:        runID,
		TrainedAt:    time.Now().UTC(),
		Intercept:    reg.Intercept(),
		Coefficients: coefs,
		FeatureNames: enc.FeatureNames(),
		FeatureMeans: columnMeans(train),
		Encoder:      enc,
	}

	switch m := reg.(type) {
	case *Ridge:
		a.Lambda = m.Lambda
	case *Elastic:
		a.Alpha = m.Alpha
		a.L1Ratio = m.L1Ratio
	}

	if len(a.Coefficients) != len(a.FeatureNames) {
		return nil, errors.Errorf("coefficient count %d does not match %d features",
			len(a.Coefficients), len(a.FeatureNames))
	}
	return a, nil
}

// Predict encodes and scores a single encounter.
func (a *Artifact) Predict(enc dataset.Encounter) (float64, error) {
	x, err := a.Encoder.Vector(enc)
	if err != nil {
		return 0, errors.Wrap(err, "failed to encode input")
	}

	v := a.Intercept
	for j, c := range a.Coefficients {
		v += c * x[j]
	}
	return v, nil
}

// Save writes the artifact to <dir>/<model>.json.
func (a *Artifact) Save(dir string) (string, error) {
	if dir == "" {
		return "", errors.New("artifact directory required")
	}

	b, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal artifact")
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.json", a.Model))
	if err := os.WriteFile(path, b, artifactFileMode); err != nil {
		return "", errors.Wrapf(err, "failed to write artifact: %s", path)
	}
	return path, nil
}

// LoadArtifact reads <dir>/<name>.json.
func LoadArtifact(dir, name string) (*Artifact, error) {
	if dir == "" || name == "" {
		return nil, errors.New("artifact directory and model name required")
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.json", name))
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read artifact: %s", path)
	}

	var a Artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, errors.Wrapf(err, "failed to parse artifact: %s", path)
	}
	if a.Encoder == nil || len(a.Coefficients) == 0 {
		return nil, errors.Errorf("artifact is incomplete: %s", path)
	}
	return &a, nil
}

func columnMeans(x mat.Matrix) []float64 {
	if x == nil {
		return nil
	}
	r, c := x.Dims()
	means := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, x)
		means[j] = stat.Mean(col, nil)
	}
	return means
}
