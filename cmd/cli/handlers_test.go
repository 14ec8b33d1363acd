package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/data"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/dataset"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/explain"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/metrics"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/model"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/synth"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *sql.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, data.Init(dbPath))
	db, err := data.GetDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rows, err := synth.New(11).Generate(80)
	require.NoError(t, err)

	enc := dataset.NewEncoder()
	require.NoError(t, enc.Fit(rows))
	x, err := enc.Transform(rows)
	require.NoError(t, err)

	m := model.NewOLS()
	require.NoError(t, m.Fit(x, dataset.Targets(rows)))

	artifact, err := model.NewArtifact(m, enc, x, "run-test")
	require.NoError(t, err)

	explainer, err := explain.New(artifact)
	require.NoError(t, err)

	r, err := makeRouter(db, artifact, explainer)
	require.NoError(t, err)
	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, name, resp["service"])
}

func TestHomeView(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Surgery")
}

func TestSchemaHandler(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/schema", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "genders")
	assert.Contains(t, resp, "treatments")
	assert.Contains(t, resp, "age")
}

func TestPredictHandler(t *testing.T) {
	r, db := setupTestRouter(t)

	req := PredictRequest{
		Age:           65,
		Gender:        "Female",
		Race:          "White",
		DiagnosisCode: "I10",
		ProcedureCode: "0U5B7ZZ",
		LengthOfStay:  4,
		TreatmentType: "Surgery",
		InsuranceType: "Medicare",
	}
	w := doJSON(t, r, http.MethodPost, "/api/predict", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp PredictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.NameOLS, resp.Model)
	assert.NotZero(t, resp.Estimate)
	assert.Nil(t, resp.Explanation)

	// Each served estimate leaves an audit row.
	logged, err := data.GetPredictions(db, 10)
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, model.NameOLS, logged[0].Model)
	assert.InDelta(t, resp.Estimate, logged[0].Estimate, 1e-9)
}

func TestPredictHandler_WithExplanation(t *testing.T) {
	r, _ := setupTestRouter(t)

	req := PredictRequest{
		Age:           40,
		Gender:        "Male",
		Race:          "Black",
		DiagnosisCode: "E11.9",
		ProcedureCode: "3E0P3MZ",
		LengthOfStay:  2,
		TreatmentType: "Observation",
		InsuranceType: "Private Insurance",
		Explain:       true,
	}
	w := doJSON(t, r, http.MethodPost, "/api/predict", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp PredictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Explanation)
	assert.InDelta(t, resp.Estimate, resp.Explanation.Prediction, 1e-9)
	assert.NotEmpty(t, resp.Explanation.Contributions)
}

func TestPredictHandler_InvalidCategory(t *testing.T) {
	r, _ := setupTestRouter(t)

	req := PredictRequest{
		Age:           65,
		Gender:        "Unknown",
		Race:          "White",
		DiagnosisCode: "I10",
		ProcedureCode: "0U5B7ZZ",
		LengthOfStay:  4,
		TreatmentType: "Surgery",
		InsuranceType: "Medicare",
	}
	w := doJSON(t, r, http.MethodPost, "/api/predict", req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "gender")
}

func TestPredictHandler_BadBody(t *testing.T) {
	r, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunsHandler(t *testing.T) {
	r, db := setupTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var runs []data.TrainingRun
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runs))
	assert.Empty(t, runs)

	require.NoError(t, data.SaveRun(db, &data.TrainingRun{
		ID: "run-test", Samples: 80, TrainRows: 64, TestRows: 16, Seed: 11, BestModel: model.NameOLS,
	}))

	w = doJSON(t, r, http.MethodGet, "/api/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "run-test", runs[0].ID)
}

func TestMetricsHandler(t *testing.T) {
	r, db := setupTestRouter(t)

	// No runs yet, nothing to resolve.
	w := doJSON(t, r, http.MethodGet, "/api/metrics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, data.SaveRun(db, &data.TrainingRun{
		ID: "run-test", Samples: 80, TrainRows: 64, TestRows: 16, Seed: 11, BestModel: model.NameOLS,
	}))
	require.NoError(t, data.SaveMetrics(db, []*data.ModelMetric{
		{RunID: "run-test", Model: model.NameOLS, Metric: metrics.MetricRMSE, Value: 1234.5},
	}))

	w = doJSON(t, r, http.MethodGet, "/api/metrics?run=run-test", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []data.ModelMetric
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, metrics.MetricRMSE, list[0].Metric)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/metrics?run=%s", "nope"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
