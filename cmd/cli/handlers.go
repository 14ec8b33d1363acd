package main

import (
	"context"
	"database/sql"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/data"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/dataset"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/explain"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/model"
)

func newShutdownContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
}

func makeRouter(db *sql.DB, artifact *model.Artifact, explainer *explain.Explainer) (*gin.Engine, error) {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	tmpl, err := template.New("").ParseFS(embedFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}
	r.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(embedFS, "assets")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open embedded assets")
	}
	r.StaticFS("/static", http.FS(static))

	r.GET("/", homeViewHandler(artifact))
	r.GET("/health", healthHandler)

	api := r.Group("/api")
	{
		api.GET("/schema", schemaHandler)
		api.POST("/predict", predictHandler(db, artifact, explainer))
		api.GET("/runs", runsHandler(db))
		api.GET("/metrics", metricsHandler(db))
	}

	return r, nil
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": name,
		"version": version,
	})
}

func homeViewHandler(artifact *model.Artifact) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "home", gin.H{
			"version":    version,
			"model":      artifact.Model,
			"genders":    dataset.Genders,
			"races":      dataset.Races,
			"diagnoses":  dataset.DiagnosisCodes,
			"procedures": dataset.ProcedureCodes,
			"treatments": dataset.TreatmentTypes,
			"insurances": dataset.InsuranceTypes,
			"age_min":    dataset.AgeMin,
			"age_max":    dataset.AgeMax,
			"stay_min":   dataset.StayMin,
			"stay_max":   dataset.StayMax,
		})
	}
}

func schemaHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"genders":    dataset.Genders,
		"races":      dataset.Races,
		"diagnoses":  dataset.DiagnosisCodes,
		"procedures": dataset.ProcedureCodes,
		"treatments": dataset.TreatmentTypes,
		"insurances": dataset.InsuranceTypes,
		"age":        gin.H{"min": dataset.AgeMin, "max": dataset.AgeMax},
		"stay":       gin.H{"min": dataset.StayMin, "max": dataset.StayMax},
	})
}

// PredictRequest is the form input: the nine fields minus the target.
type PredictRequest struct {
	Age           int    `json:"age"`
	Gender        string `json:"gender"`
	Race          string `json:"race"`
	DiagnosisCode string `json:"diagnosis_code"`
	ProcedureCode string `json:"procedure_code"`
	LengthOfStay  int    `json:"length_of_stay"`
	TreatmentType string `json:"treatment_type"`
	InsuranceType string `json:"insurance_type"`
	Explain       bool   `json:"explain,omitempty"`
}

type PredictResponse struct {
	Model       string               `json:"model"`
	Estimate    float64              `json:"estimate"`
	Explanation *explain.Explanation `json:"explanation,omitempty"`
}

func predictHandler(db *sql.DB, artifact *model.Artifact, explainer *explain.Explainer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PredictRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		enc := dataset.Encounter{
			Age:           req.Age,
			Gender:        req.Gender,
			Race:          req.Race,
			DiagnosisCode: req.DiagnosisCode,
			ProcedureCode: req.ProcedureCode,
			LengthOfStay:  req.LengthOfStay,
			TreatmentType: req.TreatmentType,
			InsuranceType: req.InsuranceType,
		}
		if err := enc.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		estimate, err := artifact.Predict(enc)
		if err != nil {
			log.Errorf("prediction failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
			return
		}

		resp := &PredictResponse{
			Model:    artifact.Model,
			Estimate: estimate,
		}

		if req.Explain {
			x, err := artifact.Encoder.Vector(enc)
			if err == nil {
				if exp, err := explainer.Explain(x); err == nil {
					resp.Explanation = exp
				}
			}
		}

		if err := data.LogPrediction(db, artifact.Model, enc, estimate); err != nil {
			// Served estimate still stands; the audit row is best effort.
			log.Errorf("failed to log prediction: %v", err)
		}

		c.JSON(http.StatusOK, resp)
	}
}

func runsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		runs, err := data.GetRuns(db, queryResultLimitDefault)
		if err != nil {
			log.Errorf("failed to query runs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error querying runs"})
			return
		}
		c.JSON(http.StatusOK, runs)
	}
}

func metricsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		runID := c.Query("run")
		run, err := resolveRun(db, runID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}

		list, err := data.GetMetrics(db, run.ID)
		if err != nil {
			log.Errorf("failed to query metrics: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error querying metrics"})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}
