package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Skufu/heartcheck/internal/heart"
	"github.com/Skufu/heartcheck/internal/predict"
	"github.com/Skufu/heartcheck/internal/report"
)

//go:embed templates/*.tmpl static
var assets embed.FS

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	}
}

func setupRouter(db HealthChecker, svc *predict.Service, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		requestLogger(logger),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.SetHTMLTemplate(template.Must(template.ParseFS(assets, "templates/*.tmpl")))
	static, err := fs.Sub(assets, "static")
	if err != nil {
		panic(fmt.Sprintf("embedded static assets: %v", err))
	}
	router.StaticFS("/static", http.FS(static))

	h := &predictHandler{svc: svc, log: logger}

	router.GET("/", h.Index)
	router.POST("/predict", h.SubmitForm)
	router.GET("/reports/:name", h.Download)

	api := router.Group("/api")
	{
		api.GET("/fields", h.Fields)
		api.POST("/predict", h.Predict)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if err := db.Ping(ctx); err != nil {
			dbStatus = fmt.Sprintf("unhealthy: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     dbStatus,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"db":     dbStatus,
		})
	})

	return router
}

// PredictRequest is the form/JSON body of one prediction. Numbers are
// pointers so that a legitimate 0 (oldpeak, ca) still satisfies required.
type PredictRequest struct {
	Age                  *float64 `json:"age" form:"age" binding:"required"`
	Sex                  string   `json:"sex" form:"sex" binding:"required"`
	ChestPainType        string   `json:"cp" form:"cp" binding:"required"`
	RestingBloodPressure *float64 `json:"trestbps" form:"trestbps" binding:"required"`
	Cholesterol          *float64 `json:"chol" form:"chol" binding:"required"`
	FastingBloodSugar    string   `json:"fbs" form:"fbs" binding:"required"`
	RestingECG           string   `json:"restecg" form:"restecg" binding:"required"`
	MaxHeartRate         *float64 `json:"thalach" form:"thalach" binding:"required"`
	ExerciseAngina       string   `json:"exang" form:"exang" binding:"required"`
	Oldpeak              *float64 `json:"oldpeak" form:"oldpeak" binding:"required"`
	Slope                string   `json:"slope" form:"slope" binding:"required"`
	MajorVessels         *float64 `json:"ca" form:"ca" binding:"required"`
	Thal                 string   `json:"thal" form:"thal" binding:"required"`
}

func (r PredictRequest) RawInput() heart.RawInput {
	return heart.RawInput{
		Age:                  *r.Age,
		Sex:                  r.Sex,
		ChestPainType:        r.ChestPainType,
		RestingBloodPressure: *r.RestingBloodPressure,
		Cholesterol:          *r.Cholesterol,
		FastingBloodSugar:    r.FastingBloodSugar,
		RestingECG:           r.RestingECG,
		MaxHeartRate:         *r.MaxHeartRate,
		ExerciseAngina:       r.ExerciseAngina,
		Oldpeak:              *r.Oldpeak,
		Slope:                r.Slope,
		MajorVessels:         *r.MajorVessels,
		Thal:                 r.Thal,
	}
}

// PredictResponse is returned by POST /api/predict.
type PredictResponse struct {
	Table      []report.Row `json:"table"`
	Prediction string       `json:"prediction"`
	Confidence string       `json:"confidence"`
	Format     string       `json:"format"`
	ReportURL  string       `json:"reportUrl"`
}

type predictHandler struct {
	svc *predict.Service
	log *zap.Logger
}

func (h *predictHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, validationBody(err))
		return
	}

	res, err := h.svc.Run(req.RawInput(), c.DefaultQuery("format", "pdf"))
	if err != nil {
		status, body := h.errorBody(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, PredictResponse{
		Table:      res.Table,
		Prediction: res.Prediction,
		Confidence: res.Confidence,
		Format:     res.Format,
		ReportURL:  reportURL(res.Path),
	})
}

func (h *predictHandler) Fields(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"fields":  formFields(),
		"formats": h.svc.Formats(),
	})
}

func (h *predictHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.tmpl", gin.H{
		"Title":   report.Title,
		"Fields":  formFields(),
		"Formats": h.svc.Formats(),
	})
}

func (h *predictHandler) SubmitForm(c *gin.Context) {
	renderErr := func(status int, msg string) {
		c.HTML(status, "index.tmpl", gin.H{
			"Title":   report.Title,
			"Fields":  formFields(),
			"Formats": h.svc.Formats(),
			"Error":   msg,
		})
	}

	if blank := blankNumericFields(c); len(blank) > 0 {
		renderErr(http.StatusUnprocessableEntity, "Please fill in every field. Missing: "+strings.Join(blank, ", ")+".")
		return
	}

	var req PredictRequest
	if err := c.ShouldBind(&req); err != nil {
		renderErr(http.StatusUnprocessableEntity, "Please fill in every field.")
		return
	}

	res, err := h.svc.Run(req.RawInput(), c.DefaultPostForm("format", "pdf"))
	if err != nil {
		status, body := h.errorBody(err)
		renderErr(status, body["message"].(string))
		return
	}

	c.HTML(http.StatusOK, "result.tmpl", gin.H{
		"Title":      report.Title,
		"Table":      res.Table,
		"Prediction": res.Prediction,
		"Positive":   res.Prediction == report.LabelHasDisease,
		"Confidence": res.Confidence,
		"ReportURL":  reportURL(res.Path),
		"Format":     strings.ToUpper(res.Format),
	})
}

func (h *predictHandler) Download(c *gin.Context) {
	name := c.Param("name")
	path, ok := h.svc.Artifact(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.FileAttachment(path, name)
}

// errorBody maps pipeline errors to a status and a JSON body carrying a
// user-facing message.
func (h *predictHandler) errorBody(err error) (int, gin.H) {
	var (
		unknown  *heart.UnknownCategoryError
		classErr *predict.ClassifierError
		writeErr *report.WriteError
	)
	switch {
	case errors.As(err, &unknown):
		return http.StatusUnprocessableEntity, gin.H{
			"error":   "unknown_category",
			"field":   unknown.Field,
			"value":   unknown.Value,
			"message": unknown.Error(),
		}
	case errors.Is(err, report.ErrUnsupportedFormat):
		return http.StatusBadRequest, gin.H{"error": "unsupported_format", "message": err.Error()}
	case errors.As(err, &classErr):
		h.log.Error("classifier failed", zap.Error(classErr.Err))
		return http.StatusInternalServerError, gin.H{"error": "prediction_failed", "message": "prediction failed"}
	case errors.As(err, &writeErr):
		h.log.Error("report write failed", zap.String("path", writeErr.Path), zap.Error(writeErr.Err))
		return http.StatusInternalServerError, gin.H{"error": "report_failed", "message": "report generation failed"}
	default:
		h.log.Error("prediction request failed", zap.Error(err))
		return http.StatusInternalServerError, gin.H{"error": "internal", "message": "internal error"}
	}
}

// blankNumericFields lists numeric form fields that are absent or empty.
// Form binding would otherwise turn an empty value into 0.
func blankNumericFields(c *gin.Context) []string {
	var blank []string
	for _, f := range heart.Fields {
		if f.Categorical() {
			continue
		}
		if strings.TrimSpace(c.PostForm(f.Key)) == "" {
			blank = append(blank, f.Key)
		}
	}
	return blank
}

func validationBody(err error) gin.H {
	body := gin.H{"error": "validation_failed"}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		body["fields"] = fields
		body["message"] = "missing required fields: " + strings.Join(fields, ", ")
		return body
	}
	body["message"] = "invalid payload"
	return body
}

func reportURL(path string) string {
	return "/reports/" + filepath.Base(path)
}

type formField struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Display string   `json:"displayLabel"`
	Type    string   `json:"type"`
	Choices []string `json:"choices,omitempty"`
	Min     string   `json:"min,omitempty"`
	Max     string   `json:"max,omitempty"`
	Step    string   `json:"step,omitempty"`
}

func formFields() []formField {
	out := make([]formField, 0, heart.NumFeatures)
	for _, f := range heart.Fields {
		ff := formField{Key: f.Key, Label: f.FormLabel, Display: f.DisplayLabel}
		switch {
		case f.Categorical():
			ff.Type = "choice"
			ff.Choices = f.Mapping.Labels()
		case f.Key == "ca":
			ff.Type = "number"
			ff.Min, ff.Max, ff.Step = "0", "3", "1"
		default:
			ff.Type = "number"
			ff.Step = "any"
		}
		out = append(out, ff)
	}
	return out
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
