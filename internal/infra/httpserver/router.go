package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/clinicase/clinicase/internal/application"
	appcompliance "github.com/clinicase/clinicase/internal/application/compliance"
	appdocuments "github.com/clinicase/clinicase/internal/application/documents"
	appexports "github.com/clinicase/clinicase/internal/application/exports"
	appintegrations "github.com/clinicase/clinicase/internal/application/integrations"
	apprequirements "github.com/clinicase/clinicase/internal/application/requirements"
	apptestcases "github.com/clinicase/clinicase/internal/application/testcases"
	appusers "github.com/clinicase/clinicase/internal/application/users"
	domai "github.com/clinicase/clinicase/internal/domain/ai"
	"github.com/clinicase/clinicase/internal/domain/trackers"
	"github.com/clinicase/clinicase/internal/domain/users"
	"github.com/clinicase/clinicase/internal/infra/export"
	"github.com/clinicase/clinicase/internal/middleware"
)

type Router struct {
	testCasesSvc    *apptestcases.Service
	complianceSvc   *appcompliance.Service
	exportsSvc      *appexports.Service
	documentsSvc    *appdocuments.Service
	requirementsSvc *apprequirements.Service
	usersSvc        *appusers.Service
	integrationsSvc *appintegrations.Service
	logger          *zap.Logger
}

type Deps struct {
	TestCases      *apptestcases.Service
	Compliance     *appcompliance.Service
	Exports        *appexports.Service
	Documents      *appdocuments.Service
	Requirements   *apprequirements.Service
	Users          *appusers.Service
	Integrations   *appintegrations.Service
	HealthCheckers map[string]middleware.HealthChecker
	AllowedOrigins []string
	Logger         *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	r := &Router{
		testCasesSvc:    d.TestCases,
		complianceSvc:   d.Compliance,
		exportsSvc:      d.Exports,
		documentsSvc:    d.Documents,
		requirementsSvc: d.Requirements,
		usersSvc:        d.Users,
		integrationsSvc: d.Integrations,
		logger:          d.Logger,
	}
	mux := chi.NewRouter()

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	mux.Use(preflightNoContent)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-User-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	mux.Get("/health", middleware.HealthHandler(d.HealthCheckers))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/test-cases/generate", r.wrap(r.handleGenerate))
		rt.Post("/test-cases/export", r.wrap(r.handleExport))
		rt.Get("/traceability", r.wrap(r.handleTraceability))
		rt.Post("/compliance/analyze", r.wrap(r.handleAnalyze))
		rt.Post("/compliance/context", r.wrap(r.handleComplianceContext))
		rt.Post("/documents/process", r.wrap(r.handleProcessDocument))
		rt.Post("/requirements", r.wrap(r.handleCreateRequirement))
		rt.Get("/requirements", r.wrap(r.handleListRequirements))
		rt.Get("/users/profile", r.wrap(r.handleGetProfile))
		rt.Post("/users/profile", r.wrap(r.handleUpdateProfile))
		rt.Post("/integrations/{tracker}", r.wrap(r.handleTrackerExport))
	})

	return mux
}

// preflightNoContent rewrites the CORS library's preflight response to
// 204 with no body. The contract is 204 for OPTIONS; the library writes
// 200.
func preflightNoContent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodOptions && req.Header.Get("Access-Control-Request-Method") != "" {
			next.ServeHTTP(&preflightWriter{ResponseWriter: w}, req)
			return
		}
		next.ServeHTTP(w, req)
	})
}

type preflightWriter struct {
	http.ResponseWriter
}

func (w *preflightWriter) WriteHeader(status int) {
	if status == http.StatusOK {
		status = http.StatusNoContent
	}
	w.ResponseWriter.WriteHeader(status)
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, application.ErrInvalidInput),
				errors.Is(err, export.ErrUnsupportedFormat):
				status = http.StatusBadRequest
			case errors.Is(err, application.ErrNotFound),
				errors.Is(err, sql.ErrNoRows):
				status = http.StatusNotFound
			case errors.Is(err, domai.ErrQuotaExceeded):
				status = http.StatusTooManyRequests
			}
			if status == http.StatusInternalServerError {
				r.logger.Error("request failed",
					zap.String("path", req.URL.Path),
					zap.Error(err))
			}
			writeJSON(w, status, envelope{Success: false, Error: err.Error()})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func ok(w http.ResponseWriter, data any) error {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
	return nil
}

func decode(req *http.Request, out any) error {
	if err := json.NewDecoder(req.Body).Decode(out); err != nil {
		return application.ErrInvalidInput
	}
	return nil
}

// POST /v1/test-cases/generate
func (r *Router) handleGenerate(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Requirements        string   `json:"requirements"`
		ComplianceStandards []string `json:"complianceStandards"`
		DocumentIDs         []string `json:"documentIds"`
		ProjectID           string   `json:"projectId"`
		UserID              string   `json:"userId"`
	}
	if err := decode(req, &body); err != nil {
		return err
	}
	if err := middleware.ValidateStandards(body.ComplianceStandards); err != nil {
		return fmt.Errorf("%w: %v", application.ErrInvalidInput, err)
	}
	if body.UserID == "" {
		body.UserID = middleware.GetUserIDFromContext(req.Context())
	}

	res, err := r.testCasesSvc.Generate(req.Context(), apptestcases.GenerateCommand{
		Requirements:        middleware.SanitizeString(body.Requirements),
		ComplianceStandards: body.ComplianceStandards,
		DocumentIDs:         body.DocumentIDs,
		ProjectID:           body.ProjectID,
		UserID:              body.UserID,
	})
	if err != nil {
		middleware.IncrementGenerationsFailed()
		return err
	}
	middleware.IncrementGenerations()
	return ok(w, res)
}

// POST /v1/test-cases/export
func (r *Router) handleExport(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		TestCaseIDs []string `json:"testCaseIds"`
		Format      string   `json:"format"`
	}
	if err := decode(req, &body); err != nil {
		return err
	}
	if err := middleware.ValidateIDList(body.TestCaseIDs); err != nil {
		return fmt.Errorf("%w: %v", application.ErrInvalidInput, err)
	}

	res, err := r.exportsSvc.Export(req.Context(), body.TestCaseIDs, body.Format)
	if err != nil {
		return err
	}
	middleware.IncrementExports()
	return ok(w, res)
}

// GET /v1/traceability?project_id=
func (r *Router) handleTraceability(w http.ResponseWriter, req *http.Request) error {
	projectID := req.URL.Query().Get("project_id")
	if err := middleware.ValidateProjectID(projectID); err != nil {
		return application.ErrInvalidInput
	}

	matrix, err := r.testCasesSvc.TraceabilityMatrix(req.Context(), projectID)
	if err != nil {
		return err
	}
	return ok(w, matrix)
}

// POST /v1/compliance/analyze
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		TestCaseIDs []string `json:"testCaseIds"`
		Standards   []string `json:"standards"`
	}
	if err := decode(req, &body); err != nil {
		return err
	}
	if err := middleware.ValidateIDList(body.TestCaseIDs); err != nil {
		return fmt.Errorf("%w: %v", application.ErrInvalidInput, err)
	}
	if err := middleware.ValidateStandards(body.Standards); err != nil {
		return fmt.Errorf("%w: %v", application.ErrInvalidInput, err)
	}

	a, err := r.complianceSvc.Analyze(req.Context(), body.TestCaseIDs, body.Standards)
	if err != nil {
		return err
	}
	middleware.IncrementAnalyses()
	return ok(w, a)
}

// POST /v1/compliance/context
func (r *Router) handleComplianceContext(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Query      string   `json:"query"`
		Standards  []string `json:"standards"`
		MaxResults int      `json:"maxResults"`
	}
	if err := decode(req, &body); err != nil {
		return err
	}

	res, err := r.complianceSvc.Context(req.Context(), body.Query, body.Standards, body.MaxResults)
	if err != nil {
		return err
	}
	return ok(w, res)
}

// POST /v1/documents/process
func (r *Router) handleProcessDocument(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		StorageKey string `json:"storageKey"`
		FileName   string `json:"fileName"`
	}
	if err := decode(req, &body); err != nil {
		return err
	}

	doc, err := r.documentsSvc.Process(req.Context(), appdocuments.ProcessCommand{
		StorageKey: body.StorageKey,
		FileName:   body.FileName,
		UploadedBy: middleware.GetUserIDFromContext(req.Context()),
	})
	if err != nil {
		return err
	}
	return ok(w, doc)
}

// POST /v1/requirements
func (r *Router) handleCreateRequirement(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ProjectID           string   `json:"projectId"`
		Title               string   `json:"title"`
		Description         string   `json:"description"`
		Type                string   `json:"type"`
		Priority            string   `json:"priority"`
		ComplianceStandards []string `json:"complianceStandards"`
	}
	if err := decode(req, &body); err != nil {
		return err
	}

	created, err := r.requirementsSvc.Create(req.Context(), apprequirements.CreateCommand{
		ProjectID:           body.ProjectID,
		Title:               middleware.SanitizeString(body.Title),
		Description:         middleware.SanitizeString(body.Description),
		Type:                body.Type,
		Priority:            body.Priority,
		ComplianceStandards: body.ComplianceStandards,
		CreatedBy:           middleware.GetUserIDFromContext(req.Context()),
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: created})
	return nil
}

// GET /v1/requirements?project_id=
func (r *Router) handleListRequirements(w http.ResponseWriter, req *http.Request) error {
	projectID := req.URL.Query().Get("project_id")
	if err := middleware.ValidateProjectID(projectID); err != nil {
		return application.ErrInvalidInput
	}

	list, err := r.requirementsSvc.List(req.Context(), projectID)
	if err != nil {
		return err
	}
	return ok(w, list)
}

// GET /v1/users/profile?user_id=
func (r *Router) handleGetProfile(w http.ResponseWriter, req *http.Request) error {
	userID := req.URL.Query().Get("user_id")
	if userID == "" {
		userID = middleware.GetUserIDFromContext(req.Context())
	}

	u, err := r.usersSvc.Get(req.Context(), userID)
	if err != nil {
		return err
	}
	return ok(w, u)
}

// POST /v1/users/profile
func (r *Router) handleUpdateProfile(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		UserID       string `json:"userId"`
		Email        string `json:"email"`
		DisplayName  string `json:"displayName"`
		Role         string `json:"role"`
		Organization string `json:"organization"`
	}
	if err := decode(req, &body); err != nil {
		return err
	}
	if body.UserID == "" {
		body.UserID = middleware.GetUserIDFromContext(req.Context())
	}

	u, err := r.usersSvc.Update(req.Context(), &users.User{
		ID:           users.UserID(body.UserID),
		Email:        body.Email,
		DisplayName:  middleware.SanitizeString(body.DisplayName),
		Role:         body.Role,
		Organization: middleware.SanitizeString(body.Organization),
	})
	if err != nil {
		return err
	}
	return ok(w, u)
}

// POST /v1/integrations/{tracker}
func (r *Router) handleTrackerExport(w http.ResponseWriter, req *http.Request) error {
	name := chi.URLParam(req, "tracker")

	var body struct {
		TestCaseIDs   []string `json:"testCaseIds"`
		ProjectKey    string   `json:"projectKey"`
		Project       string   `json:"project"`
		AreaPath      string   `json:"areaPath"`
		IterationPath string   `json:"iterationPath"`
		ProjectID     string   `json:"projectId"`
		SpaceID       string   `json:"spaceId"`
	}
	if err := decode(req, &body); err != nil {
		return err
	}
	if err := middleware.ValidateIDList(body.TestCaseIDs); err != nil {
		return fmt.Errorf("%w: %v", application.ErrInvalidInput, err)
	}

	sum, err := r.integrationsSvc.ExportTo(req.Context(), name, body.TestCaseIDs, trackers.Route{
		ProjectKey:    body.ProjectKey,
		Project:       body.Project,
		AreaPath:      body.AreaPath,
		IterationPath: body.IterationPath,
		ProjectID:     body.ProjectID,
		SpaceID:       body.SpaceID,
	})
	if err != nil {
		return err
	}
	return ok(w, sum)
}
