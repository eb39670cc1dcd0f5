package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xdev-exe/cortyx/internal/domain"
	"github.com/xdev-exe/cortyx/internal/domain/doctype"
	domdoc "github.com/xdev-exe/cortyx/internal/domain/document"
	domknow "github.com/xdev-exe/cortyx/internal/domain/knowledge"
	"github.com/xdev-exe/cortyx/internal/logger"
	documentuc "github.com/xdev-exe/cortyx/internal/usecase/document"
	healthuc "github.com/xdev-exe/cortyx/internal/usecase/health"
)

const maxBodyBytes = 1 << 20

// SchemaService serves the DocType catalog.
type SchemaService interface {
	GetFields(ctx context.Context, name string) ([]doctype.Field, error)
	GetModules(ctx context.Context) ([]doctype.Module, error)
}

// DocumentService serves document CRUD.
type DocumentService interface {
	List(ctx context.Context, docType string, page, pageSize int) (documentuc.ListResult, error)
	Get(ctx context.Context, docType, id string) (domdoc.Document, error)
	Create(ctx context.Context, docType string, data map[string]any) (domdoc.Document, error)
	Update(ctx context.Context, docType, id string, patch map[string]any) (domdoc.Document, error)
	Delete(ctx context.Context, docType, id string) (bool, error)
	DefaultPageSize() int
}

// SearchService serves knowledge search.
type SearchService interface {
	Search(ctx context.Context, q domknow.Query) ([]domknow.Hit, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers of the REST API.
type Server struct {
	schema        SchemaService
	documents     DocumentService
	search        SearchService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. search may be nil when knowledge
// search is disabled; the search route then answers 503.
func NewServer(
	schema SchemaService,
	documents DocumentService,
	search SearchService,
	health HealthService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		schema:    schema,
		documents: documents,
		search:    search,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDocTypeNotFound, http.StatusNotFound, ErrorCodeDocTypeNotFound, false),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, ErrorCodeDocumentNotFound, false),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound, false),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, ErrorCodeAlreadyExists, false),
		sentinelHandler(domain.ErrInvalidPagination, http.StatusBadRequest, ErrorCodeInvalidPagination, true),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, ErrorCodeInvalidDocument, true),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeInvalidQuery, true),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, ErrorCodeValidationFailed, true),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited, false),
		sentinelHandler(domain.ErrSearchUnavailable, http.StatusServiceUnavailable, ErrorCodeSearchUnavailable, false),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, ErrorCodeEmbeddingProviderError, false),
	}
	return s
}

// Routes registers every API route on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Get("/modules", s.ListModules)
		r.Get("/doctypes/{doctype}", s.GetDocTypeSchema)
		r.Get("/search", s.SearchKnowledge)

		r.Route("/docs/{doctype}", func(r chi.Router) {
			r.Get("/", s.ListDocuments)
			r.Post("/", s.CreateDocument)
			r.Get("/{id}", s.GetDocument)
			r.Put("/{id}", s.UpdateDocument)
			r.Delete("/{id}", s.DeleteDocument)
		})
	})
}

// ListModules handles GET /api/modules.
func (s *Server) ListModules(w http.ResponseWriter, r *http.Request) {
	modules, err := s.schema.GetModules(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := make([]ModuleResponse, len(modules))
	for i, m := range modules {
		resp[i] = moduleToResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetDocTypeSchema handles GET /api/doctypes/{doctype}.
func (s *Server) GetDocTypeSchema(w http.ResponseWriter, r *http.Request) {
	docType, ok := pathParam(w, r, "doctype")
	if !ok {
		return
	}

	fields, err := s.schema.GetFields(r.Context(), docType)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := make([]FieldResponse, len(fields))
	for i, f := range fields {
		resp[i] = fieldToResponse(f)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListDocuments handles GET /api/docs/{doctype}.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docType, ok := pathParam(w, r, "doctype")
	if !ok {
		return
	}

	page, pageSize := 1, s.documents.DefaultPageSize()
	query := r.URL.Query()
	if err := bindQuery(query, "page", &page); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidPagination, "page must be an integer")
		return
	}
	if err := bindQuery(query, "pageSize", &pageSize); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidPagination, "pageSize must be an integer")
		return
	}

	res, err := s.documents.List(r.Context(), docType, page, pageSize)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	data := make([]map[string]any, len(res.Data))
	for i, d := range res.Data {
		data[i] = d.Properties()
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{
		Data:       data,
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
	})
}

// GetDocument handles GET /api/docs/{doctype}/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	docType, id, ok := docParams(w, r)
	if !ok {
		return
	}

	doc, err := s.documents.Get(r.Context(), docType, id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// CreateDocument handles POST /api/docs/{doctype}.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request) {
	docType, ok := pathParam(w, r, "doctype")
	if !ok {
		return
	}
	data, ok := decodeObject(w, r)
	if !ok {
		return
	}

	doc, err := s.documents.Create(r.Context(), docType, data)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/docs/"+url.PathEscape(docType)+"/"+url.PathEscape(doc.Name()))
	writeJSON(w, http.StatusCreated, doc)
}

// UpdateDocument handles PUT /api/docs/{doctype}/{id}.
func (s *Server) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	docType, id, ok := docParams(w, r)
	if !ok {
		return
	}
	patch, ok := decodeObject(w, r)
	if !ok {
		return
	}

	doc, err := s.documents.Update(r.Context(), docType, id, patch)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /api/docs/{doctype}/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	docType, id, ok := docParams(w, r)
	if !ok {
		return
	}

	deleted, err := s.documents.Delete(r.Context(), docType, id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, ErrorCodeDocumentNotFound, domain.ErrDocumentNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Success: true})
}

// SearchKnowledge handles GET /api/search.
func (s *Server) SearchKnowledge(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		s.handleDomainError(w, r, domain.ErrSearchUnavailable)
		return
	}

	var q domknow.Query
	query := r.URL.Query()
	if err := bindQuery(query, "q", &q.Text); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidQuery, "invalid q")
		return
	}
	if err := bindQuery(query, "module", &q.Module); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidQuery, "invalid module")
		return
	}
	if err := bindQuery(query, "limit", &q.Limit); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidQuery, "limit must be an integer")
		return
	}

	hits, err := s.search.Search(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]SearchResultItem, len(hits))
	for i, h := range hits {
		items[i] = hitToResponse(h)
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: items})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// pathParam returns a decoded path parameter. chi matches on the raw path when
// the request carries escapes Go cannot round-trip, so only then is decoding needed.
func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return raw, true
	}
	v, err := url.PathUnescape(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, fmt.Sprintf("invalid %s path segment", name))
		return "", false
	}
	return v, true
}

func docParams(w http.ResponseWriter, r *http.Request) (docType, id string, ok bool) {
	if docType, ok = pathParam(w, r, "doctype"); !ok {
		return "", "", false
	}
	if id, ok = pathParam(w, r, "id"); !ok {
		return "", "", false
	}
	return docType, id, true
}

// bindQuery binds an optional form-style query parameter; dest keeps its value when absent.
func bindQuery(query url.Values, name string, dest any) error {
	return runtime.BindQueryParameter("form", true, false, name, query, dest) //nolint:wrapcheck // caller maps to 400
}

// decodeObject reads a JSON object body. Numbers stay json.Number so integers survive.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		msg := "Invalid request body: " + err.Error()
		if errors.Is(err, io.EOF) {
			msg = "request body must be a JSON object"
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, msg)
		return nil, false
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler matching a single sentinel error.
// detailed client errors carry the full message; the rest only the sentinel text.
func sentinelHandler(sentinel error, status int, code ErrorCode, detailed bool) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := sentinel.Error()
		if detailed {
			msg = err.Error()
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Debug("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
