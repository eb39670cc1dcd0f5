package chi

import (
	"github.com/xdev-exe/cortyx/internal/domain/doctype"
	domknow "github.com/xdev-exe/cortyx/internal/domain/knowledge"
)

// ErrorCode is the machine-readable error code of an error response.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeNotFound               ErrorCode = "not_found"
	ErrorCodeDocTypeNotFound        ErrorCode = "doctype_not_found"
	ErrorCodeDocumentNotFound       ErrorCode = "document_not_found"
	ErrorCodeAlreadyExists          ErrorCode = "already_exists"
	ErrorCodeInvalidPagination      ErrorCode = "invalid_pagination"
	ErrorCodeInvalidDocument        ErrorCode = "invalid_document"
	ErrorCodeInvalidQuery           ErrorCode = "invalid_query"
	ErrorCodeValidationFailed       ErrorCode = "validation_failed"
	ErrorCodeRateLimited            ErrorCode = "rate_limited"
	ErrorCodeSearchUnavailable      ErrorCode = "search_unavailable"
	ErrorCodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// FieldResponse is one DocType field. Flags are 0/1 integers.
type FieldResponse struct {
	Fieldname   string `json:"fieldname"`
	Label       string `json:"label"`
	Fieldtype   string `json:"fieldtype"`
	Options     string `json:"options,omitempty"`
	Description string `json:"description,omitempty"`
	Reqd        int    `json:"reqd"`
	InListView  int    `json:"in_list_view"`
	Hidden      int    `json:"hidden"`
	ReadOnly    int    `json:"read_only"`
}

// ModuleResponse groups DocType names under a module.
type ModuleResponse struct {
	ModuleName   string   `json:"moduleName"`
	DocTypeNames []string `json:"docTypeNames"`
}

// DocumentListResponse is one page of documents.
type DocumentListResponse struct {
	Data       []map[string]any `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int64            `json:"totalPages"`
}

// DeleteResponse reports a successful delete.
type DeleteResponse struct {
	Success bool `json:"success"`
}

// SearchResultItem is one knowledge hit.
type SearchResultItem struct {
	DocType string  `json:"doctype"`
	Name    string  `json:"name"`
	Module  string  `json:"module,omitempty"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// SearchResponse lists knowledge hits, best first.
type SearchResponse struct {
	Results []SearchResultItem `json:"results"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func fieldToResponse(f doctype.Field) FieldResponse {
	return FieldResponse{
		Fieldname:   f.Fieldname(),
		Label:       f.Label(),
		Fieldtype:   string(f.Fieldtype()),
		Options:     f.Options(),
		Description: f.Description(),
		Reqd:        flag(f.Reqd()),
		InListView:  flag(f.InListView()),
		Hidden:      flag(f.Hidden()),
		ReadOnly:    flag(f.ReadOnly()),
	}
}

func moduleToResponse(m doctype.Module) ModuleResponse {
	names := m.DocTypeNames
	if names == nil {
		names = []string{}
	}
	return ModuleResponse{ModuleName: m.Name, DocTypeNames: names}
}

func hitToResponse(h domknow.Hit) SearchResultItem {
	return SearchResultItem{
		DocType: h.DocType,
		Name:    h.Name,
		Module:  h.Module,
		Content: h.Content,
		Score:   h.Score,
	}
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
