package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xdev-exe/cortyx/internal/domain"
	domknow "github.com/xdev-exe/cortyx/internal/domain/knowledge"
	healthuc "github.com/xdev-exe/cortyx/internal/usecase/health"
)

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestListModules(t *testing.T) {
	ts := newTestServer(t, false)

	rr := ts.do(t, http.MethodGet, "/api/modules", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	got := decode[[]ModuleResponse](t, rr)
	assert.Equal(t, []ModuleResponse{{ModuleName: "Selling", DocTypeNames: []string{"Customer"}}}, got)
}

func TestListModules_Empty(t *testing.T) {
	ts := newTestServer(t, false)
	ts.schema.modules = nil

	rr := ts.do(t, http.MethodGet, "/api/modules", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGetDocTypeSchema(t *testing.T) {
	ts := newTestServer(t, false)

	rr := ts.do(t, http.MethodGet, "/api/doctypes/Customer", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{
		"fieldname": "customer_name",
		"label": "Customer Name",
		"fieldtype": "Data",
		"reqd": 1,
		"in_list_view": 0,
		"hidden": 0,
		"read_only": 0
	}]`, rr.Body.String())
}

func TestGetDocTypeSchema_NoFieldsIsEmptyArray(t *testing.T) {
	ts := newTestServer(t, false)

	rr := ts.do(t, http.MethodGet, "/api/doctypes/Note", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGetDocTypeSchema_Unknown(t *testing.T) {
	ts := newTestServer(t, false)

	rr := ts.do(t, http.MethodGet, "/api/doctypes/Nope", "")

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, ErrorCodeDocTypeNotFound, decode[ErrorResponse](t, rr).Code)
}

func TestListDocuments_DefaultsAndQuery(t *testing.T) {
	ts := newTestServer(t, false)
	ts.docs.put("Customer", "CUS-001", map[string]any{"customer_name": "Acme"})

	rr := ts.do(t, http.MethodGet, "/api/docs/Customer", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, ts.docs.lastPage)
	assert.Equal(t, 20, ts.docs.lastPageSize)

	got := decode[DocumentListResponse](t, rr)
	assert.Equal(t, int64(1), got.Total)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "CUS-001", got.Data[0]["name"])

	rr = ts.do(t, http.MethodGet, "/api/docs/Customer?page=3&pageSize=5", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 3, ts.docs.lastPage)
	assert.Equal(t, 5, ts.docs.lastPageSize)
}

func TestListDocuments_EmptyDataIsArray(t *testing.T) {
	ts := newTestServer(t, false)

	rr := ts.do(t, http.MethodGet, "/api/docs/Lead", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"data":[]`)
}

func TestListDocuments_NonNumericPage(t *testing.T) {
	ts := newTestServer(t, false)

	rr := ts.do(t, http.MethodGet, "/api/docs/Customer?page=abc", "")

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, ErrorCodeInvalidPagination, decode[ErrorResponse](t, rr).Code)
}

func TestListDocuments_InvalidPaginationFromService(t *testing.T) {
	ts := newTestServer(t, false)

	rr := ts.do(t, http.MethodGet, "/api/docs/Customer?page=0", "")

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, ErrorCodeInvalidPagination, decode[ErrorResponse](t, rr).Code)
}

func TestGetDocument(t *testing.T) {
	ts := newTestServer(t, false)
	ts.docs.put("Customer", "CUS-001", map[string]any{"customer_name": "Acme"})

	rr := ts.do(t, http.MethodGet, "/api/docs/Customer/CUS-001", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"name":"CUS-001","customer_name":"Acme"}`, rr.Body.String())

	rr = ts.do(t, http.MethodGet, "/api/docs/Customer/CUS-404", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, ErrorCodeDocumentNotFound, decode[ErrorResponse](t, rr).Code)
}

func TestDocumentRoutes_PercentEncodedDocType(t *testing.T) {
	ts := newTestServer(t, false)
	ts.docs.put("Sales Invoice", "SAL-001", nil)

	rr := ts.do(t, http.MethodGet, "/api/docs/Sales%20Invoice/SAL-001", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "SAL-001", decode[map[string]any](t, rr)["name"])
}

func TestDocumentRoutes_EncodedSlashInID(t *testing.T) {
	ts := newTestServer(t, false)
	ts.docs.put("Item", "A/B", nil)

	rr := ts.do(t, http.MethodGet, "/api/docs/Item/A%2FB", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "A/B", decode[map[string]any](t, rr)["name"])
}

func TestCreateDocument(t *testing.T) {
	ts := newTestServer(t, false)

	rr := ts.do(t, http.MethodPost, "/api/docs/Sales%20Invoice", `{"name":"SAL-009","grand_total":12}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "/api/docs/Sales%20Invoice/SAL-009", rr.Header().Get("Location"))
	got := decode[map[string]any](t, rr)
	assert.Equal(t, "SAL-009", got["name"])
	assert.InDelta(t, 12, got["grand_total"], 0)
}

func TestCreateDocument_Duplicate(t *testing.T) {
	ts := newTestServer(t, false)
	ts.docs.put("Customer", "CUS-001", nil)

	rr := ts.do(t, http.MethodPost, "/api/docs/Customer", `{"name":"CUS-001"}`)

	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, ErrorCodeAlreadyExists, decode[ErrorResponse](t, rr).Code)
}

func TestCreateDocument_BadBody(t *testing.T) {
	ts := newTestServer(t, false)

	for name, body := range map[string]string{
		"not json": `{oops`,
		"array":    `[1,2]`,
	} {
		t.Run(name, func(t *testing.T) {
			rr := ts.do(t, http.MethodPost, "/api/docs/Customer", body)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, ErrorCodeBadRequest, decode[ErrorResponse](t, rr).Code)
		})
	}

	rr := ts.do(t, http.MethodPost, "/api/docs/Customer", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "request body must be a JSON object", decode[ErrorResponse](t, rr).Message)
}

func TestCreateDocument_InvalidDocumentMessage(t *testing.T) {
	ts := newTestServer(t, false)
	ts.docs.err = errors.Join(domain.ErrInvalidDocument, errors.New(`property "items" must be a scalar`))

	rr := ts.do(t, http.MethodPost, "/api/docs/Customer", `{"items":[{"a":1}]}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decode[ErrorResponse](t, rr)
	assert.Equal(t, ErrorCodeInvalidDocument, resp.Code)
	assert.Contains(t, resp.Message, `"items"`)
}

func TestUpdateDocument(t *testing.T) {
	ts := newTestServer(t, false)
	ts.docs.put("Customer", "CUS-001", map[string]any{"customer_name": "Acme", "territory": "EU"})

	rr := ts.do(t, http.MethodPut, "/api/docs/Customer/CUS-001", `{"customer_name":"Acme Ltd"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[map[string]any](t, rr)
	assert.Equal(t, "Acme Ltd", got["customer_name"])
	assert.Equal(t, "EU", got["territory"])
}

func TestUpdateDocument_KeepsIntegers(t *testing.T) {
	ts := newTestServer(t, false)
	ts.docs.put("Item", "ITE-001", nil)

	rr := ts.do(t, http.MethodPut, "/api/docs/Item/ITE-001", `{"qty":9007199254740993}`)

	require.Equal(t, http.StatusOK, rr.Code)
	num, ok := ts.docs.lastPatch["qty"].(json.Number)
	require.True(t, ok)
	assert.Equal(t, "9007199254740993", num.String())
}

func TestUpdateDocument_NotFound(t *testing.T) {
	ts := newTestServer(t, false)

	rr := ts.do(t, http.MethodPut, "/api/docs/Customer/CUS-404", `{"customer_name":"x"}`)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, ErrorCodeDocumentNotFound, decode[ErrorResponse](t, rr).Code)
}

func TestDeleteDocument(t *testing.T) {
	ts := newTestServer(t, false)
	ts.docs.put("Customer", "CUS-001", nil)

	rr := ts.do(t, http.MethodDelete, "/api/docs/Customer/CUS-001", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	rr = ts.do(t, http.MethodDelete, "/api/docs/Customer/CUS-001", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, ErrorCodeDocumentNotFound, decode[ErrorResponse](t, rr).Code)
}

func TestInternalErrorDoesNotLeak(t *testing.T) {
	ts := newTestServer(t, false)
	ts.docs.err = errors.New("bolt://neo4j:secret@db: connection refused")

	rr := ts.do(t, http.MethodGet, "/api/docs/Customer/CUS-001", "")

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	resp := decode[ErrorResponse](t, rr)
	assert.Equal(t, ErrorCodeInternalError, resp.Code)
	assert.Equal(t, "internal error", resp.Message)
	assert.NotContains(t, rr.Body.String(), "secret")
}

func TestSearchKnowledge_Disabled(t *testing.T) {
	ts := newTestServer(t, false)

	rr := ts.do(t, http.MethodGet, "/api/search?q=acme", "")

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, ErrorCodeSearchUnavailable, decode[ErrorResponse](t, rr).Code)
}

func TestSearchKnowledge(t *testing.T) {
	ts := newTestServer(t, true)
	ts.search.hits = []domknow.Hit{{
		DocType: "Customer", Name: "CUS-001", Module: "Selling", Content: "Customer CUS-001", Score: 0.91,
	}}

	rr := ts.do(t, http.MethodGet, "/api/search?q=acme&module=Selling&limit=3", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domknow.Query{Text: "acme", Module: "Selling", Limit: 3}, ts.search.query)
	got := decode[SearchResponse](t, rr)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "CUS-001", got.Results[0].Name)
}

func TestSearchKnowledge_BadRequests(t *testing.T) {
	ts := newTestServer(t, true)

	rr := ts.do(t, http.MethodGet, "/api/search?q=acme&limit=many", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, ErrorCodeInvalidQuery, decode[ErrorResponse](t, rr).Code)

	ts.search.err = errors.Join(domain.ErrInvalidQuery, errors.New("query text is required"))
	rr = ts.do(t, http.MethodGet, "/api/search", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[ErrorResponse](t, rr).Message, "query text is required")
}

func TestSearchKnowledge_ProviderError(t *testing.T) {
	ts := newTestServer(t, true)
	ts.search.err = domain.ErrEmbeddingProviderError

	rr := ts.do(t, http.MethodGet, "/api/search?q=acme", "")

	require.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, ErrorCodeEmbeddingProviderError, decode[ErrorResponse](t, rr).Code)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, false)

	rr := ts.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"graph":"ok"}}`, rr.Body.String())

	ts.health.report = healthuc.Report{
		Status: healthuc.Unhealthy,
		Checks: map[string]healthuc.CheckResult{healthuc.ComponentGraph: healthuc.CheckError},
	}
	rr = ts.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "error", decode[HealthResponse](t, rr).Status)
}

func TestRouter_RequestIDAndUnknownRoute(t *testing.T) {
	ts := newTestServer(t, false)

	rr := ts.do(t, http.MethodGet, "/api/nothing", "")

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, ErrorCodeNotFound, decode[ErrorResponse](t, rr).Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, false)
	ts.do(t, http.MethodGet, "/api/modules", "")

	rr := ts.do(t, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "cortyx_http_requests_total"))
}

func TestJSONRecoverer(t *testing.T) {
	h := JSONRecoverer(zapNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/modules", http.NoBody))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, ErrorCodeInternalError, decode[ErrorResponse](t, rr).Code)
}
