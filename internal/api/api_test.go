package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcollos/dashboard-rn518/internal/consolidate"
	"github.com/vcollos/dashboard-rn518/internal/datasource"
	"github.com/vcollos/dashboard-rn518/internal/indicators"
	"github.com/vcollos/dashboard-rn518/internal/logging"
	"github.com/vcollos/dashboard-rn518/internal/model"
)

var (
	q3 = model.Period{Year: 2024, Quarter: 3}
	q4 = model.Period{Year: 2024, Quarter: 4}
)

func entry(op string, p model.Period, desc string, v int64) model.LedgerEntry {
	return model.LedgerEntry{OperatorID: op, Period: p, Description: desc, ClosingBalance: decimal.NewFromInt(v)}
}

func testServer(t *testing.T) (http.Handler, *bytes.Buffer) {
	t.Helper()
	entries := []model.LedgerEntry{
		entry("A001", q3, "receita de contraprestações", 1_000_000),
		entry("A001", q3, "eventos indenizáveis líquidos", 700_000),
		entry("A001", q4, "receita de contraprestações", 1_000_000),
		entry("A001", q4, "eventos indenizáveis líquidos", 680_000),
		entry("A001", q4, "despesas administrativas", 150_000),
		entry("B002", q4, "receita de contraprestações", 500_000),
		entry("B002", q4, "eventos indenizáveis líquidos", 400_000),
		entry("C003", q4, "despesas com marketing", 500),
	}
	ops := []model.Operator{
		{ID: "A001", LegalName: "Alfa Saúde", TradeName: "Alfa", Municipality: "Curitiba", State: "PR"},
		{ID: "B002", LegalName: "Beta Planos", Municipality: "N/A", State: "BR"},
		{ID: "C003", LegalName: "Gama"},
	}
	svc := indicators.NewService(datasource.NewMemory(entries, ops), indicators.Options{
		HistoryPeriods: []model.Period{q4, q3},
	})

	var logs bytes.Buffer
	logger := logging.NewStructuredLogger(&logs, slog.LevelInfo, "json")
	return New(svc, Options{Logger: logger}).Handler(), &logs
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealthz(t *testing.T) {
	h, logs := testServer(t)
	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, logs.String(), `"msg":"http_request"`)
	assert.Contains(t, logs.String(), `"path":"/healthz"`)
}

func TestOperators(t *testing.T) {
	h, _ := testServer(t)
	rec := get(t, h, "/api/v1/operators")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []operatorView
	decode(t, rec, &body)
	require.Len(t, body, 3)
	assert.Equal(t, "Alfa", body[0].Name)
	assert.Equal(t, "Beta Planos", body[1].Name)
}

func TestMetadata(t *testing.T) {
	h, _ := testServer(t)
	rec := get(t, h, "/api/v1/metadata")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, "2024Q4", body["latest_period"])
}

func TestClassify(t *testing.T) {
	h, _ := testServer(t)
	rec := get(t, h, "/api/v1/classify?description=Eventos+a+Pagar")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "CURRENT_LIABILITIES", body["category"])
	assert.Equal(t, "eventos a pagar", body["normalized"])

	rec = get(t, h, "/api/v1/classify")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIndicators(t *testing.T) {
	h, _ := testServer(t)
	rec := get(t, h, "/api/v1/indicators/A001/2024Q4")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		OperatorID string                   `json:"operator_id"`
		Period     string                   `json:"period"`
		DM         float64                  `json:"dm"`
		DOP        float64                  `json:"dop"`
		Targets    []consolidate.Assessment `json:"targets"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "A001", body.OperatorID)
	assert.Equal(t, "2024Q4", body.Period)
	assert.InDelta(t, 68.0, body.DM, 1e-9)
	assert.InDelta(t, 83.0, body.DOP, 1e-9)
	assert.Len(t, body.Targets, 10)
}

func TestIndicators_NoData(t *testing.T) {
	h, _ := testServer(t)
	rec := get(t, h, "/api/v1/indicators/C003/4T2024")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "no data", body.Text)
}

func TestIndicators_BadPeriod(t *testing.T) {
	h, _ := testServer(t)
	rec := get(t, h, "/api/v1/indicators/A001/4T24")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPeriod(t *testing.T) {
	h, _ := testServer(t)
	rec := get(t, h, "/api/v1/periods/2024Q4")
	require.Equal(t, http.StatusOK, rec.Code)

	var body periodView
	decode(t, rec, &body)
	assert.Equal(t, 2, body.Included)
	assert.Equal(t, 1, body.Excluded)
	require.Len(t, body.Records, 2)
	assert.Equal(t, "A001", body.Records[0].OperatorID)
	assert.Equal(t, "B002", body.Records[1].OperatorID)

	rec = get(t, h, "/api/v1/periods/2019Q1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"records":[]`)
}

func TestAverage(t *testing.T) {
	h, _ := testServer(t)
	rec := get(t, h, "/api/v1/periods/2024Q4/average")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		DM        float64 `json:"dm"`
		Operators int     `json:"operators"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 2, body.Operators)
	assert.Equal(t, 74.0, body.DM)

	rec = get(t, h, "/api/v1/periods/2019Q1/average")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRanking(t *testing.T) {
	h, _ := testServer(t)
	rec := get(t, h, "/api/v1/periods/2024Q4/ranking/DM")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []consolidate.Ranked
	decode(t, rec, &body)
	require.Len(t, body, 2)
	assert.Equal(t, "A001", body[0].OperatorID)
	assert.Equal(t, 1, body[0].Position)

	rec = get(t, h, "/api/v1/periods/2024Q4/ranking/ebitda")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistory(t *testing.T) {
	h, _ := testServer(t)
	rec := get(t, h, "/api/v1/history/A001")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Records []model.IndicatorRecord `json:"records"`
		Trends  []consolidate.Trend     `json:"trends"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Records, 2)
	assert.Equal(t, 3, body.Records[0].Quarter)
	assert.Equal(t, 4, body.Records[1].Quarter)
	require.NotEmpty(t, body.Trends)
	assert.Equal(t, "2024Q4", body.Trends[0].Period)

	rec = get(t, h, "/api/v1/history/Z999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotFound(t *testing.T) {
	h, _ := testServer(t)
	rec := get(t, h, "/api/v2/anything")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type failingPeriods struct{}

func (failingPeriods) Period(context.Context, model.Period) (indicators.PeriodResult, error) {
	return indicators.PeriodResult{}, errors.New("listing active operators: connection refused")
}

func TestPeriod_ServerError(t *testing.T) {
	svc := indicators.NewService(datasource.NewMemory(nil, nil), indicators.Options{})
	var logs bytes.Buffer
	h := New(svc, Options{Periods: failingPeriods{}, Logger: logging.NewStructuredLogger(&logs, slog.LevelInfo, "json")}).Handler()

	rec := get(t, h, "/api/v1/periods/2024Q4")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "connection refused")
	assert.Contains(t, logs.String(), `"status":500`)
}
