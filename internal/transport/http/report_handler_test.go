package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/config"
	"salesdash/internal/services"
)

const fixtureCSV = `Type,Jan 24,Feb 24,TOTAL
Acme,100,200,300
Globex,50,50,100
LABOR-PF,10,10,20
TOTAL,160,260,420
`

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widgets-2024.csv"), []byte(fixtureCSV), 0644))

	cfg := config.ReportsConfig{DataDir: dir, DefaultTopN: 10, MaxTopN: 70}
	set := &config.ReportSet{
		YearOrder: []string{"2024"},
		Reports: map[string]config.ReportDef{
			"widgets": {
				Name:            "widgets",
				Title:           "Widget Sales",
				EntityLabel:     "Customer",
				MeasureLabel:    "Sales",
				Shape:           "wide",
				Files:           map[string]string{"2024": "widgets-2024.csv"},
				ExcludePrefixes: []string{"LABOR"},
			},
		},
	}
	svc := services.NewReportService(cfg, set, nil, nil)
	handler := NewReportHandler(svc, cfg, nil)

	srv := httptest.NewServer(handler.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestListReportsEndpoint(t *testing.T) {
	srv := testServer(t)

	var body struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
		Reports []struct {
			Name  string   `json:"name"`
			Years []string `json:"years"`
		} `json:"reports"`
	}
	code := getJSON(t, srv.URL+"/reports", &body)

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, body.Success)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "widgets", body.Reports[0].Name)
	assert.Equal(t, []string{"2024"}, body.Reports[0].Years)
}

func TestGetReportEndpoint(t *testing.T) {
	srv := testServer(t)

	var view struct {
		Report  string   `json:"report"`
		Year    string   `json:"year"`
		Top     []string `json:"top_entities"`
		Summary struct {
			YearTotal float64 `json:"year_total"`
		} `json:"summary"`
	}
	code := getJSON(t, srv.URL+"/reports/widgets?year=2024", &view)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "widgets", view.Report)
	assert.Equal(t, "2024", view.Year)
	assert.InDelta(t, 420, view.Summary.YearTotal, 1e-9)
	assert.Equal(t, []string{"Acme", "Globex", "LABOR-PF"}, view.Top)
}

func TestGetReportExcludeAndTopN(t *testing.T) {
	srv := testServer(t)

	var view struct {
		Top     []string `json:"top_entities"`
		Summary struct {
			YearTotal float64 `json:"year_total"`
		} `json:"summary"`
	}
	code := getJSON(t, srv.URL+"/reports/widgets?exclude=true&top_n=1", &view)

	assert.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 400, view.Summary.YearTotal, 1e-9)
	assert.Equal(t, []string{"Acme"}, view.Top)
}

func TestGetReportErrors(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantErr  string
	}{
		{"unknown report", "/reports/nope", http.StatusNotFound, "NOT_FOUND"},
		{"empty year", "/reports/widgets?year=1999", http.StatusNotFound, "NO_DATA"},
		{"bad top_n", "/reports/widgets?top_n=abc", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"top_n out of range", "/reports/widgets?top_n=500", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"bad exclude", "/reports/widgets?exclude=maybe", http.StatusBadRequest, "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				Success bool `json:"success"`
				Error   struct {
					ErrorCode string `json:"error_code"`
				} `json:"error"`
			}
			code := getJSON(t, srv.URL+tt.path, &body)
			assert.Equal(t, tt.wantCode, code)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantErr, body.Error.ErrorCode)
		})
	}
}

func TestExportCSVEndpoint(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/reports/widgets/export?format=csv")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "widgets-2024.csv")

	buf := make([]byte, 3)
	_, err = io.ReadFull(resp.Body, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, buf)
}

func TestExportXLSXEndpoint(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/reports/widgets/export?format=xlsx")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))

	// xlsx is a zip container.
	buf := make([]byte, 2)
	_, err = io.ReadFull(resp.Body, buf)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(buf))
}

func TestExportUnsupportedFormat(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/reports/widgets/export?format=pdf")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportDefaultsToCSV(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/reports/widgets/export")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv"))
}
