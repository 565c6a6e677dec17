package web

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/senioritydiff/internal/config"
	"github.com/JonMunkholm/senioritydiff/internal/core"
	_ "github.com/JonMunkholm/senioritydiff/internal/core/sources"
	"github.com/JonMunkholm/senioritydiff/internal/history"
	"github.com/JonMunkholm/senioritydiff/internal/report"
	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	oldRoster = "Função;Nome;RE;Senioridade\n" +
		"Piloto;João Silva;012345;1\n" +
		"Copiloto;Ana Souza;23456;2\n" +
		"Copiloto;Rui Lima;34567;3\n"
	newRoster = "FUNCAO;NOME;RE;SENIORIDADE\n" +
		"PILOTO;JOÃO SILVA;012345;1\n" +
		"PILOTO;ANA SOUZA;23456;2\n" +
		"COPILOTO;BIA COSTA;45678;3\n"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, RequestTimeout: 10 * time.Second},
		Compare:  config.CompareConfig{MaxFileSize: 1 << 20, MaxConcurrent: 2, MaxWaitTime: time.Second, Timeout: 10 * time.Second},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *history.Memory) {
	t.Helper()
	store := history.NewMemory(10)
	svc := core.NewService(core.ServiceConfig{
		MaxFileSize:   cfg.Compare.MaxFileSize,
		MaxConcurrent: cfg.Compare.MaxConcurrent,
		MaxWait:       cfg.Compare.MaxWaitTime,
		Timeout:       cfg.Compare.Timeout,
	}, store, nil)
	s := NewServer(svc, store, cfg, nil)
	t.Cleanup(func() { _ = s.Shutdown(t.Context()) })
	return s, store
}

// upload builds a multipart request with the given files and plain fields.
func upload(t *testing.T, target string, files map[string]string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, content := range files {
		fw, err := mw.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Comparisons.MaxConcurrent)
	assert.Equal(t, 0, resp.Comparisons.Active)
	assert.GreaterOrEqual(t, resp.Sources, 2)
}

func TestSecurityHeaders(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")
}

func TestIndexPage(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)

	compare := doc.Find("form#compare")
	assert.Equal(t, "/api/compare", compare.AttrOr("action", ""))
	assert.Equal(t, 2, compare.Find(`input[type="file"]`).Length())
	assert.Equal(t, 3, compare.Find("select[name=format] option").Length())

	lookup := doc.Find("form#lookup")
	assert.Equal(t, "/api/lookup", lookup.AttrOr("action", ""))
	assert.Equal(t, 1, lookup.Find("input[name=re]").Length())

	assert.Equal(t, 1, doc.Find(`li[data-source="pdf"]`).Length())
	assert.Equal(t, 1, doc.Find(`li[data-source="csv"]`).Length())
	assert.Contains(t, compare.Find(`input[name="old"]`).AttrOr("accept", ""), ".pdf")
}

func TestSources(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/sources", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var infos []core.SourceInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	var keys []string
	for _, info := range infos {
		keys = append(keys, info.Key)
	}
	assert.Contains(t, keys, "pdf")
	assert.Contains(t, keys, "csv")
}

func TestExtract(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := serve(s, upload(t, "/api/extract", map[string]string{"file": oldRoster}, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Name    string        `json:"name"`
		Source  string        `json:"source"`
		Records []core.Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "file.csv", resp.Name)
	assert.Equal(t, "csv", resp.Source)
	assert.Len(t, resp.Records, 3)
}

func TestCompare_JSON(t *testing.T) {
	s, store := newTestServer(t, testConfig())

	req := upload(t, "/api/compare", map[string]string{"old": oldRoster, "new": newRoster}, nil)
	req.Header.Set("User-Agent", "roster-test")
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Comparison-ID"))

	var cmp core.Comparison
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cmp))
	require.NotNil(t, cmp.Report)
	assert.Equal(t, rec.Header().Get("X-Comparison-ID"), cmp.ID)
	assert.Equal(t, 1, cmp.Report.TotalEntries)
	assert.Equal(t, 1, cmp.Report.TotalExits)
	assert.Equal(t, 1, cmp.Report.TotalChanged)

	require.Equal(t, 1, store.Len())
	runs, err := store.Recent(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, cmp.ID, runs[0].ID)
	assert.Equal(t, "roster-test", runs[0].UserAgent)
	assert.NotEmpty(t, runs[0].ClientIP)
}

func TestCompare_CSV(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := serve(s, upload(t, "/api/compare?format=csv", map[string]string{"old": oldRoster, "new": newRoster}, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Regexp(t, `attachment; filename="relatorio_\d{8}_\d{6}\.csv"`, rec.Header().Get("Content-Disposition"))

	body := strings.TrimPrefix(rec.Body.String(), "\ufeff")
	rows, err := csv.NewReader(strings.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, report.CSVHeader, rows[0])
}

func TestCompare_HTMLFromFormField(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := serve(s, upload(t, "/api/compare",
		map[string]string{"old": oldRoster, "new": newRoster},
		map[string]string{"format": "html"},
	))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "3", doc.Find("#total-changes").Text())
	assert.Equal(t, 3, doc.Find("table.changes tbody tr").Length())
}

func TestCompare_Errors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		files      map[string]string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unsupported format",
			target:     "/api/compare?format=xml",
			files:      map[string]string{"old": oldRoster, "new": newRoster},
			wantStatus: http.StatusBadRequest,
			wantCode:   "REQ002",
		},
		{
			name:       "missing new file",
			target:     "/api/compare",
			files:      map[string]string{"old": oldRoster},
			wantStatus: http.StatusBadRequest,
			wantCode:   "FILE003",
		},
		{
			name:       "empty file",
			target:     "/api/compare",
			files:      map[string]string{"old": oldRoster, "new": ""},
			wantStatus: http.StatusBadRequest,
			wantCode:   "FILE004",
		},
		{
			name:       "header only",
			target:     "/api/compare",
			files:      map[string]string{"old": oldRoster, "new": "RE;Nome\n"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "EXT004",
		},
		{
			name:       "no identifier column",
			target:     "/api/compare",
			files:      map[string]string{"old": oldRoster, "new": "Nome;Base\nAna;GRU\n"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "COL001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store := newTestServer(t, testConfig())

			rec := serve(s, upload(t, tt.target, tt.files, nil))
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestCompare_NotMultipart(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/compare", strings.NewReader("old=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(s, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE003", decodeError(t, rec).Code)
}

func TestCompare_TooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Compare.MaxFileSize = 16
	s, _ := newTestServer(t, cfg)

	big := strings.Repeat("Piloto;João Silva;012345;1\n", 1<<16)
	rec := serve(s, upload(t, "/api/compare", map[string]string{"old": big, "new": newRoster}, nil))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "FILE001", decodeError(t, rec).Code)
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name       string
		re         string
		wantStatus core.LookupStatus
	}{
		{name: "changed", re: "RE 23456", wantStatus: core.LookupChanged},
		{name: "new entry", re: "45678", wantStatus: core.LookupNewEntry},
		{name: "exit", re: "34567", wantStatus: core.LookupExit},
		{name: "leading zero kept", re: "012345", wantStatus: core.LookupChanged},
		{name: "unknown", re: "99999", wantStatus: core.LookupNotFound},
	}

	s, _ := newTestServer(t, testConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, upload(t, "/api/lookup",
				map[string]string{"old": oldRoster, "new": newRoster},
				map[string]string{"re": tt.re},
			))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var res core.LookupResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.Equal(t, tt.wantStatus, res.Status)
		})
	}
}

func TestLookup_MissingIdentifier(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := serve(s, upload(t, "/api/lookup", map[string]string{"old": oldRoster, "new": newRoster}, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "REQ001", decodeError(t, rec).Code)
}

func TestHistory(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	for range 3 {
		rec := serve(s, upload(t, "/api/compare", map[string]string{"old": oldRoster, "new": newRoster}, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/history?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var runs []core.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, "old.csv", runs[0].OldName)
	assert.Equal(t, "new.csv", runs[0].NewName)
	assert.False(t, runs[0].StartedAt.Before(runs[1].StartedAt))
}

func TestHistory_NoStore(t *testing.T) {
	cfg := testConfig()
	s := NewServer(core.NewService(core.ServiceConfig{}, nil, nil), nil, cfg, nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 100, CompareLimit: 1}
	s, _ := newTestServer(t, cfg)

	first := serve(s, upload(t, "/api/compare", map[string]string{"old": oldRoster, "new": newRoster}, nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := serve(s, upload(t, "/api/compare", map[string]string{"old": oldRoster, "new": newRoster}, nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
	assert.Equal(t, "RATE001", decodeError(t, second).Code)

	// Read-only endpoints only count against the global limit.
	health := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestRateLimiter_WindowReset(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	rl := s.newRateLimiter(2, time.Minute)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"))

	now = now.Add(time.Minute + time.Second)
	assert.True(t, rl.allow("10.0.0.1"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"busy", core.ErrTooManyComparisons, http.StatusServiceUnavailable},
		{"extraction", &core.ExtractionError{Reason: core.ReasonNoTable}, http.StatusUnprocessableEntity},
		{"validation", &core.ValidationError{Side: "old", Message: "empty"}, http.StatusUnprocessableEntity},
		{"user facing", core.ErrIdentifierRequired, http.StatusBadRequest},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
