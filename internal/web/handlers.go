package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/senioritydiff/internal/core"
	"github.com/JonMunkholm/senioritydiff/internal/history"
	"github.com/JonMunkholm/senioritydiff/internal/logging"
	"github.com/JonMunkholm/senioritydiff/internal/report"
)

// Report formats served by /api/compare.
const (
	formatJSON = "json"
	formatCSV  = "csv"
	formatHTML = "html"
)

// formMemory is how much of a multipart form is held in memory before
// spilling to temporary files.
const formMemory = 32 << 20

var errNoFile = errors.New("no file provided")

// ExtractResponse is the body of /api/extract.
type ExtractResponse struct {
	*core.Ingestion
	Records   []core.Record `json:"records"`
	Ambiguous []string      `json:"ambiguous,omitempty"`
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status      string             `json:"status"`
	Comparisons core.LimiterStatus `json:"comparisons"`
	Sources     int                `json:"sources"`
}

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := uploadPage(s.service.Sources()).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render upload page", "error", err)
	}
}

// handleHealth reports liveness and comparison capacity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:      "ok",
		Comparisons: s.service.Limiter().Status(),
		Sources:     core.SourceCount(),
	})
}

// handleSources lists the accepted document formats.
func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.Sources())
}

// handleExtract reads one roster and returns its normalized records.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, 1); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	doc, err := readDocument(r, "file")
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	in, err := s.service.Extract(r.Context(), doc)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, r, http.StatusOK, ExtractResponse{
		Ingestion: in,
		Records:   in.Set.Records(),
		Ambiguous: in.Set.Ambiguous(),
	})
}

// handleCompare diffs two rosters and returns the report as JSON, CSV or HTML.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, 2); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	format, err := reportFormat(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	oldDoc, newDoc, err := readPair(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	cmp, err := s.service.Compare(r.Context(), oldDoc, newDoc)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("X-Comparison-ID", cmp.ID)

	switch format {
	case formatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", attachment(cmp, formatCSV))
		if err := report.WriteCSV(w, cmp.Report); err != nil {
			logging.FromContext(r.Context()).Error("write csv report", "error", err)
		}
	case formatHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := report.HTML(cmp).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render html report", "error", err)
		}
	default:
		writeJSON(w, r, http.StatusOK, cmp)
	}
}

// handleLookup reports the status of one RE across two rosters.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, 2); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	oldDoc, newDoc, err := readPair(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	res, err := s.service.Lookup(r.Context(), oldDoc, newDoc, r.FormValue("re"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, r, http.StatusOK, res)
}

// handleHistory lists recent comparison runs, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	runs := []core.RunSummary{}
	if s.history != nil {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		recent, err := s.history.Recent(r.Context(), history.ClampLimit(limit))
		if err != nil {
			respondError(w, r, err, http.StatusInternalServerError)
			return
		}
		runs = append(runs, recent...)
	}
	writeJSON(w, r, http.StatusOK, runs)
}

// parseForm bounds the request body to files documents plus form overhead
// and parses the multipart form.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request, files int64) error {
	limit := s.cfg.Compare.MaxFileSize*files + 1<<20
	if r.ContentLength > limit {
		return fmt.Errorf("file too large (limit %d bytes)", s.cfg.Compare.MaxFileSize)
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(formMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return fmt.Errorf("file too large (limit %d bytes): %w", s.cfg.Compare.MaxFileSize, err)
		}
		return fmt.Errorf("%w: %v", errNoFile, err)
	}
	return nil
}

// readDocument loads the uploaded file in form field name.
func readDocument(r *http.Request, name string) (core.Document, error) {
	file, header, err := r.FormFile(name)
	if err != nil {
		return core.Document{}, fmt.Errorf("%s: %w", name, errNoFile)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return core.Document{}, fmt.Errorf("read %s: %w", header.Filename, err)
	}
	return core.Document{Name: header.Filename, Data: data}, nil
}

func readPair(r *http.Request) (oldDoc, newDoc core.Document, err error) {
	if oldDoc, err = readDocument(r, "old"); err != nil {
		return
	}
	newDoc, err = readDocument(r, "new")
	return
}

// reportFormat reads ?format= or the form field, defaulting to JSON.
func reportFormat(r *http.Request) (string, error) {
	f := r.URL.Query().Get("format")
	if f == "" {
		f = r.FormValue("format")
	}
	switch f = strings.ToLower(strings.TrimSpace(f)); f {
	case "":
		return formatJSON, nil
	case formatJSON, formatCSV, formatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q", f)
	}
}

// attachment names a downloaded report after the comparison time.
func attachment(cmp *core.Comparison, ext string) string {
	return fmt.Sprintf(`attachment; filename="relatorio_%s.%s"`, cmp.StartedAt.Format("20060102_150405"), ext)
}
