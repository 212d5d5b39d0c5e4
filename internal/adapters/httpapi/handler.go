// Package httpapi provides HTTP access to the sample service: uploads,
// sequence derivation, comparison, listing, and the question endpoint.
package httpapi

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"ancientdna/internal/blob"
	"ancientdna/internal/core"
	"ancientdna/pkg/domain"
)

// maxUploadBytes caps multipart memory buffering for CSV uploads.
const maxUploadBytes = 10 << 20

// Handler routes the sample API. Construct with NewHandler.
type Handler struct {
	service *core.Service
	archive blob.Store
	logger  core.Logger
}

// Option adjusts handler construction.
type Option func(*Handler)

// WithArchive stores each accepted CSV payload in the blob store.
func WithArchive(store blob.Store) Option {
	return func(h *Handler) { h.archive = store }
}

// WithLogger routes handler logging to the supplied logger.
func WithLogger(l core.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// NewHandler constructs the sample API handler.
func NewHandler(service *core.Service, opts ...Option) *Handler {
	h := &Handler{service: service, logger: nopLogger{}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type nopLogger struct{}

func (nopLogger) Debug(any, ...any) {}
func (nopLogger) Info(any, ...any)  {}
func (nopLogger) Warn(any, ...any)  {}
func (nopLogger) Error(any, ...any) {}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	if path == "" {
		path = "/"
	}
	switch path {
	case "/":
		h.require(w, r, http.MethodGet, h.handleRoot)
	case "/upload-csv":
		h.require(w, r, http.MethodPost, h.handleUploadCSV)
	case "/upload-json":
		h.require(w, r, http.MethodPost, h.handleUploadJSON)
	case "/add-sample":
		h.require(w, r, http.MethodPost, h.handleAddSample)
	case "/generate-sequence":
		h.require(w, r, http.MethodGet, h.handleGenerateSequence)
	case "/compare-sequences":
		h.require(w, r, http.MethodGet, h.handleCompareSequences)
	case "/list-samples":
		h.require(w, r, http.MethodGet, h.handleListSamples)
	case "/ask-me-anything":
		h.require(w, r, http.MethodPost, h.handleAsk)
	case "/healthz":
		h.require(w, r, http.MethodGet, h.handleHealth)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) require(w http.ResponseWriter, r *http.Request, method string, next func(http.ResponseWriter, *http.Request)) {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	next(w, r)
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"message": "Welcome to the Ancient DNA API"})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) handleUploadCSV(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer func() { _ = file.Close() }()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, "Invalid file type. Please upload a CSV file.")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to process CSV: %v", err))
		return
	}

	samples, err := h.parseCSV(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to process CSV: %v", err))
		return
	}

	n, err := h.service.AddSamples(r.Context(), samples)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to process CSV: %v", err))
		return
	}
	h.logger.Info("csv upload stored", "file", header.Filename, "records", n)

	h.archiveUpload(r, header.Filename, payload)

	writeJSON(w, http.StatusOK, map[string]any{"message": fmt.Sprintf("%d records successfully uploaded.", n)})
}

// parseCSV reads rows under a required id,region,age,seed header. Malformed
// rows are skipped and logged; an unparseable age falls back to 0.
func (h *Handler) parseCSV(payload []byte) ([]domain.Sample, error) {
	reader := csv.NewReader(bytes.NewReader(payload))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("missing header row")
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"id", "region", "age", "seed"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var samples []domain.Sample
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			h.logger.Warn("skipping malformed csv row", "line", line, "err", err)
			continue
		}
		field := func(name string) string {
			i := columns[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		id := field("id")
		if id == "" {
			h.logger.Warn("skipping csv row without id", "line", line)
			continue
		}
		age, err := strconv.Atoi(field("age"))
		if err != nil {
			age = 0
		}
		samples = append(samples, domain.Sample{
			ID:     id,
			Region: field("region"),
			Age:    age,
			Seed:   field("seed"),
		})
	}
	return samples, nil
}

// archiveUpload keeps the raw accepted payload for audit. Failures are
// logged, never surfaced: the store write already succeeded.
func (h *Handler) archiveUpload(r *http.Request, filename string, payload []byte) {
	if h.archive == nil {
		return
	}
	key := fmt.Sprintf("uploads/%s-%s.csv", time.Now().UTC().Format("20060102T150405"), uuid.NewString())
	_, err := h.archive.Put(r.Context(), key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "text/csv",
		Metadata:    map[string]string{"filename": filename},
	})
	if err != nil {
		h.logger.Warn("archive upload failed", "key", key, "err", err)
		return
	}
	h.logger.Debug("archived upload", "key", key, "bytes", len(payload))
}

func (h *Handler) handleUploadJSON(w http.ResponseWriter, r *http.Request) {
	var samples []domain.Sample
	if err := json.NewDecoder(r.Body).Decode(&samples); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	n, err := h.service.AddSamples(r.Context(), samples)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": fmt.Sprintf("%d records successfully uploaded.", n)})
}

func (h *Handler) handleAddSample(w http.ResponseWriter, r *http.Request) {
	var sample domain.Sample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := h.service.AddSample(r.Context(), sample); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Sample successfully added."})
}

func (h *Handler) handleGenerateSequence(w http.ResponseWriter, r *http.Request) {
	sampleID := r.URL.Query().Get("sample_id")
	if sampleID == "" {
		writeError(w, http.StatusBadRequest, "sample_id query parameter required")
		return
	}
	seq, err := h.service.GenerateSequence(r.Context(), sampleID)
	if err != nil {
		var nf domain.ErrNotFound
		if errors.As(err, &nf) {
			writeError(w, http.StatusNotFound, "Sample ID not found.")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sample_id": sampleID, "sequence": seq})
}

func (h *Handler) handleCompareSequences(w http.ResponseWriter, r *http.Request) {
	id1 := r.URL.Query().Get("id1")
	id2 := r.URL.Query().Get("id2")
	if id1 == "" || id2 == "" {
		writeError(w, http.StatusBadRequest, "id1 and id2 query parameters required")
		return
	}
	cmp, err := h.service.CompareSequences(r.Context(), id1, id2)
	if err != nil {
		var nf domain.ErrNotFound
		if errors.As(err, &nf) {
			writeError(w, http.StatusNotFound, "One or both sample IDs not found.")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id1":                   cmp.ID1,
		"id2":                   cmp.ID2,
		"similarity_percentage": fmt.Sprintf("%.2f%%", cmp.Similarity),
	})
}

func (h *Handler) handleListSamples(w http.ResponseWriter, r *http.Request) {
	samples, err := h.service.ListSamples(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"samples": samples})
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	h.logger.Info("received question", "question", req.Question)
	answer := h.service.Ask(r.Context(), req.Question)
	writeJSON(w, http.StatusOK, map[string]any{"answer": answer})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
