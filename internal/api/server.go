package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"quizflow/internal/config"
	"quizflow/internal/document"
	"quizflow/internal/logger"
	"quizflow/internal/pipeline"
	"quizflow/internal/question"
	"quizflow/internal/storage"
	"quizflow/internal/util"
	"quizflow/internal/workflows"

	"github.com/google/uuid"
)

const (
	maxJSONBody   = 16 << 20
	maxUploadBody = 64 << 20
)

var (
	ErrRunsDisabled = errors.New("async runs are not configured")
	errTextRequired = errors.New("text is required")
)

type Extractor interface {
	ProcessTextWithStats(ctx context.Context, raw, model string) ([]question.Question, pipeline.Stats)
	ProcessBlock(ctx context.Context, block, model string) pipeline.BlockResult
}

type RunStore interface {
	CreateRun(ctx context.Context, runID, model string) error
	GetRun(ctx context.Context, runID string) (storage.RunRecord, error)
}

type WorkflowStarter interface {
	StartExtraction(ctx context.Context, in workflows.QuestionExtractionInput) (string, error)
}

type Server struct {
	cfg       config.Config
	log       *logger.Logger
	extractor Extractor
	runs      RunStore
	starter   WorkflowStarter
}

type textRequest struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

// NewServer wires the handlers. runs and starter may be nil, in which case
// the /runs endpoints answer 503.
func NewServer(cfg config.Config, log *logger.Logger, extractor Extractor, runs RunStore, starter WorkflowStarter) *Server {
	return &Server{
		cfg:       cfg,
		log:       logger.OrNop(log),
		extractor: extractor,
		runs:      runs,
		starter:   starter,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/questions/extract", s.handleExtract)
	mux.HandleFunc("/questions/block", s.handleBlock)
	mux.HandleFunc("/questions/upload", s.handleUpload)
	mux.HandleFunc("/runs", s.handleRuns)
	mux.HandleFunc("/runs/", s.handleRunScoped)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s", r.Method))
		return
	}
	req, err := decodeTextRequest(w, r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	questions, stats := s.extractor.ProcessTextWithStats(r.Context(), req.Text, req.Model)
	s.log.Info("questions extracted", "strategy", stats.Strategy, "questions", stats.Questions, "duration_ms", stats.DurationMS)
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions, "stats": stats})
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s", r.Method))
		return
	}
	req, err := decodeTextRequest(w, r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	res := s.extractor.ProcessBlock(r.Context(), req.Text, req.Model)
	if q, ok := res.Single(); ok {
		writeJSON(w, http.StatusOK, map[string]any{"question": q})
		return
	}
	if res.Empty() {
		writeJSON(w, http.StatusOK, map[string]any{"question": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": res.All()})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s", r.Method))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}
	fh, ok := uploadedFile(r.MultipartForm)
	if !ok {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no files provided"))
		return
	}
	data, err := readUpload(fh)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	doc, err := document.Decode(filepath.Base(fh.Filename), data)
	if err != nil {
		if errors.Is(err, util.ErrNoExtractableText) || errors.Is(err, document.ErrUnsupportedFormat) {
			writeErr(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	model := r.FormValue("model")
	questions, stats := s.extractor.ProcessTextWithStats(r.Context(), doc.Text, model)
	s.log.Info("upload extracted", "filename", doc.Name, "document_id", doc.SHA256, "strategy", stats.Strategy, "questions", stats.Questions)
	writeJSON(w, http.StatusOK, map[string]any{
		"document_id": doc.SHA256,
		"questions":   questions,
		"stats":       stats,
	})
}

// handleRuns starts an asynchronous extraction from JSON text or an uploaded
// file. Uploaded files are stored under DATA_IN/runs/<id>/ for the worker.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s", r.Method))
		return
	}
	if s.runs == nil || s.starter == nil {
		writeErr(w, http.StatusServiceUnavailable, ErrRunsDisabled)
		return
	}
	runID := uuid.NewString()
	in := workflows.QuestionExtractionInput{RunID: runID}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
			return
		}
		fh, ok := uploadedFile(r.MultipartForm)
		if !ok {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("no files provided"))
			return
		}
		path, err := saveUploadedFile(filepath.Join(s.cfg.DataInRoot, "runs", runID), fh)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		in.DocumentPath = path
		in.Model = r.FormValue("model")
	} else {
		req, err := decodeTextRequest(w, r)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			writeErr(w, http.StatusBadRequest, errTextRequired)
			return
		}
		in.Text = req.Text
		in.Model = req.Model
	}

	if err := s.runs.CreateRun(r.Context(), runID, in.Model); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	workflowID, err := s.starter.StartExtraction(r.Context(), in)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	s.log.Info("extraction run started", "run_id", runID, "workflow_id", workflowID)
	writeJSON(w, http.StatusAccepted, map[string]any{"run_id": runID, "workflow_id": workflowID})
}

func (s *Server) handleRunScoped(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s", r.Method))
		return
	}
	if s.runs == nil {
		writeErr(w, http.StatusServiceUnavailable, ErrRunsDisabled)
		return
	}
	runID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/runs/"), "/")
	if runID == "" || strings.Contains(runID, "/") {
		writeErr(w, http.StatusNotFound, fmt.Errorf("unknown path %s", r.URL.Path))
		return
	}
	run, err := s.runs.GetRun(r.Context(), runID)
	if errors.Is(err, storage.ErrRunNotFound) {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func decodeTextRequest(w http.ResponseWriter, r *http.Request) (textRequest, error) {
	var req textRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("invalid json: %w", err)
	}
	return req, nil
}

func uploadedFile(form *multipart.Form) (*multipart.FileHeader, bool) {
	if form == nil {
		return nil, false
	}
	if files := form.File["file"]; len(files) > 0 {
		return files[0], true
	}
	for _, v := range form.File {
		if len(v) > 0 {
			return v[0], true
		}
	}
	return nil, false
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

func saveUploadedFile(dstDir string, fh *multipart.FileHeader) (string, error) {
	if err := util.EnsureDir(dstDir); err != nil {
		return "", err
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dstDir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	moved := false
	defer func() {
		_ = tmp.Close()
		if !moved {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err := io.Copy(tmp, src); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	finalPath := util.SafeJoin(dstDir, fh.Filename)
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return "", fmt.Errorf("atomic move upload: %w", err)
	}
	moved = true
	return finalPath, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "QF-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status == http.StatusServiceUnavailable:
		return apiError{
			Code:    "QF-API-5030",
			Message: "Async runs need Postgres and Temporal. Check the api configuration.",
		}
	case status >= 500:
		switch {
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{
				Code:    "QF-DB-5001",
				Message: "Database schema is not initialized. Start the worker once and retry.",
			}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "QF-DB-5002",
				Message: "Database connection is unavailable. Check local services and retry.",
			}
		default:
			return apiError{
				Code:    "QF-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "QF-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "QF-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusMethodNotAllowed:
		code = "QF-API-4005"
		msg = "This endpoint does not support the requested method."
	case status == http.StatusUnprocessableEntity:
		code = "QF-DOC-4220"
		msg = "The document has no extractable text."
	}

	// For 4xx, keep user-safe validation context only.
	if status >= 400 && status < 500 && err != nil {
		switch {
		case strings.Contains(raw, "text is required"):
			msg = "Either text or a file is required."
		case strings.Contains(raw, "no files provided"):
			msg = "No file was provided."
		case strings.Contains(raw, "invalid json"):
			msg = "Malformed JSON request body."
		case strings.Contains(raw, "unsupported document format"):
			msg = "Only PDF and UTF-8 text documents are supported."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
