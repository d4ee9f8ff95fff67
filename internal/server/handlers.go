package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/coachrag/internal/models"
	"github.com/hyperjump/coachrag/internal/vector"
	"go.uber.org/zap"
)

// Upload query parameter defaults.
const (
	defaultPriority    = models.MinPriority
	defaultSingleChunk = false
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, models.RootResponse{Success: true, Message: RootMessage})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	singleChunk := defaultSingleChunk
	if v := r.URL.Query().Get("singleChunk"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.respondError(w, http.StatusUnprocessableEntity, "singleChunk must be a boolean")
			return
		}
		singleChunk = b
	}
	priority := defaultPriority
	if v := r.URL.Query().Get("priority"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, http.StatusUnprocessableEntity, "priority must be an integer")
			return
		}
		priority = n
	}

	if s.config.Server.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxUploadBytes)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		s.respondError(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "failed to read file")
		return
	}

	s.logger.Debug("upload request",
		zap.String("filename", header.Filename),
		zap.Bool("single_chunk", singleChunk),
		zap.Int("priority", priority))
	doc, err := s.indexer.Upload(r.Context(), &models.UploadInput{
		Filename:    header.Filename,
		Content:     content,
		SingleChunk: singleChunk,
		Priority:    priority,
	})
	if err != nil {
		s.logger.Error("upload failed", zap.String("filename", header.Filename), zap.Error(err))
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.UploadResponse{
		Message:          "Document uploaded successfully",
		DocID:            doc.ID,
		Chunks:           models.ChunkSummary{Count: doc.ChunkCount},
		DetectedLanguage: doc.Language,
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.logger.Debug("query request", zap.String("query", req.Query))
	result, answer, err := s.engine.Query(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("query failed", zap.Error(err))
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	if !answer.OK() {
		s.respondError(w, statusFor(answer.Err()), answer.Err().Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.QueryResponse{
		Message:          "Query successful",
		Output:           answer.Text(),
		DetectedLanguage: result.DetectedLanguage,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "doc_id")
	s.logger.Debug("delete document request", zap.String("doc_id", id))
	if err := s.indexer.Delete(r.Context(), id); err != nil {
		s.logger.Error("deletion failed", zap.String("doc_id", id), zap.Error(err))
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.DeleteResponse{
		Message: "Document deleted successfully",
		Success: true,
		Data:    models.DeleteData{DocID: id},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Heartbeat(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		s.respondError(w, http.StatusServiceUnavailable, models.StorageUnavailable(err).Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Count(r.Context())
	if err != nil {
		s.logger.Error("status: count chunks failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	disk, err := vector.DiskUsage(&s.config.VectorStore)
	if err != nil {
		s.logger.Warn("status: disk usage failed", zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, models.StatusResponse{
		Chunks:      n,
		VectorStore: s.store.Type(),
		QuerySize:   s.engine.QuerySize(),
		Embedding:   s.config.Embedding.Provider,
		LLMProvider: s.config.LLM.Provider,
		LLMModel:    s.config.LLM.Model,
		DiskBytes:   disk,
	})
}

// statusFor maps pipeline errors to HTTP status codes. Validation, extraction,
// storage and retrieval failures are all 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrLLMInputTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, models.ErrLLMInternal):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, models.ErrorResponse{Detail: message})
}
