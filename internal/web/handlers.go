package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/burst-composer/internal/analysis"
	"github.com/kozaktomas/burst-composer/internal/detect"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

type clusterRequest struct {
	ClusterID string         `json:"cluster_id"`
	Photos    []detect.Photo `json:"photos"`
}

func (req *clusterRequest) validate() string {
	if req.ClusterID == "" {
		return "cluster_id is required"
	}
	if len(req.Photos) == 0 {
		return "photos are required"
	}
	return ""
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (s *Server) handleAnalyzeCluster(w http.ResponseWriter, r *http.Request) {
	var req clusterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	result, err := s.analyzer.AnalyzeCluster(r.Context(), analysis.Cluster{
		ID:     req.ClusterID,
		Photos: req.Photos,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cluster analysis failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleEligibility(w http.ResponseWriter, r *http.Request) {
	var req clusterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	result, err := s.analyzer.AssessEligibility(r.Context(), analysis.Cluster{
		ID:     req.ClusterID,
		Photos: req.Photos,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "eligibility check failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRankFaces(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Photos []detect.Photo `json:"photos"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.Photos) == 0 {
		respondError(w, http.StatusBadRequest, "photos are required")
		return
	}

	ranked, err := s.analyzer.RankFaces(r.Context(), req.Photos)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "face ranking failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"photos": ranked})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		respondError(w, http.StatusNotFound, "cache is disabled")
		return
	}
	respondJSON(w, http.StatusOK, s.cache.Stats())
}

func (s *Server) handleCacheClearAll(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		respondError(w, http.StatusNotFound, "cache is disabled")
		return
	}
	s.cache.ClearAll()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		respondError(w, http.StatusNotFound, "cache is disabled")
		return
	}
	clusterID := chi.URLParam(r, "clusterID")
	if clusterID == "" {
		respondError(w, http.StatusBadRequest, "missing cluster ID")
		return
	}
	s.cache.Clear(clusterID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
