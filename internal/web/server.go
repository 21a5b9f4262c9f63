package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"datadesc/internal/describe"
	"datadesc/internal/storage"
)

type Server struct {
	Store *storage.Store
}

type datasetInfo struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Columns  []string `json:"columns"`
	RowCount int      `json:"row_count"`
}

type datasetSummary struct {
	Dataset  string             `json:"dataset"`
	RowCount int                `json:"row_count"`
	Columns  []describe.Summary `json:"columns"`
}

// Datasets handles GET /datasets.
func (s *Server) Datasets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	datasets, err := s.Store.ListDatasets(r.Context())
	if err != nil {
		log.Printf("list datasets: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	infos := make([]datasetInfo, 0, len(datasets))
	for _, ds := range datasets {
		infos = append(infos, datasetInfo{
			Name:     ds.Name,
			Path:     ds.Path,
			Columns:  ds.Columns,
			RowCount: ds.RowCount,
		})
	}
	writeJSON(w, infos)
}

// Dataset handles /datasets/{name}, /datasets/{name}/table and
// POST /datasets/{name}/refresh.
func (s *Server) Dataset(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/datasets/")
	name, action, _ := strings.Cut(rest, "/")
	if name == "" {
		http.NotFound(w, r)
		return
	}

	ds, err := s.Store.GetDatasetByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		log.Printf("get dataset %q: %v", name, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	switch action {
	case "":
		s.summaryJSON(w, r, ds)
	case "table":
		s.summaryTable(w, r, ds)
	case "refresh":
		s.refresh(w, r, ds)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) summaryJSON(w http.ResponseWriter, r *http.Request, ds storage.Dataset) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summaries, err := s.Store.ListColumnSummaries(r.Context(), ds.ID)
	if err != nil {
		log.Printf("list summaries for %q: %v", ds.Name, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if len(summaries) == 0 {
		http.Error(w, "dataset not yet summarized", http.StatusConflict)
		return
	}

	writeJSON(w, datasetSummary{Dataset: ds.Name, RowCount: ds.RowCount, Columns: summaries})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request, ds storage.Dataset) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.Store.EnqueueDataset(r.Context(), ds.ID); err != nil {
		log.Printf("enqueue %q: %v", ds.Name, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte("queued\n"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
