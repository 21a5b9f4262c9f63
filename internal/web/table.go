package web

import (
	"log"
	"net/http"

	"datadesc/internal/render"
	"datadesc/internal/storage"
)

func (s *Server) summaryTable(w http.ResponseWriter, r *http.Request, ds storage.Dataset) {
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

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := render.SummaryTable(w, ds.Name, summaries); err != nil {
		log.Printf("render table for %q: %v", ds.Name, err)
	}
}
