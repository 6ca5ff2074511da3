package handlers

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/xalts/authsuite/internal/models"
	"github.com/xalts/authsuite/internal/services"
)

const defaultRunLimit = 50

// RunsHandler lists recent runs
type RunsHandler struct {
	template *template.Template
	history  services.RunHistory
}

// NewRunsHandler creates a new runs handler
func NewRunsHandler(templatePath string, history services.RunHistory) (*RunsHandler, error) {
	tmpl, err := template.New("runs.html").Funcs(funcMap("")).ParseFiles(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return &RunsHandler{
		template: tmpl,
		history:  history,
	}, nil
}

// RunsData represents the data for the runs template
type RunsData struct {
	Runs []*models.Run
}

// ServeHTTP handles the GET / request
func (h *RunsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	limit := defaultRunLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.history.RecentRuns(limit)
	if err != nil {
		log.Printf("Error listing runs: %v", err)
		http.Error(w, "Failed to load runs", http.StatusInternalServerError)
		return
	}

	if err := h.template.Execute(w, RunsData{Runs: runs}); err != nil {
		log.Printf("Error rendering template: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
