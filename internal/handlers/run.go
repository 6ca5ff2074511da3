// Package handlers serves the run history as HTML.
package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/xalts/authsuite/internal/models"
	"github.com/xalts/authsuite/internal/repository"
	"github.com/xalts/authsuite/internal/services"
)

// ArtifactsPrefix is where the server mounts the artifacts directory
const ArtifactsPrefix = "/artifacts/"

// RunHandler shows one run and its scenario results
type RunHandler struct {
	template *template.Template
	history  services.RunHistory
}

// NewRunHandler creates a new run handler. Screenshot links are resolved
// relative to artifactsDir.
func NewRunHandler(templatePath, artifactsDir string, history services.RunHistory) (*RunHandler, error) {
	tmpl, err := template.New("run.html").Funcs(funcMap(artifactsDir)).ParseFiles(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return &RunHandler{
		template: tmpl,
		history:  history,
	}, nil
}

// RunData represents the data for the run template
type RunData struct {
	Run     *models.Run
	Results []*models.ScenarioResult
}

// ServeHTTP handles the GET /runs/{id} request
func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Missing run ID", http.StatusBadRequest)
		return
	}

	run, results, err := h.history.GetRun(id)
	if errors.Is(err, repository.ErrRunNotFound) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error loading run %s: %v", id, err)
		http.Error(w, "Failed to load run", http.StatusInternalServerError)
		return
	}

	if err := h.template.Execute(w, RunData{Run: run, Results: results}); err != nil {
		log.Printf("Error rendering template: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

func funcMap(artifactsDir string) template.FuncMap {
	return template.FuncMap{
		"screenshotURL": func(path string) string {
			return screenshotURL(artifactsDir, path)
		},
		"ms": func(d time.Duration) string {
			return d.Round(time.Millisecond).String()
		},
		"timestamp": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Local().Format("2006-01-02 15:04:05")
		},
	}
}

// screenshotURL maps a screenshot path under artifactsDir to its served URL
func screenshotURL(artifactsDir, path string) string {
	if path == "" || artifactsDir == "" {
		return ""
	}
	rel, err := filepath.Rel(artifactsDir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return ArtifactsPrefix + strings.Join(parts, "/")
}
