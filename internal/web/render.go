package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/ops"
	"github.com/hpungsan/tome/internal/sheet"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "characters", "new"
}

// ListPageData is the template data for the character list page.
type ListPageData struct {
	PageData
	Items      []sheet.CharacterSummary
	Pagination ops.Pagination
}

// SheetPageData is the template data for a character sheet.
type SheetPageData struct {
	PageData
	Character *sheet.Character
	View      sheet.SheetView
	NotesHTML template.HTML
}

// ScoreField is one ability score input on the character form.
type ScoreField struct {
	Name  string
	Label string
	Value int
}

// FormPageData is the template data for the create and edit forms.
type FormPageData struct {
	PageData
	Action string
	IsEdit bool
	Draft  sheet.Draft
	Scores []ScoreField

	// Edit-only fields
	CurrentHP        int
	TemporaryHP      int
	ExperiencePoints int

	SeedSkills bool
	SeedSaves  bool
	Errors     map[string]string
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
	Fields     []errors.FieldError
	ReloadURL  string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	logger    *zap.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	printer := message.NewPrinter(language.English)

	funcMap := template.FuncMap{
		"add":          func(a, b int) int { return a + b },
		"sub":          func(a, b int) int { return a - b },
		"formatTime":   formatTime,
		"formatNumber": func(n int) string { return printer.Sprintf("%d", n) },
		"formatValue":  func(v sheet.Value) string { return formatValue(printer, v) },
		"formatWeight": func(w float64) string { return formatWeight(printer, w) },
		"stateMark":    stateMark,
		"deref":        deref,
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"list":  "list.html",
		"sheet": "sheet.html",
		"form":  "form.html",
		"error": "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		logger:    logger,
	}
}

// page fills the common page fields.
func (r *Renderer) page(title, nav string) PageData {
	return PageData{Title: title, Version: r.version, Nav: nav}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For HTMX requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error("template not found", zap.String("template", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	block := "layout"
	if req != nil && req.Header.Get("HX-Request") == "true" {
		block = "content"
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		r.logger.Error("template execution failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var tErr *errors.TomeError
	if !stderrors.As(err, &tErr) {
		tErr = errors.NewInternal(err)
	}

	status := tErr.Status
	message := tErr.Message
	fields := errors.Fields(tErr)

	// HTMX request: return HTML fragment
	if req.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	if wantsJSON(req) {
		body := map[string]any{
			"code":    string(tErr.Code),
			"message": message,
			"status":  status,
		}
		if len(fields) > 0 {
			body["fields"] = fields
		}
		renderJSON(w, status, map[string]any{"error": body})
		return
	}

	reload := req.Referer()
	if reload == "" || !strings.HasPrefix(reload, "/") && !sameHost(req, reload) {
		reload = "/characters"
	}

	// Full error page
	r.renderPageStatus(w, req, status, "error", ErrorPageData{
		PageData:   r.page(fmt.Sprintf("Error %d", status), ""),
		StatusCode: status,
		Message:    message,
		Fields:     fields,
		ReloadURL:  reload,
	})
}

// sameHost reports whether ref points back at the host serving req.
func sameHost(req *http.Request, ref string) bool {
	return strings.HasPrefix(ref, "http://"+req.Host+"/") || strings.HasPrefix(ref, "https://"+req.Host+"/")
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json")
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts markdown text to HTML using goldmark.
// Raw HTML in the source is dropped by goldmark's default renderer.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}

// formatValue renders a coin amount with thousands separators, e.g. "1,500 gp".
func formatValue(p *message.Printer, v sheet.Value) string {
	if v.Amount == math.Trunc(v.Amount) {
		return p.Sprintf("%d %s", int64(v.Amount), v.Currency)
	}
	return p.Sprintf("%.2f %s", v.Amount, v.Currency)
}

// formatWeight renders pounds with at most one decimal place.
func formatWeight(p *message.Printer, w float64) string {
	if w == math.Trunc(w) {
		return p.Sprintf("%d lb", int64(w))
	}
	return p.Sprintf("%.1f lb", w)
}

// stateMark is the sheet's proficiency marker.
func stateMark(s sheet.ProficiencyState) string {
	switch s {
	case sheet.StateProficient:
		return "●"
	case sheet.StateExpertise:
		return "◆"
	default:
		return "○"
	}
}

// deref dereferences a *string, returning "" if nil.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
