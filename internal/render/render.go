package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/lehigh-university-libraries/radassist/internal/web"
	"github.com/lehigh-university-libraries/radassist/internal/workflow"
)

// Section is one collapsible block of the report
type Section struct {
	ID           string
	Title        string
	Body         string
	Open         bool
	Preformatted bool
}

// PanelView drives the output panel template
type PanelView struct {
	SessionID  string
	State      string
	Generation uint64
	Analyzing  bool
	Failed     bool
	Error      string
	Sections   []Section
}

// PageView drives the full page template
type PageView struct {
	SessionID   string
	HasImage    bool
	PreviewURL  string
	Notes       string
	CanSubmit   bool
	Analyzing   bool
	MaxUploadMB int
	Panel       PanelView
}

type Renderer struct {
	tmpl        *template.Template
	maxUploadMB int
}

// New returns a renderer over the embedded templates
func New(maxUploadMB int) *Renderer {
	return &Renderer{tmpl: web.Templates, maxUploadMB: maxUploadMB}
}

// Sections lays the result out as Diagnosis (open), Detailed Report and Future Course of Action
func Sections(s workflow.Snapshot) []Section {
	if s.State != workflow.Success || s.Result == nil {
		return nil
	}
	return []Section{
		{ID: "diagnosis", Title: "Diagnosis", Body: s.Result.Diagnosis, Open: true},
		{ID: "report", Title: "Detailed Report", Body: s.Result.Report, Preformatted: true},
		{ID: "action-plan", Title: "Future Course of Action", Body: s.Result.ActionPlan, Preformatted: true},
	}
}

func (r *Renderer) PanelView(sessionID string, s workflow.Snapshot) PanelView {
	return PanelView{
		SessionID:  sessionID,
		State:      s.State.String(),
		Generation: s.Generation,
		Analyzing:  s.State == workflow.Analyzing,
		Failed:     s.State == workflow.Failed,
		Error:      s.Error,
		Sections:   Sections(s),
	}
}

func (r *Renderer) PageView(sessionID string, s workflow.Snapshot) PageView {
	v := PageView{
		SessionID:   sessionID,
		HasImage:    s.Image != nil,
		Notes:       s.Notes,
		CanSubmit:   s.CanSubmit(),
		Analyzing:   s.State == workflow.Analyzing,
		MaxUploadMB: r.maxUploadMB,
		Panel:       r.PanelView(sessionID, s),
	}
	if v.HasImage {
		v.PreviewURL = fmt.Sprintf("/api/sessions/%s/image?g=%d", sessionID, s.Generation)
	}
	return v
}

// Panel writes the output panel fragment
func (r *Renderer) Panel(w io.Writer, sessionID string, s workflow.Snapshot) error {
	if err := r.tmpl.ExecuteTemplate(w, "panel", r.PanelView(sessionID, s)); err != nil {
		return fmt.Errorf("failed to render panel: %w", err)
	}
	return nil
}

// Page writes the complete page
func (r *Renderer) Page(w io.Writer, sessionID string, s workflow.Snapshot) error {
	if err := r.tmpl.ExecuteTemplate(w, "page", r.PageView(sessionID, s)); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}
