package view

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTmpl = template.Must(loadTemplates(templatesFS, "templates"))

// loadTemplates parses every page template under dir of fsys.
func loadTemplates(fsys fs.FS, dir string) (*template.Template, error) {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, err
	}
	return template.ParseFS(sub, "*.html")
}

// Page is the view model for the widget page.
type Page struct {
	Query   string
	Loading bool
	Summary *Summary
	Error   string
	Notices []string
}

// BodyClass returns the background class; pages without a result use the overcast one.
func (p Page) BodyClass() string {
	if p.Summary == nil {
		return ThemeOvercast.CSSClass()
	}
	return p.Summary.Theme.CSSClass()
}

// HTMLDisplay collects display calls for one page and renders them with Flush.
// It is not safe for concurrent use; the HTTP front end makes one per request.
type HTMLDisplay struct {
	page Page
}

func NewHTMLDisplay() *HTMLDisplay {
	return &HTMLDisplay{}
}

// SetQuery pre-fills the search box.
func (d *HTMLDisplay) SetQuery(q string) {
	d.page.Query = q
}

func (d *HTMLDisplay) ShowLoading() {
	d.page.Loading = true
	d.page.Summary = nil
}

func (d *HTMLDisplay) ShowSummary(s Summary) error {
	d.page.Loading = false
	d.page.Error = ""
	d.page.Summary = &s
	return nil
}

func (d *HTMLDisplay) ShowError(message string) error {
	d.page.Loading = false
	d.page.Error = message
	return nil
}

func (d *HTMLDisplay) Notify(message string) {
	d.page.Notices = append(d.page.Notices, message)
}

// Page returns the collected view model.
func (d *HTMLDisplay) Page() Page {
	return d.page
}

// Flush renders the page to w.
func (d *HTMLDisplay) Flush(w io.Writer) error {
	return pageTmpl.ExecuteTemplate(w, "widget.html", d.page)
}
