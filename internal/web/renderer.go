package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"scenario-admin/internal/models"
	"scenario-admin/internal/scenario"

	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"
)

//go:embed templates
var embedded embed.FS

// Templates is the embedded template tree rooted at "templates".
func Templates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(fmt.Sprintf("embedded templates missing: %v", err))
	}
	return sub
}

const (
	layoutName     = "layout.html"
	partialsPrefix = "partials/"
)

// Renderer implements gin's render.HTMLRender. Pages are rendered inside
// layout.html; names under partials/ are rendered bare (htmx fragments).
type Renderer struct {
	fsys    fs.FS
	debug   bool
	funcMap template.FuncMap
	logger  *zap.Logger

	mu    sync.RWMutex
	cache map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

// NewRenderer parses every page up front. In debug mode templates are re-parsed
// on each render instead.
func NewRenderer(fsys fs.FS, debug bool, logger *zap.Logger) (*Renderer, error) {
	r := &Renderer{
		fsys:    fsys,
		debug:   debug,
		funcMap: FuncMap(),
		logger:  logger.Named("TemplateRenderer"),
		cache:   make(map[string]*template.Template),
	}
	if err := r.loadAll(); err != nil {
		return nil, err
	}
	return r, nil
}

// Instance returns the render.Render for the named page or partial.
func (r *Renderer) Instance(name string, data any) render.Render {
	tmpl, err := r.lookup(name)
	if err != nil {
		r.logger.Error("Failed to load template", zap.String("templateName", name), zap.Error(err))
		tmpl = template.Must(template.New("error").Parse(`<p>Template error</p>`))
		return render.HTML{Template: tmpl, Data: data}
	}
	return render.HTML{Template: tmpl, Name: entryName(name), Data: data}
}

func (r *Renderer) lookup(name string) (*template.Template, error) {
	if r.debug {
		return r.parse(name)
	}
	r.mu.RLock()
	tmpl, ok := r.cache[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("template %s not found", name)
	}
	return tmpl, nil
}

func (r *Renderer) loadAll() error {
	pages, err := fs.Glob(r.fsys, "*.html")
	if err != nil {
		return fmt.Errorf("failed to list page templates: %w", err)
	}
	partials, err := fs.Glob(r.fsys, partialsPrefix+"*.html")
	if err != nil {
		return fmt.Errorf("failed to list partial templates: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range append(pages, partials...) {
		if name == layoutName {
			continue
		}
		tmpl, err := r.parse(name)
		if err != nil {
			return err
		}
		r.cache[name] = tmpl
	}
	r.logger.Info("Templates loaded", zap.Int("count", len(r.cache)), zap.Bool("debug", r.debug))
	return nil
}

// parse builds the template set for one page: layout, all partials, the page.
func (r *Renderer) parse(name string) (*template.Template, error) {
	patterns := []string{partialsPrefix + "*.html"}
	if !isPartial(name) {
		patterns = append([]string{layoutName}, append(patterns, name)...)
	}
	tmpl, err := template.New(path.Base(name)).Funcs(r.funcMap).ParseFS(r.fsys, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

func isPartial(name string) bool {
	return strings.HasPrefix(name, partialsPrefix)
}

func entryName(name string) string {
	if isPartial(name) {
		return path.Base(name)
	}
	return layoutName
}

// FuncMap holds the helpers available to every template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"duration":    scenario.FormatDuration,
		"date":        scenario.FormatDate,
		"statusLabel": StatusLabel,
		"statusClass": StatusClass,
		"add":         func(a, b int) int { return a + b },
		"seq":         seq,
		"year":        func() int { return time.Now().Year() },
	}
}

// StatusLabel is the badge text for a video status.
func StatusLabel(s models.VideoStatus) string {
	switch s.Normalize() {
	case models.VideoStatusCompleted:
		return "Ready"
	case models.VideoStatusGenerating:
		return "Generating"
	case models.VideoStatusFailed:
		return "Failed"
	default:
		return "Pending"
	}
}

// StatusClass is the badge CSS class for a video status.
func StatusClass(s models.VideoStatus) string {
	return "status-" + string(s.Normalize())
}

func seq(from, to int) []int {
	if to < from {
		return nil
	}
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}
