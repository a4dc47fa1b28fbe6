package printing

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateEngine renders the document templates. It uses html/template with
// helpers that format amounts and dates the way Mexican paperwork shows them.
type TemplateEngine struct {
	templates *template.Template
	printer   *message.Printer
	location  *time.Location
	source    fs.FS
	patterns  []string
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithLanguage sets the locale used to format numbers
func WithLanguage(tag language.Tag) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.printer = message.NewPrinter(tag)
	}
}

// WithLocation sets the time zone dates are printed in
func WithLocation(loc *time.Location) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.location = loc
	}
}

// WithTemplates replaces the embedded templates
func WithTemplates(fsys fs.FS, patterns ...string) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.source = fsys
		e.patterns = patterns
	}
}

// NewTemplateEngine parses the document templates
func NewTemplateEngine(opts ...TemplateEngineOption) (*TemplateEngine, error) {
	e := &TemplateEngine{
		printer:  message.NewPrinter(language.MustParse("es-MX")),
		location: time.Local,
		source:   templateFS,
		patterns: []string{"templates/*.html"},
	}
	for _, opt := range opts {
		opt(e)
	}

	tmpl, err := template.New("").Funcs(e.funcMap()).ParseFS(e.source, e.patterns...)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "failed to parse templates", err)
	}
	e.templates = tmpl
	return e, nil
}

// Has reports whether a template with this name exists
func (e *TemplateEngine) Has(name string) bool {
	return e.templates.Lookup(name) != nil
}

// Render executes the named template with data
func (e *TemplateEngine) Render(ctx context.Context, name string, data any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !e.Has(name) {
		return "", NewRenderError(ErrCodeTemplateFailed, "template not found: "+name, nil)
	}

	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to execute template "+name, err)
	}
	return buf.String(), nil
}

// funcMap builds the template helpers
func (e *TemplateEngine) funcMap() template.FuncMap {
	return template.FuncMap{
		"money":    func(v any) string { return e.formatMoney(v) },
		"number":   func(v any) string { return e.formatNumber(v) },
		"date":     func(v any) string { return e.formatDate(v) },
		"datetime": func(v any) string { return e.formatDateTime(v) },
		"upper":    strings.ToUpper,
		"inc":      func(i int) int { return i + 1 },
		"default":  defaultString,
	}
}

// formatMoney prints an amount as $1,234.50
func (e *TemplateEngine) formatMoney(v any) string {
	d, ok := toDecimal(v)
	if !ok {
		return ""
	}
	f, _ := d.Round(2).Float64()
	if f < 0 {
		return e.printer.Sprintf("-$%.2f", -f)
	}
	return e.printer.Sprintf("$%.2f", f)
}

// formatNumber prints an integer with thousands separators
func (e *TemplateEngine) formatNumber(v any) string {
	switch n := v.(type) {
	case int:
		return e.printer.Sprintf("%d", n)
	case int64:
		return e.printer.Sprintf("%d", n)
	default:
		return fmt.Sprint(v)
	}
}

func (e *TemplateEngine) formatDate(v any) string {
	t, ok := toTime(v)
	if !ok {
		return ""
	}
	return t.In(e.location).Format("02/01/2006")
}

func (e *TemplateEngine) formatDateTime(v any) string {
	t, ok := toTime(v)
	if !ok {
		return ""
	}
	return t.In(e.location).Format("02/01/2006 15:04")
}

// defaultString returns def when v prints as empty or zero
func defaultString(def string, v any) string {
	if v == nil {
		return def
	}
	str := strings.TrimSpace(fmt.Sprint(v))
	if str == "" || str == "0" || str == "<nil>" {
		return def
	}
	return str
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, false
		}
		return *n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	case string:
		d, err := decimal.NewFromString(n)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	default:
		return time.Time{}, false
	}
}
