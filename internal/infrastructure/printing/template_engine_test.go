package printing

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func newTestEngine(t *testing.T, opts ...TemplateEngineOption) *TemplateEngine {
	t.Helper()
	opts = append([]TemplateEngineOption{WithLocation(time.UTC)}, opts...)
	e, err := NewTemplateEngine(opts...)
	require.NoError(t, err)
	return e
}

func TestNewTemplateEngine_ParsesEmbeddedTemplates(t *testing.T) {
	e := newTestEngine(t)
	assert.True(t, e.Has(DocumentTemplate))
	assert.True(t, e.Has("styles"))
	assert.False(t, e.Has("missing.html"))
}

func TestTemplateEngine_RenderDocument(t *testing.T) {
	e := newTestEngine(t)
	fecha := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	html, err := e.Render(context.Background(), DocumentTemplate, DocumentData{
		Company: "Refaccionaria del Norte",
		Title:   "Orden de compra",
		Number:  "OC-0042",
		Date:    &fecha,
		Status:  "Pendiente",
		Party: &PartyInfo{
			Label: "Proveedor",
			Name:  "Aceros <Industriales>",
			TaxID: "aim850101ab1",
		},
		Fields: []Field{{Label: "Método de pago", Value: "Transferencia"}},
		Lines: []LineData{
			{Cantidad: 1500, Descripcion: "Tornillo 1/4", PrecioUnitario: decimal.RequireFromString("2.5"), Importe: decimal.RequireFromString("3750")},
		},
		Subtotal:  decimal.RequireFromString("3750"),
		IVA:       decimal.RequireFromString("600"),
		Total:     decimal.RequireFromString("4350"),
		Notes:     "Entregar en almacén 2",
		PrintedAt: fecha,
	})

	require.NoError(t, err)
	assert.Contains(t, html, "Refaccionaria del Norte")
	assert.Contains(t, html, "No. OC-0042")
	assert.Contains(t, html, "Fecha: 15/03/2024")
	assert.Contains(t, html, "Aceros &lt;Industriales&gt;")
	assert.Contains(t, html, "AIM850101AB1")
	assert.Contains(t, html, "Método de pago")
	assert.Contains(t, html, "1,500")
	assert.Contains(t, html, "$2.50")
	assert.Contains(t, html, "$3,750.00")
	assert.Contains(t, html, "$4,350.00")
	assert.Contains(t, html, "Entregar en almacén 2")
	assert.Contains(t, html, "Impreso el 15/03/2024 12:00")
}

func TestTemplateEngine_RenderDocument_Sparse(t *testing.T) {
	e := newTestEngine(t)

	html, err := e.Render(context.Background(), DocumentTemplate, DocumentData{Title: "Factura"})

	require.NoError(t, err)
	assert.Contains(t, html, "Fecha: -")
	assert.Contains(t, html, "Sin partidas")
	assert.NotContains(t, html, `class="party"`)
	assert.Contains(t, html, "$0.00")
}

func TestTemplateEngine_Render_Errors(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Render(context.Background(), "missing.html", nil)
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeTemplateFailed, renderErr.Code)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Render(ctx, DocumentTemplate, DocumentData{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTemplateEngine_WithTemplates(t *testing.T) {
	fsys := fstest.MapFS{
		"custom.html": {Data: []byte(`{{money .}}|{{default "n/a" ""}}`)},
		"broken.html": {Data: []byte(`{{.Missing`)},
	}

	e := newTestEngine(t, WithTemplates(fsys, "custom.html"), WithLanguage(language.English))
	out, err := e.Render(context.Background(), "custom.html", decimal.RequireFromString("1234567.891"))
	require.NoError(t, err)
	assert.Equal(t, "$1,234,567.89|n/a", out)

	_, err = NewTemplateEngine(WithTemplates(fsys, "broken.html"))
	assert.Error(t, err)
}

func TestFormatMoney(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"decimal", decimal.RequireFromString("1234.5"), "$1,234.50"},
		{"pointer", func() *decimal.Decimal { d := decimal.NewFromInt(7); return &d }(), "$7.00"},
		{"int", 1000000, "$1,000,000.00"},
		{"string", "99.999", "$100.00"},
		{"negative", decimal.NewFromInt(-10), "-$10.00"},
		{"nil pointer", (*decimal.Decimal)(nil), ""},
		{"unsupported", struct{}{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.formatMoney(tt.input))
		})
	}
}

func TestFormatDate(t *testing.T) {
	e := newTestEngine(t)
	d := time.Date(2024, 12, 1, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "01/12/2024", e.formatDate(d))
	assert.Equal(t, "01/12/2024", e.formatDate(&d))
	assert.Equal(t, "01/12/2024 23:30", e.formatDateTime(d))
	assert.Equal(t, "", e.formatDate((*time.Time)(nil)))
	assert.Equal(t, "", e.formatDate(time.Time{}))
	assert.Equal(t, "", e.formatDate("2024-12-01"))
}

func TestDefaultString(t *testing.T) {
	assert.Equal(t, "-", defaultString("-", nil))
	assert.Equal(t, "-", defaultString("-", "  "))
	assert.Equal(t, "-", defaultString("-", 0))
	assert.Equal(t, "2019", defaultString("-", 2019))
	assert.Equal(t, "Nissan", defaultString("-", "Nissan"))
}
