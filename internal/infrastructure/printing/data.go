package printing

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentTemplate is the template every purchasing document is printed with
const DocumentTemplate = "document.html"

// DocumentData is the view model of a printed document
type DocumentData struct {
	Company   string
	Title     string
	Number    string
	Date      *time.Time
	Status    string
	Party     *PartyInfo
	Fields    []Field
	Lines     []LineData
	Subtotal  decimal.Decimal
	IVA       decimal.Decimal
	Total     decimal.Decimal
	Notes     string
	PrintedAt time.Time
}

// PartyInfo is the supplier or customer block
type PartyInfo struct {
	Label   string
	Name    string
	TaxID   string
	Contact string
	Phone   string
	Email   string
	Address string
}

// Field is a labelled header value
type Field struct {
	Label string
	Value string
}

// LineData is one printed line
type LineData struct {
	Cantidad       int
	Descripcion    string
	PrecioUnitario decimal.Decimal
	Importe        decimal.Decimal
}
