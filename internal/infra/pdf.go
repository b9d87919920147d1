package infra

// pdf.go: ticket receipts rendered with go-pdf/fpdf.
// Same layout for sales and services: business header, number and date,
// line table, adjustments, bold total and the payment breakdown.
//
// Files are written to storagePath/{tipo}_{numero}.pdf; the returned path is
// relative to storagePath.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// LineaComprobante is one printed row.
type LineaComprobante struct {
	Descripcion string
	Cantidad    string
	Subtotal    decimal.Decimal
}

// PagoComprobante is one printed payment line.
type PagoComprobante struct {
	Metodo string
	Monto  decimal.Decimal
}

// ComprobanteDoc is the printable view of a sale or a service.
type ComprobanteDoc struct {
	Tipo      string // "VENTA" | "SERVICIO"
	Numero    string
	Fecha     time.Time
	Sucursal  string
	Cliente   string
	Vehiculo  string
	Lineas    []LineaComprobante
	Subtotal  decimal.Decimal
	Descuento decimal.Decimal
	// Recargo is system + card interest.
	Recargo   decimal.Decimal
	Total     decimal.Decimal
	Pagos     []PagoComprobante
	Cancelado bool
}

// GenerateComprobantePDF renders doc under storagePath (created if needed).
func GenerateComprobantePDF(doc ComprobanteDoc, negocio, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("%s_%s.pdf", strings.ToLower(doc.Tipo), sanitizeFileName(doc.Numero))
	filePath := filepath.Join(storagePath, fileName)

	// 74mm × 105mm, close to thermal receipt paper
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(true, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(negocio), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	titulo := "Comprobante de Venta"
	if doc.Tipo == "SERVICIO" {
		titulo = "Comprobante de Servicio"
	}
	pdf.CellFormat(contentW, 5, titulo, "", 1, "C", false, 0, "")
	if doc.Sucursal != "" {
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(contentW, 4, tr(doc.Sucursal), "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	// ── Info ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, tr("N° "+doc.Numero), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, doc.Fecha.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if doc.Cliente != "" {
		pdf.CellFormat(contentW, 4, tr("Cliente: "+doc.Cliente), "", 1, "L", false, 0, "")
	}
	if doc.Vehiculo != "" {
		pdf.CellFormat(contentW, 4, tr("Vehículo: "+doc.Vehiculo), "", 1, "L", false, 0, "")
	}
	if doc.Cancelado {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW, 5, "CANCELADO", "", 1, "C", false, 0, "")
	}
	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Lines ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Detalle", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, l := range doc.Lineas {
		pdf.CellFormat(col1, 5, tr(truncar(l.Descripcion, 22)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, l.Cantidad, "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+l.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	if !doc.Descuento.IsZero() || !doc.Recargo.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Subtotal:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+doc.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if !doc.Descuento.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Descuento:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "-$"+doc.Descuento.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if !doc.Recargo.IsZero() {
		pdf.CellFormat(col1+col2, 5, tr("Interés:"), "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+doc.Recargo.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+doc.Total.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Payments ─────────────────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	for _, p := range doc.Pagos {
		pdf.CellFormat(col1+col2, 4, tr("Pago ("+p.Metodo+"):"), "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, "$"+p.Monto.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("¡Gracias por su visita!"), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return fileName, nil
}

func truncar(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
