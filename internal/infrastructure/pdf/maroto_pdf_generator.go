// Package pdf implementa la generación de la remisión de entrega de una
// distribución: el documento que viaja con la mercancía del pool central a
// la sede.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: FarmaStock │ N° Remisión + Fecha                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SEDE DESTINO: código, nombre, dirección, ciudad            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: CUM | Medicamento | Presentación | Cant. | Unidad   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR de trazabilidad + firmas de entrega/recibo      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appdist "github.com/jhoicas/FarmaStock-api/internal/application/distribution"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 96, Blue: 57}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoPDFGenerator implementa distribution.DeliveryNotePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateDeliveryNotePDF genera la remisión y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateDeliveryNotePDF(
	_ context.Context,
	d *entity.Distribution,
	site *entity.Site,
	lines []appdist.DeliveryNoteLine,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Remisión de distribución", true).
		WithAuthor("FarmaStock", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(d))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(siteRow(site))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(lines))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range footerRows(d) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: nombre del sistema (izq) y N° de remisión + fecha (der).
func headerRow(d *entity.Distribution) core.Row {
	fecha := d.UpdatedAt.Format("02/01/2006")
	return row.New(18).Add(
		col.New(7).Add(
			text.New("FarmaStock", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Central de distribución farmacéutica", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("REMISIÓN DE DISTRIBUCIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(shortID(d.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// siteRow: datos de la sede destino.
func siteRow(site *entity.Site) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("SEDE DESTINO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s — %s", site.Code, site.Name), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Dirección: %s   |   Ciudad: %s",
				nonEmpty(site.Address, "—"),
				nonEmpty(site.City, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("CUM", 2, align.Left),
		h("Medicamento", 4, align.Left),
		h("Presentación", 3, align.Left),
		h("Cant.", 1, align.Right),
		h("Unidad", 2, align.Left),
	)
}

// tableDetailRows: una fila por línea de la remisión.
func tableDetailRows(lines []appdist.DeliveryNoteLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(l.CUM, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(4).Add(text.New(l.Name, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(3).Add(text.New(l.Presentation, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(1).Add(text.New(fmt.Sprintf("%d", l.Quantity), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(l.Unit, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
		))
	}
	return result
}

// totalRow: total de unidades distribuidas.
func totalRow(lines []appdist.DeliveryNoteLine) core.Row {
	var total int64
	for _, l := range lines {
		total += l.Quantity
	}
	return row.New(8).Add(
		col.New(8),
		col.New(2).Add(text.New("Total unidades:", props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})),
		col.New(2).Add(text.New(fmt.Sprintf("%d", total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})),
	)
}

// footerRows: QR de trazabilidad + espacios de firma.
func footerRows(d *entity.Distribution) []core.Row {
	return []core.Row{
		row.New(40).Add(
			col.New(4).Add(code.NewQr(d.ID, props.Rect{
				Percent: 90,
				Center:  true,
			})),
			col.New(4).Add(
				text.New("ENTREGA (central)", props.Text{
					Style: fontstyle.Bold, Size: 8, Top: 8, Color: colorPrimary,
				}),
				text.New("Firma: ______________________", props.Text{Size: 8, Top: 20, Color: colorGray}),
			),
			col.New(4).Add(
				text.New("RECIBE (sede)", props.Text{
					Style: fontstyle.Bold, Size: 8, Top: 8, Color: colorPrimary,
				}),
				text.New("Firma: ______________________", props.Text{Size: 8, Top: 20, Color: colorGray}),
			),
		),
		row.New(8).Add(col.New(12).Add(
			text.New(
				"Verifique las cantidades al recibir. El QR identifica esta remisión "+
					"en el libro de movimientos del sistema.",
				props.Text{Size: 6.5, Color: colorGray, Top: 2},
			),
		)),
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// shortID devuelve el primer bloque del UUID, suficiente como número visible de remisión.
func shortID(id string) string {
	if len(id) >= 8 {
		return "R-" + id[:8]
	}
	return "R-" + id
}
