// Package pdf implementa la representación gráfica del Reporte de Evaluación
// de un subproyecto completado.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + NIT  │  Subproyecto + Fecha publicación   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: tareas totales / aprobadas / % / fecha completitud │
//	│  CALIFICACIÓN: score destacado                               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FORTALEZAS / DEBILIDADES / RECOMENDACIONES                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: leyenda del programa de consultoría                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/jhoicas/Consultoria-api/internal/application/evaluation"
	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// Asegura que MarotoReportGenerator implementa evaluation.ReportPDFGenerator.
var _ evaluation.ReportPDFGenerator = (*MarotoReportGenerator)(nil)

// MarotoReportGenerator implementa evaluation.ReportPDFGenerator usando Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// GenerateReportPDF genera el PDF del reporte publicado y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateReportPDF(
	_ context.Context,
	report *entity.EvaluationReport,
	company *entity.Company,
	subProject *entity.WorkItem,
	completion *entity.SubProjectCompletion,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de Evaluación", true).
		WithAuthor(company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report, company, subProject))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(completion))
	m.AddRows(scoreRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	for _, r := range sectionRows("FORTALEZAS", report.Strengths) {
		m.AddRows(r)
	}
	for _, r := range sectionRows("DEBILIDADES", report.Weaknesses) {
		m.AddRows(r)
	}
	for _, r := range sectionRows("RECOMENDACIONES", report.Recommendations) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa + NIT (izq) y subproyecto + fecha de publicación (der).
func headerRow(report *entity.EvaluationReport, company *entity.Company, subProject *entity.WorkItem) core.Row {
	fecha := "—"
	if report.PublishedAt != nil {
		fecha = report.PublishedAt.Format("02/01/2006")
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("NIT: "+company.NIT, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("REPORTE DE EVALUACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(subProject.Name, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
			text.New("Publicado: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// summaryRow: resumen de completitud del subproyecto.
func summaryRow(completion *entity.SubProjectCompletion) core.Row {
	fecha := "—"
	if completion.CompletionDate != nil {
		fecha = completion.CompletionDate.Format("02/01/2006")
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("RESUMEN DE COMPLETITUD", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Tareas: %d de %d aprobadas (%d%%)   |   Completado el: %s",
				completion.CompletedTasks, completion.TotalTasks, completion.Rate, fecha,
			), props.Text{Size: 9, Top: 7, Color: colorGray}),
		),
	)
}

// scoreRow: calificación destacada.
func scoreRow(report *entity.EvaluationReport) core.Row {
	return row.New(16).Add(
		col.New(12).Add(
			text.New("CALIFICACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(report.Score.StringFixed(2)+" / 100", props.Text{
				Style: fontstyle.Bold, Size: 16, Top: 6, Color: colorPrimary,
			}),
		),
	)
}

// sectionRows: título de sección + cuerpo de texto libre.
func sectionRows(title, body string) []core.Row {
	if body == "" {
		body = "—"
	}
	return []core.Row{
		row.New(7).Add(col.New(12).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
			}),
		)),
		text.NewAutoRow(body, props.Text{Size: 9, Top: 1, Left: 2}),
	}
}

// footerRow: leyenda del programa.
func footerRow(report *entity.EvaluationReport) core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New(
			"Reporte emitido dentro del programa de consultoría empresarial. "+
				"Evaluado por consultor "+report.CreatedBy+". "+
				"Este documento es inmutable tras su publicación.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	))
}
