// Package export serializa reportes de evaluación publicados a XML de
// intercambio, para que las herramientas externas del programa (seguimiento,
// archivado) los consuman sin pasar por la API.
package export

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/jhoicas/Consultoria-api/internal/application/evaluation"
	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
)

// Asegura que XMLExporter implementa evaluation.ReportXMLExporter.
var _ evaluation.ReportXMLExporter = (*XMLExporter)(nil)

// XMLExporter serializador XML basado en etree.
type XMLExporter struct{}

// NewXMLExporter construye el exportador.
func NewXMLExporter() *XMLExporter { return &XMLExporter{} }

// ExportReportXML serializa el reporte publicado.
//
// Estructura:
//
//	<ReporteEvaluacion id="..." version="1.0">
//	  <Empresa nit="..."><Nombre/></Empresa>
//	  <Subproyecto id="..."><Nombre/></Subproyecto>
//	  <Completitud total="" aprobadas="" porcentaje="" fecha=""/>
//	  <Calificacion>87.50</Calificacion>
//	  <Fortalezas/> <Debilidades/> <Recomendaciones/>
//	  <Publicacion consultor="" fecha=""/>
//	</ReporteEvaluacion>
func (e *XMLExporter) ExportReportXML(
	report *entity.EvaluationReport,
	company *entity.Company,
	subProject *entity.WorkItem,
	completion *entity.SubProjectCompletion,
) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("ReporteEvaluacion")
	root.CreateAttr("id", report.ID)
	root.CreateAttr("version", "1.0")

	emp := root.CreateElement("Empresa")
	emp.CreateAttr("id", company.ID)
	emp.CreateAttr("nit", company.NIT)
	emp.CreateElement("Nombre").SetText(company.Name)

	sub := root.CreateElement("Subproyecto")
	sub.CreateAttr("id", subProject.ID)
	sub.CreateElement("Nombre").SetText(subProject.Name)

	comp := root.CreateElement("Completitud")
	comp.CreateAttr("total", fmt.Sprintf("%d", completion.TotalTasks))
	comp.CreateAttr("aprobadas", fmt.Sprintf("%d", completion.CompletedTasks))
	comp.CreateAttr("porcentaje", fmt.Sprintf("%d", completion.Rate))
	if completion.CompletionDate != nil {
		comp.CreateAttr("fecha", completion.CompletionDate.Format("2006-01-02"))
	}

	root.CreateElement("Calificacion").SetText(report.Score.StringFixed(2))
	root.CreateElement("Fortalezas").SetText(report.Strengths)
	root.CreateElement("Debilidades").SetText(report.Weaknesses)
	root.CreateElement("Recomendaciones").SetText(report.Recommendations)

	pub := root.CreateElement("Publicacion")
	pub.CreateAttr("consultor", report.CreatedBy)
	if report.PublishedAt != nil {
		pub.CreateAttr("fecha", report.PublishedAt.Format("2006-01-02T15:04:05Z07:00"))
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("export: serializar reporte: %w", err)
	}
	return out, nil
}
