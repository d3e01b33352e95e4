package evaluation

import (
	"context"

	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
)

// ReportPDFGenerator genera la representación gráfica del reporte publicado.
// La implementación (Maroto) vive en infrastructure/pdf.
type ReportPDFGenerator interface {
	GenerateReportPDF(
		ctx context.Context,
		report *entity.EvaluationReport,
		company *entity.Company,
		subProject *entity.WorkItem,
		completion *entity.SubProjectCompletion,
	) ([]byte, error)
}

// ReportXMLExporter serializa el reporte publicado a XML de intercambio para
// herramientas externas de consultoría. Implementación en infrastructure/export.
type ReportXMLExporter interface {
	ExportReportXML(
		report *entity.EvaluationReport,
		company *entity.Company,
		subProject *entity.WorkItem,
		completion *entity.SubProjectCompletion,
	) ([]byte, error)
}
