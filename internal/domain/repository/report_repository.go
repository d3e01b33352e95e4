package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
)

// ReportRepository puerto de persistencia de reportes de evaluación.
// El índice único (company_id, sub_project_id) es el respaldo del invariante
// "un reporte por par"; Create debe traducir esa violación a ErrAlreadyExists.
type ReportRepository interface {
	Create(ctx context.Context, r *entity.EvaluationReport) error
	GetByID(ctx context.Context, id string) (*entity.EvaluationReport, error)
	GetByCompanyAndSubProject(ctx context.Context, companyID, subProjectID string) (*entity.EvaluationReport, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.EvaluationReport, error)

	// MarkPublished transición guardada draft → published. Retorna filas afectadas.
	MarkPublished(ctx context.Context, id string, at time.Time) (int64, error)
}
