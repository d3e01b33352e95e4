package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Consultoria-api/internal/domain"
	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
	"github.com/jhoicas/Consultoria-api/internal/domain/repository"
)

// Asegura que ReportRepo implementa repository.ReportRepository.
var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo persistencia de reportes de evaluación (usable con pool o tx).
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

const reportColumns = `id, company_id, sub_project_id, score, strengths, weaknesses,
	recommendations, status, created_by, published_at, created_at, updated_at`

// Create persiste un reporte en borrador. El índice único
// (company_id, sub_project_id) respalda el invariante de un reporte por par:
// su violación se traduce a ErrAlreadyExists.
func (r *ReportRepo) Create(ctx context.Context, rep *entity.EvaluationReport) error {
	query := `
		INSERT INTO evaluation_reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		rep.ID, rep.CompanyID, rep.SubProjectID, rep.Score, rep.Strengths, rep.Weaknesses,
		rep.Recommendations, rep.Status, rep.CreatedBy, rep.PublishedAt, rep.CreatedAt, rep.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert report: %w", domain.ErrAlreadyExists)
		}
		return mapStoreErr("insert report", err)
	}
	return nil
}

// GetByID obtiene un reporte por ID. nil si no existe.
func (r *ReportRepo) GetByID(ctx context.Context, id string) (*entity.EvaluationReport, error) {
	query := `SELECT ` + reportColumns + ` FROM evaluation_reports WHERE id = $1`
	return r.one(ctx, query, id)
}

// GetByCompanyAndSubProject obtiene el reporte del par. nil si no existe.
func (r *ReportRepo) GetByCompanyAndSubProject(ctx context.Context, companyID, subProjectID string) (*entity.EvaluationReport, error) {
	query := `SELECT ` + reportColumns + ` FROM evaluation_reports WHERE company_id = $1 AND sub_project_id = $2`
	return r.one(ctx, query, companyID, subProjectID)
}

// ListByCompany reportes de la empresa, más recientes primero.
func (r *ReportRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.EvaluationReport, error) {
	query := `SELECT ` + reportColumns + ` FROM evaluation_reports WHERE company_id = $1 ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, mapStoreErr("list reports", err)
	}
	defer rows.Close()

	var list []*entity.EvaluationReport
	for rows.Next() {
		var rep entity.EvaluationReport
		if err := rows.Scan(
			&rep.ID, &rep.CompanyID, &rep.SubProjectID, &rep.Score, &rep.Strengths, &rep.Weaknesses,
			&rep.Recommendations, &rep.Status, &rep.CreatedBy, &rep.PublishedAt, &rep.CreatedAt, &rep.UpdatedAt,
		); err != nil {
			return nil, mapStoreErr("scan report", err)
		}
		list = append(list, &rep)
	}
	return list, rows.Err()
}

// MarkPublished transición guardada draft → published. Cero filas si el
// reporte no existe o ya se publicó.
func (r *ReportRepo) MarkPublished(ctx context.Context, id string, at time.Time) (int64, error) {
	query := `
		UPDATE evaluation_reports
		SET status = $2, published_at = $3, updated_at = $3
		WHERE id = $1 AND status = $4`
	tag, err := r.q.Exec(ctx, query, id, entity.ReportPublished, at, entity.ReportDraft)
	if err != nil {
		return 0, mapStoreErr("mark published", err)
	}
	return tag.RowsAffected(), nil
}

func (r *ReportRepo) one(ctx context.Context, query string, args ...any) (*entity.EvaluationReport, error) {
	var rep entity.EvaluationReport
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&rep.ID, &rep.CompanyID, &rep.SubProjectID, &rep.Score, &rep.Strengths, &rep.Weaknesses,
		&rep.Recommendations, &rep.Status, &rep.CreatedBy, &rep.PublishedAt, &rep.CreatedAt, &rep.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapStoreErr("get report", err)
	}
	return &rep, nil
}
