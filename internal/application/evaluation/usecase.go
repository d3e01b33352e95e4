// Package evaluation implementa el flujo de evaluación: elegibilidad al
// completar un subproyecto, creación única del reporte, publicación y
// entregables (PDF/XML). Publicar cierra el subproyecto para la empresa.
package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Consultoria-api/internal/application/dto"
	"github.com/jhoicas/Consultoria-api/internal/application/ports"
	"github.com/jhoicas/Consultoria-api/internal/domain"
	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
	"github.com/jhoicas/Consultoria-api/internal/domain/repository"
	"github.com/jhoicas/Consultoria-api/pkg/logger"
)

var scoreMax = decimal.NewFromInt(100)

// UseCase flujo de evaluación y reportes.
type UseCase struct {
	tx           ports.TxRunner
	workItemRepo repository.WorkItemRepository
	progressRepo repository.ProgressRepository
	reportRepo   repository.ReportRepository
	companyRepo  repository.CompanyRepository
	pdfGen       ReportPDFGenerator
	xmlExporter  ReportXMLExporter
	notifier     ports.Notifier
	log          *logger.Logger
	timeout      time.Duration
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	tx ports.TxRunner,
	workItemRepo repository.WorkItemRepository,
	progressRepo repository.ProgressRepository,
	reportRepo repository.ReportRepository,
	companyRepo repository.CompanyRepository,
	pdfGen ReportPDFGenerator,
	xmlExporter ReportXMLExporter,
	notifier ports.Notifier,
	log *logger.Logger,
	storeTimeout time.Duration,
) *UseCase {
	return &UseCase{
		tx:           tx,
		workItemRepo: workItemRepo,
		progressRepo: progressRepo,
		reportRepo:   reportRepo,
		companyRepo:  companyRepo,
		pdfGen:       pdfGen,
		xmlExporter:  xmlExporter,
		notifier:     notifier,
		log:          log,
		timeout:      storeTimeout,
	}
}

func (uc *UseCase) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, uc.timeout)
}

// IsEligible true si el subproyecto está completo al 100% para la empresa y
// aún no existe reporte para el par.
func (uc *UseCase) IsEligible(ctx context.Context, companyID, subProjectID string) (*dto.EligibilityResponse, error) {
	ctx, cancel := uc.opCtx(ctx)
	defer cancel()

	out := &dto.EligibilityResponse{CompanyID: companyID, SubProjectID: subProjectID}
	completion, err := uc.progressRepo.GetSubProjectCompletion(ctx, companyID, subProjectID)
	if err != nil {
		return nil, err
	}
	if completion == nil || !completion.AllCompleted {
		out.Reason = "el subproyecto no está completo al 100%"
		return out, nil
	}
	if completion.Evaluated {
		out.Reason = "el subproyecto ya fue evaluado"
		return out, nil
	}
	existing, err := uc.reportRepo.GetByCompanyAndSubProject(ctx, companyID, subProjectID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		out.Reason = "ya existe un reporte para el par (empresa, subproyecto)"
		return out, nil
	}
	out.Eligible = true
	return out, nil
}

// CreateReport crea el borrador del reporte. Falla con ErrNotEligible si el
// subproyecto no está completo, y con ErrAlreadyExists si ya hay reporte para
// el par. El invariante "a lo sumo uno" se hace cumplir aquí y lo respalda
// el índice único en la tabla.
func (uc *UseCase) CreateReport(ctx context.Context, createdBy string, in dto.CreateReportRequest) (*dto.ReportResponse, error) {
	if in.Score.IsNegative() || in.Score.GreaterThan(scoreMax) {
		return nil, domain.ErrInvalidInput
	}

	ctx, cancel := uc.opCtx(ctx)
	defer cancel()

	completion, err := uc.progressRepo.GetSubProjectCompletion(ctx, in.CompanyID, in.SubProjectID)
	if err != nil {
		return nil, err
	}
	if completion == nil || !completion.AllCompleted || completion.Evaluated {
		return nil, domain.ErrNotEligible
	}
	existing, err := uc.reportRepo.GetByCompanyAndSubProject(ctx, in.CompanyID, in.SubProjectID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAlreadyExists
	}

	now := time.Now()
	r := &entity.EvaluationReport{
		ID:              uuid.New().String(),
		CompanyID:       in.CompanyID,
		SubProjectID:    in.SubProjectID,
		Score:           in.Score,
		Strengths:       in.Strengths,
		Weaknesses:      in.Weaknesses,
		Recommendations: in.Recommendations,
		Status:          entity.ReportDraft,
		CreatedBy:       createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	// El índice único traduce la carrera entre dos CreateReport a ErrAlreadyExists.
	if err := uc.reportRepo.Create(ctx, r); err != nil {
		return nil, err
	}
	return toReportResponse(r), nil
}

// PublishReport transición draft → published (update guardado). En la misma
// transacción el agregado del subproyecto pasa a evaluated: desde entonces no
// se aceptan más envíos de tareas de ese subproyecto para la empresa. Si el
// agregado ya no está al 100% la publicación falla con ErrNotEligible y nada
// queda a medias.
func (uc *UseCase) PublishReport(ctx context.Context, reportID string) (*dto.ReportResponse, error) {
	ctx, cancel := uc.opCtx(ctx)
	defer cancel()

	r, err := uc.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}

	err = uc.tx.RunEvaluation(ctx, func(
		progressRepo repository.ProgressRepository,
		reportRepo repository.ReportRepository,
	) error {
		now := time.Now()
		rows, err := reportRepo.MarkPublished(ctx, reportID, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			// Ya publicado (o en carrera con otra publicación): no repetible.
			return domain.ErrInvalidTransition
		}
		evRows, err := progressRepo.MarkEvaluated(ctx, r.CompanyID, r.SubProjectID, now)
		if err != nil {
			return err
		}
		if evRows == 0 {
			// El agregado dejó de estar al 100% entre el borrador y la
			// publicación (p. ej. el alcance creció). Abortar la transacción:
			// un reporte publicado exige el subproyecto cerrado.
			return domain.ErrNotEligible
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r, err = uc.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("report_id", reportID).
		Str("company_id", r.CompanyID).
		Str("sub_project_id", r.SubProjectID).
		Msg("reporte de evaluación publicado")

	go uc.notifier.ReportPublished(context.WithoutCancel(ctx), r.CompanyID, r.SubProjectID, r.ID)

	return toReportResponse(r), nil
}

// GetReport recupera un reporte. requesterCompanyID vacío = operador del
// programa (consultor/admin); si no, debe coincidir con la empresa del reporte.
func (uc *UseCase) GetReport(ctx context.Context, requesterCompanyID, reportID string) (*dto.ReportResponse, error) {
	ctx, cancel := uc.opCtx(ctx)
	defer cancel()

	r, err := uc.loadOwned(ctx, requesterCompanyID, reportID)
	if err != nil {
		return nil, err
	}
	return toReportResponse(r), nil
}

// DownloadReportPDF genera el PDF del reporte. Solo reportes publicados.
//
// Retorna:
//   - (pdfBytes, filename, nil)   si todo sale bien.
//   - domain.ErrNotFound          si el reporte no existe.
//   - domain.ErrForbidden         si el reporte no pertenece a la empresa del token.
//   - domain.ErrInvalidInput      si el reporte sigue en borrador.
func (uc *UseCase) DownloadReportPDF(ctx context.Context, requesterCompanyID, reportID string) ([]byte, string, error) {
	ctx, cancel := uc.opCtx(ctx)
	defer cancel()

	r, company, subProject, completion, err := uc.loadPublished(ctx, requesterCompanyID, reportID)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err := uc.pdfGen.GenerateReportPDF(ctx, r, company, subProject, completion)
	if err != nil {
		return nil, "", fmt.Errorf("generar PDF del reporte: %w", err)
	}
	return pdfBytes, fmt.Sprintf("evaluacion_%s.pdf", r.ID), nil
}

// ExportReportXML serializa el reporte publicado a XML de intercambio.
func (uc *UseCase) ExportReportXML(ctx context.Context, requesterCompanyID, reportID string) ([]byte, string, error) {
	ctx, cancel := uc.opCtx(ctx)
	defer cancel()

	r, company, subProject, completion, err := uc.loadPublished(ctx, requesterCompanyID, reportID)
	if err != nil {
		return nil, "", err
	}
	xmlBytes, err := uc.xmlExporter.ExportReportXML(r, company, subProject, completion)
	if err != nil {
		return nil, "", fmt.Errorf("exportar XML del reporte: %w", err)
	}
	return xmlBytes, fmt.Sprintf("evaluacion_%s.xml", r.ID), nil
}

// ListReports reportes de una empresa (para su tablero).
func (uc *UseCase) ListReports(ctx context.Context, companyID string) ([]dto.ReportResponse, error) {
	ctx, cancel := uc.opCtx(ctx)
	defer cancel()

	list, err := uc.reportRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReportResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toReportResponse(r))
	}
	return items, nil
}

func (uc *UseCase) loadOwned(ctx context.Context, requesterCompanyID, reportID string) (*entity.EvaluationReport, error) {
	r, err := uc.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	if requesterCompanyID != "" && r.CompanyID != requesterCompanyID {
		return nil, domain.ErrForbidden
	}
	return r, nil
}

func (uc *UseCase) loadPublished(ctx context.Context, requesterCompanyID, reportID string) (
	*entity.EvaluationReport, *entity.Company, *entity.WorkItem, *entity.SubProjectCompletion, error,
) {
	r, err := uc.loadOwned(ctx, requesterCompanyID, reportID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if r.Status != entity.ReportPublished {
		return nil, nil, nil, nil, domain.ErrInvalidInput
	}
	company, err := uc.companyRepo.GetByID(r.CompanyID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if company == nil {
		return nil, nil, nil, nil, domain.ErrNotFound
	}
	subProject, err := uc.workItemRepo.GetByID(ctx, r.SubProjectID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	completion, err := uc.progressRepo.GetSubProjectCompletion(ctx, r.CompanyID, r.SubProjectID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return r, company, subProject, completion, nil
}

func toReportResponse(r *entity.EvaluationReport) *dto.ReportResponse {
	if r == nil {
		return nil
	}
	return &dto.ReportResponse{
		ID:              r.ID,
		CompanyID:       r.CompanyID,
		SubProjectID:    r.SubProjectID,
		Score:           r.Score,
		Strengths:       r.Strengths,
		Weaknesses:      r.Weaknesses,
		Recommendations: r.Recommendations,
		Status:          r.Status,
		CreatedBy:       r.CreatedBy,
		PublishedAt:     r.PublishedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
