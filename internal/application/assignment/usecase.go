// Package assignment administra el registro de asignaciones empresa ↔ árbol
// de trabajo y la resolución de alcance. El árbol jamás se duplica por
// empresa: toda la tenencia vive en estas filas.
package assignment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Consultoria-api/internal/application/dto"
	"github.com/jhoicas/Consultoria-api/internal/application/ports"
	appprogress "github.com/jhoicas/Consultoria-api/internal/application/progress"
	"github.com/jhoicas/Consultoria-api/internal/domain"
	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
	"github.com/jhoicas/Consultoria-api/internal/domain/repository"
	"github.com/jhoicas/Consultoria-api/pkg/logger"
)

// UseCase casos de uso del registro de asignaciones.
type UseCase struct {
	tx           ports.TxRunner
	workItemRepo repository.WorkItemRepository
	assignRepo   repository.AssignmentRepository
	companyRepo  repository.CompanyRepository
	log          *logger.Logger
	timeout      time.Duration
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	tx ports.TxRunner,
	workItemRepo repository.WorkItemRepository,
	assignRepo repository.AssignmentRepository,
	companyRepo repository.CompanyRepository,
	log *logger.Logger,
	storeTimeout time.Duration,
) *UseCase {
	return &UseCase{
		tx:           tx,
		workItemRepo: workItemRepo,
		assignRepo:   assignRepo,
		companyRepo:  companyRepo,
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

// Assign crea o reactiva la asignación (empresa, work item). Idempotente:
// asignar algo ya activo devuelve la fila vigente sin efectos. Tras el cambio
// se recomputan los agregados afectados, porque el alcance define totalTasks.
func (uc *UseCase) Assign(ctx context.Context, in dto.AssignRequest) (*dto.AssignmentResponse, error) {
	ctx, cancel := uc.opCtx(ctx)
	defer cancel()

	company, err := uc.companyRepo.GetByID(in.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	wi, err := uc.workItemRepo.GetByID(ctx, in.WorkItemID)
	if err != nil {
		return nil, err
	}
	if wi == nil {
		return nil, domain.ErrNotFound
	}

	a, err := uc.assignRepo.Get(ctx, in.CompanyID, in.WorkItemID)
	if err != nil {
		return nil, err
	}
	switch {
	case a == nil:
		now := time.Now()
		a = &entity.Assignment{
			ID:         uuid.New().String(),
			CompanyID:  in.CompanyID,
			WorkItemID: in.WorkItemID,
			Level:      wi.Level,
			Status:     entity.AssignmentActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := uc.assignRepo.Create(ctx, a); err != nil {
			return nil, err
		}
	case a.Status == entity.AssignmentInactive:
		if err := uc.assignRepo.SetStatus(ctx, a.ID, entity.AssignmentActive); err != nil {
			return nil, err
		}
		a.Status = entity.AssignmentActive
		a.UpdatedAt = time.Now()
	default:
		// Ya activa: idempotente.
		return toAssignmentResponse(a), nil
	}

	if err := uc.recomputeUnder(ctx, in.CompanyID, in.WorkItemID); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("company_id", in.CompanyID).
		Str("work_item_id", in.WorkItemID).
		Str("level", wi.Level).
		Msg("asignación activada")
	return toAssignmentResponse(a), nil
}

// Revoke marca la asignación como inactive (soft-delete). El historial de
// aprobaciones de la empresa NO se borra: el Aggregator simplemente deja de
// contar las tareas que salieron del alcance.
func (uc *UseCase) Revoke(ctx context.Context, in dto.RevokeRequest) error {
	ctx, cancel := uc.opCtx(ctx)
	defer cancel()

	a, err := uc.assignRepo.Get(ctx, in.CompanyID, in.WorkItemID)
	if err != nil {
		return err
	}
	if a == nil {
		return domain.ErrNotFound
	}
	if a.Status == entity.AssignmentInactive {
		return nil // ya revocada: idempotente
	}
	if err := uc.assignRepo.SetStatus(ctx, a.ID, entity.AssignmentInactive); err != nil {
		return err
	}
	if err := uc.recomputeUnder(ctx, in.CompanyID, in.WorkItemID); err != nil {
		return err
	}
	uc.log.Info().
		Str("company_id", in.CompanyID).
		Str("work_item_id", in.WorkItemID).
		Msg("asignación revocada")
	return nil
}

// ResolveScope asignaciones activas de la empresa y la unión deduplicada de
// tareas accionables que producen.
func (uc *UseCase) ResolveScope(ctx context.Context, companyID string) (*dto.ScopeResponse, error) {
	ctx, cancel := uc.opCtx(ctx)
	defer cancel()

	company, err := uc.companyRepo.GetByID(companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	active, err := uc.assignRepo.ListActiveByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	assignments := make([]dto.AssignmentResponse, 0, len(active))
	for _, a := range active {
		assignments = append(assignments, *toAssignmentResponse(a))
	}
	taskIDs, err := uc.assignRepo.ScopeTaskIDs(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return &dto.ScopeResponse{
		CompanyID:   companyID,
		Assignments: assignments,
		TaskIDs:     taskIDs,
		Total:       len(taskIDs),
	}, nil
}

// recomputeUnder recalcula los agregados de los subproyectos cubiertos por el
// work item asignado/revocado, y de sus proyectos, dentro de una transacción.
func (uc *UseCase) recomputeUnder(ctx context.Context, companyID, workItemID string) error {
	subIDs, err := uc.workItemRepo.SubProjectIDsUnder(ctx, workItemID)
	if err != nil {
		return err
	}
	return uc.tx.Run(ctx, func(
		statusRepo repository.TaskStatusRepository,
		assignRepo repository.AssignmentRepository,
		workItemRepo repository.WorkItemRepository,
		progressRepo repository.ProgressRepository,
	) error {
		projects := make(map[string]struct{})
		for _, subID := range subIDs {
			if err := appprogress.RecomputeSubProject(ctx, companyID, subID, assignRepo, statusRepo, progressRepo); err != nil {
				return err
			}
			sub, err := workItemRepo.GetByID(ctx, subID)
			if err != nil {
				return err
			}
			if sub != nil && sub.ParentID != nil {
				projects[*sub.ParentID] = struct{}{}
			}
		}
		for projectID := range projects {
			if err := appprogress.RecomputeProject(ctx, companyID, projectID, assignRepo, statusRepo, progressRepo); err != nil {
				return err
			}
		}
		return nil
	})
}

func toAssignmentResponse(a *entity.Assignment) *dto.AssignmentResponse {
	if a == nil {
		return nil
	}
	return &dto.AssignmentResponse{
		ID:         a.ID,
		CompanyID:  a.CompanyID,
		WorkItemID: a.WorkItemID,
		Level:      a.Level,
		Status:     a.Status,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}
