// Package completion implementa el ledger de completitud y su máquina de
// aprobación. Toda mutación pasa por updates condicionales sobre el estado
// origen; el motor no guarda estado mutable en memoria y delega la
// coordinación entre peticiones concurrentes a PostgreSQL.
package completion

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

// UseCase ciclo submit/review del ledger por (empresa, tarea).
type UseCase struct {
	tx           ports.TxRunner
	workItemRepo repository.WorkItemRepository
	assignRepo   repository.AssignmentRepository
	statusRepo   repository.TaskStatusRepository
	notifier     ports.Notifier
	log          *logger.Logger
	timeout      time.Duration
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	tx ports.TxRunner,
	workItemRepo repository.WorkItemRepository,
	assignRepo repository.AssignmentRepository,
	statusRepo repository.TaskStatusRepository,
	notifier ports.Notifier,
	log *logger.Logger,
	storeTimeout time.Duration,
) *UseCase {
	return &UseCase{
		tx:           tx,
		workItemRepo: workItemRepo,
		assignRepo:   assignRepo,
		statusRepo:   statusRepo,
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

// resolveTask valida que taskID es una tarea dentro del alcance activo de la
// empresa y devuelve sus padres para enrutar la recomputación.
func (uc *UseCase) resolveTask(ctx context.Context, companyID, taskID string) (*entity.TaskParents, error) {
	wi, err := uc.workItemRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if wi == nil || !wi.IsTask() {
		return nil, domain.ErrNotFound
	}
	inScope, err := uc.assignRepo.InScope(ctx, companyID, taskID)
	if err != nil {
		return nil, err
	}
	if !inScope {
		return nil, domain.ErrForbidden
	}
	return uc.workItemRepo.TaskParents(ctx, taskID)
}

// StartTask crea perezosamente la fila del ledger en in_progress.
// Idempotente: si la fila ya existe devuelve el estado vigente sin tocarlo.
func (uc *UseCase) StartTask(ctx context.Context, companyID, taskID, actorID string) (*dto.TaskStatusResponse, error) {
	ctx, cancel := uc.opCtx(ctx)
	defer cancel()

	parents, err := uc.resolveTask(ctx, companyID, taskID)
	if err != nil {
		return nil, err
	}

	var result *entity.CompanyTaskStatus
	err = uc.tx.Run(ctx, func(
		statusRepo repository.TaskStatusRepository,
		_ repository.AssignmentRepository,
		_ repository.WorkItemRepository,
		progressRepo repository.ProgressRepository,
	) error {
		if err := ensureOpen(ctx, progressRepo, companyID, parents.SubProjectID); err != nil {
			return err
		}
		existing, err := statusRepo.Get(ctx, companyID, taskID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return nil
		}
		result, err = lazyInsert(ctx, statusRepo, companyID, taskID, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toTaskStatusResponse(result), nil
}

// SubmitCompletion envía la tarea a aprobación.
//
// Válido desde in_progress o rejected (update condicional sobre ese origen).
// Si la fila no existe aún, se crea perezosamente en in_progress dentro de la
// misma transacción. Si ya está pending_approval la llamada es no-op
// idempotente que devuelve el estado vigente; desde approved falla con
// ErrInvalidTransition. Toda transición aceptada recomputa los agregados del
// subproyecto y proyecto en la misma transacción.
func (uc *UseCase) SubmitCompletion(ctx context.Context, companyID, taskID, actorID, note string) (*dto.TaskStatusResponse, error) {
	ctx, cancel := uc.opCtx(ctx)
	defer cancel()

	parents, err := uc.resolveTask(ctx, companyID, taskID)
	if err != nil {
		return nil, err
	}

	var result *entity.CompanyTaskStatus
	err = uc.tx.Run(ctx, func(
		statusRepo repository.TaskStatusRepository,
		assignRepo repository.AssignmentRepository,
		_ repository.WorkItemRepository,
		progressRepo repository.ProgressRepository,
	) error {
		if err := ensureOpen(ctx, progressRepo, companyID, parents.SubProjectID); err != nil {
			return err
		}
		current, err := statusRepo.Get(ctx, companyID, taskID)
		if err != nil {
			return err
		}
		if current == nil {
			if current, err = lazyInsert(ctx, statusRepo, companyID, taskID, actorID); err != nil {
				return err
			}
		}

		now := time.Now()
		rows, err := statusRepo.MarkSubmitted(ctx, companyID, taskID, note, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			// Otra petición mutó la fila primero: decidir por el estado vigente.
			after, err := statusRepo.Get(ctx, companyID, taskID)
			if err != nil {
				return err
			}
			switch {
			case after == nil:
				return domain.ErrNotFound
			case after.State == entity.StatusPendingApproval:
				// El estado final coincide con la intención: éxito idempotente.
				result = after
				return nil
			case entity.IsTerminal(after.State):
				return domain.ErrInvalidTransition
			default:
				return domain.ErrConflict
			}
		}

		if err := statusRepo.AppendTransition(ctx, &entity.TaskStatusTransition{
			ID:        uuid.New().String(),
			CompanyID: companyID,
			TaskID:    taskID,
			FromState: current.State,
			ToState:   entity.StatusPendingApproval,
			ActorID:   actorID,
			Note:      note,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		if err := recomputeParents(ctx, companyID, parents, assignRepo, statusRepo, progressRepo); err != nil {
			return err
		}
		result, err = statusRepo.Get(ctx, companyID, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toTaskStatusResponse(result), nil
}

// ReviewCompletion decide sobre una tarea pendiente de aprobación.
//
// Válido solo desde pending_approval. Dos revisiones simultáneas producen
// exactamente un resultado: la perdedora ve cero filas afectadas y recibe
// ErrConflict, nunca un efecto duplicado. approve es terminal; reject exige
// un nuevo SubmitCompletion para reentrar al ciclo.
func (uc *UseCase) ReviewCompletion(ctx context.Context, companyID, taskID, reviewerID, decision, note string) (*dto.TaskStatusResponse, error) {
	var toState string
	switch decision {
	case entity.DecisionApprove:
		toState = entity.StatusApproved
	case entity.DecisionReject:
		toState = entity.StatusRejected
	default:
		return nil, domain.ErrInvalidInput
	}

	ctx, cancel := uc.opCtx(ctx)
	defer cancel()

	parents, err := uc.resolveTask(ctx, companyID, taskID)
	if err != nil {
		return nil, err
	}

	var result *entity.CompanyTaskStatus
	err = uc.tx.Run(ctx, func(
		statusRepo repository.TaskStatusRepository,
		assignRepo repository.AssignmentRepository,
		_ repository.WorkItemRepository,
		progressRepo repository.ProgressRepository,
	) error {
		now := time.Now()
		rows, err := statusRepo.MarkReviewed(ctx, companyID, taskID, reviewerID, toState, note, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			after, err := statusRepo.Get(ctx, companyID, taskID)
			if err != nil {
				return err
			}
			if after == nil {
				return domain.ErrNotFound
			}
			// approved/rejected: otro revisor ganó la carrera. La aprobación no
			// es idempotente, así que el perdedor recibe Conflict.
			if after.State == entity.StatusApproved || after.State == entity.StatusRejected {
				return domain.ErrConflict
			}
			return domain.ErrInvalidTransition
		}

		if err := statusRepo.AppendTransition(ctx, &entity.TaskStatusTransition{
			ID:        uuid.New().String(),
			CompanyID: companyID,
			TaskID:    taskID,
			FromState: entity.StatusPendingApproval,
			ToState:   toState,
			ActorID:   reviewerID,
			Note:      note,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		if err := recomputeParents(ctx, companyID, parents, assignRepo, statusRepo, progressRepo); err != nil {
			return err
		}
		result, err = statusRepo.Get(ctx, companyID, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("company_id", companyID).
		Str("task_id", taskID).
		Str("decision", decision).
		Str("reviewer_id", reviewerID).
		Msg("revisión de tarea registrada")

	// Notificación best-effort tras el commit: no bloquea ni revierte.
	go uc.notifier.TaskReviewed(context.WithoutCancel(ctx), companyID, taskID, decision)

	return toTaskStatusResponse(result), nil
}

// GetTaskStatus estado vigente + historial de transiciones de (empresa, tarea).
func (uc *UseCase) GetTaskStatus(ctx context.Context, companyID, taskID string) (*dto.TaskStatusResponse, []dto.TransitionResponse, error) {
	ctx, cancel := uc.opCtx(ctx)
	defer cancel()

	s, err := uc.statusRepo.Get(ctx, companyID, taskID)
	if err != nil {
		return nil, nil, err
	}
	if s == nil {
		return nil, nil, domain.ErrNotFound
	}
	history, err := uc.statusRepo.ListTransitions(ctx, companyID, taskID)
	if err != nil {
		return nil, nil, err
	}
	items := make([]dto.TransitionResponse, 0, len(history))
	for _, t := range history {
		items = append(items, dto.TransitionResponse{
			FromState: t.FromState,
			ToState:   t.ToState,
			ActorID:   t.ActorID,
			Note:      t.Note,
			CreatedAt: t.CreatedAt,
		})
	}
	return toTaskStatusResponse(s), items, nil
}

// ListPendingReviews cola de tareas pendientes de aprobación (todas las empresas).
func (uc *UseCase) ListPendingReviews(ctx context.Context, limit, offset int) (*dto.PendingReviewListResponse, error) {
	ctx, cancel := uc.opCtx(ctx)
	defer cancel()

	list, err := uc.statusRepo.ListPendingApproval(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TaskStatusResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toTaskStatusResponse(s))
	}
	return &dto.PendingReviewListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// ensureOpen rechaza mutaciones sobre un subproyecto ya evaluado para la empresa.
func ensureOpen(ctx context.Context, progressRepo repository.ProgressRepository, companyID, subProjectID string) error {
	c, err := progressRepo.GetSubProjectCompletion(ctx, companyID, subProjectID)
	if err != nil {
		return err
	}
	if c != nil && c.Evaluated {
		return domain.ErrClosed
	}
	return nil
}

// lazyInsert crea la fila del ledger en in_progress con su transición inicial.
func lazyInsert(ctx context.Context, statusRepo repository.TaskStatusRepository, companyID, taskID, actorID string) (*entity.CompanyTaskStatus, error) {
	now := time.Now()
	s := &entity.CompanyTaskStatus{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		TaskID:    taskID,
		State:     entity.StatusInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := statusRepo.Insert(ctx, s); err != nil {
		return nil, err
	}
	return s, statusRepo.AppendTransition(ctx, &entity.TaskStatusTransition{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		TaskID:    taskID,
		FromState: entity.StatusNotStarted,
		ToState:   entity.StatusInProgress,
		ActorID:   actorID,
		CreatedAt: now,
	})
}

func recomputeParents(
	ctx context.Context,
	companyID string,
	parents *entity.TaskParents,
	assignRepo repository.AssignmentRepository,
	statusRepo repository.TaskStatusRepository,
	progressRepo repository.ProgressRepository,
) error {
	if err := appprogress.RecomputeSubProject(ctx, companyID, parents.SubProjectID, assignRepo, statusRepo, progressRepo); err != nil {
		return err
	}
	return appprogress.RecomputeProject(ctx, companyID, parents.ProjectID, assignRepo, statusRepo, progressRepo)
}

func toTaskStatusResponse(s *entity.CompanyTaskStatus) *dto.TaskStatusResponse {
	if s == nil {
		return nil
	}
	return &dto.TaskStatusResponse{
		CompanyID:      s.CompanyID,
		TaskID:         s.TaskID,
		State:          s.State,
		SubmittedAt:    s.SubmittedAt,
		SubmissionNote: s.SubmissionNote,
		ReviewerID:     s.ReviewerID,
		ReviewedAt:     s.ReviewedAt,
		ReviewNote:     s.ReviewNote,
		UpdatedAt:      s.UpdatedAt,
	}
}
