package repository

import (
	"context"

	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
)

// WorkItemRepository puerto de lectura del árbol de trabajo compartido.
// El árbol se siembra por migración y es inmutable en operación normal,
// por eso el puerto no expone escrituras.
type WorkItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.WorkItem, error)
	ListProjects(ctx context.Context) ([]*entity.WorkItem, error)
	ListChildren(ctx context.Context, parentID string) ([]*entity.WorkItem, error)

	// TaskParents resuelve (subproyecto, proyecto) de una tarea, para enrutar
	// la recomputación de agregados. Retorna nil si taskID no es una tarea.
	TaskParents(ctx context.Context, taskID string) (*entity.TaskParents, error)

	// SubProjectIDsUnder devuelve los subproyectos cubiertos por un nodo:
	// proyecto → sus subproyectos; subproyecto → él mismo; tarea → su padre.
	SubProjectIDsUnder(ctx context.Context, workItemID string) ([]string, error)
}
