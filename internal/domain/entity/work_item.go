package entity

import "time"

// Niveles del árbol de trabajo. La jerarquía es fija de tres niveles:
// project → sub_project → task.
const (
	LevelProject    = "project"
	LevelSubProject = "sub_project"
	LevelTask       = "task"
)

// WorkItem nodo del árbol de trabajo compartido entre todos los tenants.
// El árbol es inmutable en operación normal y NUNCA se duplica por empresa:
// una tarea tiene exactamente un subproyecto padre y un subproyecto
// exactamente un proyecto padre.
type WorkItem struct {
	ID          string
	ParentID    *string // nil solo para level = project
	Level       string  // project, sub_project, task
	Name        string
	Description string
	Position    int // orden de presentación dentro del padre
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsTask informa si el nodo es una tarea (hoja del árbol).
func (w *WorkItem) IsTask() bool { return w.Level == LevelTask }

// TaskParents par (subproyecto, proyecto) que contienen a una tarea.
// Se usa para enrutar la recomputación de agregados tras cada transición.
type TaskParents struct {
	SubProjectID string
	ProjectID    string
}
