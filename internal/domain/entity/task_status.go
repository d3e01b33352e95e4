package entity

import "time"

// Estados del ciclo de aprobación de una tarea por empresa.
//
//	not_started → in_progress → pending_approval → {approved | rejected}
//	rejected → in_progress (requiere re-envío)
//
// approved es terminal. La fila se crea de forma perezosa en la primera
// interacción, ya en in_progress.
const (
	StatusNotStarted      = "not_started"
	StatusInProgress      = "in_progress"
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
)

// Decisiones válidas para ReviewCompletion.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// CompanyTaskStatus fila del ledger: estado vigente de (empresa, tarea).
// El historial completo de transiciones vive en task_status_transitions
// (append-only); esta fila es el único estado autoritativo.
type CompanyTaskStatus struct {
	ID             string
	CompanyID      string
	TaskID         string
	State          string
	SubmittedAt    *time.Time
	SubmissionNote string
	ReviewerID     *string
	ReviewedAt     *time.Time
	ReviewNote     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TaskStatusTransition registro inmutable de una transición aceptada.
type TaskStatusTransition struct {
	ID        string
	CompanyID string
	TaskID    string
	FromState string
	ToState   string
	ActorID   string
	Note      string
	CreatedAt time.Time
}

// CanSubmit informa si desde state es legal pasar a pending_approval.
func CanSubmit(state string) bool {
	return state == StatusInProgress || state == StatusRejected
}

// CanReview informa si desde state es legal aprobar o rechazar.
func CanReview(state string) bool {
	return state == StatusPendingApproval
}

// IsTerminal informa si el estado no admite más transiciones.
func IsTerminal(state string) bool {
	return state == StatusApproved
}

// ValidState informa si s es uno de los cinco estados definidos.
func ValidState(s string) bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusPendingApproval, StatusApproved, StatusRejected:
		return true
	}
	return false
}
