package dto

import "time"

// SubmitCompletionRequest envía una tarea a aprobación.
type SubmitCompletionRequest struct {
	Note string `json:"note"`
}

// ReviewCompletionRequest decisión del revisor sobre una tarea pendiente.
// CompanyID identifica el ledger objetivo: el revisor pertenece a la empresa
// operadora, no al tenant revisado.
type ReviewCompletionRequest struct {
	CompanyID string `json:"company_id"`
	Decision  string `json:"decision"` // approve | reject
	Note      string `json:"note"`
}

// TaskStatusResponse fila vigente del ledger para (empresa, tarea).
// UpdatedAt permite al caller detectar lecturas obsoletas.
type TaskStatusResponse struct {
	CompanyID      string     `json:"company_id"`
	TaskID         string     `json:"task_id"`
	State          string     `json:"state"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	SubmissionNote string     `json:"submission_note,omitempty"`
	ReviewerID     *string    `json:"reviewer_id,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ReviewNote     string     `json:"review_note,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TransitionResponse entrada del historial append-only.
type TransitionResponse struct {
	FromState string    `json:"from_state"`
	ToState   string    `json:"to_state"`
	ActorID   string    `json:"actor_id"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingReviewListResponse cola de revisión para consultores.
type PendingReviewListResponse struct {
	Items []TaskStatusResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
