package dto

import "time"

// AssignRequest asigna (o reactiva) un nodo del árbol a una empresa.
type AssignRequest struct {
	CompanyID  string `json:"company_id"`
	WorkItemID string `json:"work_item_id"`
}

// RevokeRequest revoca una asignación (soft-delete; el historial se conserva).
type RevokeRequest struct {
	CompanyID  string `json:"company_id"`
	WorkItemID string `json:"work_item_id"`
}

// AssignmentResponse asignación en respuestas.
type AssignmentResponse struct {
	ID         string    `json:"id"`
	CompanyID  string    `json:"company_id"`
	WorkItemID string    `json:"work_item_id"`
	Level      string    `json:"level"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ScopeResponse alcance efectivo de la empresa: las asignaciones activas que
// lo originan y la unión deduplicada de tareas accionables.
type ScopeResponse struct {
	CompanyID   string               `json:"company_id"`
	Assignments []AssignmentResponse `json:"assignments"`
	TaskIDs     []string             `json:"task_ids"`
	Total       int                  `json:"total"`
}
