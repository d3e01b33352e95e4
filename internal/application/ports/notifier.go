package ports

import "context"

// Notifier entrega eventos a sistemas externos (webhook, email, push).
// Es best-effort y fire-and-forget: un fallo aquí jamás revierte ni bloquea
// la transición del ledger que lo originó; la implementación registra el
// error y sigue.
type Notifier interface {
	// TaskReviewed notifica la decisión (approve/reject) sobre una tarea.
	TaskReviewed(ctx context.Context, companyID, taskID, decision string)
	// ReportPublished notifica la publicación del reporte de evaluación.
	ReportPublished(ctx context.Context, companyID, subProjectID, reportID string)
}
