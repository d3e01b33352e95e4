// Package notify implementa la entrega de eventos del programa a sistemas
// externos vía webhook HTTP. Es best-effort: los fallos se registran y se
// descartan, nunca afectan la transición que originó el evento.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jhoicas/Consultoria-api/internal/application/ports"
	"github.com/jhoicas/Consultoria-api/pkg/config"
	"github.com/jhoicas/Consultoria-api/pkg/logger"
)

// Asegura que WebhookNotifier implementa ports.Notifier.
var _ ports.Notifier = (*WebhookNotifier)(nil)

// WebhookNotifier entrega eventos como POST JSON a un endpoint configurado.
type WebhookNotifier struct {
	url    string
	client *http.Client
	log    *logger.Logger
}

// NewWebhookNotifier construye el notificador con el timeout de la config.
func NewWebhookNotifier(cfg config.NotifyConfig, log *logger.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url: cfg.WebhookURL,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		log: log,
	}
}

type webhookEvent struct {
	Event        string `json:"event"`
	CompanyID    string `json:"company_id"`
	TaskID       string `json:"task_id,omitempty"`
	SubProjectID string `json:"sub_project_id,omitempty"`
	ReportID     string `json:"report_id,omitempty"`
	Decision     string `json:"decision,omitempty"`
	OccurredAt   string `json:"occurred_at"`
}

// TaskReviewed notifica la decisión sobre una tarea enviada a revisión.
func (n *WebhookNotifier) TaskReviewed(ctx context.Context, companyID, taskID, decision string) {
	n.post(ctx, webhookEvent{
		Event:     "task.reviewed",
		CompanyID: companyID,
		TaskID:    taskID,
		Decision:  decision,
	})
}

// ReportPublished notifica la publicación de un reporte de evaluación.
func (n *WebhookNotifier) ReportPublished(ctx context.Context, companyID, subProjectID, reportID string) {
	n.post(ctx, webhookEvent{
		Event:        "report.published",
		CompanyID:    companyID,
		SubProjectID: subProjectID,
		ReportID:     reportID,
	})
}

func (n *WebhookNotifier) post(ctx context.Context, ev webhookEvent) {
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)

	body, err := json.Marshal(ev)
	if err != nil {
		n.log.Error().Err(err).Str("event", ev.Event).Msg("webhook: serializar evento")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.log.Error().Err(err).Str("event", ev.Event).Msg("webhook: crear request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Warn().Err(err).Str("event", ev.Event).Msg("webhook: entrega fallida")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.log.Warn().
			Str("event", ev.Event).
			Int("status", resp.StatusCode).
			Msg(fmt.Sprintf("webhook: respuesta no exitosa de %s", n.url))
		return
	}
	n.log.Debug().Str("event", ev.Event).Str("company_id", ev.CompanyID).Msg("webhook: evento entregado")
}
