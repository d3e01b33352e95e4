package notify

import (
	"context"

	"github.com/jhoicas/Consultoria-api/internal/application/ports"
)

// Asegura que NoopNotifier implementa ports.Notifier.
var _ ports.Notifier = (*NoopNotifier)(nil)

// NoopNotifier descarta todos los eventos. Se usa cuando no hay webhook
// configurado y en tests.
type NoopNotifier struct{}

// NewNoopNotifier construye el notificador nulo.
func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (NoopNotifier) TaskReviewed(context.Context, string, string, string)    {}
func (NoopNotifier) ReportPublished(context.Context, string, string, string) {}
