package channel

import (
	"context"
	"log/slog"

	"github.com/educonnect/reengage-engine/internal/models"
)

// SMSAdapter is a placeholder: no SMS provider has been contracted yet, so
// every send reports success without any network call. Swap the body for a
// real provider client once one is chosen.
type SMSAdapter struct {
	logger *slog.Logger
}

// NewSMSAdapter creates the stub SMS adapter
func NewSMSAdapter(logger *slog.Logger) *SMSAdapter {
	return &SMSAdapter{logger: logger}
}

// Send pretends to deliver the message and always succeeds
func (a *SMSAdapter) Send(ctx context.Context, lead *models.Lead, message string) models.DispatchOutcome {
	a.logger.Info("sms dispatch (stub)",
		slog.Int64("lead_id", lead.ID),
		slog.String("phone", lead.Phone),
	)
	return success(lead, models.ChannelSMS, message, "")
}
