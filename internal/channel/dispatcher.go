// Package channel contains the delivery adapters. Every adapter converts
// whatever goes wrong (missing configuration, transport failures, non-2xx
// responses) into a failed DispatchOutcome; nothing here returns an error
// to the run loop.
package channel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/educonnect/reengage-engine/internal/models"
)

// Adapter delivers a message to a lead on one specific channel
type Adapter interface {
	Send(ctx context.Context, lead *models.Lead, message string) models.DispatchOutcome
}

// Dispatcher routes a rendered message to the adapter for its channel
type Dispatcher struct {
	chat   Adapter
	email  Adapter
	sms    Adapter
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher over the three channel adapters
func NewDispatcher(chat, email, sms Adapter, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		chat:   chat,
		email:  email,
		sms:    sms,
		logger: logger,
	}
}

// Send routes the message to the adapter for ch and returns its outcome.
// An unsupported channel yields a failure outcome, not an error.
func (d *Dispatcher) Send(ctx context.Context, ch models.Channel, lead *models.Lead, message string) models.DispatchOutcome {
	switch ch {
	case models.ChannelChat:
		return d.chat.Send(ctx, lead, message)
	case models.ChannelEmail:
		return d.email.Send(ctx, lead, message)
	case models.ChannelSMS:
		return d.sms.Send(ctx, lead, message)
	default:
		d.logger.Warn("unsupported channel requested",
			slog.String("channel", string(ch)),
			slog.Int64("lead_id", lead.ID),
		)
		return failure(lead, ch, message, fmt.Sprintf("unsupported channel: %s", ch))
	}
}

func success(lead *models.Lead, ch models.Channel, message, providerID string) models.DispatchOutcome {
	return models.DispatchOutcome{
		LeadID:     lead.ID,
		Channel:    ch,
		Message:    message,
		Success:    true,
		ProviderID: providerID,
		Timestamp:  time.Now(),
	}
}

func failure(lead *models.Lead, ch models.Channel, message, detail string) models.DispatchOutcome {
	return models.DispatchOutcome{
		LeadID:    lead.ID,
		Channel:   ch,
		Message:   message,
		Success:   false,
		Error:     detail,
		Timestamp: time.Now(),
	}
}
