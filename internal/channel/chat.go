package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/educonnect/reengage-engine/internal/models"
	"github.com/educonnect/reengage-engine/internal/repository"
)

// ChatAdapter sends messages through the chat gateway. Each send is a single
// POST to /message/sendText/{instanceID}; there are no retries here.
type ChatAdapter struct {
	baseURL     string
	apiKey      string
	countryCode string
	client      *http.Client
	orgRepo     repository.OrgSettingsRepository
	logger      *slog.Logger
}

// ChatConfig holds chat adapter construction parameters
type ChatConfig struct {
	BaseURL     string
	APIKey      string
	CountryCode string
}

// NewChatAdapter creates a new chat adapter
func NewChatAdapter(cfg ChatConfig, orgRepo repository.OrgSettingsRepository, client *http.Client, logger *slog.Logger) *ChatAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &ChatAdapter{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		countryCode: cfg.CountryCode,
		client:      client,
		orgRepo:     orgRepo,
		logger:      logger,
	}
}

type sendTextRequest struct {
	Number  string `json:"number"`
	Text    string `json:"text"`
	Delay   int    `json:"delay"`
	Message struct {
		Conversation string `json:"conversation"`
	} `json:"message"`
}

type sendTextResponse struct {
	Key struct {
		ID string `json:"id"`
	} `json:"key"`
}

// Send delivers the message to the lead's phone through the organization's
// connected gateway instance. Without a connected instance no HTTP call is
// made at all.
func (a *ChatAdapter) Send(ctx context.Context, lead *models.Lead, message string) models.DispatchOutcome {
	if a.baseURL == "" || a.apiKey == "" {
		return failure(lead, models.ChannelChat, message, "chat gateway is not configured")
	}

	inst, err := a.orgRepo.GetConnectedInstance(ctx, lead.OrgID)
	if err != nil {
		return failure(lead, models.ChannelChat, message, fmt.Sprintf("chat instance lookup failed: %v", err))
	}
	if inst == nil {
		return failure(lead, models.ChannelChat, message, "no connected chat instance for organization")
	}

	number := NormalizePhone(lead.Phone, a.countryCode)
	if number == "" {
		return failure(lead, models.ChannelChat, message, "lead has no usable phone number")
	}

	payload := sendTextRequest{
		Number: number,
		Text:   message,
		Delay:  1200,
	}
	payload.Message.Conversation = message

	body, err := json.Marshal(payload)
	if err != nil {
		return failure(lead, models.ChannelChat, message, fmt.Sprintf("failed to encode request: %v", err))
	}

	url := fmt.Sprintf("%s/message/sendText/%s", a.baseURL, inst.InstanceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return failure(lead, models.ChannelChat, message, fmt.Sprintf("failed to build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return failure(lead, models.ChannelChat, message, fmt.Sprintf("gateway request failed: %v", err))
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failure(lead, models.ChannelChat, message,
			fmt.Sprintf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
	}

	var parsed sendTextResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		// A 2xx without a parsable body still counts as delivered
		a.logger.Warn("could not parse gateway response",
			slog.Int64("lead_id", lead.ID),
			slog.String("error", err.Error()),
		)
	}

	return success(lead, models.ChannelChat, message, parsed.Key.ID)
}

// NormalizePhone strips a raw phone number down to digits and guarantees the
// country-code prefix the gateway requires. Returns "" when no digits remain.
func NormalizePhone(raw, countryCode string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if !strings.HasPrefix(digits, countryCode) {
		digits = countryCode + digits
	}
	return digits
}
