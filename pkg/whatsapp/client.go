package whatsapp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nemocrk/my-wedding-app/environments"
	"github.com/nemocrk/my-wedding-app/internal/domain"
	"github.com/nemocrk/my-wedding-app/pkg/logger"
)

// Client talks to the WhatsApp HTTP gateway that holds the two paired
// sender sessions. Session lifecycle (QR pairing, login/logout) is
// managed on the gateway itself; this client only sends and observes.
type Client struct {
	httpClient *resty.Client
	baseURL    string
	sessions   map[domain.SessionType]string
}

type sendTextRequest struct {
	Session string `json:"session"`
	ChatID  string `json:"chatId"`
	Text    string `json:"text"`
}

type sendTextResponse struct {
	ID string `json:"id"`
}

type sessionStatusResponse struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

func NewClient(cfg environments.GatewayConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-Api-Key", cfg.APIKey)

	return &Client{
		httpClient: client,
		baseURL:    cfg.BaseURL,
		sessions: map[domain.SessionType]string{
			domain.SessionGroom: cfg.GroomSession,
			domain.SessionBride: cfg.BrideSession,
		},
	}
}

// SendText transmits one text message through the given sender session
// and returns the provider-side message id.
func (c *Client) SendText(
	ctx context.Context,
	session domain.SessionType,
	chatID, text string,
) (string, error) {
	sessionName, ok := c.sessions[session]
	if !ok {
		return "", fmt.Errorf("unknown session type %q", session)
	}

	payload := sendTextRequest{
		Session: sessionName,
		ChatID:  chatID,
		Text:    text,
	}

	var sendResp sendTextResponse

	startTime := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&sendResp).
		Post("/api/sendText")

	duration := time.Since(startTime)

	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	logger.Infof("Gateway sendText via %s completed in %v (status: %d)", sessionName, duration, resp.StatusCode())

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return "", fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode(), resp.String())
	}

	if sendResp.ID == "" {
		return "", fmt.Errorf("gateway returned no message id, body: %s", resp.String())
	}

	return sendResp.ID, nil
}

// SessionStatus reports the gateway-side state of one sender session
// (e.g. WORKING, SCAN_QR_CODE, STOPPED).
func (c *Client) SessionStatus(ctx context.Context, session domain.SessionType) (string, error) {
	sessionName, ok := c.sessions[session]
	if !ok {
		return "", fmt.Errorf("unknown session type %q", session)
	}

	var statusResp sessionStatusResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&statusResp).
		Get("/api/sessions/" + sessionName)

	if err != nil {
		return "", fmt.Errorf("failed to get session status: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode(), resp.String())
	}

	return statusResp.Status, nil
}

// EventsURL is the SSE endpoint the realtime bridge consumes.
func (c *Client) EventsURL() string {
	return c.baseURL + "/api/events"
}
