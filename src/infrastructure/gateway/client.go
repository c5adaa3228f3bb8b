package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domainGateway "condo-notify-api/src/domain/gateway"
	logger "condo-notify-api/src/infrastructure/logger"

	"go.uber.org/zap"
)

const (
	// requestTimeout bounds every gateway call independently of the caller.
	requestTimeout = 10 * time.Second

	// maxStoredBody caps response/error payloads persisted for audit so a
	// misbehaving gateway cannot blow up job rows.
	maxStoredBody = 1500
)

type textPayload struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type buttonListPayload struct {
	Phone      string     `json:"phone"`
	Message    string     `json:"message"`
	ButtonList buttonList `json:"buttonList"`
}

type buttonList struct {
	Buttons []buttonItem `json:"buttons"`
}

type buttonItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// HTTPClient talks to the external messaging gateway over its JSON API.
type HTTPClient struct {
	client *http.Client
	Logger *logger.Logger
}

func NewHTTPClient(loggerInstance *logger.Logger) domainGateway.Client {
	return &HTTPClient{
		client: &http.Client{Timeout: requestTimeout},
		Logger: loggerInstance,
	}
}

// SendText delivers a plain text message to one phone number.
func (g *HTTPClient) SendText(cfg *domainGateway.Config, phone, message string) (string, error) {
	payload := textPayload{
		Phone:   digitsOnly(phone),
		Message: message,
	}
	return g.post(cfg, payload)
}

// SendButtonList delivers the consent-handshake variant with option buttons.
func (g *HTTPClient) SendButtonList(cfg *domainGateway.Config, phone, message string, buttons []domainGateway.Button) (string, error) {
	items := make([]buttonItem, len(buttons))
	for i, b := range buttons {
		items[i] = buttonItem{ID: b.ID, Label: b.Label}
	}
	payload := buttonListPayload{
		Phone:      digitsOnly(phone),
		Message:    message,
		ButtonList: buttonList{Buttons: items},
	}
	return g.post(cfg, payload)
}

func (g *HTTPClient) post(cfg *domainGateway.Config, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := strings.TrimSuffix(cfg.BaseURL, "/") + cfg.SendEndpoint
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Client-Token", cfg.ClientToken)

	resp, err := g.client.Do(req)
	if err != nil {
		g.Logger.Error("Gateway request failed", zap.Error(err), zap.Int("condominiumID", cfg.CondominiumID))
		return "", err
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxStoredBody+1))
	if readErr != nil {
		g.Logger.Error("Error reading gateway response", zap.Error(readErr), zap.Int("statusCode", resp.StatusCode))
		return "", fmt.Errorf("gateway status %d: unreadable response: %v", resp.StatusCode, readErr)
	}

	truncated := Truncate(string(respBody), maxStoredBody)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.Logger.Warn("Gateway returned non-success status",
			zap.Int("statusCode", resp.StatusCode),
			zap.Int("condominiumID", cfg.CondominiumID))
		return "", fmt.Errorf("gateway status %d: %s", resp.StatusCode, truncated)
	}

	return truncated, nil
}

// Truncate caps a stored diagnostic string at max characters.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func digitsOnly(phone string) string {
	var b strings.Builder
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			b.WriteByte(phone[i])
		}
	}
	return b.String()
}
