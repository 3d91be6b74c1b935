package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type WebexConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// WebexProvider posts messages to a Webex Connect style messaging API.
type WebexProvider struct {
	endpoint string
	http     *http.Client
	log      *zap.Logger
}

func NewWebex(cfg WebexConfig, log *zap.Logger) *WebexProvider {
	return &WebexProvider{
		endpoint: cfg.Endpoint,
		http:     &http.Client{Timeout: cfg.Timeout},
		log:      log.Named("sms.webex"),
	}
}

type webexRequest struct {
	Channels    []string           `json:"channels"`
	Destination []webexDestination `json:"destination"`
	Message     webexMessage       `json:"message"`
	Source      string             `json:"source"`
}

type webexDestination struct {
	MSISDN string `json:"msisdn"`
}

type webexMessage struct {
	Text string `json:"text"`
}

func (p *WebexProvider) Send(ctx context.Context, creds Credentials, msisdn, text string) (string, error) {
	payload, err := json.Marshal(webexRequest{
		Channels:    []string{"SMS"},
		Destination: []webexDestination{{MSISDN: msisdn}},
		Message:     webexMessage{Text: text},
		Source:      creds.SenderID,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("key", creds.APIKey)

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("sms request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read sms response: %w", err)
	}

	var parsed struct {
		MessageID string `json:"messageId"`
		ID        string `json:"id"`
		Message   string `json:"message"`
	}
	_ = json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := parsed.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		p.log.Warn("sms provider rejected message",
			zap.Int("status_code", resp.StatusCode),
			zap.String("provider_message", msg),
		)
		return "", fmt.Errorf("sms provider error: %s", msg)
	}

	messageID := parsed.MessageID
	if messageID == "" {
		messageID = parsed.ID
	}
	return messageID, nil
}
