package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

const sendTextPath = "/messages/text"

// ErrMissingToken is returned without any network call when no bearer token is configured.
var ErrMissingToken = errors.New("messaging API token is not configured")

// HTTPProvider posts text messages to the messaging API.
type HTTPProvider struct {
	logger     *slog.Logger
	httpClient *http.Client
	apiURL     string
	apiToken   string
	limiter    *rate.Limiter
}

// TextMessageRequest is the JSON body of POST <base>/messages/text.
type TextMessageRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// NewHTTPProvider creates the gateway client. A nil limiter disables throttling.
func NewHTTPProvider(logger *slog.Logger, apiURL, apiToken string, httpClient *http.Client, limiter *rate.Limiter) *HTTPProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPProvider{
		logger:     logger.With("provider", "http"),
		httpClient: httpClient,
		apiURL:     strings.TrimRight(apiURL, "/"),
		apiToken:   apiToken,
		limiter:    limiter,
	}
}

// NewLimiter returns a token bucket for perSecond sends, or nil when perSecond <= 0.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// Send reports whether the API accepted the message with a 200. Failures are logged, never returned.
func (p *HTTPProvider) Send(ctx context.Context, to, body string) bool {
	if err := p.SendText(ctx, to, body); err != nil {
		p.logger.WarnContext(ctx, "Message send failed", "to", to, "error", err)
		return false
	}
	return true
}

// SendText performs one POST and returns the failure detail.
func (p *HTTPProvider) SendText(ctx context.Context, to, body string) error {
	if p.apiToken == "" {
		GatewayRequestsTotal.WithLabelValues(p.GetName(), "skipped").Inc()
		return ErrMissingToken
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			GatewayRequestsTotal.WithLabelValues(p.GetName(), "skipped").Inc()
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	timer := prometheus.NewTimer(GatewayRequestDuration.WithLabelValues(p.GetName()))
	defer timer.ObserveDuration()

	reqBytes, err := json.Marshal(TextMessageRequest{To: to, Body: body})
	if err != nil {
		return fmt.Errorf("failed to marshal message request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL+sendTextPath, bytes.NewReader(reqBytes))
	if err != nil {
		GatewayRequestsTotal.WithLabelValues(p.GetName(), "failed").Inc()
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiToken)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		GatewayRequestsTotal.WithLabelValues(p.GetName(), "failed").Inc()
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
	if httpResp.StatusCode != http.StatusOK {
		GatewayRequestsTotal.WithLabelValues(p.GetName(), "failed").Inc()
		p.logger.DebugContext(ctx, "Messaging API rejected message", "status_code", httpResp.StatusCode, "body", string(respBody))
		return fmt.Errorf("messaging API returned status %d", httpResp.StatusCode)
	}

	GatewayRequestsTotal.WithLabelValues(p.GetName(), "sent").Inc()
	p.logger.InfoContext(ctx, "Message sent", "to", to)
	return nil
}

func (p *HTTPProvider) GetName() string {
	return "http"
}
