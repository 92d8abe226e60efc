package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/models"
)

// HTTPClientConfig carries the settings the HTTP state client needs.
type HTTPClientConfig struct {
	BaseURL        string
	DeviceID       string
	RequestTimeout time.Duration
}

type httpStateClient struct {
	client   *resty.Client
	deviceID string
	logger   *logger.Logger
}

// NewHTTPStateClient constructs the HTTP/REST implementation of
// [StateClient]. It normalises and validates the base URL and configures the
// underlying resty client with the request timeout.
func NewHTTPStateClient(cfg HTTPClientConfig, log *logger.Logger) (StateClient, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid state server address: %w", err)
	}
	if cfg.DeviceID == "" {
		return nil, fmt.Errorf("state client needs a device id")
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout)

	return &httpStateClient{client: client, deviceID: cfg.DeviceID, logger: log}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// FetchState implements [StateClient]. It GETs the device's state document.
func (h *httpStateClient) FetchState(ctx context.Context) (models.StateSnapshot, error) {
	var snapshot models.StateSnapshot

	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&snapshot).
		Get("/api/devices/" + h.deviceID + "/state")
	if err != nil {
		return models.StateSnapshot{}, fmt.Errorf("%w: fetch state: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.StateSnapshot{}, err
	}

	return snapshot, nil
}

// SubmitTransition implements [StateClient]. It POSTs a single versioned
// transition and maps every non-success status onto the typed outcome set.
func (h *httpStateClient) SubmitTransition(ctx context.Context, req models.TransitionRequest) (models.TransitionResult, error) {
	var result models.TransitionResult

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&result).
		Post("/api/devices/" + h.deviceID + "/transitions")
	if err != nil {
		return models.TransitionResult{}, fmt.Errorf("%w: submit transition %s: %w", ErrNetwork, req.OperationID, err)
	}
	if err = mapHTTPError(resp); err != nil {
		h.logger.Debug().
			Str("operation_id", req.OperationID).
			Int("status", resp.StatusCode()).
			Msg("transition rejected")
		return models.TransitionResult{}, err
	}

	return result, nil
}

// VerifyBatch implements [StateClient].
func (h *httpStateClient) VerifyBatch(ctx context.Context, req models.VerifyRequest) (models.VerifyResponse, error) {
	var result models.VerifyResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&result).
		Post("/api/devices/" + h.deviceID + "/verify")
	if err != nil {
		return models.VerifyResponse{}, fmt.Errorf("%w: verify batch: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.VerifyResponse{}, err
	}

	return result, nil
}

// Ping implements [StateClient].
func (h *httpStateClient) Ping(ctx context.Context) error {
	resp, err := h.client.R().
		SetContext(ctx).
		Get("/api/ping")
	if err != nil {
		return fmt.Errorf("%w: ping: %w", ErrNetwork, err)
	}

	return mapHTTPError(resp)
}
