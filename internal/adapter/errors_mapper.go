package adapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// conflictBody is the JSON shape of a 409 response from the state server.
type conflictBody struct {
	CurrentVersion int64  `json:"current_version"`
	Error          string `json:"error,omitempty"`
}

// mapHTTPError translates a non-2xx response into the package's typed
// outcome set. Gateway and service-unavailable statuses count as transport
// failures (the request may never have reached the state service), everything
// else is semantic.
func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))

	switch resp.StatusCode() {
	case http.StatusConflict:
		var conflict conflictBody
		if err := json.Unmarshal(resp.Body(), &conflict); err != nil {
			return fmt.Errorf("%w: malformed conflict response: %w", ErrNetwork, err)
		}
		return &VersionConflictError{CurrentVersion: conflict.CurrentVersion}
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrInvalidTransition, body)
	case http.StatusLocked:
		return fmt.Errorf("%w: %s", ErrBlocked, body)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrUnknownAction, body)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrStateNotFound, body)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: http %d: %s", ErrNetwork, resp.StatusCode(), body)
	default:
		if body == "" {
			body = http.StatusText(resp.StatusCode())
		}
		return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
	}
}
