package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	portsout "vaultflow/internal/application/ports/out"
	apperrors "vaultflow/internal/shared_kernel/errors"
)

const (
	defaultHTTPTimeout = 5 * time.Second
	maxErrorBodyBytes  = 1024
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Gateway resolves user identifiers to verified wallet addresses through the
// external Identity Resolver service.
type Gateway struct {
	baseURL string
	client  *nethttp.Client
}

var _ portsout.IdentityResolver = (*Gateway)(nil)

func NewGateway(cfg Config) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	return &Gateway{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		client: &nethttp.Client{
			Timeout: timeout,
		},
	}
}

type resolveResponse struct {
	Addresses []string `json:"addresses"`
}

func (g *Gateway) ResolveAddresses(ctx context.Context, userID string) ([]string, *apperrors.AppError) {
	if g == nil || g.client == nil {
		return nil, apperrors.NewInternal(
			"identity_resolver_not_configured",
			"identity resolver is not configured",
			nil,
		)
	}
	if g.baseURL == "" {
		return nil, apperrors.NewInvalidConfiguration(
			"identity_resolver_base_url_missing",
			"identity resolver base url is not configured",
			nil,
		)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, nil
	}

	endpoint := g.baseURL + "/v1/identities/" + url.PathEscape(userID) + "/addresses"
	request, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewInternal(
			"identity_resolver_request_build_failed",
			"failed to build identity resolver request",
			map[string]any{"error": err.Error()},
		)
	}

	response, err := g.client.Do(request)
	if err != nil {
		return nil, apperrors.NewUpstream(
			"identity_resolver_unreachable",
			"identity resolver request failed",
			map[string]any{"error": err.Error()},
		)
	}
	defer response.Body.Close()

	// An unknown user is not an upstream fault; the caller decides whether
	// a missing address is fatal for its step.
	if response.StatusCode == nethttp.StatusNotFound {
		return nil, nil
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		bodyPreview := ""
		raw, readErr := io.ReadAll(io.LimitReader(response.Body, maxErrorBodyBytes))
		if readErr == nil {
			bodyPreview = strings.TrimSpace(string(raw))
		}
		return nil, apperrors.NewUpstream(
			"identity_resolver_error_status",
			"identity resolver returned non-2xx status",
			map[string]any{
				"status_code": response.StatusCode,
				"body":        bodyPreview,
			},
		)
	}

	var decoded resolveResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return nil, apperrors.NewUpstream(
			"identity_resolver_response_invalid",
			"failed to decode identity resolver response",
			map[string]any{"error": err.Error()},
		)
	}

	return decoded.Addresses, nil
}
