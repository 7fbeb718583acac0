package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"strings"
	"time"

	"vaultflow/internal/application/dto"
	portsout "vaultflow/internal/application/ports/out"
	apperrors "vaultflow/internal/shared_kernel/errors"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	maxErrorBodyBytes  = 1024
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Gateway hands calldata to the Chain Submission Service, which signs and
// broadcasts on behalf of the user and returns the resulting hash.
type Gateway struct {
	baseURL string
	client  *nethttp.Client
}

var _ portsout.ChainSubmissionGateway = (*Gateway)(nil)

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

type submitRequest struct {
	ChainID int64  `json:"chainId"`
	To      string `json:"to"`
	Data    string `json:"data"`
	Value   string `json:"value"`
}

type submitResponse struct {
	TransactionHash string `json:"transactionHash"`
}

func (g *Gateway) Submit(ctx context.Context, input dto.SubmitTransactionInput) (dto.SubmitTransactionOutput, *apperrors.AppError) {
	if g == nil || g.client == nil {
		return dto.SubmitTransactionOutput{}, apperrors.NewInternal(
			"chain_submission_not_configured",
			"chain submission gateway is not configured",
			nil,
		)
	}
	if g.baseURL == "" {
		return dto.SubmitTransactionOutput{}, apperrors.NewInvalidConfiguration(
			"chain_submission_base_url_missing",
			"chain submission base url is not configured",
			nil,
		)
	}

	encoded, err := json.Marshal(submitRequest{
		ChainID: input.ChainID,
		To:      input.To,
		Data:    input.Data,
		Value:   input.ValueWei,
	})
	if err != nil {
		return dto.SubmitTransactionOutput{}, apperrors.NewInternal(
			"chain_submission_request_encode_failed",
			"failed to encode chain submission request",
			map[string]any{"error": err.Error()},
		)
	}

	request, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodPost, g.baseURL+"/v1/transactions", bytes.NewReader(encoded))
	if err != nil {
		return dto.SubmitTransactionOutput{}, apperrors.NewInternal(
			"chain_submission_request_build_failed",
			"failed to build chain submission request",
			map[string]any{"error": err.Error()},
		)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := g.client.Do(request)
	if err != nil {
		return dto.SubmitTransactionOutput{}, apperrors.NewUpstream(
			"chain_submission_unreachable",
			"chain submission request failed",
			map[string]any{"error": err.Error()},
		)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		bodyPreview := ""
		raw, readErr := io.ReadAll(io.LimitReader(response.Body, maxErrorBodyBytes))
		if readErr == nil {
			bodyPreview = strings.TrimSpace(string(raw))
		}
		return dto.SubmitTransactionOutput{}, apperrors.NewUpstream(
			"chain_submission_error_status",
			"chain submission service returned non-2xx status",
			map[string]any{
				"status_code": response.StatusCode,
				"body":        bodyPreview,
			},
		)
	}

	var decoded submitResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return dto.SubmitTransactionOutput{}, apperrors.NewUpstream(
			"chain_submission_response_invalid",
			"failed to decode chain submission response",
			map[string]any{"error": err.Error()},
		)
	}
	if strings.TrimSpace(decoded.TransactionHash) == "" {
		return dto.SubmitTransactionOutput{}, apperrors.NewUpstream(
			"chain_submission_response_invalid",
			"chain submission service returned no transaction hash",
			nil,
		)
	}

	return dto.SubmitTransactionOutput{TransactionHash: decoded.TransactionHash}, nil
}
