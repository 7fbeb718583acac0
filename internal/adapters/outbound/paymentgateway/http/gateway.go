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
	defaultHTTPTimeout = 5 * time.Second
	maxErrorBodyBytes  = 1024

	headerProjectID = "X-Project-Id"
)

type Config struct {
	BaseURL   string
	ProjectID string
	Timeout   time.Duration
}

// Gateway is the REST client for the external Payment Gateway. Every call is
// a single bounded round trip with no internal retries; retry is always
// pushed back to the user as an explicit affordance.
type Gateway struct {
	baseURL   string
	projectID string
	client    *nethttp.Client
}

var _ portsout.PaymentGateway = (*Gateway)(nil)

func NewGateway(cfg Config) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	return &Gateway{
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		projectID: strings.TrimSpace(cfg.ProjectID),
		client: &nethttp.Client{
			Timeout: timeout,
		},
	}
}

type listOptionsRequest struct {
	ChainID       int64    `json:"chainId"`
	Address       string   `json:"address"`
	FunctionName  string   `json:"functionName"`
	Args          []string `json:"args"`
	Account       string   `json:"account"`
	SourceChain   string   `json:"sourceChain,omitempty"`
	PaymentIntent string   `json:"paymentIntent"`
}

func (g *Gateway) ListPaymentOptions(ctx context.Context, input dto.ListPaymentOptionsInput) ([]dto.PaymentOption, *apperrors.AppError) {
	body := listOptionsRequest{
		ChainID:       input.Call.ChainID,
		Address:       input.Call.ContractAddress,
		FunctionName:  input.Call.FunctionName,
		Args:          input.Call.Args,
		Account:       input.Account,
		SourceChain:   input.SourceChainFilter,
		PaymentIntent: "contract-call",
	}

	var options []dto.PaymentOption
	if appErr := g.do(ctx, nethttp.MethodPost, "/v1/payment-options", body, &options); appErr != nil {
		return nil, appErr
	}

	return options, nil
}

type createSessionRequest struct {
	ChainID         int64    `json:"chainId"`
	Address         string   `json:"address"`
	FunctionName    string   `json:"functionName"`
	Args            []string `json:"args"`
	Account         string   `json:"account"`
	PaymentCurrency string   `json:"paymentCurrency"`
	PaymentAmount   string   `json:"paymentAmount"`
}

func (g *Gateway) CreateSession(ctx context.Context, input dto.CreateSessionInput) (dto.SessionResource, *apperrors.AppError) {
	body := createSessionRequest{
		ChainID:         input.Call.ChainID,
		Address:         input.Call.ContractAddress,
		FunctionName:    input.Call.FunctionName,
		Args:            input.Call.Args,
		Account:         input.Account,
		PaymentCurrency: input.PaymentCurrencyID,
		PaymentAmount:   input.PaymentAmount,
	}

	var session dto.SessionResource
	if appErr := g.do(ctx, nethttp.MethodPost, "/v1/sessions", body, &session); appErr != nil {
		return dto.SessionResource{}, appErr
	}
	if strings.TrimSpace(session.SessionID) == "" {
		return dto.SessionResource{}, apperrors.NewUpstream(
			"payment_gateway_response_invalid",
			"payment gateway returned a session without an id",
			nil,
		)
	}

	return session, nil
}

type recordTransactionRequest struct {
	Hash string `json:"hash"`
}

func (g *Gateway) RecordTransaction(ctx context.Context, input dto.RecordTransactionInput) (dto.RecordTransactionOutput, *apperrors.AppError) {
	var output dto.RecordTransactionOutput
	path := "/v1/sessions/" + input.SessionID + "/transaction"
	if appErr := g.do(ctx, nethttp.MethodPost, path, recordTransactionRequest{Hash: input.TransactionHash}, &output); appErr != nil {
		return dto.RecordTransactionOutput{}, appErr
	}

	return output, nil
}

func (g *Gateway) GetSession(ctx context.Context, sessionID string) (*dto.SessionResource, *apperrors.AppError) {
	var session dto.SessionResource
	appErr := g.do(ctx, nethttp.MethodGet, "/v1/sessions/"+sessionID, nil, &session)
	if appErr != nil {
		if appErr.Type == apperrors.TypeNotFound {
			return nil, nil
		}
		return nil, appErr
	}

	return &session, nil
}

func (g *Gateway) do(ctx context.Context, method string, path string, body any, out any) *apperrors.AppError {
	if g == nil || g.client == nil {
		return apperrors.NewInternal(
			"payment_gateway_not_configured",
			"payment gateway is not configured",
			nil,
		)
	}
	if g.baseURL == "" {
		return apperrors.NewInvalidConfiguration(
			"payment_gateway_base_url_missing",
			"payment gateway base url is not configured",
			nil,
		)
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternal(
				"payment_gateway_request_encode_failed",
				"failed to encode payment gateway request",
				map[string]any{"error": err.Error()},
			)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := nethttp.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return apperrors.NewInternal(
			"payment_gateway_request_build_failed",
			"failed to build payment gateway request",
			map[string]any{"error": err.Error()},
		)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if g.projectID != "" {
		request.Header.Set(headerProjectID, g.projectID)
	}

	response, err := g.client.Do(request)
	if err != nil {
		return apperrors.NewUpstream(
			"payment_gateway_unreachable",
			"payment gateway request failed",
			map[string]any{"error": err.Error()},
		)
	}
	defer response.Body.Close()

	if response.StatusCode == nethttp.StatusNotFound {
		return apperrors.NewNotFound(
			"payment_gateway_resource_missing",
			"payment gateway resource not found",
			map[string]any{"path": path},
		)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		bodyPreview := ""
		raw, readErr := io.ReadAll(io.LimitReader(response.Body, maxErrorBodyBytes))
		if readErr == nil {
			bodyPreview = strings.TrimSpace(string(raw))
		}
		return apperrors.NewUpstream(
			"payment_gateway_error_status",
			"payment gateway returned non-2xx status",
			map[string]any{
				"status_code": response.StatusCode,
				"body":        bodyPreview,
			},
		)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return apperrors.NewUpstream(
			"payment_gateway_response_invalid",
			"failed to decode payment gateway response",
			map[string]any{"error": err.Error()},
		)
	}

	return nil
}
