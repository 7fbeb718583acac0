package controllers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"vaultflow/internal/adapters/inbound/http/statecodec"
	"vaultflow/internal/application/dto"
	portsin "vaultflow/internal/application/ports/in"
	apperrors "vaultflow/internal/shared_kernel/errors"
)

// FlowController translates one posted user action into one step-router
// invocation: decode the signed state blob, advance, re-encode. No flow
// decision logic lives here.
type FlowController struct {
	advanceUseCase portsin.AdvanceFlowUseCase
	codec          *statecodec.Codec
	logger         *log.Logger
}

type flowActionPayload struct {
	State         string `json:"state,omitempty"`
	UserID        string `json:"userId,omitempty"`
	Action        string `json:"action,omitempty"`
	InputText     string `json:"inputText,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
}

type flowScreenResponse struct {
	State                string             `json:"state"`
	Screen               dto.Screen         `json:"screen"`
	NextActionPath       string             `json:"nextActionPath,omitempty"`
	TextInputPlaceholder string             `json:"textInputPlaceholder,omitempty"`
	Actions              []dto.ScreenAction `json:"actions"`
}

func NewFlowController(
	advanceUseCase portsin.AdvanceFlowUseCase,
	codec *statecodec.Codec,
	logger *log.Logger,
) *FlowController {
	return &FlowController{
		advanceUseCase: advanceUseCase,
		codec:          codec,
		logger:         logger,
	}
}

func (c *FlowController) StartStep(w http.ResponseWriter, r *http.Request) {
	c.advance(w, r, "start", "")
}

func (c *FlowController) VaultStep(w http.ResponseWriter, r *http.Request) {
	c.advance(w, r, "vault", "")
}

func (c *FlowController) SourceChainStep(w http.ResponseWriter, r *http.Request) {
	c.advance(w, r, "source-chain", "")
}

func (c *FlowController) PaymentStep(w http.ResponseWriter, r *http.Request) {
	c.advance(w, r, "payment", "")
}

func (c *FlowController) FinalStep(w http.ResponseWriter, r *http.Request) {
	c.advance(w, r, "final", r.PathValue("sessionId"))
}

func (c *FlowController) advance(w http.ResponseWriter, r *http.Request, step string, sessionID string) {
	payload, appErr := parseFlowActionPayload(r.Body)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	state, appErr := c.codec.Decode(payload.State)
	if appErr != nil {
		c.logger.Printf("flow state decode failed step=%s code=%s message=%s", step, appErr.Code, appErr.Message)
		writeAppError(w, appErr)
		return
	}

	output, appErr := c.advanceUseCase.Execute(r.Context(), dto.AdvanceFlowCommand{
		State:         state,
		Step:          step,
		SessionID:     sessionID,
		UserID:        strings.TrimSpace(payload.UserID),
		Action:        payload.Action,
		InputText:     payload.InputText,
		TransactionID: payload.TransactionID,
	})
	if appErr != nil {
		c.logger.Printf("flow step error step=%s flow_id=%s code=%s message=%s", step, state.FlowID, appErr.Code, appErr.Message)
		writeAppError(w, appErr)
		return
	}

	encoded, appErr := c.codec.Encode(output.State)
	if appErr != nil {
		c.logger.Printf("flow state encode failed step=%s flow_id=%s code=%s", step, output.State.FlowID, appErr.Code)
		writeAppError(w, appErr)
		return
	}

	actions := output.Actions
	if actions == nil {
		actions = []dto.ScreenAction{}
	}

	writeJSON(w, http.StatusOK, flowScreenResponse{
		State:                encoded,
		Screen:               output.Screen,
		NextActionPath:       output.NextActionPath,
		TextInputPlaceholder: output.TextInputPlaceholder,
		Actions:              actions,
	})
}

func parseFlowActionPayload(body io.Reader) (flowActionPayload, *apperrors.AppError) {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	payload := flowActionPayload{}
	if err := decoder.Decode(&payload); err != nil {
		if err == io.EOF {
			// A bare POST with no body starts a fresh flow.
			return flowActionPayload{}, nil
		}
		return flowActionPayload{}, apperrors.NewMissingInput(
			"invalid_request",
			"request body must be valid JSON",
			map[string]any{"error": err.Error()},
		)
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return flowActionPayload{}, apperrors.NewMissingInput(
			"invalid_request",
			"request body must contain a single JSON object",
			nil,
		)
	}

	return payload, nil
}
