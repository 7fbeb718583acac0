package statecodec

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"

	"vaultflow/internal/domain/entities"
	apperrors "vaultflow/internal/shared_kernel/errors"

	"github.com/google/uuid"
)

// Codec round-trips the flow state through the client as an opaque,
// tamper-evident blob: base64url(json) + "." + hex(hmac-sha256). The state is
// readable by anyone but only the server can mint a valid tag, so a client
// cannot forge resolved addresses or option lists.
type Codec struct {
	secret []byte
}

func New(secret string) *Codec {
	return &Codec{secret: []byte(strings.TrimSpace(secret))}
}

// NewState mints a fresh flow instance.
func (c *Codec) NewState() entities.FlowState {
	return entities.NewFlowState(uuid.NewString())
}

func (c *Codec) Encode(state entities.FlowState) (string, *apperrors.AppError) {
	if len(c.secret) == 0 {
		return "", apperrors.NewInvalidConfiguration(
			"flow_state_secret_missing",
			"flow state signing secret is not configured",
			nil,
		)
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return "", apperrors.NewInternal(
			"flow_state_encode_failed",
			"failed to encode flow state",
			map[string]any{"error": err.Error()},
		)
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)

	return encoded + "." + c.sign(encoded), nil
}

// Decode verifies and unpacks a state blob. An empty blob starts a fresh flow
// instance; a malformed or tampered blob is a missing-input error so the user
// gets an error screen, not a silent restart.
func (c *Codec) Decode(blob string) (entities.FlowState, *apperrors.AppError) {
	trimmed := strings.TrimSpace(blob)
	if trimmed == "" {
		return c.NewState(), nil
	}

	if len(c.secret) == 0 {
		return entities.FlowState{}, apperrors.NewInvalidConfiguration(
			"flow_state_secret_missing",
			"flow state signing secret is not configured",
			nil,
		)
	}

	encoded, tag, found := strings.Cut(trimmed, ".")
	if !found {
		return entities.FlowState{}, invalidStateError()
	}
	if !hmac.Equal([]byte(c.sign(encoded)), []byte(tag)) {
		return entities.FlowState{}, invalidStateError()
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return entities.FlowState{}, invalidStateError()
	}

	var state entities.FlowState
	if err := json.Unmarshal(payload, &state); err != nil {
		return entities.FlowState{}, invalidStateError()
	}

	if state.Version != entities.FlowStateVersion {
		return entities.FlowState{}, apperrors.NewMissingInput(
			"flow_state_version_unsupported",
			"flow state version is not supported",
			map[string]any{"version": state.Version},
		)
	}
	if strings.TrimSpace(state.FlowID) == "" {
		return entities.FlowState{}, invalidStateError()
	}

	return state, nil
}

func (c *Codec) sign(encoded string) string {
	mac := hmac.New(sha256.New, c.secret)
	_, _ = mac.Write([]byte(encoded))

	return hex.EncodeToString(mac.Sum(nil))
}

func invalidStateError() *apperrors.AppError {
	return apperrors.NewMissingInput(
		"flow_state_invalid",
		"flow state is malformed or has been tampered with",
		nil,
	)
}
