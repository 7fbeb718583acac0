package entities

import (
	valueobjects "vaultflow/internal/domain/value_objects"
	apperrors "vaultflow/internal/shared_kernel/errors"
)

const FlowStateVersion = 1

type VaultRef struct {
	ChainID  int64  `json:"chainId"`
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

type PaymentOption struct {
	PaymentCurrencyID string `json:"paymentCurrencyId"`
	DisplaySymbol     string `json:"displaySymbol"`
	LogoRef           string `json:"logoRef,omitempty"`
	AvailableBalance  string `json:"availableBalance,omitempty"`
}

// FlowState is the opaque blob round-tripped by the transport layer between
// steps. It carries everything one flow instance accumulates; nothing about a
// flow is held server side.
type FlowState struct {
	Version             int             `json:"v"`
	FlowID              string          `json:"flowId"`
	CurrentStep         string          `json:"currentStep"`
	SelectedVault       *VaultRef       `json:"selectedVault,omitempty"`
	ResolvedUserAddress string          `json:"resolvedUserAddress,omitempty"`
	SourceChain         string          `json:"sourceChain,omitempty"`
	PaymentOptions      []PaymentOption `json:"paymentOptions,omitempty"`
	PaymentOptionOrder  []string        `json:"paymentOptionOrder,omitempty"`
}

func NewFlowState(flowID string) FlowState {
	return FlowState{
		Version:     FlowStateVersion,
		FlowID:      flowID,
		CurrentStep: valueobjects.FlowStepSelectVault.String(),
	}
}

// RestartPass resets the fields scoped to a single pass through the flow.
// ResolvedUserAddress and PaymentOptions survive restarts.
func (s *FlowState) RestartPass() {
	s.SourceChain = ""
	s.SelectedVault = nil
	s.CurrentStep = valueobjects.FlowStepSelectVault.String()
}

// SetResolvedUserAddress caches the address once; it is never overwritten.
func (s *FlowState) SetResolvedUserAddress(canonical string) {
	if s.ResolvedUserAddress != "" {
		return
	}

	s.ResolvedUserAddress = canonical
}

// SetPaymentOptions stores the fetched option list and its derived id ordering
// as a single atomic update. Once non-empty the list is never replaced, so the
// user sees a stable, consistently paginated list for the life of the flow.
func (s *FlowState) SetPaymentOptions(options []PaymentOption) *apperrors.AppError {
	if len(s.PaymentOptions) > 0 {
		return nil
	}
	if len(options) == 0 {
		return apperrors.NewNotFound(
			"payment_options_empty",
			"no payment options available",
			nil,
		)
	}

	stored := make([]PaymentOption, len(options))
	copy(stored, options)

	order := make([]string, 0, len(stored))
	for _, option := range stored {
		order = append(order, option.PaymentCurrencyID)
	}

	s.PaymentOptions = stored
	s.PaymentOptionOrder = order

	return nil
}

func (s *FlowState) HasPaymentOption(paymentCurrencyID string) bool {
	for _, id := range s.PaymentOptionOrder {
		if id == paymentCurrencyID {
			return true
		}
	}

	return false
}

func (s *FlowState) PaymentOptionBySymbolOrID(paymentCurrencyID string) (PaymentOption, bool) {
	for _, option := range s.PaymentOptions {
		if option.PaymentCurrencyID == paymentCurrencyID {
			return option, true
		}
	}

	return PaymentOption{}, false
}
