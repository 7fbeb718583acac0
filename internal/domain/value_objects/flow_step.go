package valueobjects

import apperrors "vaultflow/internal/shared_kernel/errors"

// FlowStep tags the persisted flow state with the step whose affordances were
// last emitted, i.e. the action the flow is waiting for. Incoming actions name
// the step they answer and are rejected when the two disagree, instead of
// inferring the step from the shape of the action.
type FlowStep string

const (
	FlowStepSelectVault         FlowStep = "select_vault"
	FlowStepSelectSourceChain   FlowStep = "select_source_chain"
	FlowStepSelectPaymentOption FlowStep = "select_payment_option"
	FlowStepAwaitConfirmation   FlowStep = "await_confirmation"
	FlowStepComplete            FlowStep = "complete"
)

func ParseFlowStep(raw string) (FlowStep, *apperrors.AppError) {
	switch raw {
	case string(FlowStepSelectVault):
		return FlowStepSelectVault, nil
	case string(FlowStepSelectSourceChain):
		return FlowStepSelectSourceChain, nil
	case string(FlowStepSelectPaymentOption):
		return FlowStepSelectPaymentOption, nil
	case string(FlowStepAwaitConfirmation):
		return FlowStepAwaitConfirmation, nil
	case string(FlowStepComplete):
		return FlowStepComplete, nil
	default:
		return "", apperrors.NewInternal(
			"flow_step_invalid",
			"flow step is invalid",
			map[string]any{"step": raw},
		)
	}
}

func (s FlowStep) String() string {
	return string(s)
}
