package use_cases

import (
	"context"
	"log"
	"strings"

	"vaultflow/internal/application/dto"
	portsout "vaultflow/internal/application/ports/out"
	"vaultflow/internal/domain/entities"
	valueobjects "vaultflow/internal/domain/value_objects"
	apperrors "vaultflow/internal/shared_kernel/errors"
)

const depositFunctionName = "deposit"

// OptionCache lazily loads the payment-option list for a flow instance and
// memoizes it inside the flow state. Exactly one gateway fetch happens per
// flow instance; the list is never refreshed mid-flow, even if balances move,
// so pagination indices stay stable across page-advance actions.
type OptionCache struct {
	gateway portsout.PaymentGateway
	// allowLists maps a source chain key to the display symbols permitted for
	// it; chains without an entry are unfiltered.
	allowLists map[string][]string
	logger     *log.Logger
}

func NewOptionCache(gateway portsout.PaymentGateway, allowLists map[string][]string, logger *log.Logger) *OptionCache {
	normalized := make(map[string][]string, len(allowLists))
	for chain, symbols := range allowLists {
		normalized[strings.ToLower(strings.TrimSpace(chain))] = symbols
	}

	return &OptionCache{
		gateway:    gateway,
		allowLists: normalized,
		logger:     logger,
	}
}

func (c *OptionCache) EnsureLoaded(ctx context.Context, state *entities.FlowState) *apperrors.AppError {
	if state == nil {
		return apperrors.NewInternal("flow_state_missing", "flow state is required", nil)
	}
	if len(state.PaymentOptions) > 0 {
		return nil
	}

	if state.SelectedVault == nil {
		return apperrors.NewMissingInput(
			"vault_not_selected",
			"select a vault before loading payment options",
			nil,
		)
	}
	if state.ResolvedUserAddress == "" {
		return apperrors.NewMissingInput(
			"user_address_unresolved",
			"user address must be resolved before loading payment options",
			nil,
		)
	}

	call, appErr := DepositTargetCall(*state.SelectedVault, state.ResolvedUserAddress, valueobjects.ParseDepositAmount("1"))
	if appErr != nil {
		return appErr
	}

	options, appErr := c.gateway.ListPaymentOptions(ctx, dto.ListPaymentOptionsInput{
		Call:              call,
		Account:           state.ResolvedUserAddress,
		SourceChainFilter: state.SourceChain,
	})
	if appErr != nil {
		// A failed fetch is surfaced as the actionable "no options" dead end,
		// not retried.
		c.logger.Printf("payment options fetch failed flow_id=%s code=%s message=%s", state.FlowID, appErr.Code, appErr.Message)
		return noOptionsError(state.SourceChain)
	}

	filtered := c.applyAllowList(state.SourceChain, options)
	if len(filtered) == 0 {
		return noOptionsError(state.SourceChain)
	}

	stateOptions := make([]entities.PaymentOption, 0, len(filtered))
	for _, option := range filtered {
		stateOptions = append(stateOptions, entities.PaymentOption{
			PaymentCurrencyID: option.PaymentCurrencyID,
			DisplaySymbol:     option.DisplaySymbol,
			LogoRef:           option.LogoRef,
			AvailableBalance:  option.AvailableBalance,
		})
	}

	if appErr := state.SetPaymentOptions(stateOptions); appErr != nil {
		return appErr
	}

	return nil
}

func (c *OptionCache) applyAllowList(sourceChain string, options []dto.PaymentOption) []dto.PaymentOption {
	allowList, ok := c.allowLists[strings.ToLower(strings.TrimSpace(sourceChain))]
	if !ok || len(allowList) == 0 {
		return options
	}

	allowed := make(map[string]struct{}, len(allowList))
	for _, symbol := range allowList {
		allowed[strings.ToUpper(strings.TrimSpace(symbol))] = struct{}{}
	}

	filtered := make([]dto.PaymentOption, 0, len(options))
	for _, option := range options {
		if _, ok := allowed[strings.ToUpper(option.DisplaySymbol)]; ok {
			filtered = append(filtered, option)
		}
	}

	return filtered
}

func noOptionsError(sourceChain string) *apperrors.AppError {
	details := map[string]any{}
	if sourceChain != "" {
		details["source_chain"] = sourceChain
	}

	return apperrors.NewNotFound(
		"payment_options_unavailable",
		"no payment options available",
		details,
	)
}

// DepositTargetCall builds the vault deposit call description passed to the
// Payment Gateway: deposit(assets, receiver) with the amount in base units.
func DepositTargetCall(vault entities.VaultRef, receiver string, amount valueobjects.DepositAmount) (dto.TargetCall, *apperrors.AppError) {
	baseUnits, appErr := amount.BaseUnits(vault.Decimals)
	if appErr != nil {
		return dto.TargetCall{}, appErr
	}

	return dto.TargetCall{
		ChainID:         vault.ChainID,
		ContractAddress: vault.Address,
		FunctionName:    depositFunctionName,
		Args:            []string{baseUnits, receiver},
	}, nil
}
