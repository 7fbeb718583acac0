package use_cases

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"vaultflow/internal/application/dto"
	portsin "vaultflow/internal/application/ports/in"
	portsout "vaultflow/internal/application/ports/out"
	"vaultflow/internal/domain/entities"
	"vaultflow/internal/domain/policies"
	valueobjects "vaultflow/internal/domain/value_objects"
	apperrors "vaultflow/internal/shared_kernel/errors"
)

const (
	StepStart       = "start"
	StepVault       = "vault"
	StepSourceChain = "source-chain"
	StepPayment     = "payment"
	StepFinal       = "final"
)

const (
	actionPathStart       = "/v1/flows/steps/start"
	actionPathVault       = "/v1/flows/steps/vault"
	actionPathSourceChain = "/v1/flows/steps/source-chain"
	actionPathPayment     = "/v1/flows/steps/payment"
	actionPathFinalPrefix = "/v1/flows/steps/final/"
	transactionPathPrefix = "/v1/flows/transactions/"
)

const (
	toneNeutral = "neutral"
	toneActive  = "active"
	tonePending = "pending"
	toneSuccess = "success"
)

const (
	pageActionPrefix     = "page:"
	amountPlaceholder    = "Enter the amount"
	missingTxHashMessage = "Missing transaction hash, please try again."
)

type FlowConfig struct {
	PageSize             int
	SourceChainSelection bool
	SourceChains         []string
	ExplorerBaseURLs     map[int64]string
}

// advanceFlowUseCase is the step router: given the decoded prior state, the
// step endpoint the client invoked, and the submitted action/input, it
// computes the next persisted state, the next screen, and the next set of
// selectable actions. The persisted step tag is validated against the invoked
// step before any step logic runs.
type advanceFlowUseCase struct {
	vaultCatalog portsout.VaultCatalogReadModel
	identity     portsout.IdentityResolver
	gateway      portsout.PaymentGateway
	optionCache  *OptionCache
	poller       *SessionPoller
	formatter    *AmountFormatter
	cfg          FlowConfig
	logger       *log.Logger
}

func NewAdvanceFlowUseCase(
	vaultCatalog portsout.VaultCatalogReadModel,
	identity portsout.IdentityResolver,
	gateway portsout.PaymentGateway,
	optionCache *OptionCache,
	poller *SessionPoller,
	formatter *AmountFormatter,
	cfg FlowConfig,
	logger *log.Logger,
) portsin.AdvanceFlowUseCase {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 4
	}

	return &advanceFlowUseCase{
		vaultCatalog: vaultCatalog,
		identity:     identity,
		gateway:      gateway,
		optionCache:  optionCache,
		poller:       poller,
		formatter:    formatter,
		cfg:          cfg,
		logger:       logger,
	}
}

func (u *advanceFlowUseCase) Execute(ctx context.Context, command dto.AdvanceFlowCommand) (dto.AdvanceFlowOutput, *apperrors.AppError) {
	switch command.Step {
	case StepStart:
		return u.handleStart(ctx, command)
	case StepVault:
		return u.handleVault(ctx, command)
	case StepSourceChain:
		return u.handleSourceChain(ctx, command)
	case StepPayment:
		return u.handlePayment(ctx, command)
	case StepFinal:
		return u.handleFinal(ctx, command)
	default:
		return dto.AdvanceFlowOutput{}, apperrors.NewNotFound(
			"flow_step_unknown",
			"flow step is unknown",
			map[string]any{"step": command.Step},
		)
	}
}

func (u *advanceFlowUseCase) handleStart(ctx context.Context, command dto.AdvanceFlowCommand) (dto.AdvanceFlowOutput, *apperrors.AppError) {
	state := command.State
	state.RestartPass()

	vaults, appErr := u.vaultCatalog.ListEnabled(ctx)
	if appErr != nil {
		return dto.AdvanceFlowOutput{}, appErr
	}
	if len(vaults) == 0 {
		return dto.AdvanceFlowOutput{}, apperrors.NewInvalidConfiguration(
			"vault_catalog_empty",
			"no vaults are configured",
			nil,
		)
	}

	actions := make([]dto.ScreenAction, 0, len(vaults))
	for index, vault := range vaults {
		actions = append(actions, dto.ScreenAction{
			Label: vault.Name,
			Value: strconv.Itoa(index),
		})
	}

	return dto.AdvanceFlowOutput{
		State: state,
		Screen: dto.Screen{
			Title:     "Deposit into a yield vault",
			BodyLines: []string{"Pick the vault you want to deposit into."},
			Tone:      toneNeutral,
		},
		NextActionPath: actionPathVault,
		Actions:        actions,
	}, nil
}

func (u *advanceFlowUseCase) handleVault(ctx context.Context, command dto.AdvanceFlowCommand) (dto.AdvanceFlowOutput, *apperrors.AppError) {
	state := command.State
	if appErr := requireStep(state, valueobjects.FlowStepSelectVault); appErr != nil {
		return dto.AdvanceFlowOutput{}, appErr
	}

	vaults, appErr := u.vaultCatalog.ListEnabled(ctx)
	if appErr != nil {
		return dto.AdvanceFlowOutput{}, appErr
	}

	index, err := strconv.Atoi(strings.TrimSpace(command.Action))
	if err != nil || index < 0 || index >= len(vaults) {
		return dto.AdvanceFlowOutput{}, apperrors.NewMissingInput(
			"vault_selection_invalid",
			"vault selection is invalid",
			map[string]any{"action": command.Action},
		)
	}

	vault := vaults[index]
	contract, appErr := valueobjects.NormalizeVaultContract(vault.Address)
	if appErr != nil {
		return dto.AdvanceFlowOutput{}, appErr
	}

	state.SelectedVault = &entities.VaultRef{
		ChainID:  vault.ChainID,
		Address:  contract,
		Name:     vault.Name,
		Symbol:   vault.Symbol,
		Decimals: vault.Decimals,
	}

	if !u.cfg.SourceChainSelection {
		return u.emitOptionsPage(ctx, command, state, 1)
	}

	state.CurrentStep = valueobjects.FlowStepSelectSourceChain.String()

	actions := make([]dto.ScreenAction, 0, len(u.cfg.SourceChains))
	for _, chain := range u.cfg.SourceChains {
		actions = append(actions, dto.ScreenAction{
			Label: chain,
			Value: chain,
		})
	}

	return dto.AdvanceFlowOutput{
		State: state,
		Screen: dto.Screen{
			Title:     fmt.Sprintf("Depositing into %s", vault.Name),
			BodyLines: []string{"Pick the chain you are paying from."},
			Tone:      toneActive,
		},
		NextActionPath: actionPathSourceChain,
		Actions:        actions,
	}, nil
}

func (u *advanceFlowUseCase) handleSourceChain(ctx context.Context, command dto.AdvanceFlowCommand) (dto.AdvanceFlowOutput, *apperrors.AppError) {
	state := command.State
	if appErr := requireStep(state, valueobjects.FlowStepSelectSourceChain); appErr != nil {
		return dto.AdvanceFlowOutput{}, appErr
	}

	chain, ok := matchSourceChain(u.cfg.SourceChains, command.Action)
	if !ok {
		return dto.AdvanceFlowOutput{}, apperrors.NewMissingInput(
			"source_chain_invalid",
			"source chain is not supported",
			map[string]any{"source_chain": command.Action},
		)
	}

	state.SourceChain = chain

	return u.emitOptionsPage(ctx, command, state, 1)
}

// emitOptionsPage resolves the user address if needed, ensures the option list
// is loaded, and renders one page of payment currencies with a forward-only
// page-advance affordance.
func (u *advanceFlowUseCase) emitOptionsPage(ctx context.Context, command dto.AdvanceFlowCommand, state entities.FlowState, page int) (dto.AdvanceFlowOutput, *apperrors.AppError) {
	if state.SelectedVault == nil {
		return dto.AdvanceFlowOutput{}, apperrors.NewMissingInput(
			"vault_not_selected",
			"select a vault before choosing a payment option",
			nil,
		)
	}

	if state.ResolvedUserAddress == "" {
		addresses, appErr := u.identity.ResolveAddresses(ctx, command.UserID)
		if appErr != nil {
			return dto.AdvanceFlowOutput{}, appErr
		}
		if len(addresses) == 0 {
			return dto.AdvanceFlowOutput{}, apperrors.NewMissingInput(
				"user_address_unresolved",
				"no wallet address is linked to this user",
				map[string]any{"user_id": command.UserID},
			)
		}

		canonical, appErr := valueobjects.NormalizeAddressForState(addresses[0])
		if appErr != nil {
			return dto.AdvanceFlowOutput{}, appErr
		}
		state.SetResolvedUserAddress(canonical)
	}

	if appErr := u.optionCache.EnsureLoaded(ctx, &state); appErr != nil {
		if appErr.Code == "payment_options_unavailable" {
			return u.emitNoOptionsScreen(state), nil
		}
		return dto.AdvanceFlowOutput{}, appErr
	}

	page = policies.ClampPage(page, len(state.PaymentOptions), u.cfg.PageSize)
	pageItems := policies.Paginate(state.PaymentOptions, page, u.cfg.PageSize)

	actions := make([]dto.ScreenAction, 0, len(pageItems)+1)
	bodyLines := make([]string, 0, len(pageItems))
	for _, option := range pageItems {
		actions = append(actions, dto.ScreenAction{
			Label: option.DisplaySymbol,
			Value: option.PaymentCurrencyID,
		})
		line := option.DisplaySymbol
		if balance := u.formatter.FormatString(option.AvailableBalance); balance != "" {
			line = fmt.Sprintf("%s · balance %s", option.DisplaySymbol, balance)
		}
		bodyLines = append(bodyLines, line)
	}

	if policies.PageCount(len(state.PaymentOptions), u.cfg.PageSize) > 1 {
		next := policies.NextPage(page, len(state.PaymentOptions), u.cfg.PageSize)
		actions = append(actions, dto.ScreenAction{
			Label: "More",
			Value: pageActionPrefix + strconv.Itoa(next),
		})
	}

	state.CurrentStep = valueobjects.FlowStepSelectPaymentOption.String()

	return dto.AdvanceFlowOutput{
		State: state,
		Screen: dto.Screen{
			Title:     fmt.Sprintf("Depositing into %s", state.SelectedVault.Name),
			BodyLines: bodyLines,
			Tone:      toneActive,
		},
		NextActionPath:       actionPathPayment,
		TextInputPlaceholder: amountPlaceholder,
		Actions:              actions,
	}, nil
}

// emitNoOptionsScreen is the actionable dead end for a flow with nothing to
// pay with: the only affordance is restarting at vault selection. The state's
// option list stays empty.
func (u *advanceFlowUseCase) emitNoOptionsScreen(state entities.FlowState) dto.AdvanceFlowOutput {
	state.CurrentStep = valueobjects.FlowStepSelectVault.String()

	return dto.AdvanceFlowOutput{
		State: state,
		Screen: dto.Screen{
			Title:     "No payment options available",
			BodyLines: []string{"None of your balances can fund this deposit."},
			Tone:      tonePending,
		},
		NextActionPath: actionPathStart,
		Actions: []dto.ScreenAction{
			{Label: "Start over", Value: "restart"},
		},
	}
}

func (u *advanceFlowUseCase) handlePayment(ctx context.Context, command dto.AdvanceFlowCommand) (dto.AdvanceFlowOutput, *apperrors.AppError) {
	state := command.State
	// await_confirmation is accepted so the confirm screen's Back button can
	// re-enter the option list.
	if appErr := requireStep(state, valueobjects.FlowStepSelectPaymentOption, valueobjects.FlowStepAwaitConfirmation); appErr != nil {
		return dto.AdvanceFlowOutput{}, appErr
	}

	action := strings.TrimSpace(command.Action)
	if page, ok := parsePageAction(action); ok {
		return u.emitOptionsPage(ctx, command, state, page)
	}

	currencyID, appErr := valueobjects.ParsePaymentCurrencyID(action)
	if appErr != nil {
		return dto.AdvanceFlowOutput{}, appErr
	}
	if !state.HasPaymentOption(currencyID.String()) {
		return dto.AdvanceFlowOutput{}, apperrors.NewMissingInput(
			"payment_currency_unknown",
			"payment currency is not in the offered option list",
			map[string]any{"payment_currency": currencyID.String()},
		)
	}
	if state.SelectedVault == nil {
		return dto.AdvanceFlowOutput{}, apperrors.NewMissingInput(
			"vault_not_selected",
			"select a vault before entering an amount",
			nil,
		)
	}
	if state.ResolvedUserAddress == "" {
		return dto.AdvanceFlowOutput{}, apperrors.NewMissingInput(
			"user_address_unresolved",
			"user address must be resolved before creating a session",
			nil,
		)
	}

	amount := valueobjects.ParseDepositAmount(command.InputText)
	call, appErr := DepositTargetCall(*state.SelectedVault, state.ResolvedUserAddress, amount)
	if appErr != nil {
		return dto.AdvanceFlowOutput{}, appErr
	}

	session, appErr := u.gateway.CreateSession(ctx, dto.CreateSessionInput{
		Call:              call,
		Account:           state.ResolvedUserAddress,
		PaymentCurrencyID: currencyID.String(),
		PaymentAmount:     amount.String(),
	})
	if appErr != nil {
		return dto.AdvanceFlowOutput{}, appErr
	}
	if session.UnsignedTransaction == nil {
		return dto.AdvanceFlowOutput{}, apperrors.NewNotFound(
			"session_transaction_missing",
			"no transaction found for session",
			map[string]any{"session_id": session.SessionID},
		)
	}

	symbol := session.PaymentCurrencySymbol
	if symbol == "" {
		if option, ok := state.PaymentOptionBySymbolOrID(currencyID.String()); ok {
			symbol = option.DisplaySymbol
		}
	}

	bodyLines := []string{}
	if paying := u.formatter.FormatString(session.PaymentAmount); paying != "" {
		bodyLines = append(bodyLines, fmt.Sprintf("Paying %s %s", paying, symbol))
	}
	if receiving := u.formatter.FormatString(session.SponsoredTransactionAmount); receiving != "" {
		bodyLines = append(bodyLines, fmt.Sprintf("Receiving %s %s", receiving, state.SelectedVault.Symbol))
	}

	state.CurrentStep = valueobjects.FlowStepAwaitConfirmation.String()

	return dto.AdvanceFlowOutput{
		State: state,
		Screen: dto.Screen{
			Title:     fmt.Sprintf("Paying with %s", symbol),
			BodyLines: bodyLines,
			Tone:      toneActive,
		},
		NextActionPath: actionPathFinalPrefix + session.SessionID,
		Actions: []dto.ScreenAction{
			{Label: "Back", Value: pageActionPrefix + "1", Target: actionPathPayment},
			{Label: "Confirm Session", Target: transactionPathPrefix + session.SessionID},
		},
	}, nil
}

func (u *advanceFlowUseCase) handleFinal(ctx context.Context, command dto.AdvanceFlowCommand) (dto.AdvanceFlowOutput, *apperrors.AppError) {
	state := command.State
	// complete is accepted so a stray Refresh after completion re-renders the
	// terminal screen instead of failing.
	if appErr := requireStep(state, valueobjects.FlowStepAwaitConfirmation, valueobjects.FlowStepComplete); appErr != nil {
		return dto.AdvanceFlowOutput{}, appErr
	}

	sessionID := strings.TrimSpace(command.SessionID)
	if sessionID == "" {
		return dto.AdvanceFlowOutput{}, apperrors.NewMissingInput(
			"session_id_missing",
			"session id is required",
			nil,
		)
	}

	// The payment transaction hash arrives as the transaction id right after
	// submission, or as the Refresh button's value on re-entry.
	txHash := strings.TrimSpace(command.TransactionID)
	if txHash == "" {
		txHash = strings.TrimSpace(command.Action)
	}
	if txHash == "" {
		return dto.AdvanceFlowOutput{}, apperrors.NewMissingInput(
			"transaction_hash_missing",
			missingTxHashMessage,
			map[string]any{"session_id": sessionID},
		)
	}

	outcome := u.poller.Confirm(ctx, dto.ConfirmSessionCommand{
		SessionID:       sessionID,
		TransactionHash: txHash,
	})

	switch outcome.Status {
	case dto.SessionOutcomeComplete:
		if state.SelectedVault == nil {
			return dto.AdvanceFlowOutput{}, apperrors.NewMissingInput(
				"vault_not_selected",
				"flow state has no selected vault",
				nil,
			)
		}

		explorerURL, appErr := valueobjects.ExplorerTxURL(u.cfg.ExplorerBaseURLs, state.SelectedVault.ChainID, outcome.SponsoredTransactionHash)
		if appErr != nil {
			return dto.AdvanceFlowOutput{}, appErr
		}

		state.CurrentStep = valueobjects.FlowStepComplete.String()

		return dto.AdvanceFlowOutput{
			State: state,
			Screen: dto.Screen{
				Title:     "Deposit complete",
				BodyLines: []string{fmt.Sprintf("Deposited into %s.", state.SelectedVault.Name)},
				Tone:      toneSuccess,
			},
			Actions: []dto.ScreenAction{
				{Label: "View on Explorer", Target: explorerURL},
			},
		}, nil
	case dto.SessionOutcomeFailed:
		return dto.AdvanceFlowOutput{}, apperrors.NewUpstream(
			"confirmation_record_failed",
			"failed to update payment transaction",
			map[string]any{"session_id": sessionID, "reason": outcome.FailureReason},
		)
	default:
		state.CurrentStep = valueobjects.FlowStepAwaitConfirmation.String()

		return dto.AdvanceFlowOutput{
			State: state,
			Screen: dto.Screen{
				Title:     "Processing...",
				BodyLines: []string{"Your payment is still being processed."},
				Tone:      tonePending,
			},
			NextActionPath: actionPathFinalPrefix + sessionID,
			Actions: []dto.ScreenAction{
				{Label: "Refresh", Value: txHash},
			},
		}, nil
	}
}

func requireStep(state entities.FlowState, accepted ...valueobjects.FlowStep) *apperrors.AppError {
	for _, step := range accepted {
		if state.CurrentStep == step.String() {
			return nil
		}
	}

	expected := make([]string, 0, len(accepted))
	for _, step := range accepted {
		expected = append(expected, step.String())
	}

	return apperrors.NewMissingInput(
		"flow_step_mismatch",
		"action does not match the current flow step",
		map[string]any{
			"current_step":   state.CurrentStep,
			"accepted_steps": expected,
		},
	)
}

func parsePageAction(action string) (int, bool) {
	if !strings.HasPrefix(action, pageActionPrefix) {
		return 0, false
	}

	page, err := strconv.Atoi(strings.TrimPrefix(action, pageActionPrefix))
	if err != nil || page < 1 {
		return 1, true
	}

	return page, true
}

// matchSourceChain returns the configured chain name for a submitted action,
// compared case-insensitively so the state always holds the canonical name.
func matchSourceChain(chains []string, action string) (string, bool) {
	trimmed := strings.TrimSpace(action)
	for _, chain := range chains {
		if strings.EqualFold(chain, trimmed) {
			return chain, true
		}
	}

	return "", false
}
