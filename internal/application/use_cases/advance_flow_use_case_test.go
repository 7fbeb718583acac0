//go:build !integration

package use_cases

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"vaultflow/internal/application/dto"
	portsin "vaultflow/internal/application/ports/in"
	"vaultflow/internal/domain/entities"
	valueobjects "vaultflow/internal/domain/value_objects"
	apperrors "vaultflow/internal/shared_kernel/errors"
)

const (
	testUSDCCurrencyID = "eip155:42161/erc20:0xaf88d065e77c8cc2239327c5edb3a432268e5831"
	testETHCurrencyID  = "eip155:42161/slip44:60"
	testUserAddress    = "0x8ff47879d9ee072b593604b8b3009577ff7d6809"
)

type fakeVaultCatalog struct {
	entries []dto.VaultEntry
	appErr  *apperrors.AppError
	calls   int
}

func (f *fakeVaultCatalog) ListEnabled(_ context.Context) ([]dto.VaultEntry, *apperrors.AppError) {
	f.calls++
	if f.appErr != nil {
		return nil, f.appErr
	}
	return f.entries, nil
}

type fakeIdentityResolver struct {
	addresses []string
	appErr    *apperrors.AppError
	calls     int
}

func (f *fakeIdentityResolver) ResolveAddresses(_ context.Context, _ string) ([]string, *apperrors.AppError) {
	f.calls++
	if f.appErr != nil {
		return nil, f.appErr
	}
	return f.addresses, nil
}

type fakePaymentGateway struct {
	options       []dto.PaymentOption
	listErr       *apperrors.AppError
	listCalls     int
	lastListInput dto.ListPaymentOptionsInput

	session         dto.SessionResource
	createErr       *apperrors.AppError
	createCalls     int
	lastCreateInput dto.CreateSessionInput

	recordOutput dto.RecordTransactionOutput
	recordErr    *apperrors.AppError
	recordCalls  int

	getResult *dto.SessionResource
	getErr    *apperrors.AppError
	getCalls  int
}

func (f *fakePaymentGateway) ListPaymentOptions(_ context.Context, input dto.ListPaymentOptionsInput) ([]dto.PaymentOption, *apperrors.AppError) {
	f.listCalls++
	f.lastListInput = input
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.options, nil
}

func (f *fakePaymentGateway) CreateSession(_ context.Context, input dto.CreateSessionInput) (dto.SessionResource, *apperrors.AppError) {
	f.createCalls++
	f.lastCreateInput = input
	if f.createErr != nil {
		return dto.SessionResource{}, f.createErr
	}
	return f.session, nil
}

func (f *fakePaymentGateway) RecordTransaction(_ context.Context, _ dto.RecordTransactionInput) (dto.RecordTransactionOutput, *apperrors.AppError) {
	f.recordCalls++
	if f.recordErr != nil {
		return dto.RecordTransactionOutput{}, f.recordErr
	}
	return f.recordOutput, nil
}

func (f *fakePaymentGateway) GetSession(_ context.Context, _ string) (*dto.SessionResource, *apperrors.AppError) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getResult, nil
}

type fakeChainSubmission struct {
	output    dto.SubmitTransactionOutput
	appErr    *apperrors.AppError
	calls     int
	lastInput dto.SubmitTransactionInput
}

func (f *fakeChainSubmission) Submit(_ context.Context, input dto.SubmitTransactionInput) (dto.SubmitTransactionOutput, *apperrors.AppError) {
	f.calls++
	f.lastInput = input
	if f.appErr != nil {
		return dto.SubmitTransactionOutput{}, f.appErr
	}
	return f.output, nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testVaultEntries() []dto.VaultEntry {
	return []dto.VaultEntry{
		{ChainID: 42161, Address: "0x52969b21ff1b6b0bd858b14816f9a1865bcbb292", Name: "Stable Yield Vault", Symbol: "USDC", Decimals: 6},
		{ChainID: 42161, Address: "0x3e01dd8a5e1fb3481f0f589056b428fc308af0f3", Name: "ETH Growth Vault", Symbol: "WETH", Decimals: 18},
	}
}

func testPaymentOptions() []dto.PaymentOption {
	return []dto.PaymentOption{
		{PaymentCurrencyID: testUSDCCurrencyID, DisplaySymbol: "USDC", AvailableBalance: "1250.50"},
		{PaymentCurrencyID: testETHCurrencyID, DisplaySymbol: "ETH", AvailableBalance: "0.48"},
	}
}

type flowTestEnv struct {
	catalog  *fakeVaultCatalog
	identity *fakeIdentityResolver
	gateway  *fakePaymentGateway
	useCase  portsin.AdvanceFlowUseCase
}

func newFlowTestEnv(cfg FlowConfig, gateway *fakePaymentGateway) flowTestEnv {
	catalog := &fakeVaultCatalog{entries: testVaultEntries()}
	identity := &fakeIdentityResolver{addresses: []string{testUserAddress}}
	logger := discardLogger()

	useCase := NewAdvanceFlowUseCase(
		catalog,
		identity,
		gateway,
		NewOptionCache(gateway, nil, logger),
		NewSessionPoller(gateway, logger),
		NewAmountFormatter(AmountFormatterConfig{}),
		cfg,
		logger,
	)

	return flowTestEnv{catalog: catalog, identity: identity, gateway: gateway, useCase: useCase}
}

func defaultFlowConfig() FlowConfig {
	return FlowConfig{
		PageSize:         4,
		SourceChains:     []string{"Arbitrum", "Base"},
		ExplorerBaseURLs: valueobjects.DefaultExplorerBaseURLs(),
	}
}

func TestAdvanceFlowStartListsVaults(t *testing.T) {
	env := newFlowTestEnv(defaultFlowConfig(), &fakePaymentGateway{options: testPaymentOptions()})

	output, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State: entities.NewFlowState("flow-1"),
		Step:  StepStart,
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}

	if output.NextActionPath != "/v1/flows/steps/vault" {
		t.Fatalf("unexpected next action path: %s", output.NextActionPath)
	}
	if len(output.Actions) != 2 {
		t.Fatalf("expected one action per vault, got %v", output.Actions)
	}
	if output.Actions[0].Label != "Stable Yield Vault" || output.Actions[0].Value != "0" {
		t.Fatalf("unexpected first vault action: %+v", output.Actions[0])
	}
	if output.State.CurrentStep != valueobjects.FlowStepSelectVault.String() {
		t.Fatalf("unexpected step tag: %s", output.State.CurrentStep)
	}
}

func TestAdvanceFlowStartRestartsAnExistingPass(t *testing.T) {
	env := newFlowTestEnv(defaultFlowConfig(), &fakePaymentGateway{options: testPaymentOptions()})

	state := entities.NewFlowState("flow-1")
	state.SelectedVault = &entities.VaultRef{ChainID: 42161, Name: "Stable Yield Vault"}
	state.SourceChain = "Arbitrum"
	state.SetResolvedUserAddress(testUserAddress)
	state.CurrentStep = valueobjects.FlowStepAwaitConfirmation.String()

	output, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{State: state, Step: StepStart})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}

	if output.State.SelectedVault != nil || output.State.SourceChain != "" {
		t.Fatalf("expected pass-scoped state cleared, got %+v", output.State)
	}
	if output.State.ResolvedUserAddress != testUserAddress {
		t.Fatalf("expected resolved address to survive restart, got %q", output.State.ResolvedUserAddress)
	}
}

func TestAdvanceFlowVaultSelectionLeadsToPaymentOptions(t *testing.T) {
	gateway := &fakePaymentGateway{options: testPaymentOptions()}
	env := newFlowTestEnv(defaultFlowConfig(), gateway)

	output, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:  entities.NewFlowState("flow-1"),
		Step:   StepVault,
		UserID: "user:42",
		Action: "0",
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}

	if output.State.CurrentStep != valueobjects.FlowStepSelectPaymentOption.String() {
		t.Fatalf("unexpected step tag: %s", output.State.CurrentStep)
	}
	if output.State.ResolvedUserAddress != testUserAddress {
		t.Fatalf("expected resolved address cached, got %q", output.State.ResolvedUserAddress)
	}
	if output.NextActionPath != "/v1/flows/steps/payment" {
		t.Fatalf("unexpected next action path: %s", output.NextActionPath)
	}
	if output.TextInputPlaceholder != "Enter the amount" {
		t.Fatalf("unexpected placeholder: %q", output.TextInputPlaceholder)
	}
	if len(output.Actions) != 2 {
		t.Fatalf("expected one action per option with no pager for a single page, got %v", output.Actions)
	}
	if output.Actions[0].Value != testUSDCCurrencyID {
		t.Fatalf("unexpected option value: %s", output.Actions[0].Value)
	}
	if gateway.lastListInput.Call.FunctionName != "deposit" {
		t.Fatalf("expected deposit call description, got %+v", gateway.lastListInput.Call)
	}
	if gateway.lastListInput.Account != testUserAddress {
		t.Fatalf("expected resolved account on the list call, got %q", gateway.lastListInput.Account)
	}
	if !strings.Contains(output.Screen.BodyLines[0], "balance 1,250.5") {
		t.Fatalf("expected formatted balance in body, got %q", output.Screen.BodyLines[0])
	}
}

func TestAdvanceFlowVaultRejectsBadSelection(t *testing.T) {
	env := newFlowTestEnv(defaultFlowConfig(), &fakePaymentGateway{options: testPaymentOptions()})

	for _, action := range []string{"", "x", "-1", "2"} {
		_, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
			State:  entities.NewFlowState("flow-1"),
			Step:   StepVault,
			Action: action,
		})
		if appErr == nil || appErr.Code != "vault_selection_invalid" {
			t.Fatalf("action %q: expected vault_selection_invalid, got %+v", action, appErr)
		}
	}
}

func TestAdvanceFlowStepMismatchIsRejected(t *testing.T) {
	env := newFlowTestEnv(defaultFlowConfig(), &fakePaymentGateway{options: testPaymentOptions()})

	state := entities.NewFlowState("flow-1")
	state.CurrentStep = valueobjects.FlowStepAwaitConfirmation.String()

	_, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:  state,
		Step:   StepVault,
		Action: "0",
	})
	if appErr == nil || appErr.Code != "flow_step_mismatch" {
		t.Fatalf("expected flow_step_mismatch, got %+v", appErr)
	}
	if appErr.Type != apperrors.TypeMissingInput {
		t.Fatalf("expected missing_input type, got %s", appErr.Type)
	}
}

func TestAdvanceFlowSourceChainSelection(t *testing.T) {
	cfg := defaultFlowConfig()
	cfg.SourceChainSelection = true
	gateway := &fakePaymentGateway{options: testPaymentOptions()}
	env := newFlowTestEnv(cfg, gateway)

	output, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:  entities.NewFlowState("flow-1"),
		Step:   StepVault,
		UserID: "user:42",
		Action: "0",
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if output.NextActionPath != "/v1/flows/steps/source-chain" {
		t.Fatalf("expected source-chain step next, got %s", output.NextActionPath)
	}
	if output.State.CurrentStep != valueobjects.FlowStepSelectSourceChain.String() {
		t.Fatalf("unexpected step tag: %s", output.State.CurrentStep)
	}
	if gateway.listCalls != 0 {
		t.Fatalf("expected no option fetch before chain selection, got %d", gateway.listCalls)
	}

	output, appErr = env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:  output.State,
		Step:   StepSourceChain,
		UserID: "user:42",
		Action: "arbitrum",
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if output.State.SourceChain != "Arbitrum" {
		t.Fatalf("expected canonical chain name stored, got %q", output.State.SourceChain)
	}
	if gateway.lastListInput.SourceChainFilter != "Arbitrum" {
		t.Fatalf("expected source chain filter on the list call, got %q", gateway.lastListInput.SourceChainFilter)
	}

	_, appErr = env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:  entities.FlowState{Version: entities.FlowStateVersion, FlowID: "flow-2", CurrentStep: valueobjects.FlowStepSelectSourceChain.String()},
		Step:   StepSourceChain,
		Action: "Solana",
	})
	if appErr == nil || appErr.Code != "source_chain_invalid" {
		t.Fatalf("expected source_chain_invalid, got %+v", appErr)
	}
}

func TestAdvanceFlowNoOptionsDeadEndIsNotAnError(t *testing.T) {
	gateway := &fakePaymentGateway{options: []dto.PaymentOption{}}
	env := newFlowTestEnv(defaultFlowConfig(), gateway)

	output, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:  entities.NewFlowState("flow-1"),
		Step:   StepVault,
		UserID: "user:42",
		Action: "0",
	})
	if appErr != nil {
		t.Fatalf("expected dead-end screen, not an error, got %+v", appErr)
	}

	if output.NextActionPath != "/v1/flows/steps/start" {
		t.Fatalf("expected restart affordance, got %s", output.NextActionPath)
	}
	if len(output.Actions) != 1 || output.Actions[0].Label != "Start over" {
		t.Fatalf("expected a single Start over action, got %v", output.Actions)
	}
	if output.State.CurrentStep != valueobjects.FlowStepSelectVault.String() {
		t.Fatalf("expected step reset for restart, got %s", output.State.CurrentStep)
	}
	if len(output.State.PaymentOptions) != 0 {
		t.Fatalf("expected no options cached, got %v", output.State.PaymentOptions)
	}
}

func TestAdvanceFlowUnresolvedUserAddressIsAnError(t *testing.T) {
	env := newFlowTestEnv(defaultFlowConfig(), &fakePaymentGateway{options: testPaymentOptions()})
	env.identity.addresses = nil

	_, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:  entities.NewFlowState("flow-1"),
		Step:   StepVault,
		UserID: "user:42",
		Action: "0",
	})
	if appErr == nil || appErr.Code != "user_address_unresolved" {
		t.Fatalf("expected user_address_unresolved, got %+v", appErr)
	}
}

func TestAdvanceFlowPaymentCreatesSession(t *testing.T) {
	gateway := &fakePaymentGateway{
		options: testPaymentOptions(),
		session: dto.SessionResource{
			SessionID:                  "sess-1",
			UnsignedTransaction:        &dto.UnsignedTransaction{ChainID: "eip155:42161", To: "0x52969b21ff1b6b0bd858b14816f9a1865bcbb292", Input: "0x", Value: "0x0"},
			PaymentCurrencySymbol:      "USDC",
			PaymentAmount:              "5",
			SponsoredTransactionAmount: "4.998",
		},
	}
	env := newFlowTestEnv(defaultFlowConfig(), gateway)

	selected, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:  entities.NewFlowState("flow-1"),
		Step:   StepVault,
		UserID: "user:42",
		Action: "0",
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}

	output, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:     selected.State,
		Step:      StepPayment,
		Action:    testUSDCCurrencyID,
		InputText: "5",
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}

	if gateway.createCalls != 1 {
		t.Fatalf("expected one session creation, got %d", gateway.createCalls)
	}
	create := gateway.lastCreateInput
	if create.PaymentCurrencyID != testUSDCCurrencyID || create.PaymentAmount != "5" {
		t.Fatalf("unexpected session input: %+v", create)
	}
	if len(create.Call.Args) != 2 || create.Call.Args[0] != "5000000" || create.Call.Args[1] != testUserAddress {
		t.Fatalf("expected deposit(5000000, user), got %v", create.Call.Args)
	}

	if output.State.CurrentStep != valueobjects.FlowStepAwaitConfirmation.String() {
		t.Fatalf("unexpected step tag: %s", output.State.CurrentStep)
	}
	if output.NextActionPath != "/v1/flows/steps/final/sess-1" {
		t.Fatalf("unexpected next action path: %s", output.NextActionPath)
	}
	if len(output.Actions) != 2 {
		t.Fatalf("expected Back and Confirm actions, got %v", output.Actions)
	}
	if output.Actions[1].Target != "/v1/flows/transactions/sess-1" {
		t.Fatalf("unexpected confirm target: %s", output.Actions[1].Target)
	}
	if output.Screen.Title != "Paying with USDC" {
		t.Fatalf("unexpected title: %s", output.Screen.Title)
	}
	if !strings.Contains(output.Screen.BodyLines[0], "Paying 5 USDC") {
		t.Fatalf("unexpected paying line: %q", output.Screen.BodyLines[0])
	}
	if !strings.Contains(output.Screen.BodyLines[1], "Receiving 4.998 USDC") {
		t.Fatalf("unexpected receiving line: %q", output.Screen.BodyLines[1])
	}
}

func TestAdvanceFlowPaymentDefaultsAmountToTen(t *testing.T) {
	gateway := &fakePaymentGateway{
		options: testPaymentOptions(),
		session: dto.SessionResource{
			SessionID:           "sess-1",
			UnsignedTransaction: &dto.UnsignedTransaction{ChainID: "42161", To: "0x52969b21ff1b6b0bd858b14816f9a1865bcbb292"},
		},
	}
	env := newFlowTestEnv(defaultFlowConfig(), gateway)

	selected, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:  entities.NewFlowState("flow-1"),
		Step:   StepVault,
		UserID: "user:42",
		Action: "0",
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}

	if _, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:  selected.State,
		Step:   StepPayment,
		Action: testUSDCCurrencyID,
	}); appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}

	if gateway.lastCreateInput.PaymentAmount != "10" {
		t.Fatalf("expected default amount 10, got %s", gateway.lastCreateInput.PaymentAmount)
	}
	if gateway.lastCreateInput.Call.Args[0] != "10000000" {
		t.Fatalf("expected 10000000 base units, got %s", gateway.lastCreateInput.Call.Args[0])
	}
}

func TestAdvanceFlowPaymentRejectsUnknownCurrency(t *testing.T) {
	env := newFlowTestEnv(defaultFlowConfig(), &fakePaymentGateway{options: testPaymentOptions()})

	selected, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:  entities.NewFlowState("flow-1"),
		Step:   StepVault,
		UserID: "user:42",
		Action: "0",
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}

	_, appErr = env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:  selected.State,
		Step:   StepPayment,
		Action: "eip155:1/slip44:60",
	})
	if appErr == nil || appErr.Code != "payment_currency_unknown" {
		t.Fatalf("expected payment_currency_unknown, got %+v", appErr)
	}
}

func TestAdvanceFlowPaymentMissingUnsignedTransaction(t *testing.T) {
	gateway := &fakePaymentGateway{
		options: testPaymentOptions(),
		session: dto.SessionResource{SessionID: "sess-1"},
	}
	env := newFlowTestEnv(defaultFlowConfig(), gateway)

	selected, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:  entities.NewFlowState("flow-1"),
		Step:   StepVault,
		UserID: "user:42",
		Action: "0",
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}

	_, appErr = env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:  selected.State,
		Step:   StepPayment,
		Action: testUSDCCurrencyID,
	})
	if appErr == nil || appErr.Code != "session_transaction_missing" {
		t.Fatalf("expected session_transaction_missing, got %+v", appErr)
	}
	if appErr.Type != apperrors.TypeNotFound {
		t.Fatalf("expected not_found type, got %s", appErr.Type)
	}
}

func TestAdvanceFlowPaginationCyclesPages(t *testing.T) {
	options := []dto.PaymentOption{
		{PaymentCurrencyID: "eip155:42161/erc20:0xa000000000000000000000000000000000000001", DisplaySymbol: "AAA"},
		{PaymentCurrencyID: "eip155:42161/erc20:0xa000000000000000000000000000000000000002", DisplaySymbol: "BBB"},
		{PaymentCurrencyID: "eip155:42161/erc20:0xa000000000000000000000000000000000000003", DisplaySymbol: "CCC"},
	}
	cfg := defaultFlowConfig()
	cfg.PageSize = 2
	gateway := &fakePaymentGateway{options: options}
	env := newFlowTestEnv(cfg, gateway)

	pageOne, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:  entities.NewFlowState("flow-1"),
		Step:   StepVault,
		UserID: "user:42",
		Action: "0",
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if len(pageOne.Actions) != 3 {
		t.Fatalf("expected two options plus a More action, got %v", pageOne.Actions)
	}
	more := pageOne.Actions[2]
	if more.Label != "More" || more.Value != "page:2" {
		t.Fatalf("unexpected pager action: %+v", more)
	}

	pageTwo, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:  pageOne.State,
		Step:   StepPayment,
		Action: more.Value,
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if gateway.listCalls != 1 {
		t.Fatalf("expected the option list to be fetched exactly once, got %d", gateway.listCalls)
	}
	if pageTwo.Actions[0].Label != "CCC" {
		t.Fatalf("expected page 2 to start at CCC, got %v", pageTwo.Actions)
	}
	if pageTwo.Actions[len(pageTwo.Actions)-1].Value != "page:1" {
		t.Fatalf("expected wraparound pager to page 1, got %v", pageTwo.Actions)
	}
}

func TestAdvanceFlowFinalComplete(t *testing.T) {
	gateway := &fakePaymentGateway{
		options:      testPaymentOptions(),
		recordOutput: dto.RecordTransactionOutput{Success: true},
		getResult:    &dto.SessionResource{SessionID: "sess-1", SponsoredTransactionHash: "0xsponsored"},
	}
	env := newFlowTestEnv(defaultFlowConfig(), gateway)

	state := entities.NewFlowState("flow-1")
	state.SelectedVault = &entities.VaultRef{ChainID: 42161, Name: "Stable Yield Vault", Symbol: "USDC", Decimals: 6, Address: "0x52969b21ff1b6b0bd858b14816f9a1865bcbb292"}
	state.CurrentStep = valueobjects.FlowStepAwaitConfirmation.String()

	output, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:         state,
		Step:          StepFinal,
		SessionID:     "sess-1",
		TransactionID: "0xabc",
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}

	if output.State.CurrentStep != valueobjects.FlowStepComplete.String() {
		t.Fatalf("unexpected step tag: %s", output.State.CurrentStep)
	}
	if output.NextActionPath != "" {
		t.Fatalf("expected terminal screen without a next action, got %s", output.NextActionPath)
	}
	if len(output.Actions) != 1 || output.Actions[0].Target != "https://arbiscan.io/tx/0xsponsored" {
		t.Fatalf("unexpected explorer action: %v", output.Actions)
	}
	if output.Screen.Tone != "success" {
		t.Fatalf("unexpected tone: %s", output.Screen.Tone)
	}
}

func TestAdvanceFlowFinalPendingKeepsRefreshLoop(t *testing.T) {
	gateway := &fakePaymentGateway{
		options:      testPaymentOptions(),
		recordOutput: dto.RecordTransactionOutput{Success: true},
		getResult:    &dto.SessionResource{SessionID: "sess-1"},
	}
	env := newFlowTestEnv(defaultFlowConfig(), gateway)

	state := entities.NewFlowState("flow-1")
	state.SelectedVault = &entities.VaultRef{ChainID: 42161, Name: "Stable Yield Vault"}
	state.CurrentStep = valueobjects.FlowStepAwaitConfirmation.String()

	output, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:         state,
		Step:          StepFinal,
		SessionID:     "sess-1",
		TransactionID: "0xabc",
	})
	if appErr != nil {
		t.Fatalf("expected pending screen, got %+v", appErr)
	}

	if output.NextActionPath != "/v1/flows/steps/final/sess-1" {
		t.Fatalf("expected refresh loop path, got %s", output.NextActionPath)
	}
	if len(output.Actions) != 1 || output.Actions[0].Label != "Refresh" || output.Actions[0].Value != "0xabc" {
		t.Fatalf("expected Refresh action carrying the hash, got %v", output.Actions)
	}
	if output.State.CurrentStep != valueobjects.FlowStepAwaitConfirmation.String() {
		t.Fatalf("unexpected step tag: %s", output.State.CurrentStep)
	}
}

func TestAdvanceFlowFinalRefreshUsesActionHash(t *testing.T) {
	gateway := &fakePaymentGateway{
		options:      testPaymentOptions(),
		recordOutput: dto.RecordTransactionOutput{Success: true},
		getResult:    &dto.SessionResource{SessionID: "sess-1"},
	}
	env := newFlowTestEnv(defaultFlowConfig(), gateway)

	state := entities.NewFlowState("flow-1")
	state.CurrentStep = valueobjects.FlowStepAwaitConfirmation.String()

	output, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:     state,
		Step:      StepFinal,
		SessionID: "sess-1",
		Action:    "0xabc",
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if output.Actions[0].Value != "0xabc" {
		t.Fatalf("expected the action hash to be carried forward, got %v", output.Actions)
	}
}

func TestAdvanceFlowFinalMissingHash(t *testing.T) {
	env := newFlowTestEnv(defaultFlowConfig(), &fakePaymentGateway{options: testPaymentOptions()})

	state := entities.NewFlowState("flow-1")
	state.CurrentStep = valueobjects.FlowStepAwaitConfirmation.String()

	_, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:     state,
		Step:      StepFinal,
		SessionID: "sess-1",
	})
	if appErr == nil || appErr.Code != "transaction_hash_missing" {
		t.Fatalf("expected transaction_hash_missing, got %+v", appErr)
	}
}

func TestAdvanceFlowFinalRecordFailureIsUpstream(t *testing.T) {
	gateway := &fakePaymentGateway{
		options:      testPaymentOptions(),
		recordOutput: dto.RecordTransactionOutput{Success: false},
	}
	env := newFlowTestEnv(defaultFlowConfig(), gateway)

	state := entities.NewFlowState("flow-1")
	state.CurrentStep = valueobjects.FlowStepAwaitConfirmation.String()

	_, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State:         state,
		Step:          StepFinal,
		SessionID:     "sess-1",
		TransactionID: "0xabc",
	})
	if appErr == nil || appErr.Code != "confirmation_record_failed" {
		t.Fatalf("expected confirmation_record_failed, got %+v", appErr)
	}
	if appErr.Type != apperrors.TypeUpstream {
		t.Fatalf("expected upstream type, got %s", appErr.Type)
	}
	if gateway.getCalls != 0 {
		t.Fatalf("expected no status fetch after a failed record, got %d", gateway.getCalls)
	}
}

func TestAdvanceFlowUnknownStep(t *testing.T) {
	env := newFlowTestEnv(defaultFlowConfig(), &fakePaymentGateway{})

	_, appErr := env.useCase.Execute(context.Background(), dto.AdvanceFlowCommand{
		State: entities.NewFlowState("flow-1"),
		Step:  "bogus",
	})
	if appErr == nil || appErr.Code != "flow_step_unknown" {
		t.Fatalf("expected flow_step_unknown, got %+v", appErr)
	}
}
