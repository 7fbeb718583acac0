package devtest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"sync"

	"vaultflow/internal/application/dto"
	portsout "vaultflow/internal/application/ports/out"
	apperrors "vaultflow/internal/shared_kernel/errors"

	"golang.org/x/crypto/sha3"
)

const defaultPollsUntilComplete = 2

type Config struct {
	// Options is the canned option list returned for every vault. An empty
	// slice makes the gateway report no options, which is useful for
	// exercising the dead-end screen.
	Options []dto.PaymentOption
	// PollsUntilComplete is how many status fetches a session stays pending
	// for after its transaction hash is recorded.
	PollsUntilComplete int
}

// Gateway is the in-memory Payment Gateway used in devtest mode and in tests.
// Sessions complete after a configurable number of polls so the refresh loop
// can be exercised end to end without a network.
type Gateway struct {
	options            []dto.PaymentOption
	pollsUntilComplete int
	logger             *log.Logger

	mu       sync.Mutex
	sessions map[string]*sessionRecord
}

type sessionRecord struct {
	resource     dto.SessionResource
	recordedHash string
	pollsLeft    int
}

var _ portsout.PaymentGateway = (*Gateway)(nil)

func NewGateway(cfg Config, logger *log.Logger) *Gateway {
	polls := cfg.PollsUntilComplete
	if polls < 0 {
		polls = defaultPollsUntilComplete
	}

	options := make([]dto.PaymentOption, len(cfg.Options))
	copy(options, cfg.Options)

	return &Gateway{
		options:            options,
		pollsUntilComplete: polls,
		logger:             logger,
		sessions:           map[string]*sessionRecord{},
	}
}

func DefaultOptions() []dto.PaymentOption {
	return []dto.PaymentOption{
		{PaymentCurrencyID: "eip155:42161/erc20:0xaf88d065e77c8cc2239327c5edb3a432268e5831", DisplaySymbol: "USDC", AvailableBalance: "1250.503001"},
		{PaymentCurrencyID: "eip155:42161/slip44:60", DisplaySymbol: "ETH", AvailableBalance: "0.4812"},
		{PaymentCurrencyID: "eip155:8453/erc20:0x833589fcd6edb6e08f4c7c32d4f71b54bda02913", DisplaySymbol: "USDbC", AvailableBalance: "310.07"},
		{PaymentCurrencyID: "eip155:10/erc20:0x0b2c639c533813f4aa9d7837caf62653d097ff85", DisplaySymbol: "OP", AvailableBalance: "92.113"},
		{PaymentCurrencyID: "eip155:8453/slip44:60", DisplaySymbol: "cbETH", AvailableBalance: "0.055"},
	}
}

func (g *Gateway) ListPaymentOptions(_ context.Context, _ dto.ListPaymentOptionsInput) ([]dto.PaymentOption, *apperrors.AppError) {
	options := make([]dto.PaymentOption, len(g.options))
	copy(options, g.options)

	return options, nil
}

func (g *Gateway) CreateSession(_ context.Context, input dto.CreateSessionInput) (dto.SessionResource, *apperrors.AppError) {
	raw := make([]byte, 12)
	if _, err := rand.Read(raw); err != nil {
		return dto.SessionResource{}, apperrors.NewInternal(
			"session_id_generation_failed",
			"failed to generate session id",
			map[string]any{"error": err.Error()},
		)
	}
	sessionID := "sess_" + hex.EncodeToString(raw)

	paymentChain := paymentCurrencyChain(input.PaymentCurrencyID)
	symbol := symbolForCurrency(g.options, input.PaymentCurrencyID)

	resource := dto.SessionResource{
		SessionID: sessionID,
		UnsignedTransaction: &dto.UnsignedTransaction{
			ChainID: paymentChain,
			To:      input.Call.ContractAddress,
			Input:   "0x",
			Value:   "0x0",
		},
		PaymentCurrencySymbol:      symbol,
		PaymentAmount:              input.PaymentAmount,
		SponsoredTransactionAmount: input.PaymentAmount,
	}

	g.mu.Lock()
	g.sessions[sessionID] = &sessionRecord{
		resource:  resource,
		pollsLeft: g.pollsUntilComplete,
	}
	g.mu.Unlock()

	if g.logger != nil {
		g.logger.Printf("devtest session created session_id=%s payment_currency=%s", sessionID, input.PaymentCurrencyID)
	}

	return resource, nil
}

func (g *Gateway) RecordTransaction(_ context.Context, input dto.RecordTransactionInput) (dto.RecordTransactionOutput, *apperrors.AppError) {
	g.mu.Lock()
	defer g.mu.Unlock()

	record, ok := g.sessions[input.SessionID]
	if !ok {
		return dto.RecordTransactionOutput{Success: false}, nil
	}

	// Recording the same hash again is a no-op; the poll countdown only
	// starts once.
	if record.recordedHash == "" {
		record.recordedHash = input.TransactionHash
	}

	return dto.RecordTransactionOutput{Success: true}, nil
}

func (g *Gateway) GetSession(_ context.Context, sessionID string) (*dto.SessionResource, *apperrors.AppError) {
	g.mu.Lock()
	defer g.mu.Unlock()

	record, ok := g.sessions[sessionID]
	if !ok {
		return nil, nil
	}

	if record.recordedHash != "" && record.resource.SponsoredTransactionHash == "" {
		if record.pollsLeft > 0 {
			record.pollsLeft--
		} else {
			record.resource.SponsoredTransactionHash = sponsoredHash(sessionID, record.recordedHash)
		}
	}

	resource := record.resource
	return &resource, nil
}

func sponsoredHash(sessionID string, recordedHash string) string {
	digest := sha3.NewLegacyKeccak256()
	_, _ = digest.Write([]byte(sessionID))
	_, _ = digest.Write([]byte(recordedHash))

	return "0x" + hex.EncodeToString(digest.Sum(nil))
}

func paymentCurrencyChain(paymentCurrencyID string) string {
	chain, _, found := strings.Cut(paymentCurrencyID, "/")
	if !found {
		return "eip155:1"
	}

	return chain
}

func symbolForCurrency(options []dto.PaymentOption, paymentCurrencyID string) string {
	for _, option := range options {
		if option.PaymentCurrencyID == paymentCurrencyID {
			return option.DisplaySymbol
		}
	}

	return fmt.Sprintf("%.8s", paymentCurrencyID)
}
