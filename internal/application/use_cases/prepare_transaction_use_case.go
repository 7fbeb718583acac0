package use_cases

import (
	"context"
	"log"
	"strconv"
	"strings"

	"vaultflow/internal/application/dto"
	portsin "vaultflow/internal/application/ports/in"
	portsout "vaultflow/internal/application/ports/out"
	apperrors "vaultflow/internal/shared_kernel/errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const caip2EVMPrefix = "eip155:"

// prepareTransactionUseCase looks up a session's unsigned transaction and
// hands it to the Chain Submission Service, returning the submitted hash. It
// fails fast when the session or its transaction is absent; signing itself is
// the submission service's problem.
type prepareTransactionUseCase struct {
	gateway    portsout.PaymentGateway
	submission portsout.ChainSubmissionGateway
	logger     *log.Logger
}

func NewPrepareTransactionUseCase(
	gateway portsout.PaymentGateway,
	submission portsout.ChainSubmissionGateway,
	logger *log.Logger,
) portsin.PrepareTransactionUseCase {
	return &prepareTransactionUseCase{
		gateway:    gateway,
		submission: submission,
		logger:     logger,
	}
}

func (u *prepareTransactionUseCase) Execute(ctx context.Context, query dto.PrepareTransactionQuery) (dto.PrepareTransactionOutput, *apperrors.AppError) {
	sessionID := strings.TrimSpace(query.SessionID)
	if sessionID == "" {
		return dto.PrepareTransactionOutput{}, apperrors.NewMissingInput(
			"session_id_missing",
			"session id is required",
			nil,
		)
	}

	session, appErr := u.gateway.GetSession(ctx, sessionID)
	if appErr != nil {
		return dto.PrepareTransactionOutput{}, appErr
	}
	if session == nil {
		return dto.PrepareTransactionOutput{}, apperrors.NewNotFound(
			"session_not_found",
			"session not found",
			map[string]any{"session_id": sessionID},
		)
	}
	if session.UnsignedTransaction == nil {
		return dto.PrepareTransactionOutput{}, apperrors.NewNotFound(
			"unsigned_transaction_missing",
			"missing unsigned transaction",
			map[string]any{"session_id": sessionID},
		)
	}

	input, appErr := buildSubmission(*session.UnsignedTransaction)
	if appErr != nil {
		return dto.PrepareTransactionOutput{}, appErr
	}

	submitted, appErr := u.submission.Submit(ctx, input)
	if appErr != nil {
		return dto.PrepareTransactionOutput{}, appErr
	}

	u.logger.Printf("transaction submitted session_id=%s chain_id=%d tx_hash=%s", sessionID, input.ChainID, submitted.TransactionHash)

	return dto.PrepareTransactionOutput{TransactionHash: submitted.TransactionHash}, nil
}

// buildSubmission converts the gateway's unsigned transaction shape into the
// submission descriptor: CAIP-2 chain id to a numeric id, hex quantity value
// to decimal wei.
func buildSubmission(tx dto.UnsignedTransaction) (dto.SubmitTransactionInput, *apperrors.AppError) {
	chainID, appErr := parseCAIP2ChainID(tx.ChainID)
	if appErr != nil {
		return dto.SubmitTransactionInput{}, appErr
	}

	to := strings.TrimSpace(tx.To)
	if !common.IsHexAddress(to) {
		return dto.SubmitTransactionInput{}, apperrors.NewUpstream(
			"unsigned_transaction_invalid",
			"unsigned transaction recipient is invalid",
			map[string]any{"to": tx.To},
		)
	}

	valueWei := "0"
	if raw := strings.TrimSpace(tx.Value); raw != "" {
		parsed, err := hexutil.DecodeBig(raw)
		if err != nil {
			return dto.SubmitTransactionInput{}, apperrors.NewUpstream(
				"unsigned_transaction_invalid",
				"unsigned transaction value is not a hex quantity",
				map[string]any{"value": tx.Value},
			)
		}
		valueWei = parsed.String()
	}

	return dto.SubmitTransactionInput{
		ChainID:  chainID,
		To:       common.HexToAddress(to).Hex(),
		Data:     strings.TrimSpace(tx.Input),
		ValueWei: valueWei,
	}, nil
}

func parseCAIP2ChainID(raw string) (int64, *apperrors.AppError) {
	trimmed := strings.TrimSpace(raw)
	if numeric, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return numeric, nil
	}

	if strings.HasPrefix(trimmed, caip2EVMPrefix) {
		numeric, err := strconv.ParseInt(strings.TrimPrefix(trimmed, caip2EVMPrefix), 10, 64)
		if err == nil {
			return numeric, nil
		}
	}

	return 0, apperrors.NewUpstream(
		"unsigned_transaction_invalid",
		"unsigned transaction chain id is invalid",
		map[string]any{"chain_id": raw},
	)
}
