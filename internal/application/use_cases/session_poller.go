package use_cases

import (
	"context"
	"log"
	"strings"

	"vaultflow/internal/application/dto"
	portsout "vaultflow/internal/application/ports/out"
)

const recordFailureReason = "update-failed"

// SessionPoller runs one confirmation check against the Payment Gateway:
// record the user's transaction hash, then re-fetch the session to see whether
// the gateway's asynchronous sponsorship has completed. Each invocation is a
// single round trip; re-invocation is always user triggered via the Refresh
// affordance, and repeating the check with the same hash is idempotent.
type SessionPoller struct {
	gateway portsout.PaymentGateway
	logger  *log.Logger
}

func NewSessionPoller(gateway portsout.PaymentGateway, logger *log.Logger) *SessionPoller {
	return &SessionPoller{
		gateway: gateway,
		logger:  logger,
	}
}

func (p *SessionPoller) Confirm(ctx context.Context, command dto.ConfirmSessionCommand) dto.ConfirmSessionOutput {
	sessionID := strings.TrimSpace(command.SessionID)
	txHash := strings.TrimSpace(command.TransactionHash)
	if sessionID == "" || txHash == "" {
		return dto.ConfirmSessionOutput{
			Status:        dto.SessionOutcomeFailed,
			FailureReason: recordFailureReason,
		}
	}

	// A failed record must not be masked by a stale status read, so the
	// status fetch is skipped entirely when recording fails.
	recorded, appErr := p.gateway.RecordTransaction(ctx, dto.RecordTransactionInput{
		SessionID:       sessionID,
		TransactionHash: txHash,
	})
	if appErr != nil || !recorded.Success {
		if appErr != nil {
			p.logger.Printf("session confirm record failed session_id=%s code=%s message=%s", sessionID, appErr.Code, appErr.Message)
		}
		return dto.ConfirmSessionOutput{
			Status:        dto.SessionOutcomeFailed,
			FailureReason: recordFailureReason,
		}
	}

	session, appErr := p.gateway.GetSession(ctx, sessionID)
	if appErr != nil {
		// Transient read failures must not strand the user on a hard error;
		// the caller re-renders the refresh screen.
		p.logger.Printf("session confirm fetch soft-failed session_id=%s code=%s message=%s", sessionID, appErr.Code, appErr.Message)
		return dto.ConfirmSessionOutput{Status: dto.SessionOutcomePending}
	}
	if session == nil {
		return dto.ConfirmSessionOutput{Status: dto.SessionOutcomeNotFound}
	}

	if hash := strings.TrimSpace(session.SponsoredTransactionHash); hash != "" {
		return dto.ConfirmSessionOutput{
			Status:                   dto.SessionOutcomeComplete,
			SponsoredTransactionHash: hash,
		}
	}

	return dto.ConfirmSessionOutput{Status: dto.SessionOutcomePending}
}
