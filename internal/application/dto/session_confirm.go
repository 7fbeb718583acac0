package dto

type SessionOutcomeStatus string

const (
	SessionOutcomeComplete SessionOutcomeStatus = "complete"
	SessionOutcomePending  SessionOutcomeStatus = "pending"
	SessionOutcomeNotFound SessionOutcomeStatus = "not_found"
	SessionOutcomeFailed   SessionOutcomeStatus = "failed"
)

type ConfirmSessionCommand struct {
	SessionID       string
	TransactionHash string
}

type ConfirmSessionOutput struct {
	Status                   SessionOutcomeStatus
	SponsoredTransactionHash string
	FailureReason            string
}
