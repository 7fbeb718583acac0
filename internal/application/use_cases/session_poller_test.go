//go:build !integration

package use_cases

import (
	"context"
	"testing"

	"vaultflow/internal/application/dto"
	apperrors "vaultflow/internal/shared_kernel/errors"
)

func TestSessionPollerRejectsMissingIdentifiers(t *testing.T) {
	gateway := &fakePaymentGateway{}
	poller := NewSessionPoller(gateway, discardLogger())

	for _, command := range []dto.ConfirmSessionCommand{
		{},
		{SessionID: "sess-1"},
		{TransactionHash: "0xabc"},
		{SessionID: "  ", TransactionHash: "0xabc"},
	} {
		outcome := poller.Confirm(context.Background(), command)
		if outcome.Status != dto.SessionOutcomeFailed || outcome.FailureReason != "update-failed" {
			t.Fatalf("command %+v: expected failed outcome, got %+v", command, outcome)
		}
	}
	if gateway.recordCalls != 0 {
		t.Fatalf("expected no gateway calls for invalid input, got %d", gateway.recordCalls)
	}
}

func TestSessionPollerRecordErrorFailsWithoutStatusFetch(t *testing.T) {
	gateway := &fakePaymentGateway{
		recordErr: apperrors.NewUpstream("payment_gateway_unreachable", "boom", nil),
	}
	poller := NewSessionPoller(gateway, discardLogger())

	outcome := poller.Confirm(context.Background(), dto.ConfirmSessionCommand{SessionID: "sess-1", TransactionHash: "0xabc"})
	if outcome.Status != dto.SessionOutcomeFailed {
		t.Fatalf("expected failed outcome, got %+v", outcome)
	}
	if gateway.getCalls != 0 {
		t.Fatalf("expected no status fetch after a failed record, got %d", gateway.getCalls)
	}
}

func TestSessionPollerUnsuccessfulRecordFails(t *testing.T) {
	gateway := &fakePaymentGateway{recordOutput: dto.RecordTransactionOutput{Success: false}}
	poller := NewSessionPoller(gateway, discardLogger())

	outcome := poller.Confirm(context.Background(), dto.ConfirmSessionCommand{SessionID: "sess-1", TransactionHash: "0xabc"})
	if outcome.Status != dto.SessionOutcomeFailed || outcome.FailureReason != "update-failed" {
		t.Fatalf("expected failed outcome, got %+v", outcome)
	}
}

func TestSessionPollerStatusFetchErrorIsPending(t *testing.T) {
	gateway := &fakePaymentGateway{
		recordOutput: dto.RecordTransactionOutput{Success: true},
		getErr:       apperrors.NewUpstream("payment_gateway_unreachable", "boom", nil),
	}
	poller := NewSessionPoller(gateway, discardLogger())

	outcome := poller.Confirm(context.Background(), dto.ConfirmSessionCommand{SessionID: "sess-1", TransactionHash: "0xabc"})
	if outcome.Status != dto.SessionOutcomePending {
		t.Fatalf("expected pending outcome for transient fetch failure, got %+v", outcome)
	}
}

func TestSessionPollerMissingSessionIsNotFound(t *testing.T) {
	gateway := &fakePaymentGateway{recordOutput: dto.RecordTransactionOutput{Success: true}}
	poller := NewSessionPoller(gateway, discardLogger())

	outcome := poller.Confirm(context.Background(), dto.ConfirmSessionCommand{SessionID: "sess-1", TransactionHash: "0xabc"})
	if outcome.Status != dto.SessionOutcomeNotFound {
		t.Fatalf("expected not_found outcome, got %+v", outcome)
	}
}

func TestSessionPollerSponsoredHashCompletes(t *testing.T) {
	gateway := &fakePaymentGateway{
		recordOutput: dto.RecordTransactionOutput{Success: true},
		getResult:    &dto.SessionResource{SessionID: "sess-1", SponsoredTransactionHash: " 0xsponsored "},
	}
	poller := NewSessionPoller(gateway, discardLogger())

	outcome := poller.Confirm(context.Background(), dto.ConfirmSessionCommand{SessionID: "sess-1", TransactionHash: "0xabc"})
	if outcome.Status != dto.SessionOutcomeComplete {
		t.Fatalf("expected complete outcome, got %+v", outcome)
	}
	if outcome.SponsoredTransactionHash != "0xsponsored" {
		t.Fatalf("expected trimmed sponsored hash, got %q", outcome.SponsoredTransactionHash)
	}
}

func TestSessionPollerNoHashYetIsPending(t *testing.T) {
	gateway := &fakePaymentGateway{
		recordOutput: dto.RecordTransactionOutput{Success: true},
		getResult:    &dto.SessionResource{SessionID: "sess-1"},
	}
	poller := NewSessionPoller(gateway, discardLogger())

	outcome := poller.Confirm(context.Background(), dto.ConfirmSessionCommand{SessionID: "sess-1", TransactionHash: "0xabc"})
	if outcome.Status != dto.SessionOutcomePending {
		t.Fatalf("expected pending outcome, got %+v", outcome)
	}
}
