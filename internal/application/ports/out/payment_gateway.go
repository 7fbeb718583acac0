package out

import (
	"context"

	"vaultflow/internal/application/dto"
	apperrors "vaultflow/internal/shared_kernel/errors"
)

type PaymentGateway interface {
	ListPaymentOptions(ctx context.Context, input dto.ListPaymentOptionsInput) ([]dto.PaymentOption, *apperrors.AppError)
	CreateSession(ctx context.Context, input dto.CreateSessionInput) (dto.SessionResource, *apperrors.AppError)
	RecordTransaction(ctx context.Context, input dto.RecordTransactionInput) (dto.RecordTransactionOutput, *apperrors.AppError)
	GetSession(ctx context.Context, sessionID string) (*dto.SessionResource, *apperrors.AppError)
}
