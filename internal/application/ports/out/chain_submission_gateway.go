package out

import (
	"context"

	"vaultflow/internal/application/dto"
	apperrors "vaultflow/internal/shared_kernel/errors"
)

type ChainSubmissionGateway interface {
	Submit(ctx context.Context, input dto.SubmitTransactionInput) (dto.SubmitTransactionOutput, *apperrors.AppError)
}
