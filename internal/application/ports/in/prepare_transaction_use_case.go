package in

import (
	"context"

	"vaultflow/internal/application/dto"
	apperrors "vaultflow/internal/shared_kernel/errors"
)

type PrepareTransactionUseCase interface {
	Execute(ctx context.Context, query dto.PrepareTransactionQuery) (dto.PrepareTransactionOutput, *apperrors.AppError)
}
