package in

import (
	"context"

	"vaultflow/internal/application/dto"
	apperrors "vaultflow/internal/shared_kernel/errors"
)

type InitializePersistenceUseCase interface {
	Execute(ctx context.Context, command dto.InitializePersistenceCommand) *apperrors.AppError
}
