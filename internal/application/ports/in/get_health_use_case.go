package in

import (
	"context"

	"vaultflow/internal/application/dto"
	apperrors "vaultflow/internal/shared_kernel/errors"
)

type GetHealthUseCase interface {
	Execute(ctx context.Context, command dto.GetHealthCommand) (dto.HealthOutput, *apperrors.AppError)
}
