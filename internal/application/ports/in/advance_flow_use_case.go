package in

import (
	"context"

	"vaultflow/internal/application/dto"
	apperrors "vaultflow/internal/shared_kernel/errors"
)

type AdvanceFlowUseCase interface {
	Execute(ctx context.Context, command dto.AdvanceFlowCommand) (dto.AdvanceFlowOutput, *apperrors.AppError)
}
