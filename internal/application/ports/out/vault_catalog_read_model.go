package out

import (
	"context"

	"vaultflow/internal/application/dto"
	apperrors "vaultflow/internal/shared_kernel/errors"
)

type VaultCatalogReadModel interface {
	ListEnabled(ctx context.Context) ([]dto.VaultEntry, *apperrors.AppError)
}
