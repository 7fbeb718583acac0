package out

import (
	"context"

	apperrors "vaultflow/internal/shared_kernel/errors"
)

type IdentityResolver interface {
	ResolveAddresses(ctx context.Context, userID string) ([]string, *apperrors.AppError)
}
