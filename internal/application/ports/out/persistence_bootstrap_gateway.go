package out

import (
	"context"
	"time"

	apperrors "vaultflow/internal/shared_kernel/errors"
)

type InitializePersistenceInput struct {
	ReadinessTimeout       time.Duration
	ReadinessRetryInterval time.Duration
}

type PersistenceBootstrapGateway interface {
	Initialize(ctx context.Context, input InitializePersistenceInput) *apperrors.AppError
}
