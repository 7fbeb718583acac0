package use_cases

import (
	"context"

	"vaultflow/internal/application/dto"
	portsin "vaultflow/internal/application/ports/in"
	portsout "vaultflow/internal/application/ports/out"
	apperrors "vaultflow/internal/shared_kernel/errors"
)

type initializePersistenceUseCase struct {
	gateway portsout.PersistenceBootstrapGateway
}

func NewInitializePersistenceUseCase(gateway portsout.PersistenceBootstrapGateway) portsin.InitializePersistenceUseCase {
	return &initializePersistenceUseCase{gateway: gateway}
}

func (u *initializePersistenceUseCase) Execute(ctx context.Context, command dto.InitializePersistenceCommand) *apperrors.AppError {
	if u.gateway == nil {
		return apperrors.NewInternal(
			"persistence_bootstrap_gateway_missing",
			"persistence bootstrap gateway is required",
			nil,
		)
	}

	return u.gateway.Initialize(ctx, portsout.InitializePersistenceInput{
		ReadinessTimeout:       command.ReadinessTimeout,
		ReadinessRetryInterval: command.ReadinessRetryInterval,
	})
}
