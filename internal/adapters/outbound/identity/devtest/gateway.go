package devtest

import (
	"context"
	"strings"

	portsout "vaultflow/internal/application/ports/out"
	apperrors "vaultflow/internal/shared_kernel/errors"
)

// defaultAddress keeps devtest flows resolvable when no address is configured.
const defaultAddress = "0x8ff47879d9ee072b593604b8b3009577ff7d6809"

// Gateway resolves every user to the same configured address set. Devtest
// flows never reach a real identity service.
type Gateway struct {
	addresses []string
}

var _ portsout.IdentityResolver = (*Gateway)(nil)

func NewGateway(addresses []string) *Gateway {
	cleaned := make([]string, 0, len(addresses))
	for _, address := range addresses {
		trimmed := strings.TrimSpace(address)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		cleaned = []string{defaultAddress}
	}

	return &Gateway{addresses: cleaned}
}

func (g *Gateway) ResolveAddresses(_ context.Context, _ string) ([]string, *apperrors.AppError) {
	addresses := make([]string, len(g.addresses))
	copy(addresses, g.addresses)

	return addresses, nil
}
