package devtest

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"sync/atomic"

	"vaultflow/internal/application/dto"
	portsout "vaultflow/internal/application/ports/out"
	apperrors "vaultflow/internal/shared_kernel/errors"

	"golang.org/x/crypto/sha3"
)

// Gateway fabricates deterministic transaction hashes without touching a
// chain. Each submission gets a distinct hash via a monotonic nonce.
type Gateway struct {
	logger *log.Logger
	nonce  atomic.Uint64
}

var _ portsout.ChainSubmissionGateway = (*Gateway)(nil)

func NewGateway(logger *log.Logger) *Gateway {
	return &Gateway{logger: logger}
}

func (g *Gateway) Submit(_ context.Context, input dto.SubmitTransactionInput) (dto.SubmitTransactionOutput, *apperrors.AppError) {
	nonce := g.nonce.Add(1)

	digest := sha3.NewLegacyKeccak256()
	fmt.Fprintf(digest, "%d|%s|%s|%s|%d", input.ChainID, input.To, input.Data, input.ValueWei, nonce)
	hash := "0x" + hex.EncodeToString(digest.Sum(nil))

	if g.logger != nil {
		g.logger.Printf("devtest transaction submitted chain_id=%d to=%s hash=%s", input.ChainID, input.To, hash)
	}

	return dto.SubmitTransactionOutput{TransactionHash: hash}, nil
}
