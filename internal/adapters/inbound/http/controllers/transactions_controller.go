package controllers

import (
	"log"
	"net/http"

	"vaultflow/internal/application/dto"
	portsin "vaultflow/internal/application/ports/in"
)

type TransactionsController struct {
	prepareUseCase portsin.PrepareTransactionUseCase
	logger         *log.Logger
}

func NewTransactionsController(
	prepareUseCase portsin.PrepareTransactionUseCase,
	logger *log.Logger,
) *TransactionsController {
	return &TransactionsController{
		prepareUseCase: prepareUseCase,
		logger:         logger,
	}
}

func (c *TransactionsController) PrepareTransaction(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")

	output, appErr := c.prepareUseCase.Execute(r.Context(), dto.PrepareTransactionQuery{SessionID: sessionID})
	if appErr != nil {
		c.logger.Printf("request error path=/v1/flows/transactions/{sessionId} method=%s code=%s message=%s", r.Method, appErr.Code, appErr.Message)
		writeAppError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, output)
}
