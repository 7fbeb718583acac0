package router

import (
	"net/http"

	"vaultflow/internal/adapters/inbound/http/controllers"
)

type Dependencies struct {
	HealthController       *controllers.HealthController
	SwaggerController      *controllers.SwaggerController
	FlowController         *controllers.FlowController
	TransactionsController *controllers.TransactionsController
}

func New(deps Dependencies) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", deps.HealthController.GetHealth)
	mux.HandleFunc("GET /swagger", deps.SwaggerController.RedirectToIndex)
	mux.HandleFunc("GET /swagger/openapi.yaml", deps.SwaggerController.GetOpenAPISpec)
	mux.HandleFunc("GET /swagger/", deps.SwaggerController.ServeUI)
	mux.HandleFunc("POST /v1/flows/steps/start", deps.FlowController.StartStep)
	mux.HandleFunc("POST /v1/flows/steps/vault", deps.FlowController.VaultStep)
	mux.HandleFunc("POST /v1/flows/steps/source-chain", deps.FlowController.SourceChainStep)
	mux.HandleFunc("POST /v1/flows/steps/payment", deps.FlowController.PaymentStep)
	mux.HandleFunc("POST /v1/flows/steps/final/{sessionId}", deps.FlowController.FinalStep)
	mux.HandleFunc("POST /v1/flows/transactions/{sessionId}", deps.TransactionsController.PrepareTransaction)

	return mux
}
