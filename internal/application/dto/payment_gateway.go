package dto

type PaymentOption struct {
	PaymentCurrencyID string `json:"paymentCurrency"`
	DisplaySymbol     string `json:"currencySymbol"`
	LogoRef           string `json:"currencyLogoUrl,omitempty"`
	AvailableBalance  string `json:"balance,omitempty"`
}

// TargetCall describes the vault call a payment ultimately executes. The
// gateway treats it as opaque deposit parameters.
type TargetCall struct {
	ChainID         int64    `json:"chainId"`
	ContractAddress string   `json:"address"`
	FunctionName    string   `json:"functionName"`
	Args            []string `json:"args"`
}

type ListPaymentOptionsInput struct {
	Call              TargetCall
	Account           string
	SourceChainFilter string
}

type CreateSessionInput struct {
	Call              TargetCall
	Account           string
	PaymentCurrencyID string
	PaymentAmount     string
}

type UnsignedTransaction struct {
	ChainID string `json:"chainId"`
	To      string `json:"to"`
	Input   string `json:"input"`
	Value   string `json:"value"`
}

type SessionResource struct {
	SessionID                  string               `json:"sessionId"`
	UnsignedTransaction        *UnsignedTransaction `json:"unsignedTransaction,omitempty"`
	PaymentCurrencySymbol      string               `json:"paymentCurrencySymbol,omitempty"`
	PaymentCurrencyLogoRef     string               `json:"paymentCurrencyLogoUrl,omitempty"`
	PaymentAmount              string               `json:"paymentAmount,omitempty"`
	PaymentAmountUSD           string               `json:"paymentAmountUSD,omitempty"`
	SponsoredTransactionAmount string               `json:"sponsoredTransactionAmount,omitempty"`
	SponsoredTransactionHash   string               `json:"sponsoredTransactionHash,omitempty"`
}

type RecordTransactionInput struct {
	SessionID       string
	TransactionHash string
}

type RecordTransactionOutput struct {
	Success bool `json:"success"`
}
