package dto

type PrepareTransactionQuery struct {
	SessionID string
}

type PrepareTransactionOutput struct {
	TransactionHash string `json:"transactionHash"`
}

type SubmitTransactionInput struct {
	ChainID  int64
	To       string
	Data     string
	ValueWei string
}

type SubmitTransactionOutput struct {
	TransactionHash string
}
