package dto

type AuthResponse struct {
	Token   string `json:"token"`
	Account any    `json:"account"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type BalanceResponse struct {
	AccountID string `json:"account_id"`
	AssetID   string `json:"asset_id"`
	Balance   uint64 `json:"balance"`
}
