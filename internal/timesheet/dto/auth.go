package dto

type ExchangeInput struct {
	Password string `json:"password"`
}
