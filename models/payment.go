package models

// PaymentIntent is the client-facing view of a created card payment intent.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"` // smallest currency unit
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}
