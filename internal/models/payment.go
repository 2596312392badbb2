package models

type ConfirmCheckoutRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
