package checkout

import "github.com/RajDalvi08/CamousKart/cart-service/internal/apperr"

const (
	msgShippingIncomplete = "Please fill in all shipping details!"
	msgEmptyCart          = "Your cart is empty."
	msgPaymentNotStarted  = "Payment could not be started. Please try again."
	msgOrderPlaced        = "Order placed successfully!"
	msgPaymentTimedOut    = "Payment was not completed in time. Please try again."
)

var (
	ErrCheckoutInProgress   = apperr.New(apperr.Conflict, "A payment is already in progress")
	ErrIllegalTransition    = apperr.New(apperr.Conflict, "Checkout cannot do that right now")
	ErrShippingIncomplete   = apperr.New(apperr.Validation, msgShippingIncomplete)
	ErrInvalidPaymentMethod = apperr.New(apperr.Validation, "Unknown payment method")
	ErrOrderMismatch        = apperr.New(apperr.PaymentFailure, "Payment does not belong to this order")
)
