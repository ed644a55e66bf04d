package checkout

import "errors"

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to check out")
	ErrUnsupportedMethod  = errors.New("unsupported payment method")
	ErrAmountMismatch     = errors.New("callback amount does not match payment intent")
	ErrVerificationFailed = errors.New("callback verification failed")
)
