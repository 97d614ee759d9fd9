package usecase

// DomainError is a business-rule rejection. Quote rejections travel inside
// QuoteResult, not as Go errors, so the HTTP layer never turns them into
// 5xx responses.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

// TechnicalError is an infrastructure failure (queue publish, storage).
// These are logged for operators and never shown to the storefront.
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}
