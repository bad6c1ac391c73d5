package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeSessionNotFound    = "SESSION_NOT_FOUND"
	ErrCodeSessionExpired     = "SESSION_EXPIRED"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeCartItemNotFound   = "CART_ITEM_NOT_FOUND"
	ErrCodeAddressNotFound    = "ADDRESS_NOT_FOUND"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeNoValidItems       = "NO_VALID_ITEMS"
	ErrCodeInvalidShipping    = "INVALID_SHIPPING"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeCollectionNotFound = "COLLECTION_NOT_FOUND"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeUpstream           = "UPSTREAM_ERROR"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidCredentials = NewDomainError(ErrCodeInvalidCredentials, "Invalid credentials")
	ErrEmailTaken         = NewDomainError(ErrCodeEmailTaken, "User already exists")
	ErrSessionNotFound    = NewDomainError(ErrCodeSessionNotFound, "Session not found")
	ErrSessionExpired     = NewDomainError(ErrCodeSessionExpired, "Session expired")
	ErrUserNotFound       = NewDomainError(ErrCodeUserNotFound, "User not found")
	ErrCartItemNotFound   = NewDomainError(ErrCodeCartItemNotFound, "Cart item not found")
	ErrAddressNotFound    = NewDomainError(ErrCodeAddressNotFound, "Address not found")
	ErrInvalidQuantity    = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrNoValidItems       = NewDomainError(ErrCodeNoValidItems, "No valid items in order")
	ErrInvalidShipping    = NewDomainError(ErrCodeInvalidShipping, "Shipping cost cannot be negative")
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrCollectionNotFound = NewDomainError(ErrCodeCollectionNotFound, "Collection not found")
)

// StockError is returned when cart lines can no longer be ordered.
type StockError struct {
	Titles []string
}

func (e *StockError) Error() string {
	return "Some items are out of stock"
}
