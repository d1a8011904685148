package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeInvalidKey      = 1001
	ErrCodeInvalidLength   = 1002
	ErrCodeMissingRequired = 1003

	// Domain state (2xxx)
	ErrCodeObjectNotFound = 2001
	ErrCodeObjectExists   = 2101

	// Limits (3xxx)
	ErrCodeCapacityExceeded = 3003

	// Internal/system (4xxx)
	ErrCodeInternal       = 4001
	ErrCodeStorageFailure = 4002
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 404:
		return ErrCodeObjectNotFound
	case 409:
		return ErrCodeObjectExists
	case 507:
		return ErrCodeCapacityExceeded
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}
