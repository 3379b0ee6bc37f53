package errors

// ErrorCode is a typed, stable identifier for a failure category.  Codes are
// grouped by prefix so that dashboards and alert rules can aggregate by
// subsystem without string parsing.
type ErrorCode string

// String implements fmt.Stringer.
func (c ErrorCode) String() string { return string(c) }

// Common codes shared by every subsystem.
const (
	ErrCodeUnknown            ErrorCode = "COMMON_000"
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeDatabaseError      ErrorCode = "COMMON_008"
	ErrCodeCacheError         ErrorCode = "COMMON_009"
	ErrCodeMessagingError     ErrorCode = "COMMON_010"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_011"

	// CodeOK is a sentinel for "no error"; used only as a metric label.
	CodeOK ErrorCode = "OK"
)

// Vendor identity subsystem.
const (
	ErrCodeVendorNotFound    ErrorCode = "VENDOR_001"
	ErrCodeVendorExists      ErrorCode = "VENDOR_002"
	ErrCodeVendorNameEmpty   ErrorCode = "VENDOR_003"
	ErrCodeAliasAmbiguous    ErrorCode = "VENDOR_004"
	ErrCodeAliasExists       ErrorCode = "VENDOR_005"
	ErrCodeSourceTypeInvalid ErrorCode = "VENDOR_006"
)

// Rate table subsystem.
const (
	// ErrCodeRateNotConfigured marks a configuration gap: a fee computation
	// needed a unit price that the flat-rate table does not carry.  It is
	// surfaced to the user as an advisory, never treated as fatal.
	ErrCodeRateNotConfigured ErrorCode = "RATE_001"
	ErrCodeZoneTableEmpty    ErrorCode = "RATE_002"
	ErrCodeZoneTableInvalid  ErrorCode = "RATE_003"
)

// Billing / invoice subsystem.
const (
	ErrCodeInvoiceNotFound   ErrorCode = "BILL_001"
	ErrCodeInvoiceFinalized  ErrorCode = "BILL_002"
	ErrCodePeriodInvalid     ErrorCode = "BILL_003"
	ErrCodeSourceUnavailable ErrorCode = "BILL_004"
)

// HTTPStatus maps an ErrorCode to the HTTP status code the API layer should
// respond with.  Unknown codes map to 500.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodePeriodInvalid, ErrCodeSourceTypeInvalid:
		return 400
	case ErrCodeNotFound, ErrCodeVendorNotFound, ErrCodeInvoiceNotFound, ErrCodeRateNotConfigured:
		return 404
	case ErrCodeConflict, ErrCodeVendorExists, ErrCodeAliasExists, ErrCodeAliasAmbiguous, ErrCodeInvoiceFinalized:
		return 409
	case ErrCodeTimeout:
		return 504
	case ErrCodeServiceUnavailable:
		return 503
	default:
		return 500
	}
}
