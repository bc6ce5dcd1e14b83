package errors

import "errors"

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 认证相关错误。
var (
	InvalidCredentials = Definition{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password"}
	Unauthorized       = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	UserInactive       = Definition{Code: "USER_INACTIVE", Message: "User account is inactive"}
	InvalidUserID      = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
)

// 扫码打卡错误，与扫描管线的拒绝原因一一对应。
var (
	InvalidCoordinates        = Definition{Code: "INVALID_COORDINATES", Message: "Invalid GPS coordinates"}
	BarcodeMalformed          = Definition{Code: "BARCODE_MALFORMED", Message: "Invalid barcode format"}
	BarcodeStructureInvalid   = Definition{Code: "BARCODE_STRUCTURE_INVALID", Message: "Invalid barcode structure"}
	BarcodePayloadInvalid     = Definition{Code: "BARCODE_PAYLOAD_INVALID", Message: "Invalid payload format"}
	BarcodeSignatureMismatch  = Definition{Code: "BARCODE_SIGNATURE_MISMATCH", Message: "Invalid signature"}
	BarcodeExpired            = Definition{Code: "BARCODE_EXPIRED", Message: "Barcode expired"}
	LocationUnknownOrInactive = Definition{Code: "LOCATION_UNKNOWN_OR_INACTIVE", Message: "Invalid or inactive location"}
	GPSAccuracyTooLow         = Definition{Code: "GPS_ACCURACY_TOO_LOW", Message: "GPS accuracy too low"}
	OutsideAllowedRadius      = Definition{Code: "OUTSIDE_ALLOWED_RADIUS", Message: "Outside allowed area"}
	IPNotAllowed              = Definition{Code: "IP_NOT_ALLOWED", Message: "Attendance not allowed from this IP address"}
	ScanInProgress            = Definition{Code: "SCAN_IN_PROGRESS", Message: "Another scan is being processed, try again"}
	TooManyRequests           = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests, please slow down"}
)

// 设备注册错误。
var (
	DeviceNotRegistered   = Definition{Code: "DEVICE_NOT_REGISTERED", Message: "Device not registered"}
	DevicePendingApproval = Definition{Code: "DEVICE_PENDING_APPROVAL", Message: "Device pending approval"}
	DeviceLimitReached    = Definition{Code: "DEVICE_LIMIT_REACHED", Message: "Maximum devices reached for this user"}
)

// 补卡申请错误。
var (
	RequestAlreadyReviewed = Definition{Code: "REQUEST_ALREADY_REVIEWED", Message: "Request has already been reviewed"}
	RequestNotFound        = Definition{Code: "REQUEST_NOT_FOUND", Message: "Attendance request not found"}
	CheckTypeInvalid       = Definition{Code: "CHECK_TYPE_INVALID", Message: "Check type must be IN or OUT"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	InvalidCredentials.Code:        InvalidCredentials,
	Unauthorized.Code:              Unauthorized,
	UserInactive.Code:              UserInactive,
	InvalidUserID.Code:             InvalidUserID,
	InvalidCoordinates.Code:        InvalidCoordinates,
	BarcodeMalformed.Code:          BarcodeMalformed,
	BarcodeStructureInvalid.Code:   BarcodeStructureInvalid,
	BarcodePayloadInvalid.Code:     BarcodePayloadInvalid,
	BarcodeSignatureMismatch.Code:  BarcodeSignatureMismatch,
	BarcodeExpired.Code:            BarcodeExpired,
	LocationUnknownOrInactive.Code: LocationUnknownOrInactive,
	GPSAccuracyTooLow.Code:         GPSAccuracyTooLow,
	OutsideAllowedRadius.Code:      OutsideAllowedRadius,
	IPNotAllowed.Code:              IPNotAllowed,
	ScanInProgress.Code:            ScanInProgress,
	TooManyRequests.Code:           TooManyRequests,
	DeviceNotRegistered.Code:       DeviceNotRegistered,
	DevicePendingApproval.Code:     DevicePendingApproval,
	DeviceLimitReached.Code:        DeviceLimitReached,
	RequestAlreadyReviewed.Code:    RequestAlreadyReviewed,
	RequestNotFound.Code:           RequestNotFound,
	CheckTypeInvalid.Code:          CheckTypeInvalid,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// token 包使用的哨兵错误。
var (
	ErrTokenGeneratorNotInitialized = errors.New("token generator not initialized")
	ErrUnexpectedSigningMethod      = errors.New("unexpected signing method")
	ErrInvalidToken                 = errors.New("invalid token")
	ErrInvalidTokenClaims           = errors.New("invalid token claims")
	ErrInvalidTokenType             = errors.New("invalid token type")
	ErrUserIDNotFound               = errors.New("user id not found in token")
)
