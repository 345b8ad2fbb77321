package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// Authentication
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_ALREADY_REGISTERED"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// Authorization
	ErrForbidden ErrCode = "FORBIDDEN"

	// Validation
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// Resources
	ErrNotFound ErrCode = "NOT_FOUND"

	// Attempt lifecycle
	ErrAttemptNotFound   ErrCode = "ATTEMPT_NOT_FOUND"
	ErrAttemptSubmitted  ErrCode = "ATTEMPT_ALREADY_SUBMITTED"
	ErrAttemptNotGraded  ErrCode = "ATTEMPT_NOT_SUBMITTED"
	ErrAttemptActive     ErrCode = "ANOTHER_ATTEMPT_ACTIVE"
	ErrNoQuestions       ErrCode = "NO_QUESTIONS_AVAILABLE"
	ErrUnknownQuestion   ErrCode = "UNKNOWN_QUESTION"
	ErrNotTheoryQuestion ErrCode = "NOT_A_THEORY_QUESTION"
	ErrNotDiagnostic     ErrCode = "NOT_A_DIAGNOSTIC_ATTEMPT"

	// Assistant
	ErrAssistantBusy        ErrCode = "ASSISTANT_REQUEST_IN_FLIGHT"
	ErrAssistantUnavailable ErrCode = "ASSISTANT_UNAVAILABLE"

	// Uploads
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// Rate limiting
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// Server
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrEmailTaken:
		return "An account with this email already exists."
	case ErrSessionActive:
		return "You are already logged in on another device."
	case ErrSessionInvalidated:
		return "Your session has expired. Please log in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The identifier format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrAttemptNotFound:
		return "No live attempt with this id. It may have been submitted or torn down."
	case ErrAttemptSubmitted:
		return "This attempt has already been submitted."
	case ErrAttemptNotGraded:
		return "This attempt has not been submitted yet."
	case ErrAttemptActive:
		return "Another attempt is already in progress. Finish or leave it first."
	case ErrNoQuestions:
		return "No questions are available for this subject and exam type."
	case ErrUnknownQuestion:
		return "The question does not belong to this attempt."
	case ErrNotTheoryQuestion:
		return "Answer images can only be uploaded for theory questions."
	case ErrNotDiagnostic:
		return "This endpoint only accepts diagnostic quiz attempts."
	case ErrAssistantBusy:
		return "A request for this question is already in flight. Please wait."
	case ErrAssistantUnavailable:
		return "Failed to get a response from the assistant. Please try again."
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "The file type is not supported."
	case ErrFileTooLarge:
		return "The file exceeds the size limit."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
