package errors

// ErrorCode is the application-level code carried by every AppError
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 200

	// General
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1004

	// Transcripts
	ErrorCode_TRANSCRIPT_UNREADABLE     ErrorCode = 2001
	ErrorCode_TRANSCRIPTION_DISABLED    ErrorCode = 2002
	ErrorCode_TRANSCRIPTION_FAILED      ErrorCode = 2003
	ErrorCode_TRANSCRIPT_INDEX_OUTRANGE ErrorCode = 2004

	// Generation
	ErrorCode_GENERATION_FAILED       ErrorCode = 3000
	ErrorCode_GENERATION_UNAUTHORIZED ErrorCode = 3001
	ErrorCode_GENERATION_RATE_LIMITED ErrorCode = 3002
	ErrorCode_GENERATION_UNAVAILABLE  ErrorCode = 3003
	ErrorCode_GENERATION_IN_PROGRESS  ErrorCode = 3004

	// Runs
	ErrorCode_RUN_NOT_FOUND   ErrorCode = 4000
	ErrorCode_RUN_SAVE_FAILED ErrorCode = 4001
	ErrorCode_EXPORT_FAILED   ErrorCode = 4002

	// CRM
	ErrorCode_CRM_NOT_CONFIGURED       ErrorCode = 5000
	ErrorCode_CRM_AUTH_FAILED          ErrorCode = 5001
	ErrorCode_CRM_OPPORTUNITY_NOTFOUND ErrorCode = 5002
	ErrorCode_CRM_OPPORTUNITY_AMBIG    ErrorCode = 5003
	ErrorCode_CRM_ASSESSMENT_NOTFOUND  ErrorCode = 5004
	ErrorCode_CRM_WRITE_REJECTED       ErrorCode = 5005

	// Integrations
	ErrorCode_INTEGRATION_STORAGE_FAILED      ErrorCode = 6000
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED ErrorCode = 6002
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                         "HTTP_OK",
	ErrorCode_INTERNAL:                        "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:                "INVALID_ARGUMENT",
	ErrorCode_INVALID_PAYLOAD:                 "INVALID_PAYLOAD",
	ErrorCode_TRANSCRIPT_UNREADABLE:           "TRANSCRIPT_UNREADABLE",
	ErrorCode_TRANSCRIPTION_DISABLED:          "TRANSCRIPTION_DISABLED",
	ErrorCode_TRANSCRIPTION_FAILED:            "TRANSCRIPTION_FAILED",
	ErrorCode_TRANSCRIPT_INDEX_OUTRANGE:       "TRANSCRIPT_INDEX_OUT_OF_RANGE",
	ErrorCode_GENERATION_FAILED:               "GENERATION_FAILED",
	ErrorCode_GENERATION_UNAUTHORIZED:         "GENERATION_UNAUTHORIZED",
	ErrorCode_GENERATION_RATE_LIMITED:         "GENERATION_RATE_LIMITED",
	ErrorCode_GENERATION_UNAVAILABLE:          "GENERATION_UNAVAILABLE",
	ErrorCode_GENERATION_IN_PROGRESS:          "GENERATION_IN_PROGRESS",
	ErrorCode_RUN_NOT_FOUND:                   "RUN_NOT_FOUND",
	ErrorCode_RUN_SAVE_FAILED:                 "RUN_SAVE_FAILED",
	ErrorCode_EXPORT_FAILED:                   "EXPORT_FAILED",
	ErrorCode_CRM_NOT_CONFIGURED:              "CRM_NOT_CONFIGURED",
	ErrorCode_CRM_AUTH_FAILED:                 "CRM_AUTH_FAILED",
	ErrorCode_CRM_OPPORTUNITY_NOTFOUND:        "CRM_OPPORTUNITY_NOT_FOUND",
	ErrorCode_CRM_OPPORTUNITY_AMBIG:           "CRM_OPPORTUNITY_AMBIGUOUS",
	ErrorCode_CRM_ASSESSMENT_NOTFOUND:         "CRM_ASSESSMENT_NOT_FOUND",
	ErrorCode_CRM_WRITE_REJECTED:              "CRM_WRITE_REJECTED",
	ErrorCode_INTEGRATION_STORAGE_FAILED:      "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED: "INTEGRATION_EXTERNAL_API_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
