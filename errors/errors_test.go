package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorString(t *testing.T) {
	err := ErrRunNotFound("run_1")
	assert.Equal(t, "[RUN_NOT_FOUND] Run not found", err.Error())

	wrapped := ErrGenerationFailed("call.txt", fmt.Errorf("boom"))
	assert.Equal(t, "[GENERATION_FAILED] Note generation failed: boom", wrapped.Error())
	assert.Equal(t, "call.txt", wrapped.Details["filename"])
}

func TestAppError_UnwrapAndAs(t *testing.T) {
	cause := stdErrors.New("socket closed")
	err := fmt.Errorf("push: %w", ErrExternalAPIFailed("salesforce", cause))

	var appErr AppError
	assert.True(t, stdErrors.As(err, &appErr))
	assert.Equal(t, http.StatusBadGateway, appErr.HTTPCode)
	assert.True(t, stdErrors.Is(err, cause))
}

func TestWithDetail_DoesNotShareMap(t *testing.T) {
	base := ErrInvalidArgument("bad")
	a := base.WithDetail("k", "a")
	b := a.WithDetail("k", "b")
	assert.Equal(t, "a", a.Details["k"])
	assert.Equal(t, "b", b.Details["k"])
}

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "CRM_OPPORTUNITY_AMBIGUOUS", ErrorCode_CRM_OPPORTUNITY_AMBIG.String())
	assert.Equal(t, "UNKNOWN", ErrorCode(-1).String())
	// retired codes keep their numbers unassigned
	assert.Equal(t, "UNKNOWN", ErrorCode(1002).String())
	assert.Equal(t, "UNKNOWN", ErrorCode(6004).String())
}

func TestErrorCode_CRMOutcomeCodesNamed(t *testing.T) {
	codes := map[ErrorCode]string{
		ErrorCode_CRM_OPPORTUNITY_NOTFOUND: "CRM_OPPORTUNITY_NOT_FOUND",
		ErrorCode_CRM_OPPORTUNITY_AMBIG:    "CRM_OPPORTUNITY_AMBIGUOUS",
		ErrorCode_CRM_ASSESSMENT_NOTFOUND:  "CRM_ASSESSMENT_NOT_FOUND",
		ErrorCode_CRM_WRITE_REJECTED:       "CRM_WRITE_REJECTED",
	}
	for code, name := range codes {
		assert.Equal(t, name, code.String())
	}
}
