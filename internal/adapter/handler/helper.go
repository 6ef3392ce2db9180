package handler

import (
	stdErrors "errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/opportunity-notes/errors"
	"github.com/johnquangdev/opportunity-notes/internal/domain/entities"
	"github.com/johnquangdev/opportunity-notes/internal/infrastructure/external/salesforce"
	"github.com/johnquangdev/opportunity-notes/internal/usecase/crm"
	"github.com/johnquangdev/opportunity-notes/pkg/ai"
)

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{}       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get("X-Request-ID")
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleError centralizes error handling and logging using provided logger.
// Domain errors are translated to AppError before rendering.
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)
	err = toAppError(c, err)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			logger.Error("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Any("app_code", appErr.Code),
				zap.Error(err),
			)
		}

		info := ""
		if appErr.Raw != nil {
			info = appErr.Raw.Error()
		}

		body := errs{
			Code:    appErr.Code,
			Message: appErr.Message,
			Info:    info,
			Details: appErr.Details,
		}

		return c.JSON(appErr.HTTPCode, body)
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	body := errs{
		Code:    errors.ErrorCode_INTERNAL,
		Message: "Internal server error",
		Info:    err.Error(),
	}

	return c.JSON(http.StatusInternalServerError, body)
}

// toAppError maps domain and integration errors onto AppError
func toAppError(c echo.Context, err error) error {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return err
	}

	var genErr *entities.GenerationError
	var sfErr *salesforce.APIError
	switch {
	case stdErrors.Is(err, entities.ErrRunNotFound):
		return errors.ErrRunNotFound(c.Param("id"))
	case stdErrors.Is(err, entities.ErrNoteIndex):
		appErr := errors.ErrInvalidArgument(err.Error())
		appErr.Code = errors.ErrorCode_TRANSCRIPT_INDEX_OUTRANGE
		return appErr
	case stdErrors.Is(err, entities.ErrNoTranscripts):
		return errors.ErrInvalidArgument("at least one transcript is required")
	case stdErrors.Is(err, entities.ErrAlreadyGenerated):
		return errors.ErrGenerationInProgress(fmt.Sprintf("%s/%s", c.Param("id"), c.Param("index")))
	case stdErrors.Is(err, ai.ErrTranscriptionDisabled):
		return errors.ErrTranscriptionDisabled()
	case stdErrors.Is(err, crm.ErrNotConfigured):
		return errors.ErrCRMNotConfigured(err)
	case stdErrors.Is(err, crm.ErrAuthFailed):
		return errors.ErrCRMAuthFailed(err)
	case stdErrors.As(err, &genErr):
		switch genErr.Kind {
		case entities.GenerationAuth:
			return errors.ErrGenerationUnauthorized(genErr.Backend, err)
		case entities.GenerationRateLimit:
			return errors.ErrGenerationRateLimited(genErr.Backend, err)
		case entities.GenerationNetwork:
			return errors.ErrGenerationUnavailable(genErr.Backend, err)
		default:
			return errors.ErrGenerationFailed(genErr.Filename, err)
		}
	case stdErrors.As(err, &sfErr):
		return errors.ErrExternalAPIFailed("salesforce", err)
	}
	return err
}
