package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/lernwerk/backoffice/core"
	"github.com/lernwerk/backoffice/core/contract"
	"github.com/lernwerk/backoffice/core/engagement"
	"github.com/lernwerk/backoffice/core/mediation"
	"github.com/lernwerk/backoffice/core/student"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "not found")

	// public link failures collapse into one message so the response never
	// reveals whether a guessed token matched anything
	errContractNotAvailable = echo.NewHTTPError(http.StatusNotFound, "contract not available")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how
// to handle our errors. signalShutdown is called in order to gracefully
// shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			code, message = domainErrorStatus(errors.Cause(err))
			if code == http.StatusInternalServerError {
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, errors.Wrap(err, msg))

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// domainErrorStatus maps the domain sentinel errors onto HTTP codes.
// Anything unknown is a server error.
func domainErrorStatus(err error) (int, interface{}) {
	switch err {
	case student.ErrNotFound, contract.ErrNotFound, engagement.ErrNotFound, mediation.ErrNotFound:
		return http.StatusNotFound, err.Error()
	case contract.ErrInvalidLink:
		return http.StatusNotFound, errContractNotAvailable.Message
	case student.ErrInvalidState, contract.ErrInvalidState, engagement.ErrInvalidState, engagement.ErrConflict:
		return http.StatusConflict, err.Error()
	case student.ErrInvalidStatus, mediation.ErrInvalidStage, contract.ErrMissingSignature, contract.ErrInvalidPaymentInstrument:
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, nil
}
