package engine

import (
	"net/http"

	"github.com/execpipe/backend/srvcerror"
)

const ErrCodeUnsupportedLanguage = "unsupported_language"

func ErrUnsupportedLanguage() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeUnsupportedLanguage,
		"the execution engine does not support this language",
	).SetHttpStatusCode(http.StatusBadRequest)
}

const ErrCodeExecutionTimeout = "execution_timeout"

func ErrExecutionTimeout() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeExecutionTimeout,
		"execution did not finish in time",
	).SetHttpStatusCode(http.StatusGatewayTimeout)
}

const ErrCodeEngineUnavailable = "engine_unavailable"

func ErrEngineUnavailable() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeEngineUnavailable,
		"the execution engine is temporarily unavailable",
	).SetHttpStatusCode(http.StatusBadGateway)
}

const ErrCodeEngineAuthFailure = "engine_auth_failure"

func ErrEngineAuthFailure() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeEngineAuthFailure,
		"the execution engine rejected our credentials",
	).SetHttpStatusCode(http.StatusInternalServerError)
}
