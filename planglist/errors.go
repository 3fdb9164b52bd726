package planglist

import (
	"net/http"

	"github.com/execpipe/backend/srvcerror"
)

const ErrCodeInvalidProgLang = "invalid_programming_language"

func ErrInvalidProgLang() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidProgLang,
		"unsupported programming language",
	).SetHttpStatusCode(http.StatusBadRequest)
}
