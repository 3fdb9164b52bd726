package execsrvc

import (
	"net/http"
	"strings"

	"github.com/execpipe/backend/screener"
	"github.com/execpipe/backend/srvcerror"
)

const ErrCodeInvalidInput = "invalid_input"

func ErrInvalidInput(reason string) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidInput,
		reason,
	).SetHttpStatusCode(http.StatusBadRequest)
}

const ErrCodeRateLimited = "rate_limited"

func ErrRateLimited() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeRateLimited,
		"rate limit exceeded, try again later",
	).SetHttpStatusCode(http.StatusTooManyRequests)
}

const ErrCodeUnsafeCode = "unsafe_code"

// ErrUnsafeCode names the violated rules so the caller knows what
// to fix.
func ErrUnsafeCode(issues []screener.Issue) *srvcerror.Error {
	msgs := make([]string, 0, len(issues))
	for _, issue := range issues {
		if issue.Severity == screener.SeverityError {
			msgs = append(msgs, issue.Message)
		}
	}
	return srvcerror.New(
		ErrCodeUnsafeCode,
		"submission rejected: "+strings.Join(msgs, "; "),
	).SetHttpStatusCode(http.StatusUnprocessableEntity)
}
