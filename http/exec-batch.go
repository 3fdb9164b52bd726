package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/httplog/v2"

	"github.com/execpipe/backend/checker"
	"github.com/execpipe/backend/execsrvc"
	"github.com/execpipe/backend/httpjson"
)

func (httpserver *HttpServer) createBatchExecution(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	username := callerUsername(r)
	if username == "" {
		httpjson.WriteErrorJson(w, "authentication required",
			http.StatusUnauthorized, "unauthorized")
		return
	}

	var request execsrvc.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	report, err := httpserver.execSrvc.ExecuteBatch(r.Context(), username, request)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, redactHidden(report))
}

// redactHidden blanks out the actual output of hidden test cases so
// callers cannot fish for expected answers. Pass verdicts and timing
// stay visible. Works on a copy; the service's report keeps full
// outputs for the audit log.
func redactHidden(report checker.TestReport) checker.TestReport {
	results := make([]checker.TestCaseResult, len(report.Results))
	copy(results, report.Results)
	for i := range results {
		if results[i].Hidden {
			results[i].ActualOutput = ""
		}
	}
	report.Results = results
	return report
}
