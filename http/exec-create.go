package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/httplog/v2"

	"github.com/execpipe/backend/execsrvc"
	"github.com/execpipe/backend/httpjson"
)

func (httpserver *HttpServer) createExecution(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	username := callerUsername(r)
	if username == "" {
		httpjson.WriteErrorJson(w, "authentication required",
			http.StatusUnauthorized, "unauthorized")
		return
	}

	var request execsrvc.ExecRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	resp, err := httpserver.execSrvc.ExecuteOne(r.Context(), username, request)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, resp)
}
