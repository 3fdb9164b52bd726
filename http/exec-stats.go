package http

import (
	"net/http"

	"github.com/execpipe/backend/httpjson"
)

func (httpserver *HttpServer) getExecutionStats(w http.ResponseWriter, r *http.Request) {
	httpjson.WriteSuccessJson(w, httpserver.execSrvc.CacheStats())
}
