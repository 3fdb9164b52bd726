package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"

	"github.com/execpipe/backend/execsrvc"
)

type HttpServer struct {
	execSrvc *execsrvc.ExecSrvc
	router   *chi.Mux
}

func NewHttpServer(
	execSrvc *execsrvc.ExecSrvc,
	jwtKey []byte,
) *HttpServer {
	router := chi.NewRouter()

	logger := httplog.NewLogger("execpipe", httplog.Options{
		LogLevel:         slog.LevelDebug,
		Concise:          true,
		RequestHeaders:   true,
		MessageFieldName: "message",
	})

	router.Use(httplog.RequestLogger(logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           3000,
	}))

	router.Use(getJwtAuthMiddleware(jwtKey))
	router.Use(newStatsLogger().middleware)

	server := &HttpServer{
		execSrvc: execSrvc,
		router:   router,
	}

	server.routes()

	return server
}

func (httpserver *HttpServer) Start(address string) error {
	return http.ListenAndServe(address, httpserver.router)
}

func (httpserver *HttpServer) routes() {
	r := httpserver.router
	r.Post("/executions", httpserver.createExecution)
	r.Post("/executions/batch", httpserver.createBatchExecution)
	r.Get("/executions/stats", httpserver.getExecutionStats)
	r.Get("/languages", httpserver.listProgrammingLangs)
}
