package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/akolanti/CourseChatAPI/internal/adapter/utils"
	"github.com/akolanti/CourseChatAPI/internal/config"
	"github.com/akolanti/CourseChatAPI/internal/middleware"
	"github.com/akolanti/CourseChatAPI/pkg/logger_i"
)

var (
	server  *http.Server
	_logger *logger_i.Logger
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	CloseServices    context.CancelFunc
}

func CreateServer(listenAddr string, mcpHandler http.Handler) {
	_logger = logger_i.NewLogger("Server")

	r := utils.GetRouter()

	r.Router.Get("/", middleware.GetHandler)
	r.Router.Post("/api/query", middleware.QueryHandler)
	r.Router.Post("/api/ingest", middleware.PostIngestHandler)
	r.Router.Get("/api/courses", middleware.GetCoursesHandler)
	r.Router.Get("/api/sessions/{id}/history", middleware.GetSessionHistoryHandler)
	r.Router.Delete("/api/sessions/{id}", middleware.DeleteSessionHandler)
	if mcpHandler != nil {
		r.Router.Mount("/mcp", mcpHandler)
	}

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error :", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully", "err", err)
		}

		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully shut down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
