package http

import (
	"context"
	"net/http"

	"github.com/oilshop/order-bot/internal/cfg"
)

// Server — служебный HTTP-сервер бота: пробы живости и выгрузка заявок.
// Таймауты берутся из конфигурации, сам сервер останавливается через Stop.
type Server struct {
	httpServer *http.Server
}

func NewServer(handler http.Handler, cfg *cfg.HTTPConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// Stop мягко гасит сервер, дожидаясь активных запросов в пределах ctx.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
