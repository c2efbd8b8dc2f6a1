// Package http — служебный HTTP-интерфейс: health-пробы и выгрузка леджера
// для операторов. Пользовательский трафик сюда не ходит.
package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/oilshop/order-bot/internal/cfg"
	"github.com/oilshop/order-bot/internal/usecase"
	"github.com/oilshop/order-bot/pkg/logger"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(adminUC *usecase.AdminUseCase, pinger Pinger, httpCfg *cfg.HTTPConfig) {
	opsHandler := NewOpsHandler(adminUC, pinger, r.logger)

	r.router.Get("/healthz", opsHandler.healthz)
	r.router.Get("/readyz", opsHandler.readyz)

	r.router.Route("/api/v1", func(v1 chi.Router) {
		v1.With(bearerAuth(httpCfg.OpsToken)).Get("/export/csv", opsHandler.exportCSV)
	})
}
