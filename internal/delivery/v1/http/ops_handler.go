package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/oilshop/order-bot/internal/usecase"
	"github.com/oilshop/order-bot/pkg/logger"
)

// Pinger — проверка живости базы для readiness-пробы.
type Pinger interface {
	Ping(ctx context.Context) error
}

type OpsHandler struct {
	adminUC *usecase.AdminUseCase
	pinger  Pinger
	logger  logger.Logger
}

func NewOpsHandler(adminUC *usecase.AdminUseCase, pinger Pinger, logger logger.Logger) *OpsHandler {
	return &OpsHandler{
		adminUC: adminUC,
		pinger:  pinger,
		logger:  logger,
	}
}

func (h *OpsHandler) healthz(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *OpsHandler) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.Warnf("readiness probe: database ping failed: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]string{"status": "ready"})
}

// exportCSV отдаёт ту же выгрузку, что и команда /export в чате.
func (h *OpsHandler) exportCSV(w http.ResponseWriter, r *http.Request) {
	res, err := h.adminUC.ExportCSV(r.Context())
	if err != nil {
		h.logger.Warnf("csv export over http failed: %v", err)
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", res.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		h.logger.Warnf("csv export write failed: %v", err)
	}
}
