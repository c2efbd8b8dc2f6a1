// Package archive — фоновое сохранение выгрузок в объектное хранилище.
// Архив best-effort: администратор получает файл в чате независимо от результата.
package archive

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oilshop/order-bot/internal/usecase"
	"github.com/oilshop/order-bot/pkg/jitter"
	"github.com/oilshop/order-bot/pkg/logger"
)

const (
	uploadTimeout = 30 * time.Second
	maxAttempts   = 3
	baseBackoff   = time.Second
)

// ReportUploader — низкоуровневая запись одного объекта в хранилище.
type ReportUploader interface {
	Upload(ctx context.Context, req *usecase.ArchiveReportReq) (string, error)
}

// ReportArchive выполняет загрузки в фоне и умеет дожидаться их при остановке.
type ReportArchive struct {
	uploader    ReportUploader
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
}

func NewReportArchive(uploader ReportUploader, logger logger.Logger, shutdownCtx context.Context) *ReportArchive {
	return &ReportArchive{
		uploader:    uploader,
		logger:      logger,
		shutdownCtx: shutdownCtx,
	}
}

// Archive ставит выгрузку в фоновую загрузку с ретраями и джиттером.
func (a *ReportArchive) Archive(req *usecase.ArchiveReportReq) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		for attempt := 0; attempt < maxAttempts; attempt++ {
			ctx, cancel := context.WithTimeout(a.shutdownCtx, uploadTimeout)
			key, err := a.uploader.Upload(ctx, req)
			cancel()

			if err == nil {
				a.logger.Infof("report archived: %s", key)
				return
			}

			a.logger.Warnf("report archive attempt %d failed for %s: %v", attempt+1, req.FileName, err)

			select {
			case <-a.shutdownCtx.Done():
				a.logger.Warnf("report archive interrupted by shutdown: %s", req.FileName)
				return
			case <-time.After(jitter.ExponentialBackoff(baseBackoff, 10*time.Second, attempt, jitter.DefaultJitter)):
			}
		}

		a.logger.Warnf("report archive gave up after %d attempts: %s", maxAttempts, req.FileName)
	}()
}

// WaitForUploads ожидает завершения фоновых загрузок с учётом таймаута завершения приложения.
func (a *ReportArchive) WaitForUploads(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("report archive timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}
