package minio

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
	"github.com/oilshop/order-bot/internal/cfg"
	"github.com/oilshop/order-bot/internal/usecase"
	"github.com/oilshop/order-bot/pkg/e"
)

// ReportRepo складывает сгенерированные выгрузки в бакет MinIO.
type ReportRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewReportRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ReportRepo {
	return &ReportRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload сохраняет выгрузку под ключом reports/<дата>/<имя файла> и возвращает ключ объекта.
func (r *ReportRepo) Upload(ctx context.Context, req *usecase.ArchiveReportReq) (string, error) {
	objectKey := fmt.Sprintf("reports/%s/%s", time.Now().UTC().Format("2006-01-02"), req.FileName)

	info, err := r.mc.PutObject(ctx, r.cfg.BucketName, objectKey,
		bytes.NewReader(req.Data), int64(len(req.Data)),
		minio.PutObjectOptions{ContentType: req.MimeType},
	)
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}
