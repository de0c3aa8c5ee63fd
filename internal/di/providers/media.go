package providers

import (
	"github.com/samber/do/v2"

	"github.com/pictorapp/pictor-server/internal/config"
	"github.com/pictorapp/pictor-server/internal/ingest"
	"github.com/pictorapp/pictor-server/internal/logger"
	"github.com/pictorapp/pictor-server/internal/media/files"
	"github.com/pictorapp/pictor-server/internal/media/video"
)

// ProvideMediaStorage provides the media file storage.
func ProvideMediaStorage(i do.Injector) (*files.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := files.New(cfg.Data.MediaPath)
	if err != nil {
		return nil, err
	}

	log.Info("Media storage initialized", "path", cfg.Data.MediaPath)

	return storage, nil
}

// ProvideVideoTool provides the ffmpeg/ffprobe wrapper.
func ProvideVideoTool(i do.Injector) (*video.Tool, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return video.NewTool(cfg.Media.FFprobePath, cfg.Media.FFmpegPath, cfg.Media.ProbeTimeout), nil
}

// ProvideIngestor provides the upload ingestor.
func ProvideIngestor(i do.Injector) (*ingest.Ingestor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storage := do.MustInvoke[*files.Storage](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	videoTool := do.MustInvoke[*video.Tool](i)

	return ingest.New(storage, storeHandle.Store, videoTool, log.Logger, ingest.Config{
		MaxUploadBytes:        cfg.Media.MaxUploadBytes,
		MaxThumbnailDimension: cfg.Media.ThumbnailMaxDimension,
	}), nil
}
