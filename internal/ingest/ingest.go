// Package ingest turns raw upload streams into catalog-ready post drafts.
//
// An upload is spooled to staging while its SHA-256 fingerprint is
// computed, classified by content, measured, thumbnailed, and finally
// promoted into the media area under its fingerprint. Identical concurrent
// uploads are serialized per fingerprint so only one does the work.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/pictorapp/pictor-server/internal/domain"
	"github.com/pictorapp/pictor-server/internal/errors"
	"github.com/pictorapp/pictor-server/internal/media/files"
	"github.com/pictorapp/pictor-server/internal/media/images"
	"github.com/pictorapp/pictor-server/internal/media/video"
)

// FingerprintIndex is the store-side lookup the ingestor uses for its
// duplicate pre-check. The database UNIQUE constraint remains the final
// authority; the pre-check just avoids wasted processing.
type FingerprintIndex interface {
	GetPostByFingerprint(ctx context.Context, fingerprint string) (*domain.Post, error)
}

// VideoProcessor extracts metadata and a representative frame from videos.
type VideoProcessor interface {
	Probe(ctx context.Context, path string) (*video.ProbeResult, error)
	ExtractThumbnail(ctx context.Context, inputPath, outputPath string, maxDimension int) error
}

// Config carries the ingestor's tunables.
type Config struct {
	MaxUploadBytes        int64
	MaxThumbnailDimension int
}

// Ingestor processes uploads into post drafts.
type Ingestor struct {
	storage *files.Storage
	index   FingerprintIndex
	video   VideoProcessor
	logger  *slog.Logger

	maxUploadBytes int64
	maxThumbDim    int

	inFlight *syncMap[string, *sync.Mutex]
}

// New creates an Ingestor.
func New(storage *files.Storage, index FingerprintIndex, videoProc VideoProcessor, logger *slog.Logger, cfg Config) *Ingestor {
	return &Ingestor{
		storage:        storage,
		index:          index,
		video:          videoProc,
		logger:         logger,
		maxUploadBytes: cfg.MaxUploadBytes,
		maxThumbDim:    cfg.MaxThumbnailDimension,
		inFlight:       newSyncMap[string, *sync.Mutex](),
	}
}

// Ingest consumes an upload stream and returns a draft ready to be turned
// into a post row. On any failure the staging file and every partial
// artifact are removed; nothing leaks into the media area.
func (ing *Ingestor) Ingest(ctx context.Context, r io.Reader) (*domain.PostDraft, error) {
	staged, size, fingerprint, err := ing.spool(r)
	if err != nil {
		return nil, err
	}
	defer ing.storage.DiscardStaging(staged)

	// Serialize identical concurrent uploads per fingerprint.
	lock, _ := ing.inFlight.LoadOrStore(fingerprint, &sync.Mutex{})
	lock.Lock()
	defer func() {
		lock.Unlock()
		ing.inFlight.Delete(fingerprint)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if existing, err := ing.index.GetPostByFingerprint(ctx, fingerprint); err == nil {
		return nil, errors.DuplicateMedia(existing.ID)
	} else if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	head := make([]byte, sniffHeaderSize)
	n, err := readHead(staged, head)
	if err != nil {
		return nil, errors.StorageFailure(err)
	}
	sniffed, ok := Sniff(head[:n])
	if !ok {
		return nil, errors.UnsupportedMedia("upload content is not a supported image or video format")
	}

	draft := &domain.PostDraft{
		Fingerprint: fingerprint,
		Kind:        sniffed.Kind,
	}

	thumbName := fingerprint + "_thumb.jpg"
	switch sniffed.Kind {
	case domain.MediaImage:
		if err := ing.processImage(staged, draft, thumbName); err != nil {
			return nil, err
		}
	case domain.MediaVideo:
		if err := ing.processVideo(ctx, staged, draft, thumbName); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		ing.storage.Delete(thumbName)
		return nil, err
	}

	mediaName := fmt.Sprintf("%s.%s", fingerprint, sniffed.Ext)
	mediaPath, err := ing.storage.Promote(staged, mediaName)
	if err != nil {
		ing.storage.Delete(thumbName)
		return nil, err
	}
	draft.MediaPath = mediaPath

	if ing.logger != nil {
		ing.logger.Info("upload ingested",
			"fingerprint", fingerprint,
			"kind", string(sniffed.Kind),
			"bytes", size,
			"dimensions", fmt.Sprintf("%dx%d", draft.Width, draft.Height),
		)
	}
	return draft, nil
}

// spool copies the upload into a staging file while hashing it, enforcing
// the size limit as the bytes arrive. Returns the staging path, byte
// count, and hex fingerprint.
func (ing *Ingestor) spool(r io.Reader) (string, int64, string, error) {
	f, err := ing.storage.NewStagingFile()
	if err != nil {
		return "", 0, "", err
	}
	staged := f.Name()

	hasher := sha256.New()
	limited := io.LimitReader(r, ing.maxUploadBytes+1)
	size, err := io.Copy(io.MultiWriter(f, hasher), limited)
	closeErr := f.Close()

	switch {
	case err != nil:
		ing.storage.DiscardStaging(staged)
		return "", 0, "", errors.StorageFailure(err)
	case closeErr != nil:
		ing.storage.DiscardStaging(staged)
		return "", 0, "", errors.StorageFailure(closeErr)
	case size == 0:
		ing.storage.DiscardStaging(staged)
		return "", 0, "", errors.EmptyUpload("upload contained no data")
	case size > ing.maxUploadBytes:
		ing.storage.DiscardStaging(staged)
		return "", 0, "", errors.PayloadTooLarge(fmt.Sprintf("upload exceeds the %d byte limit", ing.maxUploadBytes))
	}

	return staged, size, hex.EncodeToString(hasher.Sum(nil)), nil
}

// processImage decodes the staged image, fills in dimensions, and stores
// the generated thumbnail and blurhash.
func (ing *Ingestor) processImage(staged string, draft *domain.PostDraft, thumbName string) error {
	data, err := os.ReadFile(staged)
	if err != nil {
		return errors.StorageFailure(err)
	}

	decoded, err := images.Decode(data)
	if err != nil {
		return err
	}
	draft.Width = decoded.Width
	draft.Height = decoded.Height

	thumb, err := images.Thumbnail(decoded, ing.maxThumbDim)
	if err != nil {
		return err
	}
	if hash, err := images.ComputeBlurHash(decoded); err == nil {
		draft.BlurHash = hash
	}

	thumbPath, err := ing.storage.Put(thumbName, thumb)
	if err != nil {
		return err
	}
	draft.ThumbPath = thumbPath
	return nil
}

// processVideo probes the staged video and extracts a first-frame
// thumbnail through ffmpeg, then stores it like an image thumbnail.
func (ing *Ingestor) processVideo(ctx context.Context, staged string, draft *domain.PostDraft, thumbName string) error {
	probe, err := ing.video.Probe(ctx, staged)
	if err != nil {
		return err
	}
	draft.Width = probe.Width
	draft.Height = probe.Height
	duration := probe.Duration
	draft.Duration = &duration

	frame := staged + ".frame.jpg"
	defer os.Remove(frame)
	if err := ing.video.ExtractThumbnail(ctx, staged, frame, ing.maxThumbDim); err != nil {
		return err
	}

	thumb, err := os.ReadFile(frame)
	if err != nil {
		return errors.StorageFailure(err)
	}
	if decoded, err := images.Decode(thumb); err == nil {
		if hash, err := images.ComputeBlurHash(decoded); err == nil {
			draft.BlurHash = hash
		}
	}

	thumbPath, err := ing.storage.Put(thumbName, thumb)
	if err != nil {
		return err
	}
	draft.ThumbPath = thumbPath
	return nil
}

// readHead reads up to len(buf) leading bytes of the file at path.
func readHead(path string, buf []byte) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := io.ReadFull(f, buf)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		err = nil
	}
	return n, err
}
