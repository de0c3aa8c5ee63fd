// Package main provides a tool to seed the catalog with generated test posts.
//
// This generates small unique PNG images, uploads them through the regular
// ingestion path, tags them, and arranges a few into pools so search,
// pagination, and ordering can be exercised against realistic data.
//
// Usage:
//
//	DATA_PATH=~/Pictor go run ./cmd/seed
//	DATA_PATH=~/Pictor go run ./cmd/seed --posts 200 --pools 5
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/pictorapp/pictor-server/internal/domain"
	"github.com/pictorapp/pictor-server/internal/ingest"
	"github.com/pictorapp/pictor-server/internal/media/files"
	"github.com/pictorapp/pictor-server/internal/service"
	"github.com/pictorapp/pictor-server/internal/store"
	"github.com/pictorapp/pictor-server/internal/store/sqlite"
)

var (
	postCount = flag.Int("posts", 60, "Number of posts to create")
	poolCount = flag.Int("pools", 3, "Number of pools to create")
	userID    = flag.String("user", "seed-user", "Uploader user ID")
)

// tagVocabulary is sampled to give posts overlapping tag sets, so boolean
// queries return interesting subsets.
var tagVocabulary = []string{
	"forest", "river", "mountain", "night", "sunset", "city",
	"portrait", "landscape", "macro", "sketch", "photo", "tall_trees",
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Pictor")
	}

	fmt.Printf("Seeding catalog at: %s\n", dataPath)

	s, err := sqlite.Open(filepath.Join(dataPath, "pictor.db"), nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	storage, err := files.New(filepath.Join(dataPath, "media"))
	if err != nil {
		log.Fatalf("Failed to open media storage: %v", err)
	}

	logger := slog.New(slog.DiscardHandler)
	ingestor := ingest.New(storage, s, nil, logger, ingest.Config{
		MaxUploadBytes:        16 << 20,
		MaxThumbnailDimension: 192,
	})
	posts := service.NewPostService(s, storage, ingestor, logger)
	pools := service.NewPoolService(s, logger, 25)

	actor := domain.Actor{ID: *userID}
	ctx := context.Background()

	created := seedPosts(ctx, posts, actor)
	seedPools(ctx, pools, created, actor)

	fmt.Printf("Done: %d posts, %d pools\n", len(created), *poolCount)
}

func seedPosts(ctx context.Context, posts *service.PostService, actor domain.Actor) []int64 {
	rng := rand.New(rand.NewSource(42))
	ids := make([]int64, 0, *postCount)

	for i := 0; i < *postCount; i++ {
		img := generatePNG(rng)
		tags := sampleTags(rng)

		post, err := posts.Upload(ctx, bytes.NewReader(img), tags, actor)
		if err != nil {
			// Re-running the seeder hits fingerprint dedup; skip and move on.
			fmt.Printf("  skipped upload %d: %v\n", i, err)
			continue
		}

		// Publish most posts so anonymous search has data to chew on.
		if rng.Intn(10) < 8 {
			details := &store.PostDetails{
				Rating:   randomRating(rng),
				IsPublic: true,
			}
			if _, err := posts.UpdateDetails(ctx, post.ID, details, actor); err != nil {
				log.Fatalf("Failed to publish post %d: %v", post.ID, err)
			}
		}

		ids = append(ids, post.ID)
	}
	return ids
}

func seedPools(ctx context.Context, pools *service.PoolService, postIDs []int64, actor domain.Actor) {
	if len(postIDs) == 0 {
		return
	}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < *poolCount; i++ {
		pool, err := pools.Create(ctx, fmt.Sprintf("seed sequence %d", i+1), actor)
		if err != nil {
			log.Fatalf("Failed to create pool: %v", err)
		}
		if _, err := pools.SetVisibility(ctx, pool.ID, true, actor); err != nil {
			log.Fatalf("Failed to publish pool %d: %v", pool.ID, err)
		}

		// Each pool gets a random contiguous run of posts.
		size := 3 + rng.Intn(6)
		start := rng.Intn(len(postIDs))
		for j := 0; j < size; j++ {
			postID := postIDs[(start+j)%len(postIDs)]
			if _, err := pools.Append(ctx, pool.ID, postID, actor); err != nil {
				fmt.Printf("  skipped pool member %d: %v\n", postID, err)
			}
		}
	}
}

// generatePNG renders a small gradient with random noise so every seeded
// upload has a distinct fingerprint.
func generatePNG(rng *rand.Rand) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 96, 96))
	base := uint8(rng.Intn(256))
	for y := 0; y < 96; y++ {
		for x := 0; x < 96; x++ {
			img.Set(x, y, color.RGBA{
				R: base,
				G: uint8(x * 2),
				B: uint8(y * 2),
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		log.Fatalf("Failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

func sampleTags(rng *rand.Rand) []string {
	n := 2 + rng.Intn(3)
	tags := make([]string, 0, n)
	seen := make(map[string]bool)
	for len(tags) < n {
		tag := tagVocabulary[rng.Intn(len(tagVocabulary))]
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

func randomRating(rng *rand.Rand) domain.Rating {
	switch rng.Intn(3) {
	case 0:
		return domain.RatingSafe
	case 1:
		return domain.RatingQuestionable
	default:
		return domain.RatingExplicit
	}
}
