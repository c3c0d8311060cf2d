package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/plotwise/garden/internal/model"
	"github.com/plotwise/garden/internal/provider/wikimedia"
)

const (
	imageCacheTTL         = 30 * 24 * time.Hour
	imageMissCacheTTL     = 7 * 24 * time.Hour
	defaultImageRateLimit = 1.0
)

type ImageSearcher interface {
	SearchImage(ctx context.Context, query string) (wikimedia.Image, []byte, error)
}

type FetchImagesOptions struct {
	Limit int
	// RequestsPerSecond caps calls to the image provider; <= 0 means one per second.
	RequestsPerSecond float64
	Refresh           bool
	Logger            *zap.Logger
}

type FetchImagesReport struct {
	Checked   int `json:"checked"`
	Updated   int `json:"updated"`
	CacheHits int `json:"cache_hits"`
	Missing   int `json:"missing"`
	Failed    int `json:"failed"`
}

// FetchPlantImages walks plants without an image one at a time, spacing
// provider calls with a rate limiter. Individual lookup failures are counted
// and logged; only database errors and context cancellation abort the batch.
func FetchPlantImages(ctx context.Context, db *sql.DB, searcher ImageSearcher, opts FetchImagesOptions) (FetchImagesReport, error) {
	report := FetchImagesReport{}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultImageRateLimit
	}
	limiter := rate.NewLimiter(rate.Limit(rps), 1)

	plants, err := ListPlants(db, ListPlantsFilter{MissingImage: !opts.Refresh, Limit: opts.Limit})
	if err != nil {
		return report, err
	}

	for _, p := range plants {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++
		query := p.Label()
		log := logger.With(zap.String("plant", p.Name), zap.String("query", query))

		if !opts.Refresh {
			cached, found, hit, err := lookupImageCache(db, query)
			if err != nil {
				return report, err
			}
			if hit {
				report.CacheHits++
				if err := applyImageResult(db, p, cached, found, &report); err != nil {
					return report, err
				}
				log.Debug("image cache hit", zap.Bool("found", found))
				continue
			}
		}

		if err := limiter.Wait(ctx); err != nil {
			return report, err
		}
		img, raw, err := searcher.SearchImage(ctx, query)
		switch {
		case errors.Is(err, wikimedia.ErrNoImage):
			if err := upsertImageCache(db, query, model.PlantImage{}, false, raw, imageMissCacheTTL); err != nil {
				return report, err
			}
			if err := applyImageResult(db, p, model.PlantImage{}, false, &report); err != nil {
				return report, err
			}
			log.Info("no image found")
		case err != nil:
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failed++
			log.Warn("image lookup failed", zap.Error(err))
		default:
			pi := model.PlantImage{
				URL:      img.URL,
				ThumbURL: img.ThumbURL,
				Author:   img.Author,
				License:  img.License,
				PageURL:  img.DescriptionURL,
			}
			if err := upsertImageCache(db, query, pi, true, raw, imageCacheTTL); err != nil {
				return report, err
			}
			if err := applyImageResult(db, p, pi, true, &report); err != nil {
				return report, err
			}
			log.Info("image stored", zap.String("title", img.Title), zap.String("license", img.License))
		}
	}
	return report, nil
}

func applyImageResult(db *sql.DB, p model.Plant, img model.PlantImage, found bool, report *FetchImagesReport) error {
	if !found {
		report.Missing++
		_, err := db.Exec(`UPDATE plants SET image_checked_at = ? WHERE id = ?`, time.Now().UTC(), p.ID)
		if err != nil {
			return fmt.Errorf("mark plant image checked: %w", err)
		}
		return nil
	}
	report.Updated++
	return setPlantImage(db, p.ID, img, time.Now())
}

func lookupImageCache(db *sql.DB, query string) (model.PlantImage, bool, bool, error) {
	var img model.PlantImage
	var found bool
	var expiresAt time.Time
	err := db.QueryRow(`
SELECT found, url, thumb_url, author, license, page_url, expires_at
FROM image_lookups
WHERE query_norm = ?
`, normalizeName(query)).Scan(&found, &img.URL, &img.ThumbURL, &img.Author, &img.License, &img.PageURL, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PlantImage{}, false, false, nil
	}
	if err != nil {
		return model.PlantImage{}, false, false, fmt.Errorf("lookup image cache: %w", err)
	}
	if time.Now().After(expiresAt) {
		return model.PlantImage{}, false, false, nil
	}
	return img, found, true, nil
}

func upsertImageCache(db *sql.DB, query string, img model.PlantImage, found bool, raw []byte, ttl time.Duration) error {
	rawStr := ""
	if json.Valid(raw) {
		rawStr = string(raw)
	}
	now := time.Now().UTC()
	_, err := db.Exec(`
INSERT INTO image_lookups(query_norm, found, url, thumb_url, author, license, page_url, raw_json, fetched_at, expires_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(query_norm) DO UPDATE SET
  found=excluded.found,
  url=excluded.url,
  thumb_url=excluded.thumb_url,
  author=excluded.author,
  license=excluded.license,
  page_url=excluded.page_url,
  raw_json=excluded.raw_json,
  fetched_at=excluded.fetched_at,
  expires_at=excluded.expires_at
`, normalizeName(query), found, img.URL, img.ThumbURL, img.Author, img.License, img.PageURL, rawStr, now, now.Add(ttl))
	if err != nil {
		return fmt.Errorf("upsert image cache: %w", err)
	}
	return nil
}

// PurgeExpiredImageCache deletes cache rows past their expiry.
func PurgeExpiredImageCache(db *sql.DB) (int64, error) {
	res, err := db.Exec(`DELETE FROM image_lookups WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge image cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge image cache rows affected: %w", err)
	}
	return n, nil
}
