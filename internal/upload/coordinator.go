package upload

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	_ "golang.org/x/image/webp"

	"noticias/internal/storage"
)

// cleanupTimeout bounds a compensating delete. Cleanup runs detached from
// the request's cancellation so an aborted request still removes its upload.
const cleanupTimeout = 10 * time.Second

// File is an uploaded image as received from a multipart form.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// Coordinator validates images and moves them in and out of object storage.
type Coordinator struct {
	store   storage.Storage
	now     func() time.Time
	orphans prometheus.Counter
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithClock overrides the time source used for object keys.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithOrphanCounter counts objects whose cleanup failed.
func WithOrphanCounter(counter prometheus.Counter) Option {
	return func(c *Coordinator) { c.orphans = counter }
}

// New creates a Coordinator writing to store.
func New(store storage.Storage, opts ...Option) *Coordinator {
	c := &Coordinator{store: store, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Begin validates f and uploads it. Nothing touches storage unless the
// file passes Validate and decodes as an image. The returned Saga must be
// committed once the database references the object, or compensated when
// the database write fails.
func (c *Coordinator) Begin(ctx context.Context, f *File) (*Saga, error) {
	if d := Validate(f.Name, f.ContentType, f.Size); !d.Accepted {
		return nil, &RejectedError{Reason: d.Reason}
	}

	if err := checkDecodable(f.Body); err != nil {
		slog.Info("upload rejected", "filename", f.Name, "error", err)
		return nil, &RejectedError{Reason: ReasonUndecodable}
	}

	saga := &Saga{c: c, Key: ObjectKey(c.now(), f.Name)}
	slog.Debug("upload started", "key", saga.Key, "size", f.Size)

	info, err := c.store.Put(ctx, saga.Key, f.Body, storage.PutObjectOptions{
		Size:        f.Size,
		ContentType: mediaType(f.ContentType),
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	saga.URL = info.URL
	if saga.URL == "" {
		saga.URL = c.store.URL(saga.Key)
	}
	return saga, nil
}

// Discard deletes the object behind an image URL that is no longer
// referenced, e.g. after an article's image was replaced or the article
// deleted. Failures are logged as orphans and never returned.
func (c *Coordinator) Discard(ctx context.Context, imageURL, reason string) {
	if imageURL == "" {
		return
	}
	key, ok := c.store.KeyFromURL(imageURL)
	if !ok {
		slog.Warn("image url does not belong to the bucket, leaving it alone",
			"url", imageURL, "reason", reason)
		return
	}
	c.remove(ctx, key, reason, nil)
}

// remove deletes key, logging a failure as an orphan for offline
// reconciliation. It never retries.
func (c *Coordinator) remove(ctx context.Context, key, reason string, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := c.store.Delete(ctx, key); err != nil {
		attrs := []any{"category", "orphan", "key", key, "reason", reason, "error", err}
		if cause != nil {
			attrs = append(attrs, "cause", cause)
		}
		slog.Warn("orphaned object left in storage", attrs...)
		if c.orphans != nil {
			c.orphans.Inc()
		}
		return
	}
	slog.Info("object deleted", "key", key, "reason", reason)
}

// checkDecodable reads just enough of body to recognise an image header,
// then rewinds it for the upload.
func checkDecodable(body io.ReadSeeker) error {
	if _, _, err := image.DecodeConfig(body); err != nil {
		return fmt.Errorf("decode image config: %w", err)
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind upload: %w", err)
	}
	return nil
}

func mediaType(contentType string) string {
	return strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
}

// Saga tracks one uploaded object until the database write that should
// reference it either succeeds (Commit) or fails (Compensate).
type Saga struct {
	c    *Coordinator
	Key  string
	URL  string
	done bool
}

// Commit records that the database now references the object. Later
// calls to Compensate do nothing.
func (s *Saga) Commit() {
	if s != nil {
		s.done = true
	}
}

// Compensate deletes the uploaded object because the database write that
// should have referenced it failed. A failed delete is logged as an orphan
// and otherwise ignored. Safe to call on a nil Saga.
func (s *Saga) Compensate(ctx context.Context, cause error) {
	if s == nil || s.done {
		return
	}
	s.done = true
	s.c.remove(ctx, s.Key, "compensate", cause)
}
