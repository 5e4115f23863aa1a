package blobstore

// Package blobstore reads knowledge documents from a gocloud.dev blob
// bucket (S3 in production, a local directory or in-memory bucket in dev
// and tests). The driver is chosen by the bucket URL at bootstrap.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gocloud.dev/blob"
	"golang.org/x/sync/errgroup"

	"github.com/beaconworks/kb-chat-api/internal/domain/chat"
)

// Store lists and fetches documents under a fixed key prefix.
type Store struct {
	bucket      *blob.Bucket
	prefix      string
	concurrency int
	maxDocs     int
	timeout     time.Duration
	logger      *slog.Logger
}

// Options configures a Store.
type Options struct {
	Prefix      string
	Concurrency int           // parallel fetch bound, default 4
	MaxDocs     int           // cap on documents returned, 0 = unlimited
	Timeout     time.Duration // bound on the whole retrieval, 0 = caller's deadline
	Logger      *slog.Logger
}

// New creates a Store over an open bucket. The bucket's lifecycle is owned
// by the caller (the process entry point), not the store.
func New(bucket *blob.Bucket, opts Options) *Store {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		bucket:      bucket,
		prefix:      opts.Prefix,
		concurrency: concurrency,
		maxDocs:     opts.MaxDocs,
		timeout:     opts.Timeout,
		logger:      logger,
	}
}

// Retrieve lists every object under the prefix and fetches them in parallel
// with a bounded fan-out. A single object's fetch or parse failure is logged
// and skipped; it never aborts the batch. Ordering among documents is not
// semantically significant. Only a listing failure (the store itself being
// unreachable) returns an error.
func (s *Store) Retrieve(ctx context.Context) ([]chat.Document, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	keys, err := s.listKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list knowledge base: %w", err)
	}

	docs := make([]*chat.Document, len(keys))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, key := range keys {
		g.Go(func() error {
			doc, fetchErr := s.fetch(gctx, key)
			if fetchErr != nil {
				// Partial-success policy: skip the document, keep the batch.
				s.logger.Warn("skipping knowledge document", "key", key, "error", fetchErr)
				return nil
			}
			mu.Lock()
			docs[i] = doc
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]chat.Document, 0, len(docs))
	for _, d := range docs {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *Store) listKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.bucket.List(&blob.ListOptions{Prefix: s.prefix})
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		// Directory markers carry no document.
		if obj.IsDir || strings.HasSuffix(obj.Key, "/") {
			continue
		}
		keys = append(keys, obj.Key)
		if s.maxDocs > 0 && len(keys) >= s.maxDocs {
			break
		}
	}
	return keys, nil
}

func (s *Store) fetch(ctx context.Context, key string) (*chat.Document, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	var doc chat.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}
	if doc.DocumentID == "" {
		doc.DocumentID = key
	}
	if doc.Title == "" {
		doc.Title = strings.TrimPrefix(key, s.prefix)
	}
	return &doc, nil
}
