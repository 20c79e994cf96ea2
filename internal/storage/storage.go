// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage provides the object storage used for article images.
// Two S3-compatible backends exist: the AWS SDK client (AWS S3 or any
// path-style endpoint) and a MinIO client for self-hosted buckets.
package storage

import (
	"context"
	"io"
)

// PutObjectOptions describe an upload. Size must be the exact byte count.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
	URL         string
}

// Storage is the capability the upload coordinator needs: put and delete by
// key, plus the mapping between keys and public URLs. Implementations are
// safe for concurrent use.
type Storage interface {
	// Put streams r to the bucket under key with public read access.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error
	// URL returns the public URL an object under key is served from.
	URL(key string) string
	// KeyFromURL reverses URL. It reports false for URLs this bucket does not serve.
	KeyFromURL(rawURL string) (string, bool)
}

// trimPrefix returns the rest of s after prefix, when s has it and the rest
// is non-empty.
func trimPrefix(s, prefix string) (string, bool) {
	if len(s) <= len(prefix) || s[:len(prefix)] != prefix {
		return "", false
	}
	return s[len(prefix):], true
}
