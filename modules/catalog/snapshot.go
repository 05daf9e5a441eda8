package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	fsjetstream "github.com/go-monolith/mono/plugin/fs-jetstream"
)

const (
	// SnapshotBucket is the object bucket holding catalog snapshots.
	SnapshotBucket = "catalog-snapshots"
	// SnapshotKey is the object name of the latest snapshot.
	SnapshotKey = "items.json"
)

// BucketSnapshotter stores catalog snapshots in a JetStream object bucket.
type BucketSnapshotter struct {
	bucket fsjetstream.FileStoragePort
}

// NewBucketSnapshotter wraps a file storage bucket.
func NewBucketSnapshotter(bucket fsjetstream.FileStoragePort) *BucketSnapshotter {
	return &BucketSnapshotter{bucket: bucket}
}

// Save overwrites the latest snapshot with data.
func (b *BucketSnapshotter) Save(ctx context.Context, data []byte, count int) error {
	_, err := b.bucket.Put(ctx, SnapshotKey, data,
		fsjetstream.WithHeaders(map[string]string{
			"Content-Type": "application/json",
			"Item-Count":   strconv.Itoa(count),
			"Saved-At":     time.Now().UTC().Format(time.RFC3339),
		}),
	)
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}
