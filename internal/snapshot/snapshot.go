// Package snapshot stores point-in-time copies of an introspected schema
// as JSON objects in a filestore.Store.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/koustreak/myschema/internal/errs"
	"github.com/koustreak/myschema/internal/filestore"
	"github.com/koustreak/myschema/internal/schema"
)

// ContentType is the media type snapshots are stored with.
const ContentType = "application/json"

const keyTimeFormat = "20060102T150405Z"

// Snapshot is the introspected state of one database at a point in time.
type Snapshot struct {
	Database   string          `json:"database"`
	TakenAt    time.Time       `json:"takenAt"`
	Normalized bool            `json:"normalized"`
	Tables     []*schema.Table `json:"tables"`
}

// Key builds the object key of a snapshot: prefix/database/<UTC time>.json.
// An empty database name is stored as "default".
func Key(prefix, database string, t time.Time) string {
	return dir(prefix, database) + t.UTC().Format(keyTimeFormat) + ".json"
}

func dir(prefix, database string) string {
	if database == "" {
		database = "default"
	}
	return path.Join(prefix, database) + "/"
}

// Export uploads snap to bucket under key.
func Export(ctx context.Context, store filestore.Store, bucket, key string, snap *Snapshot) (*filestore.ObjectInfo, error) {
	if snap == nil {
		return nil, errs.New(errs.ErrKindInvalidInput, "nil snapshot")
	}
	if bucket == "" || key == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "bucket and key are required")
	}

	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to encode snapshot", err)
	}

	return store.PutObject(ctx, bucket, key, bytes.NewReader(body), int64(len(body)), ContentType)
}

// Load reads the snapshot stored at key.
func Load(ctx context.Context, store filestore.Store, bucket, key string) (*Snapshot, error) {
	obj, err := store.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	var snap Snapshot
	if err := json.NewDecoder(obj).Decode(&snap); err != nil {
		return nil, errs.Wrap(errs.ErrKindParseFailed, "failed to decode snapshot "+key, err)
	}
	return &snap, nil
}

// List returns the snapshot keys stored for database under prefix,
// oldest first.
func List(ctx context.Context, store filestore.Store, bucket, prefix, database string) ([]string, error) {
	objects, err := store.ListObjects(ctx, bucket, filestore.ListOptions{
		Prefix:    dir(prefix, database),
		Recursive: true,
	})
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, o := range objects {
		if o.IsDir || !strings.HasSuffix(o.Key, ".json") {
			continue
		}
		keys = append(keys, o.Key)
	}
	// the timestamp layout sorts lexically
	sort.Strings(keys)
	return keys, nil
}

// Latest returns the key of the newest snapshot of database.
func Latest(ctx context.Context, store filestore.Store, bucket, prefix, database string) (string, error) {
	keys, err := List(ctx, store, bucket, prefix, database)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", errs.Newf(errs.ErrKindNotFound, "no snapshots of %q in %s", database, bucket)
	}
	return keys[len(keys)-1], nil
}
