package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"accounting-sync/core/storage"
	"accounting-sync/feature/migration/errs"
)

// Snapshot is the exported business state: top-level collection name to raw JSON.
type Snapshot map[string]json.RawMessage

// RequiredCollections are the arrays a strict import insists on.
var RequiredCollections = []string{"productos", "movimientos", "cuentas", "terceros", "flujoCaja"}

// Load decodes a snapshot from r.
func Load(r io.Reader) (Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return decode(data)
}

// LoadFile reads a snapshot from disk. A missing file is an empty snapshot.
func LoadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return decode(data)
}

// LoadObject reads a snapshot stored as an object.
func LoadObject(ctx context.Context, client storage.Client, bucket, object string) (Snapshot, error) {
	data, err := storage.Download(ctx, client, bucket, object)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func decode(data []byte) (Snapshot, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Snapshot{}, nil
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errs.Configuration("snapshot is not a JSON object", err)
	}
	if s == nil {
		s = Snapshot{}
	}
	return s, nil
}

// Has reports whether key is present and not null.
func (s Snapshot) Has(key string) bool {
	raw, ok := s[key]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Keys returns the top-level keys in sorted order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RequireCollections fails when any key is absent or is not a JSON array.
func (s Snapshot) RequireCollections(keys ...string) error {
	var missing []string
	for _, k := range keys {
		raw := bytes.TrimSpace(s[k])
		if len(raw) == 0 || raw[0] != '[' {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return errs.Configuration(fmt.Sprintf("snapshot is missing required collections %v", missing), nil)
	}
	return nil
}
