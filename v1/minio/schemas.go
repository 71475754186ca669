package minio

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Aleph-Alpha/pbseries/v1/schema"
)

// LoadSchemas reads every ".proto" object below prefix and loads the batch
// into reg. The logical name of a unit is its key relative to prefix, so
// imports between objects resolve by that relative path. It returns the
// loaded unit names, sorted.
func LoadSchemas(ctx context.Context, store ObjectStore, prefix string, reg *schema.Registry) ([]string, error) {
	keys, err := store.ListKeys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)

	var sources []schema.SchemaSource
	for _, key := range keys {
		if !strings.HasSuffix(key, DefaultSuffix) {
			continue
		}
		data, err := store.ReadObject(ctx, key)
		if err != nil {
			return nil, err
		}
		sources = append(sources, schema.SchemaSource{
			Name:   logicalName(prefix, key),
			Source: data,
		})
	}

	if len(sources) == 0 {
		return nil, nil
	}
	if err := reg.LoadSources(sources); err != nil {
		return nil, fmt.Errorf("failed to load schemas from bucket: %w", err)
	}

	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name
	}
	sort.Strings(names)
	return names, nil
}

func logicalName(prefix, key string) string {
	return strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/")
}
