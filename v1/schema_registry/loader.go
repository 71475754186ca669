package schema_registry

import (
	"context"
	"fmt"

	"github.com/Aleph-Alpha/pbseries/v1/schema"
)

const protobufType = "PROTOBUF"

// LoadSubject fetches the latest version of subject and compiles it into reg
// as a unit named after the subject. Referenced schemas are fetched and
// loaded first under their reference name, so the subject's imports resolve.
func LoadSubject(ctx context.Context, client Registry, reg *schema.Registry, subject string) (*schema.Unit, error) {
	md, err := client.GetLatestSchema(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subject %q: %w", subject, err)
	}

	l := &referenceLoader{
		client:   client,
		reg:      reg,
		visiting: make(map[string]bool),
		loaded:   make(map[string]bool),
	}
	return l.load(ctx, subject, md)
}

type referenceLoader struct {
	client   Registry
	reg      *schema.Registry
	visiting map[string]bool
	loaded   map[string]bool
}

func (l *referenceLoader) load(ctx context.Context, unitName string, md *Metadata) (*schema.Unit, error) {
	if md.Type != protobufType {
		return nil, fmt.Errorf("%w: subject %q has type %q", ErrNotProtobuf, md.Subject, md.Type)
	}

	for _, ref := range md.References {
		key := fmt.Sprintf("%s@%d", ref.Subject, ref.Version)
		if l.loaded[key] {
			continue
		}
		if l.visiting[key] {
			return nil, fmt.Errorf("%w: %s", ErrReferenceCycle, key)
		}

		l.visiting[key] = true
		refMD, err := l.client.GetSchemaVersion(ctx, ref.Subject, ref.Version)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch reference %q: %w", key, err)
		}
		if _, err := l.load(ctx, ref.Name, refMD); err != nil {
			return nil, err
		}
		l.visiting[key] = false
		l.loaded[key] = true
	}

	return l.reg.LoadSchema([]byte(md.Schema), unitName)
}
