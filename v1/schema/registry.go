package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jhump/protoreflect/desc/protoparse"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"

	// Well-known types importable from any loaded source.
	_ "google.golang.org/protobuf/types/known/anypb"
	_ "google.golang.org/protobuf/types/known/durationpb"
	_ "google.golang.org/protobuf/types/known/emptypb"
	_ "google.golang.org/protobuf/types/known/structpb"
	_ "google.golang.org/protobuf/types/known/timestamppb"
	_ "google.golang.org/protobuf/types/known/wrapperspb"
)

// SchemaSource is raw schema text together with the logical name it is
// loaded under.
type SchemaSource struct {
	Name   string
	Source []byte
}

// Registry compiles schema sources at runtime and resolves message types.
// Each source is compiled into its own Unit with its own descriptor namespace,
// so two units may declare the same fully-qualified names without clashing.
//
// A Registry is safe for concurrent use: loads replace units atomically and
// a unit returned by a lookup stays valid after it is replaced.
type Registry struct {
	mu    sync.RWMutex
	units map[string]*Unit
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{units: make(map[string]*Unit)}
}

// LoadSchema parses and builds source under logicalName. On failure nothing
// is registered. Loading under an existing name replaces that unit only.
//
// source may import other loaded units by their logical name and any
// google/protobuf well-known type.
func (r *Registry) LoadSchema(source []byte, logicalName string) (*Unit, error) {
	if logicalName == "" {
		return nil, fmt.Errorf("%w: empty logical name", ErrSchemaParse)
	}

	fdp, err := parseSource(source, logicalName)
	if err != nil {
		return nil, err
	}

	resolver, err := r.resolverFor(fdp)
	if err != nil {
		return nil, err
	}

	file, err := protodesc.NewFile(fdp, resolver)
	if err != nil {
		return nil, fmt.Errorf("%w: unit %q: %w", ErrSchemaParse, logicalName, err)
	}

	src := make([]byte, len(source))
	copy(src, source)
	unit := newUnit(logicalName, src, file)

	r.mu.Lock()
	r.units[logicalName] = unit
	r.mu.Unlock()

	return unit, nil
}

// LoadSchemaFile reads path and loads it under its base file name, returning
// the declared top-level message names.
func (r *Registry) LoadSchemaFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %q: %w", path, err)
	}
	unit, err := r.LoadSchema(data, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return unit.TypeNames(), nil
}

// LoadSources loads a batch of sources whose imports may refer to each other.
// Sources are retried while at least one more of them loads, so the batch
// order does not matter. The returned error joins every source that failed.
func (r *Registry) LoadSources(sources []SchemaSource) error {
	pending := sources
	for len(pending) > 0 {
		var (
			next     []SchemaSource
			failures []error
		)
		for _, s := range pending {
			if _, err := r.LoadSchema(s.Source, s.Name); err != nil {
				next = append(next, s)
				failures = append(failures, err)
			}
		}
		if len(next) == len(pending) {
			return errors.Join(failures...)
		}
		pending = next
	}
	return nil
}

// ResolveType finds typeName in the unit loaded as unitName. typeName may be
// fully qualified or relative to the unit's package.
func (r *Registry) ResolveType(unitName, typeName string) (*TypeDescriptor, error) {
	unit, ok := r.Unit(unitName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownUnit, unitName)
	}
	return unit.Resolve(typeName)
}

// Unit returns the unit loaded under name.
func (r *Registry) Unit(name string) (*Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[name]
	return u, ok
}

// Units returns the loaded unit names, sorted.
func (r *Registry) Units() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.units))
	for name := range r.units {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Source returns the raw text loaded under name.
func (r *Registry) Source(name string) ([]byte, bool) {
	u, ok := r.Unit(name)
	if !ok {
		return nil, false
	}
	return u.Source(), true
}

// Sources returns every loaded source, sorted by name. Feeding the result
// back into LoadSources on a fresh registry restores the same units.
func (r *Registry) Sources() []SchemaSource {
	names := r.Units()
	out := make([]SchemaSource, 0, len(names))
	for _, name := range names {
		if src, ok := r.Source(name); ok {
			out = append(out, SchemaSource{Name: name, Source: src})
		}
	}
	return out
}

func parseSource(source []byte, name string) (*descriptorpb.FileDescriptorProto, error) {
	var reported []error
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{name: string(source)}),
		ErrorReporter: func(err protoparse.ErrorWithPos) error {
			reported = append(reported, err)
			return nil
		},
	}

	fdps, err := parser.ParseFilesButDoNotLink(name)
	if len(reported) > 0 {
		return nil, fmt.Errorf("%w: unit %q: %w", ErrSchemaParse, name, errors.Join(reported...))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: unit %q: %w", ErrSchemaParse, name, err)
	}
	if len(fdps) != 1 {
		return nil, fmt.Errorf("%w: unit %q: parser returned %d files", ErrSchemaParse, name, len(fdps))
	}

	fdp := fdps[0]
	if fdp.GetName() == "" {
		fdp.Name = proto.String(name)
	}
	return fdp, nil
}

// resolverFor collects the transitive imports of fdp into a fresh file set.
// Using a fresh set per load keeps every unit in its own namespace.
func (r *Registry) resolverFor(fdp *descriptorpb.FileDescriptorProto) (*protoregistry.Files, error) {
	files := new(protoregistry.Files)
	seen := make(map[string]bool)

	var register func(fd protoreflect.FileDescriptor) error
	register = func(fd protoreflect.FileDescriptor) error {
		if seen[fd.Path()] {
			return nil
		}
		seen[fd.Path()] = true
		imports := fd.Imports()
		for i := 0; i < imports.Len(); i++ {
			if err := register(imports.Get(i).FileDescriptor); err != nil {
				return err
			}
		}
		return files.RegisterFile(fd)
	}

	for _, dep := range fdp.GetDependency() {
		fd, ok := r.lookupImport(dep)
		if !ok {
			return nil, fmt.Errorf("%w: unit %q imports %q", ErrMissingImport, fdp.GetName(), dep)
		}
		if err := register(fd); err != nil {
			return nil, fmt.Errorf("%w: unit %q: %w", ErrSchemaParse, fdp.GetName(), err)
		}
	}
	return files, nil
}

func (r *Registry) lookupImport(path string) (protoreflect.FileDescriptor, bool) {
	if u, ok := r.Unit(path); ok {
		return u.file, true
	}
	fd, err := protoregistry.GlobalFiles.FindFileByPath(path)
	if err != nil {
		return nil, false
	}
	return fd, true
}
