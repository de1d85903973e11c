// Package indexed is a generic keyed record store with a secondary index of
// live ids per entity type.
//
// Every backend keeps payload and index in step: a record is reachable
// through Get exactly when its id is in the index that List walks. Writes to
// one id are serialized, writes to different ids run in parallel, and
// callers always receive copies of the stored payload.
package indexed

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/KirkDiggler/rpg-toolkit/core"

	"github.com/KirkDiggler/rpg-charforge/internal/errors"
)

// Record is a storable entity that can produce a copy of itself under a
// different id.
type Record[T any] interface {
	core.Entity
	WithID(id string) T
}

// Patch is a partial record merged over the current value by Update.
type Patch[T any] interface {
	Apply(current T) T
}

// MutateFunc computes the next value from the current one. Returning an
// error aborts the mutation without writing. The redis backend may call it
// more than once when another process races it, so it must not have side
// effects.
type MutateFunc[T any] func(current T) (T, error)

// Store is the contract every backend implements.
type Store[T Record[T]] interface {
	// Create stores a new record.
	// Returns errors.InvalidArgument for a nil record, an empty id or a
	// record of another entity type
	// Returns errors.AlreadyExists if the id is live
	Create(ctx context.Context, record T) (T, error)

	// Get loads a record. Absence is not an error: found is false.
	Get(ctx context.Context, id string) (record T, found bool, err error)

	// Mutate runs an atomic read-modify-write on id. The result is re-stamped
	// with id.
	// Returns errors.NotFound if the id is not live
	// Returns the error of fn unchanged when fn aborts
	Mutate(ctx context.Context, id string, fn MutateFunc[T]) (T, error)

	// Update merges patch over the current record through Mutate.
	Update(ctx context.Context, id string, patch Patch[T]) (T, error)

	// Delete removes the payload and the index entry together and reports
	// whether the record existed.
	Delete(ctx context.Context, id string) (bool, error)

	// List returns every live record in index (insertion) order.
	List(ctx context.Context) ([]T, error)
}

// Config names the key space of a store.
type Config struct {
	// EntityType namespaces payload keys, e.g. "character".
	EntityType string
	// IndexName names the secondary index, e.g. "characters".
	IndexName string
}

// Validate validates the config.
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("entity_type", c.EntityType, vb)
	errors.ValidateRequired("index_name", c.IndexName, vb)
	return vb.Build()
}

func patchMutation[T Record[T]](id string, patch Patch[T]) MutateFunc[T] {
	return func(current T) (T, error) {
		return patch.Apply(current).WithID(id), nil
	}
}

// checkRecord rejects records that cannot be keyed.
func checkRecord[T Record[T]](entityType string, record T) error {
	if isNil(record) {
		return errors.InvalidArgument("record is required")
	}
	if record.GetID() == "" {
		return errors.InvalidArgument("record id is required")
	}
	if record.GetType() != entityType {
		return errors.InvalidArgumentf("store holds %q records, got %q", entityType, record.GetType())
	}
	return nil
}

func checkID(id string) error {
	if id == "" {
		return errors.InvalidArgument("id is required")
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func encode[T any](record T) ([]byte, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode record")
	}
	return data, nil
}

func decode[T any](data []byte) (T, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, errors.Wrap(err, "failed to decode record")
	}
	return out, nil
}
