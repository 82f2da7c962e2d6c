package codec

import (
	"fmt"
	"reflect"
	"sync"

	"hexagonal/domain/shared"

	"gorm.io/gorm/schema"
)

var (
	mu         sync.Mutex
	registered = map[string]reflect.Type{}
)

// Register makes c available to GORM under c.Name().
// Registering the same name for a second, different wrapper type fails with
// ErrConflict: a codec is never shared across nominal types.
func Register[W shared.ValueObject](c *Codec[W]) error {
	mu.Lock()
	defer mu.Unlock()

	if existing, ok := registered[c.name]; ok && existing != c.wrapper {
		return shared.NewConflictError("codec",
			fmt.Sprintf("serializer %q already registered for %s, cannot reuse it for %s", c.name, existing, c.wrapper))
	}
	registered[c.name] = c.wrapper
	schema.RegisterSerializer(c.name, c)
	return nil
}

// MustRegister is Register for package initialisation.
func MustRegister[W shared.ValueObject](c *Codec[W]) *Codec[W] {
	if err := Register(c); err != nil {
		panic(err)
	}
	return c
}

// RegisteredType reports which wrapper type owns a serializer name.
func RegisteredType(name string) (reflect.Type, bool) {
	mu.Lock()
	defer mu.Unlock()
	t, ok := registered[name]
	return t, ok
}
