// Package store maintains a registry of blob-store types,
// for creating stores from configuration.
package store

import (
	"context"
	"fmt"

	"github.com/bobg/bed"
)

// Factory creates a store from a parsed JSON config object.
type Factory func(context.Context, map[string]interface{}) (bed.Store, error)

var registry = make(map[string]Factory)

// Register associates a store type name with a Factory.
// It is typically called from a store implementation's init function.
func Register(key string, f Factory) {
	registry[key] = f
}

// Create creates a store of the type named by key,
// configured by conf.
func Create(ctx context.Context, key string, conf map[string]interface{}) (bed.Store, error) {
	f, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("key %s not found in registry", key)
	}
	return f(ctx, conf)
}
