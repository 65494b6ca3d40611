/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package property

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Options maps arbitrary option names to values. Nothing is validated at
// registration time; the rendering layer interprets the options it knows.
type Options map[string]any

// String returns the option as a string, or def when absent.
func (o Options) String(key, def string) string {
	v, ok := o[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Bool returns the option as a bool, or def when absent or not boolean.
func (o Options) Bool(key string, def bool) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	}
	return def
}

// Int returns the option as an int, or def when absent or not numeric.
func (o Options) Int(key string, def int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return def
		}
		return n
	}
	return def
}

// Property describes how one field of an item is presented.
type Property struct {
	Name    string  `yaml:"name" json:"name"`
	Label   string  `yaml:"label" json:"label"`
	Options Options `yaml:"options" json:"options,omitempty"`
}

// DisplayLabel returns Label, or a label derived from Name.
func (p Property) DisplayLabel() string {
	if p.Label != "" {
		return p.Label
	}
	name := strings.ReplaceAll(p.Name, "_", " ")
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// Hidden reports whether the property is excluded from rendering.
func (p Property) Hidden() bool {
	return p.Options.Bool("hidden", false)
}

var (
	registry = make(map[reflect.Type][]Property)
	mu       sync.RWMutex
)

// Register associates item type T with its property definitions, replacing any
// previous registration.
func Register[T any](props ...Property) {
	var zero T
	RegisterType(reflect.TypeOf(zero), props...)
}

// RegisterType is the non-generic form of Register.
func RegisterType(t reflect.Type, props ...Property) {
	mu.Lock()
	defer mu.Unlock()
	registry[t] = append([]Property(nil), props...)
}

// For retrieves the properties registered for T, if any.
func For[T any]() ([]Property, bool) {
	var zero T
	return ForType(reflect.TypeOf(zero))
}

// ForType retrieves the properties registered for t. Pointer types fall back to
// their element type.
func ForType(t reflect.Type) ([]Property, bool) {
	if t == nil {
		return nil, false
	}

	mu.RLock()
	defer mu.RUnlock()
	if props, ok := registry[t]; ok {
		return append([]Property(nil), props...), true
	}
	if t.Kind() == reflect.Pointer {
		if props, ok := registry[t.Elem()]; ok {
			return append([]Property(nil), props...), true
		}
	}
	return nil, false
}

// ForValue retrieves the properties registered for the dynamic type of v.
func ForValue(v any) ([]Property, bool) {
	return ForType(reflect.TypeOf(v))
}
