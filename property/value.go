/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package property

import (
	"reflect"
	"sort"
	"strings"
)

// Value reads the field called name from item. Maps are indexed directly; structs
// are matched on field name, then json tag, case-insensitively. Pointers are followed.
func Value(item any, name string) (any, bool) {
	switch m := item.(type) {
	case map[string]any:
		v, ok := m[name]
		return v, ok
	case map[string]string:
		v, ok := m[name]
		return v, ok
	}

	rv := reflect.ValueOf(item)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Struct:
		if f, ok := structField(rv, name); ok {
			return f.Interface(), true
		}
	}
	return nil, false
}

func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		if strings.EqualFold(sf.Name, name) || strings.EqualFold(jsonName(sf), name) {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func jsonName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

// Names lists the field names of item in a stable order: sorted keys for maps,
// declaration order (json name when set) for structs.
func Names(item any) []string {
	rv := reflect.ValueOf(item)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		names := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			names = append(names, k.String())
		}
		sort.Strings(names)
		return names
	case reflect.Struct:
		rt := rv.Type()
		names := make([]string, 0, rt.NumField())
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if !sf.IsExported() {
				continue
			}
			if n := jsonName(sf); n != "" {
				names = append(names, n)
				continue
			}
			if sf.Tag.Get("json") == "-" {
				continue
			}
			names = append(names, sf.Name)
		}
		return names
	}
	return nil
}

// Resolve returns the properties used to render item: the registered ones for its
// type, otherwise one per field name.
func Resolve(item any) []Property {
	if props, ok := ForValue(item); ok {
		return props
	}
	names := Names(item)
	props := make([]Property, 0, len(names))
	for _, n := range names {
		props = append(props, Property{Name: n})
	}
	return props
}
