/*
Package property attaches presentation metadata to item types.

Each item type gets an ordered list of properties registered explicitly at
startup, typically in an init function:

	property.Register[Order](
	    property.Property{Name: "id", Label: "#"},
	    property.Property{Name: "created", Options: property.Options{"format": "date-time"}},
	    property.Property{Name: "notes", Options: property.Options{"string_maxlength": 40}},
	)

Options is an open mapping; unknown options are carried along untouched and read
by whichever renderer understands them. Value reads a named field from maps,
structs and pointers, and Format turns it into display text.

The registry is thread-safe.
*/
package property
