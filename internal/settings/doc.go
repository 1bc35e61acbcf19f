// Package settings defines the list model behind brim's settings screen.
//
// A settings screen is an ordered sequence of sections; a section is an
// ordered sequence of rows. Rows and sections are identified by UUIDs and
// held by value in slices: nothing keeps a live reference to a rendered
// row. Code that needs to change a row after the fact (for example,
// updating detail text when the user returns from an option picker)
// locates it by (section UUID, row UUID) and replaces the field in place.
//
// A lookup that finds nothing is a benign no-op, not an error: the row or
// its whole section may have been removed between the moment an update
// was scheduled and the moment it lands. Callers must treat the false
// return as "nothing to do".
//
// The model is UI-framework-free. Rendering and activation dispatch live
// in internal/settings/tui; rows describe what activating them should do
// through a tagged Action value.
package settings
