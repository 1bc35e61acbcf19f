package settings

import (
	"github.com/google/uuid"

	"github.com/merrow/brim/internal/catalog"
)

// AccessoryKind identifies the control or indicator attached to a row.
type AccessoryKind int

const (
	// AccessoryNone renders no trailing control.
	AccessoryNone AccessoryKind = iota
	// AccessoryDisclosure renders a chevron indicating a push or editor.
	AccessoryDisclosure
	// AccessoryToggle renders an on/off switch bound to a bool preference.
	AccessoryToggle
	// AccessoryButton renders the row itself as a pressable button.
	AccessoryButton
)

// Accessory is a row's trailing control. Kind is fixed when the row is
// created; only the toggle value On changes afterwards.
type Accessory struct {
	Kind AccessoryKind
	On   bool
}

// Row is one line of the settings list. Rows are value types: they are
// stored, copied, and replaced wholesale inside their section's slice.
type Row struct {
	// ID is unique within the row's section.
	ID uuid.UUID

	// Label is the leading display text.
	Label string

	// Detail is the optional trailing text (current enum label, string
	// value, instance name, ...).
	Detail string

	// Accessory is the trailing control. Its Kind never changes after
	// the row is created.
	Accessory Accessory

	// Action describes what activation does; nil rows are inert.
	Action Action
}

// Activatable reports whether the row responds to activation.
func (r Row) Activatable() bool {
	return r.Action != nil
}

// NewToggleRow builds a switch row bound to a boolean preference.
func NewToggleRow(label, key string, on bool) Row {
	return Row{
		ID:        uuid.New(),
		Label:     label,
		Accessory: Accessory{Kind: AccessoryToggle, On: on},
		Action:    ToggleAction{Key: key},
	}
}

// NewToggleButtonRow builds a button row bound to a boolean preference.
// Compact device classes use this in place of an inline switch; the
// behavior is identical, only the accessory differs.
func NewToggleButtonRow(label, key string, on bool) Row {
	detail := "Off"
	if on {
		detail = "On"
	}
	return Row{
		ID:        uuid.New(),
		Label:     label,
		Detail:    detail,
		Accessory: Accessory{Kind: AccessoryButton},
		Action:    ToggleAction{Key: key},
	}
}

// NewOptionRow builds a disclosure row for an enum preference. The detail
// text is the current variant's label, or empty when the stored raw value
// matches no variant.
func NewOptionRow(label, key, title string, options []catalog.Option, currentRaw int) Row {
	detail := ""
	if opt, ok := catalog.FindByRaw(options, currentRaw); ok {
		detail = opt.Label()
	}
	return Row{
		ID:        uuid.New(),
		Label:     label,
		Detail:    detail,
		Accessory: Accessory{Kind: AccessoryDisclosure},
		Action:    PickAction{Key: key, Title: title, Options: options},
	}
}

// NewTextRow builds a disclosure row whose detail is a string preference
// edited inline.
func NewTextRow(label, key, value, prompt string) Row {
	return Row{
		ID:        uuid.New(),
		Label:     label,
		Detail:    value,
		Accessory: Accessory{Kind: AccessoryDisclosure},
		Action:    EditStringAction{Key: key, Prompt: prompt},
	}
}

// NewNavigationRow builds a disclosure row that pushes a named sub-screen.
func NewNavigationRow(label, screen, detail string) Row {
	return Row{
		ID:        uuid.New(),
		Label:     label,
		Detail:    detail,
		Accessory: Accessory{Kind: AccessoryDisclosure},
		Action:    NavigateAction{Screen: screen},
	}
}

// NewActionRow builds a button row with an arbitrary action.
func NewActionRow(label string, action Action) Row {
	return Row{
		ID:        uuid.New(),
		Label:     label,
		Accessory: Accessory{Kind: AccessoryButton},
		Action:    action,
	}
}

// NewURLRow builds a row that opens a documentation page.
func NewURLRow(label, url string) Row {
	return Row{
		ID:        uuid.New(),
		Label:     label,
		Accessory: Accessory{Kind: AccessoryNone},
		Action:    OpenURLAction{URL: url},
	}
}

// NewInfoRow builds an inert display-only row.
func NewInfoRow(label, detail string) Row {
	return Row{
		ID:        uuid.New(),
		Label:     label,
		Detail:    detail,
		Accessory: Accessory{Kind: AccessoryNone},
	}
}

// Section is a titled group of rows.
type Section struct {
	// ID is unique within the model.
	ID uuid.UUID

	// Title is the optional section header.
	Title string

	// Rows holds the section's rows by value, in display order.
	Rows []Row
}

// NewSection builds a section from rows in display order.
func NewSection(title string, rows ...Row) Section {
	return Section{
		ID:    uuid.New(),
		Title: title,
		Rows:  rows,
	}
}

// IndexPath is a row's current position in the model.
type IndexPath struct {
	Section int
	Row     int
}

// Model is the ordered list of sections shown by the settings screen.
// It is built once at screen construction; later changes are targeted
// in-place patches, never full rebuilds.
type Model struct {
	Sections []Section
}

// NewModel builds a model from sections in display order.
func NewModel(sections ...Section) *Model {
	return &Model{Sections: sections}
}

// Lookup returns the current position of the row identified by
// (sectionID, rowID). The false return means either UUID is absent;
// callers treat that as a no-op, never as an error.
func (m *Model) Lookup(sectionID, rowID uuid.UUID) (IndexPath, bool) {
	for si := range m.Sections {
		if m.Sections[si].ID != sectionID {
			continue
		}
		for ri := range m.Sections[si].Rows {
			if m.Sections[si].Rows[ri].ID == rowID {
				return IndexPath{Section: si, Row: ri}, true
			}
		}
		return IndexPath{}, false
	}
	return IndexPath{}, false
}

// RowAt returns the row at a position previously produced by Lookup.
func (m *Model) RowAt(p IndexPath) (Row, bool) {
	if p.Section < 0 || p.Section >= len(m.Sections) {
		return Row{}, false
	}
	rows := m.Sections[p.Section].Rows
	if p.Row < 0 || p.Row >= len(rows) {
		return Row{}, false
	}
	return rows[p.Row], true
}

// PatchDetail replaces one row's detail text in place. Returns false,
// mutating nothing, when the (sectionID, rowID) pair is not present.
func (m *Model) PatchDetail(sectionID, rowID uuid.UUID, detail string) bool {
	p, ok := m.Lookup(sectionID, rowID)
	if !ok {
		return false
	}
	m.Sections[p.Section].Rows[p.Row].Detail = detail
	return true
}

// SetToggle replaces one toggle row's switch value in place. The row's
// accessory kind is never changed; rows that are not toggles are left
// untouched and reported as false.
func (m *Model) SetToggle(sectionID, rowID uuid.UUID, on bool) bool {
	p, ok := m.Lookup(sectionID, rowID)
	if !ok {
		return false
	}
	row := &m.Sections[p.Section].Rows[p.Row]
	switch row.Accessory.Kind {
	case AccessoryToggle:
		row.Accessory.On = on
	case AccessoryButton:
		// Button-styled toggles surface their state as detail text.
		if on {
			row.Detail = "On"
		} else {
			row.Detail = "Off"
		}
	default:
		return false
	}
	return true
}

// RemoveSection deletes a whole section. Returns false when no section
// has that ID. Pending patches against removed rows become no-ops.
func (m *Model) RemoveSection(sectionID uuid.UUID) bool {
	for si := range m.Sections {
		if m.Sections[si].ID == sectionID {
			m.Sections = append(m.Sections[:si], m.Sections[si+1:]...)
			return true
		}
	}
	return false
}
