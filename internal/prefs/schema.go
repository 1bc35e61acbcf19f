package prefs

import (
	"fmt"

	"github.com/merrow/brim/internal/catalog"
)

// Kind identifies the value type of a preference.
type Kind int

const (
	// KindBool is a boolean preference backed by an on/off toggle.
	KindBool Kind = iota
	// KindEnum is an integer preference whose values are the raw forms
	// of a catalog enumeration.
	KindEnum
	// KindString is a free-form string preference.
	KindString
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindEnum:
		return "enum"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Preference keys. These are the stable identifiers persisted in settings
// files, so they must never be renamed.
const (
	KeyTabBarVisibility        = "tabBarVisibility"
	KeyCookieAcceptPolicy      = "cookieAcceptPolicy"
	KeyPasswordManagerShortcut = "passwordManagerShortcut"
	KeyRequirePasscodeInterval = "requirePasscodeInterval"
	KeyBlockPopups             = "blockPopups"
	KeySaveLogins              = "saveLogins"
	KeySearchSuggestions       = "searchSuggestions"
	KeyClosePrivateTabs        = "closePrivateTabs"
	KeyOfferClipboardBar       = "offerClipboardBar"
	KeyHomepageURL             = "homepageURL"
	KeySearchEngine            = "searchEngine"
	KeyPasscodeHash            = "passcodeHash"
	KeyPasscodeSalt            = "passcodeSalt"
	KeyClearDataCache          = "clearDataCache"
	KeyClearDataCookies        = "clearDataCookies"
	KeyClearDataHistory        = "clearDataHistory"
	KeyClearDataDownloads      = "clearDataDownloads"
)

// Definition declares one preference: its key, kind, default value, and,
// for enumeration keys, the variants it selects from.
type Definition struct {
	Key     string
	Kind    Kind
	Default any

	// Variants supplies the enumeration for KindEnum keys, nil otherwise.
	Variants func() []catalog.Option
}

// Definitions is the full preference schema in display order. Every key
// the settings screen or CLI touches is declared here.
var Definitions = []Definition{
	{Key: KeyHomepageURL, Kind: KindString, Default: "brim:start"},
	{Key: KeySearchEngine, Kind: KindString, Default: "duckduckgo"},
	{Key: KeySearchSuggestions, Kind: KindBool, Default: true},
	{Key: KeyBlockPopups, Kind: KindBool, Default: true},
	{Key: KeyOfferClipboardBar, Kind: KindBool, Default: false},
	{Key: KeyTabBarVisibility, Kind: KindEnum, Default: 0, Variants: catalog.TabBarVisibilityVariants},
	{Key: KeyCookieAcceptPolicy, Kind: KindEnum, Default: 0, Variants: catalog.CookiePolicyVariants},
	{Key: KeyClosePrivateTabs, Kind: KindBool, Default: false},
	{Key: KeySaveLogins, Kind: KindBool, Default: true},
	{Key: KeyPasswordManagerShortcut, Kind: KindEnum, Default: 0, Variants: catalog.PasswordManagerVariants},
	{Key: KeyRequirePasscodeInterval, Kind: KindEnum, Default: 0, Variants: catalog.PasscodeIntervalVariants},
	{Key: KeyPasscodeHash, Kind: KindString, Default: ""},
	{Key: KeyPasscodeSalt, Kind: KindString, Default: ""},
	{Key: KeyClearDataCache, Kind: KindBool, Default: true},
	{Key: KeyClearDataCookies, Kind: KindBool, Default: true},
	{Key: KeyClearDataHistory, Kind: KindBool, Default: true},
	{Key: KeyClearDataDownloads, Kind: KindBool, Default: false},
}

// definitionIndex maps keys to their schema entry for O(1) lookup.
var definitionIndex = buildDefinitionIndex()

func buildDefinitionIndex() map[string]*Definition {
	idx := make(map[string]*Definition, len(Definitions))
	for i := range Definitions {
		idx[Definitions[i].Key] = &Definitions[i]
	}
	return idx
}

// DefinitionFor returns the schema entry for a key.
func DefinitionFor(key string) (*Definition, bool) {
	def, ok := definitionIndex[key]
	return def, ok
}

// DefaultBool returns the declared default for a boolean key, or false
// for keys that are unknown or not boolean.
func DefaultBool(key string) bool {
	if def, ok := definitionIndex[key]; ok && def.Kind == KindBool {
		if b, ok := def.Default.(bool); ok {
			return b
		}
	}
	return false
}

// DefaultInt returns the declared default for an enum key, or 0 for keys
// that are unknown or not integer-backed.
func DefaultInt(key string) int {
	if def, ok := definitionIndex[key]; ok && def.Kind == KindEnum {
		if n, ok := coerceInt(def.Default); ok {
			return n
		}
	}
	return 0
}

// DefaultString returns the declared default for a string key, or ""
// for keys that are unknown or not strings.
func DefaultString(key string) string {
	if def, ok := definitionIndex[key]; ok && def.Kind == KindString {
		if s, ok := def.Default.(string); ok {
			return s
		}
	}
	return ""
}
