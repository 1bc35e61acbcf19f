package catalog

import "fmt"

// Option is the common surface of every settings enumeration.
// Raw is the stable persisted form, Label the display text, and the
// fmt.Stringer token is the stable identifier used by the CLI and logs.
type Option interface {
	fmt.Stringer
	Raw() int
	Label() string
}

// FindByRaw returns the option whose raw value matches raw.
// The false return means the raw value is unknown to this enumeration,
// which callers treat as "no current selection", never as an error.
func FindByRaw(options []Option, raw int) (Option, bool) {
	for _, opt := range options {
		if opt.Raw() == raw {
			return opt, true
		}
	}
	return nil, false
}

// FindByToken returns the option whose String() token matches token.
// Used by the CLI to accept symbolic values (e.g. "never") for enum keys.
func FindByToken(options []Option, token string) (Option, bool) {
	for _, opt := range options {
		if opt.String() == token {
			return opt, true
		}
	}
	return nil, false
}

// TabBarVisibility controls when the browser shows the tabs bar.
type TabBarVisibility int

const (
	TabBarAlways TabBarVisibility = iota
	TabBarLandscapeOnly
	TabBarNever
)

// Raw returns the persisted integer form.
func (v TabBarVisibility) Raw() int { return int(v) }

// Label returns the display text shown in the settings list.
func (v TabBarVisibility) Label() string {
	switch v {
	case TabBarAlways:
		return "Always show"
	case TabBarLandscapeOnly:
		return "Only in landscape"
	case TabBarNever:
		return "Never show"
	default:
		return fmt.Sprintf("TabBarVisibility(%d)", int(v))
	}
}

// String returns the stable identifier token.
func (v TabBarVisibility) String() string {
	switch v {
	case TabBarAlways:
		return "always"
	case TabBarLandscapeOnly:
		return "landscape-only"
	case TabBarNever:
		return "never"
	default:
		return fmt.Sprintf("TabBarVisibility(%d)", int(v))
	}
}

// TabBarVisibilityFromRaw maps a persisted raw value back to a variant.
func TabBarVisibilityFromRaw(raw int) (TabBarVisibility, bool) {
	v := TabBarVisibility(raw)
	switch v {
	case TabBarAlways, TabBarLandscapeOnly, TabBarNever:
		return v, true
	}
	return 0, false
}

// TabBarVisibilityVariants returns all variants in declaration order.
func TabBarVisibilityVariants() []Option {
	return []Option{TabBarAlways, TabBarLandscapeOnly, TabBarNever}
}

// CookiePolicy controls which cookies the browser accepts.
type CookiePolicy int

const (
	CookiesAlways CookiePolicy = iota
	CookiesMainDocumentOnly
	CookiesNever
)

// Raw returns the persisted integer form.
func (p CookiePolicy) Raw() int { return int(p) }

// Label returns the display text shown in the settings list.
func (p CookiePolicy) Label() string {
	switch p {
	case CookiesAlways:
		return "Always"
	case CookiesMainDocumentOnly:
		return "Current website only"
	case CookiesNever:
		return "Never"
	default:
		return fmt.Sprintf("CookiePolicy(%d)", int(p))
	}
}

// String returns the stable identifier token.
func (p CookiePolicy) String() string {
	switch p {
	case CookiesAlways:
		return "always"
	case CookiesMainDocumentOnly:
		return "main-document-only"
	case CookiesNever:
		return "never"
	default:
		return fmt.Sprintf("CookiePolicy(%d)", int(p))
	}
}

// CookiePolicyFromRaw maps a persisted raw value back to a variant.
func CookiePolicyFromRaw(raw int) (CookiePolicy, bool) {
	p := CookiePolicy(raw)
	switch p {
	case CookiesAlways, CookiesMainDocumentOnly, CookiesNever:
		return p, true
	}
	return 0, false
}

// CookiePolicyVariants returns all variants in declaration order.
func CookiePolicyVariants() []Option {
	return []Option{CookiesAlways, CookiesMainDocumentOnly, CookiesNever}
}

// PasswordManager selects which password manager the keyboard shortcut
// button opens when filling logins.
type PasswordManager int

const (
	PasswordManagerShowPicker PasswordManager = iota
	PasswordManagerOnePassword
	PasswordManagerLastPass
	PasswordManagerBitwarden
	PasswordManagerTrueKey
)

// Raw returns the persisted integer form.
func (m PasswordManager) Raw() int { return int(m) }

// Label returns the display text shown in the settings list.
func (m PasswordManager) Label() string {
	switch m {
	case PasswordManagerShowPicker:
		return "Show Picker"
	case PasswordManagerOnePassword:
		return "1Password"
	case PasswordManagerLastPass:
		return "LastPass"
	case PasswordManagerBitwarden:
		return "Bitwarden"
	case PasswordManagerTrueKey:
		return "True Key"
	default:
		return fmt.Sprintf("PasswordManager(%d)", int(m))
	}
}

// String returns the stable identifier token.
func (m PasswordManager) String() string {
	switch m {
	case PasswordManagerShowPicker:
		return "show-picker"
	case PasswordManagerOnePassword:
		return "one-password"
	case PasswordManagerLastPass:
		return "last-pass"
	case PasswordManagerBitwarden:
		return "bitwarden"
	case PasswordManagerTrueKey:
		return "true-key"
	default:
		return fmt.Sprintf("PasswordManager(%d)", int(m))
	}
}

// PasswordManagerFromRaw maps a persisted raw value back to a variant.
func PasswordManagerFromRaw(raw int) (PasswordManager, bool) {
	m := PasswordManager(raw)
	switch m {
	case PasswordManagerShowPicker, PasswordManagerOnePassword,
		PasswordManagerLastPass, PasswordManagerBitwarden, PasswordManagerTrueKey:
		return m, true
	}
	return 0, false
}

// PasswordManagerVariants returns all variants in declaration order.
func PasswordManagerVariants() []Option {
	return []Option{
		PasswordManagerShowPicker,
		PasswordManagerOnePassword,
		PasswordManagerLastPass,
		PasswordManagerBitwarden,
		PasswordManagerTrueKey,
	}
}

// PasscodeInterval controls how long the browser stays unlocked before
// the passcode is required again.
type PasscodeInterval int

const (
	PasscodeImmediately PasscodeInterval = iota
	PasscodeAfterOneMinute
	PasscodeAfterFiveMinutes
	PasscodeAfterTenMinutes
	PasscodeAfterOneHour
)

// Raw returns the persisted integer form.
func (i PasscodeInterval) Raw() int { return int(i) }

// Label returns the display text shown in the settings list.
func (i PasscodeInterval) Label() string {
	switch i {
	case PasscodeImmediately:
		return "Immediately"
	case PasscodeAfterOneMinute:
		return "After 1 minute"
	case PasscodeAfterFiveMinutes:
		return "After 5 minutes"
	case PasscodeAfterTenMinutes:
		return "After 10 minutes"
	case PasscodeAfterOneHour:
		return "After 1 hour"
	default:
		return fmt.Sprintf("PasscodeInterval(%d)", int(i))
	}
}

// String returns the stable identifier token.
func (i PasscodeInterval) String() string {
	switch i {
	case PasscodeImmediately:
		return "immediately"
	case PasscodeAfterOneMinute:
		return "after-1-minute"
	case PasscodeAfterFiveMinutes:
		return "after-5-minutes"
	case PasscodeAfterTenMinutes:
		return "after-10-minutes"
	case PasscodeAfterOneHour:
		return "after-1-hour"
	default:
		return fmt.Sprintf("PasscodeInterval(%d)", int(i))
	}
}

// PasscodeIntervalFromRaw maps a persisted raw value back to a variant.
func PasscodeIntervalFromRaw(raw int) (PasscodeInterval, bool) {
	i := PasscodeInterval(raw)
	switch i {
	case PasscodeImmediately, PasscodeAfterOneMinute, PasscodeAfterFiveMinutes,
		PasscodeAfterTenMinutes, PasscodeAfterOneHour:
		return i, true
	}
	return 0, false
}

// PasscodeIntervalVariants returns all variants in declaration order.
func PasscodeIntervalVariants() []Option {
	return []Option{
		PasscodeImmediately,
		PasscodeAfterOneMinute,
		PasscodeAfterFiveMinutes,
		PasscodeAfterTenMinutes,
		PasscodeAfterOneHour,
	}
}
