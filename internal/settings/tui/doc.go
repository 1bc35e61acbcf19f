// Package tui implements the interactive settings application for
// brim-cfg.
//
// The application is a Bubble Tea program coordinated by AppModel, which
// owns the screen stack and routes messages to the active screen:
//
//   - SettingsModel: the sectioned settings list. Built once from the
//     preference store, then patched in place as values change.
//   - PickerModel: single-selection list for enum preferences. Delivers
//     the chosen option back to the settings screen exactly once.
//   - PasscodeModel: set, change, or remove the browser passcode.
//   - ClearDataModel: pick private-data categories and clear them on a
//     running instance.
//
// Every preference write goes through the store synchronously before the
// list is patched, so the screen never shows a value that was not
// persisted. Writes targeting rows that have since been removed are
// silent no-ops.
package tui
