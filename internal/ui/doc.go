// Package ui provides terminal output components for the brim-cfg CLI.
//
// This package uses Bubble Tea's progress bubble and Lipgloss to render
// polished terminal output for networked commands. Unlike the interactive
// settings TUI, these components follow a "run once and exit" pattern -
// they render output compellingly but don't require user interaction.
//
// # Architecture
//
// The UI package provides three main component types:
//
//   - Header: Command banner showing operation name and parameters
//   - Progress: Progress bar with step list showing real-time status
//   - Result: Success/failure boxes with styled information
//
// These components are orchestrated by the TaskRunner, which manages the
// header, progress, and result flow for multi-step command execution.
//
// # Usage Pattern
//
// Multi-step commands use this package by:
//
//  1. Creating a TaskRunner with command metadata
//  2. Calling Run() with their operation function
//  3. The operation reports progress via a step callback
//  4. TaskRunner handles all UI rendering automatically
//
// Example:
//
//	runner := ui.NewTaskRunner(ui.TaskConfig{
//	    Title:      "Settings Sync",
//	    Command:    "brim-cfg sync",
//	    Params:     map[string]string{"Instance": "192.168.1.30:8470"},
//	    TotalSteps: 4,
//	})
//
//	err := runner.Run(ctx, func(onStep ui.StepCallback) error {
//	    onStep(1, "Connecting to instance", ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, "Connecting to instance", ui.StepComplete, "")
//	    return nil
//	})
//
// Single-shot commands use the Print helpers (PrintCommandHeader,
// PrintSuccess, PrintFailure, PrintWarning) instead of a full runner.
//
// # Logging Integration
//
// This package expects logging to be controlled via the BRIM_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly. Set BRIM_LOG_LEVEL to
// "debug", "info", "warn", or "error" to enable logging output.
package ui
