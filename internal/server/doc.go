// Package server implements the brim-emu control endpoint emulator.
//
// The emulator stands in for a running brim instance during development
// and testing of the sync tooling. It serves the control protocol on
// ws://host:port/ctl, greets each connection with a hello envelope, and
// answers state, apply and clear-data requests against an in-memory
// settings store seeded with the stock defaults.
//
// # Usage
//
//	srv, err := server.New(&server.Config{
//	    Host:     "127.0.0.1",
//	    Port:     8470,
//	    Name:     "brim-emu",
//	    Profile:  "default",
//	    Announce: true,
//	    LogLevel: "info",
//	})
//	if err != nil {
//	    return err
//	}
//	return srv.Run()
//
// Run blocks until SIGINT or SIGTERM, then shuts down gracefully. With
// Announce enabled the endpoint registers itself via mDNS so
// "brim-cfg scan" finds it like a real instance would be found.
//
// # State
//
// Settings applied through the control protocol live in memory only and
// reset on restart. Clear-data requests are recorded and logged but
// there is no browsing data to clear; the emulator acknowledges them the
// way a real instance would.
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM:
//  1. Withdraw the mDNS announcement
//  2. Stop accepting new connections
//  3. Close existing control connections
//  4. Wait for in-flight handlers to finish
//
// # Thread Safety
//
// The emulator handles multiple control connections simultaneously.
// Each connection runs in its own goroutine; the settings store
// serializes access internally.
package server
