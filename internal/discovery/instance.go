package discovery

import (
	"fmt"
	"time"
)

// Instance represents a running brim browser discovered on the network
type Instance struct {
	// Name is the advertised instance name (e.g., "brim-study")
	Name string

	// Hostname is the mDNS hostname (e.g., "brim-study.local")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.1.30")
	IP string

	// Port is the control endpoint port
	Port int

	// Version is the browser version from the "ver" TXT record
	Version string

	// Profile is the profile name from the "profile" TXT record
	Profile string

	// Metadata contains the remaining mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the instance was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the instance
func (i *Instance) String() string {
	return fmt.Sprintf("brim instance %s (%s) at %s:%d", i.Name, i.Hostname, i.IP, i.Port)
}

// Addr returns the host:port address of the control endpoint
func (i *Instance) Addr() string {
	return fmt.Sprintf("%s:%d", i.IP, i.Port)
}

// ControlURL returns the WebSocket URL of the control endpoint
func (i *Instance) ControlURL() string {
	return fmt.Sprintf("ws://%s:%d/ctl", i.IP, i.Port)
}

// GetMetadata retrieves a TXT record value by key, or returns empty string if not found
func (i *Instance) GetMetadata(key string) string {
	if i.Metadata == nil {
		return ""
	}
	return i.Metadata[key]
}
