package discovery

import (
	"testing"
	"time"
)

func TestInstance_String(t *testing.T) {
	instance := &Instance{
		Name:     "brim-study",
		Hostname: "brim-study.local.",
		IP:       "192.168.1.30",
		Port:     8470,
	}

	expected := "brim instance brim-study (brim-study.local.) at 192.168.1.30:8470"
	if got := instance.String(); got != expected {
		t.Errorf("String() = %q, want %q", got, expected)
	}
}

func TestInstance_Addr(t *testing.T) {
	instance := &Instance{
		IP:   "192.168.1.30",
		Port: 8470,
	}

	expected := "192.168.1.30:8470"
	if got := instance.Addr(); got != expected {
		t.Errorf("Addr() = %q, want %q", got, expected)
	}
}

func TestInstance_ControlURL(t *testing.T) {
	instance := &Instance{
		IP:   "192.168.1.30",
		Port: 8470,
	}

	expected := "ws://192.168.1.30:8470/ctl"
	if got := instance.ControlURL(); got != expected {
		t.Errorf("ControlURL() = %q, want %q", got, expected)
	}
}

func TestInstance_GetMetadata(t *testing.T) {
	instance := &Instance{
		Metadata: map[string]string{
			"theme": "dusk",
			"flag":  "",
		},
	}

	tests := []struct {
		key       string
		wantValue string
		wantOK    bool
	}{
		{"theme", "dusk", true},
		{"flag", "", true},
		{"missing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			value, ok := instance.GetMetadata(tt.key)
			if ok != tt.wantOK {
				t.Errorf("GetMetadata(%q) ok = %v, want %v", tt.key, ok, tt.wantOK)
			}
			if value != tt.wantValue {
				t.Errorf("GetMetadata(%q) = %q, want %q", tt.key, value, tt.wantValue)
			}
		})
	}
}

func TestInstance_GetMetadata_NilMap(t *testing.T) {
	instance := &Instance{}

	value, ok := instance.GetMetadata("anything")
	if ok {
		t.Error("GetMetadata() on nil map returned ok = true, want false")
	}
	if value != "" {
		t.Errorf("GetMetadata() on nil map = %q, want empty string", value)
	}
}

func TestInstance_DiscoveredAt(t *testing.T) {
	now := time.Now()
	instance := &Instance{DiscoveredAt: now}

	if !instance.DiscoveredAt.Equal(now) {
		t.Errorf("DiscoveredAt = %v, want %v", instance.DiscoveredAt, now)
	}
}
