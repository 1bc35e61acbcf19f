package discovery

import (
	"fmt"

	"github.com/grandcat/zeroconf"
	"github.com/merrow/brim/internal/logging"
	"go.uber.org/zap"
)

// Announce registers a control endpoint on the local network so scanners
// can find it. The version and profile strings travel in TXT records and
// surface as Instance.Version and Instance.Profile on the scanning side.
// Callers must call Shutdown on the returned server when done.
func Announce(name string, port int, version, profile string) (*zeroconf.Server, error) {
	var txt []string
	if version != "" {
		txt = append(txt, "ver="+version)
	}
	if profile != "" {
		txt = append(txt, "profile="+profile)
	}

	server, err := zeroconf.Register(name, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Announcing control endpoint via mDNS",
		zap.String("name", name),
		zap.String("service", ServiceType),
		zap.Int("port", port),
	)

	return server, nil
}
