// Package discovery provides mDNS-based discovery of running brim instances.
//
// A brim browser with its control endpoint enabled advertises itself over
// multicast DNS using the "_brim-ctl._tcp" service type. This package
// browses for those advertisements so brim-cfg can find a running browser
// without the user typing an address.
//
// # Discovery Process
//
// The discovery process works as follows:
//  1. Broadcasts mDNS queries on the local network
//  2. Listens for "_brim-ctl._tcp" service advertisements
//  3. Collects instance information (name, IP, port, version, profile)
//  4. Returns the list of discovered instances after the timeout period
//
// # Usage Example
//
//	// Discover instances with a 5-second timeout
//	instances, err := discovery.ScanForInstances(5 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, instance := range instances {
//	    fmt.Printf("Found: %s at %s (version %s)\n",
//	        instance.Name, instance.Addr(), instance.Version)
//	}
//
// # TXT Records
//
// Instances publish two well-known TXT keys:
//   - ver: browser version string
//   - profile: name of the profile the instance is running
//
// Further keys are preserved in Instance.Metadata.
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Instances must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can run
// simultaneously without interference.
package discovery
