package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// MachineID retrieves the unique ID identifying the machine. The ID is
// hashed per application so the raw machine ID is never published. It
// falls back to the host name where no machine ID is available.
func MachineID() string {
	id, err := machineid.ProtectedID("alpharx")
	if err == nil {
		return id
	}
	glog.Warningf("machine id unavailable: %v", err)
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return ""
}
