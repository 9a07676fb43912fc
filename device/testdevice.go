package device

import (
	"fmt"

	"github.com/notargets/gocca"
)

// NewTestDevice creates a Device for tests and samples, preferring
// parallel backends and falling back to Serial.
func NewTestDevice() Device {
	backends := []string{
		`{"mode": "OpenMP"}`,
		`{"mode": "CUDA", "device_id": 0}`,
		`{"mode": "Serial"}`,
	}

	for _, props := range backends {
		dev, err := gocca.NewDevice(props)
		if err == nil {
			fmt.Printf("cltune: created %s device\n", dev.Mode())
			return NewOCCADevice(dev, DefaultLimits())
		}
	}

	panic("device: failed to create any OCCA device")
}
