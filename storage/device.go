package storage

import "fmt"

// Device names where a backend physically keeps its table.
type Device int

const (
	DeviceUnknown Device = iota
	DeviceCPU
	DeviceGPU
	DeviceRemote
)

func (d Device) String() string {
	switch d {
	case DeviceCPU:
		return "cpu"
	case DeviceGPU:
		return "gpu"
	case DeviceRemote:
		return "remote"
	case DeviceUnknown:
		return "unknown"
	}
	return fmt.Sprintf("device(%d)", int(d))
}
