// Package gpu implements the compute-shader execution backend: device
// acquisition through gogpu/wgpu, WGSL kernels for the three per-pixel
// pipeline stages, and the CPU-fallback contract every caller gets when
// the backend can't run. Grounded on gogpu/gg's wgpu backend, the one
// place in the example corpus that actually drives this device API.
package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"
	"github.com/mlnoga/filmr/internal/filmerrors"
)

// Device wraps one opened adapter/device/queue triple. Callers open it
// once per run (or once per process, if reused across runs) and Close it
// when done; it holds no film-specific state.
type Device struct {
	adapter core.AdapterID
	device  core.DeviceID
	queue   core.QueueID
	Info    GPUInfo
}

// GPUInfo is diagnostic information about the selected adapter, logged
// once at device-open time.
type GPUInfo struct {
	Name       string
	Vendor     string
	DeviceType gputypes.DeviceType
	Backend    gputypes.Backend
}

func (g GPUInfo) String() string {
	return fmt.Sprintf("%s (%s, %s)", g.Name, g.DeviceType, g.Backend)
}

// Open requests the default high-performance adapter and a logical
// device from it. Every failure is wrapped in a BackendError so callers
// can uniformly decide whether to fall back to the CPU pipeline.
func Open() (*Device, error) {
	adapterID, err := core.RequestAdapter(&gputypes.AdapterOptions{
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, &filmerrors.BackendError{Backend: "gpu", Stage: "request-adapter", Err: err}
	}

	info, err := core.GetAdapterInfo(adapterID)
	if err != nil {
		core.AdapterDrop(adapterID)
		return nil, &filmerrors.BackendError{Backend: "gpu", Stage: "adapter-info", Err: err}
	}

	deviceID, err := core.RequestDevice(adapterID, &gputypes.DeviceDescriptor{
		Label:            "filmr-compute",
		RequiredFeatures: nil,
		RequiredLimits:   gputypes.DefaultLimits(),
	})
	if err != nil {
		core.AdapterDrop(adapterID)
		return nil, &filmerrors.BackendError{Backend: "gpu", Stage: "request-device", Err: err}
	}

	queueID, err := core.GetDeviceQueue(deviceID)
	if err != nil {
		core.DeviceDrop(deviceID)
		core.AdapterDrop(adapterID)
		return nil, &filmerrors.BackendError{Backend: "gpu", Stage: "device-queue", Err: err}
	}

	return &Device{
		adapter: adapterID,
		device:  deviceID,
		queue:   queueID,
		Info: GPUInfo{
			Name:       info.Name,
			Vendor:     info.Vendor,
			DeviceType: info.DeviceType,
			Backend:    info.Backend,
		},
	}, nil
}

// Close releases the device and adapter. Safe to call on a zero Device.
func (d *Device) Close() error {
	if d == nil {
		return nil
	}
	if err := core.DeviceDrop(d.device); err != nil {
		return err
	}
	return core.AdapterDrop(d.adapter)
}
