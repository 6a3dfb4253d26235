// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/retouch"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// DefaultBackend is used when no backend name is given.
const DefaultBackend = "vulkan"

// instanceFactory is the part of hal.Backend used to enumerate adapters.
type instanceFactory interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// backends maps backend names to their HAL entry points. "noop" is the
// software stand-in used for testing without a GPU.
var backends = map[string]func() (instanceFactory, bool){
	"vulkan": func() (instanceFactory, bool) {
		b, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, false
		}
		return b, true
	},
	"noop": func() (instanceFactory, bool) {
		return noop.API{}, true
	},
}

// BackendNames returns the known backend names, sorted.
func BackendNames() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func lookupBackend(name string) (instanceFactory, error) {
	if name == "" {
		name = DefaultBackend
	}
	open, ok := backends[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown backend %q", retouch.ErrAdapterNotFound, name)
	}
	f, ok := open()
	if !ok {
		return nil, fmt.Errorf("%w: backend %q not available", retouch.ErrAdapterNotFound, name)
	}
	return f, nil
}

func adapterInfo(a *hal.ExposedAdapter, backend string) retouch.AdapterInfo {
	return retouch.AdapterInfo{
		Name:       a.Info.Name,
		DeviceType: fmt.Sprint(a.Info.DeviceType),
		Backend:    backend,
	}
}

// ListAdapters returns the adapters of one backend, or of every available
// backend when name is empty. Unavailable backends contribute nothing.
func ListAdapters(name string) []retouch.AdapterInfo {
	names := []string{name}
	if name == "" {
		names = BackendNames()
	}
	var out []retouch.AdapterInfo
	for _, n := range names {
		f, err := lookupBackend(n)
		if err != nil {
			continue
		}
		instance, err := f.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
		if err != nil {
			slogger().Warn("gpu: create instance failed", "backend", n, "err", err)
			continue
		}
		adapters := instance.EnumerateAdapters(nil)
		for i := range adapters {
			out = append(out, adapterInfo(&adapters[i], n))
		}
		instance.Destroy()
	}
	return out
}

// Device is an open GPU device with its queue.
type Device struct {
	Info retouch.AdapterInfo

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	// external devices belong to a host application and are not destroyed.
	external bool
}

// Open opens a device on the named backend. An empty adapter name picks
// the first discrete or integrated GPU, or else the first adapter.
// Adapter names match case-insensitively.
func Open(backend, adapter string) (*Device, error) {
	if backend == "" {
		backend = DefaultBackend
	}
	f, err := lookupBackend(backend)
	if err != nil {
		return nil, err
	}
	instance, err := f.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", retouch.ErrDeviceRequestFailed, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	selected := selectAdapter(adapters, adapter)
	if selected == nil {
		instance.Destroy()
		if adapter == "" {
			return nil, fmt.Errorf("%w: no adapters on %s", retouch.ErrAdapterNotFound, backend)
		}
		return nil, fmt.Errorf("%w: %q on %s", retouch.ErrAdapterNotFound, adapter, backend)
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: %s: %w", retouch.ErrDeviceRequestFailed, selected.Info.Name, err)
	}
	return &Device{
		Info:     adapterInfo(selected, backend),
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
	}, nil
}

func selectAdapter(adapters []hal.ExposedAdapter, name string) *hal.ExposedAdapter {
	if len(adapters) == 0 {
		return nil
	}
	if name != "" {
		for i := range adapters {
			if strings.EqualFold(adapters[i].Info.Name, name) {
				return &adapters[i]
			}
		}
		return nil
	}
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return &adapters[i]
		}
	}
	return &adapters[0]
}

// Close destroys the device and its instance unless they belong to a host
// application.
func (d *Device) Close() {
	if d == nil || d.external {
		return
	}
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.queue = nil
}
