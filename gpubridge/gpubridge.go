// Package gpubridge is the concrete realization of the spec's "GPU
// collaborator": it owns a headless Vulkan device and uploads render-data
// assembler output into host-visible vertex/index buffers. It does not own a
// render pass or pipeline — voxterra's core produces geometry, not frames.
package gpubridge

import (
	"errors"
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/voxterra/voxterra/meshdata"
)

// ErrBuffer wraps any Vulkan buffer-creation or memory-allocation failure.
var ErrBuffer = errors.New("gpubridge: buffer creation failed")

var vulkanInitialized bool

// Device is a minimal Vulkan instance/device pair capable of allocating
// host-visible buffers. Grounded on voodoo_vulkan.go's VulkanBackend, cut
// down to the instance/physical-device/device subset since there is no
// render pass here.
type Device struct {
	instance       vk.Instance
	physicalDevice vk.PhysicalDevice
	device         vk.Device
	queueFamily    uint32
}

// NewDevice initializes the Vulkan loader (once per process) and creates an
// instance, selects a GPU with a graphics queue, and opens a logical device.
func NewDevice() (*Device, error) {
	if !vulkanInitialized {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, fmt.Errorf("gpubridge: failed to load Vulkan library: %w", err)
		}
		if err := vk.Init(); err != nil {
			return nil, fmt.Errorf("gpubridge: failed to initialize Vulkan loader: %w", err)
		}
		vulkanInitialized = true
	}

	d := &Device{}
	if err := d.createInstance(); err != nil {
		return nil, err
	}
	if err := d.selectPhysicalDevice(); err != nil {
		d.destroyInstance()
		return nil, err
	}
	if err := d.createDevice(); err != nil {
		d.destroyInstance()
		return nil, err
	}
	return d, nil
}

// Close releases the logical device and instance.
func (d *Device) Close() {
	if d.device != nil {
		vk.DeviceWaitIdle(d.device)
		vk.DestroyDevice(d.device, nil)
	}
	d.destroyInstance()
}

func (d *Device) destroyInstance() {
	if d.instance != nil {
		vk.DestroyInstance(d.instance, nil)
	}
}

func (d *Device) createInstance() error {
	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeString("voxterra"),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        safeString("voxterra/gpubridge"),
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.MakeVersion(1, 1, 0),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &appInfo,
	}
	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return fmt.Errorf("%w: vkCreateInstance: %d", ErrBuffer, res)
	}
	d.instance = instance
	vk.InitInstance(instance)
	return nil
}

func (d *Device) selectPhysicalDevice() error {
	var deviceCount uint32
	vk.EnumeratePhysicalDevices(d.instance, &deviceCount, nil)
	if deviceCount == 0 {
		return fmt.Errorf("%w: no Vulkan-capable GPUs found", ErrBuffer)
	}
	devices := make([]vk.PhysicalDevice, deviceCount)
	vk.EnumeratePhysicalDevices(d.instance, &deviceCount, devices)

	for _, device := range devices {
		var queueFamilyCount uint32
		vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
		queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
		vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)
		for i, qf := range queueFamilies {
			qf.Deref()
			if qf.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
				d.physicalDevice = device
				d.queueFamily = uint32(i)
				return nil
			}
		}
	}
	return fmt.Errorf("%w: no GPU with a graphics queue found", ErrBuffer)
}

func (d *Device) createDevice() error {
	queuePriority := float32(1.0)
	queueCreateInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: d.queueFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{queuePriority},
	}
	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos:    []vk.DeviceQueueCreateInfo{queueCreateInfo},
	}
	var device vk.Device
	if res := vk.CreateDevice(d.physicalDevice, &deviceCreateInfo, nil, &device); res != vk.Success {
		return fmt.Errorf("%w: vkCreateDevice: %d", ErrBuffer, res)
	}
	d.device = device
	return nil
}

func (d *Device) findMemoryType(typeFilter uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	var memProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(d.physicalDevice, &memProps)
	memProps.Deref()
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		memProps.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (memProps.MemoryTypes[i].PropertyFlags&properties) == properties {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: no suitable memory type", ErrBuffer)
}

// createHostVisibleBuffer allocates a buffer of usage with the given data
// already copied in through a temporary map of its host-visible,
// host-coherent memory.
// An empty data slice allocates nothing and returns nil handles.
func (d *Device) createHostVisibleBuffer(usage vk.BufferUsageFlagBits, data []byte) (vk.Buffer, vk.DeviceMemory, error) {
	if len(data) == 0 {
		return nil, nil, nil
	}
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(len(data)),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}
	var buffer vk.Buffer
	if res := vk.CreateBuffer(d.device, &bufferInfo, nil, &buffer); res != vk.Success {
		return nil, nil, fmt.Errorf("%w: vkCreateBuffer: %d", ErrBuffer, res)
	}

	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.device, buffer, &memReqs)
	memReqs.Deref()

	memTypeIndex, err := d.findMemoryType(memReqs.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		vk.DestroyBuffer(d.device, buffer, nil)
		return nil, nil, err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memTypeIndex,
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(d.device, &allocInfo, nil, &memory); res != vk.Success {
		vk.DestroyBuffer(d.device, buffer, nil)
		return nil, nil, fmt.Errorf("%w: vkAllocateMemory: %d", ErrBuffer, res)
	}
	vk.BindBufferMemory(d.device, buffer, memory, 0)

	if len(data) > 0 {
		var mapped unsafe.Pointer
		vk.MapMemory(d.device, memory, 0, vk.DeviceSize(len(data)), 0, &mapped)
		vk.Memcopy(mapped, data)
		vk.UnmapMemory(d.device, memory)
	}
	return buffer, memory, nil
}

// VertexBuffer is a GPU-resident, host-visible buffer of meshdata.Vertex.
type VertexBuffer struct {
	buffer vk.Buffer
	memory vk.DeviceMemory
	Count  uint32
}

// IndexBuffer is a GPU-resident, host-visible buffer of uint16 indices.
type IndexBuffer struct {
	buffer vk.Buffer
	memory vk.DeviceMemory
	Count  uint32
}

// Release frees a VertexBuffer's device resources.
func (vb VertexBuffer) Release(dev *Device) {
	if vb.buffer == nil {
		return
	}
	vk.DestroyBuffer(dev.device, vb.buffer, nil)
	vk.FreeMemory(dev.device, vb.memory, nil)
}

// Release frees an IndexBuffer's device resources.
func (ib IndexBuffer) Release(dev *Device) {
	if ib.buffer == nil {
		return
	}
	vk.DestroyBuffer(dev.device, ib.buffer, nil)
	vk.FreeMemory(dev.device, ib.memory, nil)
}

// UploadMesh copies verts and idx into a fresh vertex/index buffer pair on
// dev. Either slice may be empty, in which case the corresponding buffer's
// Count is zero and it holds no device memory.
func UploadMesh(dev *Device, verts []meshdata.Vertex, idx []uint16) (VertexBuffer, IndexBuffer, error) {
	vbuf, vmem, err := dev.createHostVisibleBuffer(vk.BufferUsageVertexBufferBit, vertexBytes(verts))
	if err != nil {
		return VertexBuffer{}, IndexBuffer{}, err
	}
	ibuf, imem, err := dev.createHostVisibleBuffer(vk.BufferUsageIndexBufferBit, indexBytes(idx))
	if err != nil {
		vk.DestroyBuffer(dev.device, vbuf, nil)
		vk.FreeMemory(dev.device, vmem, nil)
		return VertexBuffer{}, IndexBuffer{}, err
	}

	return VertexBuffer{buffer: vbuf, memory: vmem, Count: uint32(len(verts))},
		IndexBuffer{buffer: ibuf, memory: imem, Count: uint32(len(idx))},
		nil
}

func safeString(s string) string {
	return s + "\x00"
}

func vertexBytes(verts []meshdata.Vertex) []byte {
	if len(verts) == 0 {
		return nil
	}
	size := len(verts) * int(unsafe.Sizeof(meshdata.Vertex{}))
	return unsafe.Slice((*byte)(unsafe.Pointer(&verts[0])), size)
}

func indexBytes(idx []uint16) []byte {
	if len(idx) == 0 {
		return nil
	}
	size := len(idx) * 2
	return unsafe.Slice((*byte)(unsafe.Pointer(&idx[0])), size)
}
