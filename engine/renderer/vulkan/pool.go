package vulkan

import "sync"

type LockGroup string

const (
	InstanceManagement  LockGroup = "instance_management"
	DeviceManagement    LockGroup = "device_management"
	SwapchainManagement LockGroup = "swapchain_management"
	ImageManagement     LockGroup = "image_management"
	ShaderManagement    LockGroup = "shader_management"
	PipelineManagement  LockGroup = "pipeline_management"
)

// Mutex pool
type VulkanLockPool struct {
	locks map[LockGroup]*sync.Mutex
	mu    sync.Mutex // Protects access to the locks map
}

func NewVulkanLockPool() *VulkanLockPool {
	return &VulkanLockPool{
		locks: make(map[LockGroup]*sync.Mutex),
	}
}

// Get or create a mutex for a specific group
func (vs *VulkanLockPool) lock(group LockGroup) *sync.Mutex {
	vs.mu.Lock()
	l, exists := vs.locks[group]
	if !exists {
		l = &sync.Mutex{}
		vs.locks[group] = l
	}
	vs.mu.Unlock()

	l.Lock()
	return l
}

// SafeCall runs fn while holding the group's mutex. Creation and destruction
// of objects in the same group never overlap.
func (vs *VulkanLockPool) SafeCall(group LockGroup, fn func() error) error {
	l := vs.lock(group)
	defer l.Unlock()

	return fn()
}
