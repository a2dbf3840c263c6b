package vulkan

import (
	"strings"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ignite/engine/core"
)

type VulkanDevice struct {
	PhysicalDevice vk.PhysicalDevice
	LogicalDevice  vk.Device

	Queues QueueFamilyAssignment

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue

	EnabledExtensions []string
	Features          FeatureChain

	destroyed bool
}

// CreateLogicalDevice creates the device with one queue per distinct family,
// the required extensions and features linked through pNext. The legacy
// pEnabledFeatures field is left empty since the features2 node carries the
// core features.
func CreateLogicalDevice(driver Driver, adapter *AdapterDescriptor, queues QueueFamilyAssignment, extensions []string, features FeatureChain) (*VulkanDevice, error) {
	core.LogInfo("Creating logical device...")

	indices := queues.UniqueIndices()
	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(indices))
	for i, index := range indices {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: index,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensions),
		// Deprecated and ignored, so pass nothing.
		EnabledLayerCount:   0,
		PpEnabledLayerNames: nil,
	}

	core.LogDebug("Requested features: %s", features.String())
	logical, err := driver.CreateDevice(adapter, &deviceCreateInfo, features)
	if err != nil {
		var re *ResultError
		if errors.As(err, &re) && re.Result == vk.ErrorExtensionNotPresent {
			return nil, core.NewStageError(StageDevice, core.ErrDeviceExtensionUnsupported, firstMissing(adapter, extensions), err)
		}
		return nil, core.NewStageError(StageDevice, core.ErrDeviceCreation, adapter.Name, err)
	}
	core.LogInfo("Logical device created.")

	device := &VulkanDevice{
		PhysicalDevice:    adapter.Handle,
		LogicalDevice:     logical,
		Queues:            queues,
		EnabledExtensions: extensions,
		Features:          features,
	}
	device.GraphicsQueue = driver.DeviceQueue(logical, queues.GraphicsIndex, 0)
	device.PresentQueue = driver.DeviceQueue(logical, queues.PresentIndex, 0)
	core.LogInfo("Queues obtained.")

	return device, nil
}

// firstMissing names the extension the driver most likely rejected.
func firstMissing(adapter *AdapterDescriptor, extensions []string) string {
	if missing := adapter.MissingExtensions(extensions); len(missing) > 0 {
		return missing[0]
	}
	return "one of " + strings.Join(extensions, ", ")
}

func (d *VulkanDevice) Destroy(driver Driver) {
	if d.destroyed {
		return
	}
	d.destroyed = true
	d.GraphicsQueue = nil
	d.PresentQueue = nil
	driver.DestroyDevice(d.LogicalDevice)
	d.LogicalDevice = nil
	// Physical devices are not destroyed.
	d.PhysicalDevice = nil
}
