package vulkan

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ignite/engine/core"
)

// VulkanDriver performs the native calls through goki/vulkan.
type VulkanDriver struct {
	// TODO: custom allocator.
	allocator *vk.AllocationCallbacks
	lockPool  *VulkanLockPool
}

// NewDriver loads the Vulkan loader through the windowing system's
// vkGetInstanceProcAddr.
func NewDriver(getInstanceProcAddr unsafe.Pointer) (*VulkanDriver, error) {
	if getInstanceProcAddr == nil {
		return nil, errors.New("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(getInstanceProcAddr)
	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize vk")
	}
	return &VulkanDriver{
		allocator: nil,
		lockPool:  NewVulkanLockPool(),
	}, nil
}

func (d *VulkanDriver) InstanceLayers() ([]string, error) {
	var count uint32
	if err := resultError("vkEnumerateInstanceLayerProperties", vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, err
	}
	layers := make([]vk.LayerProperties, count)
	if err := resultError("vkEnumerateInstanceLayerProperties", vk.EnumerateInstanceLayerProperties(&count, layers)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for i := range layers[:count] {
		layers[i].Deref()
		names = append(names, CString(layers[i].LayerName[:]))
	}
	return names, nil
}

func (d *VulkanDriver) InstanceExtensions() ([]string, error) {
	var count uint32
	if err := resultError("vkEnumerateInstanceExtensionProperties", vk.EnumerateInstanceExtensionProperties("", &count, nil)); err != nil {
		return nil, err
	}
	extensions := make([]vk.ExtensionProperties, count)
	if err := resultError("vkEnumerateInstanceExtensionProperties", vk.EnumerateInstanceExtensionProperties("", &count, extensions)); err != nil {
		return nil, err
	}
	return extensionNames(extensions[:count]), nil
}

func extensionNames(extensions []vk.ExtensionProperties) []string {
	names := make([]string, 0, len(extensions))
	for i := range extensions {
		extensions[i].Deref()
		names = append(names, CString(extensions[i].ExtensionName[:]))
	}
	return names
}

func (d *VulkanDriver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error) {
	var instance vk.Instance
	err := d.lockPool.SafeCall(InstanceManagement, func() error {
		if err := resultError("vkCreateInstance", vk.CreateInstance(info, d.allocator, &instance)); err != nil {
			return err
		}
		return vk.InitInstance(instance)
	})
	return instance, err
}

func (d *VulkanDriver) DestroyInstance(instance vk.Instance) {
	_ = d.lockPool.SafeCall(InstanceManagement, func() error {
		vk.DestroyInstance(instance, d.allocator)
		return nil
	})
}

func (d *VulkanDriver) CreateDebugCallback(instance vk.Instance) (vk.DebugReportCallback, error) {
	debugCreateInfo := vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       debugReportFlags,
		PfnCallback: dbgCallbackFunc,
		PNext:       nil,
	}
	var dbg vk.DebugReportCallback
	if err := vk.Error(vk.CreateDebugReportCallback(instance, &debugCreateInfo, d.allocator, &dbg)); err != nil {
		return vk.NullDebugReportCallback, err
	}
	return dbg, nil
}

func (d *VulkanDriver) DestroyDebugCallback(instance vk.Instance, callback vk.DebugReportCallback) {
	vk.DestroyDebugReportCallback(instance, callback, d.allocator)
}

func (d *VulkanDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	vk.DestroySurface(instance, surface, d.allocator)
}

func (d *VulkanDriver) EnumerateAdapters(instance vk.Instance) ([]AdapterDescriptor, error) {
	var count uint32
	if err := resultError("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(instance, &count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	physicalDevices := make([]vk.PhysicalDevice, count)
	if err := resultError("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(instance, &count, physicalDevices)); err != nil {
		return nil, err
	}

	adapters := make([]AdapterDescriptor, 0, count)
	for _, pd := range physicalDevices[:count] {
		adapter, err := d.describeAdapter(pd)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}

func (d *VulkanDriver) describeAdapter(pd vk.PhysicalDevice) (AdapterDescriptor, error) {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(pd, &properties)
	properties.Deref()

	var familyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &familyCount, nil)
	families := make([]vk.QueueFamilyProperties, familyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &familyCount, families)

	queueFamilies := make([]QueueFamily, 0, familyCount)
	for i := range families[:familyCount] {
		families[i].Deref()
		queueFamilies = append(queueFamilies, QueueFamily{
			Flags:      families[i].QueueFlags,
			QueueCount: families[i].QueueCount,
		})
	}

	var extensionCount uint32
	if err := resultError("vkEnumerateDeviceExtensionProperties", vk.EnumerateDeviceExtensionProperties(pd, "", &extensionCount, nil)); err != nil {
		return AdapterDescriptor{}, err
	}
	extensions := make([]vk.ExtensionProperties, extensionCount)
	if extensionCount > 0 {
		if err := resultError("vkEnumerateDeviceExtensionProperties", vk.EnumerateDeviceExtensionProperties(pd, "", &extensionCount, extensions)); err != nil {
			return AdapterDescriptor{}, err
		}
	}

	return AdapterDescriptor{
		Handle:        pd,
		Name:          CString(properties.DeviceName[:]),
		Type:          properties.DeviceType,
		APIVersion:    properties.ApiVersion,
		DriverVersion: properties.DriverVersion,
		QueueFamilies: queueFamilies,
		Extensions:    NewExtensionSet(extensionNames(extensions[:extensionCount])...),
	}, nil
}

func (d *VulkanDriver) SurfaceSupport(adapter *AdapterDescriptor, family uint32, surface vk.Surface) (bool, error) {
	var supportsPresent vk.Bool32 = vk.False
	if err := resultError("vkGetPhysicalDeviceSurfaceSupportKHR", vk.GetPhysicalDeviceSurfaceSupport(adapter.Handle, family, surface, &supportsPresent)); err != nil {
		return false, err
	}
	return supportsPresent == vk.True, nil
}

func (d *VulkanDriver) SurfaceCapabilities(adapter *AdapterDescriptor, surface vk.Surface) (vk.SurfaceCapabilities, error) {
	var capabilities vk.SurfaceCapabilities
	if err := resultError("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", vk.GetPhysicalDeviceSurfaceCapabilities(adapter.Handle, surface, &capabilities)); err != nil {
		return vk.SurfaceCapabilities{}, err
	}
	capabilities.Deref()
	capabilities.CurrentExtent.Deref()
	capabilities.MinImageExtent.Deref()
	capabilities.MaxImageExtent.Deref()
	return capabilities, nil
}

func (d *VulkanDriver) SurfaceFormats(adapter *AdapterDescriptor, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	var count uint32
	if err := resultError("vkGetPhysicalDeviceSurfaceFormatsKHR", vk.GetPhysicalDeviceSurfaceFormats(adapter.Handle, surface, &count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	formats := make([]vk.SurfaceFormat, count)
	if err := resultError("vkGetPhysicalDeviceSurfaceFormatsKHR", vk.GetPhysicalDeviceSurfaceFormats(adapter.Handle, surface, &count, formats)); err != nil {
		return nil, err
	}
	for i := range formats {
		formats[i].Deref()
	}
	return formats[:count], nil
}

func (d *VulkanDriver) SurfacePresentModes(adapter *AdapterDescriptor, surface vk.Surface) ([]vk.PresentMode, error) {
	var count uint32
	if err := resultError("vkGetPhysicalDeviceSurfacePresentModesKHR", vk.GetPhysicalDeviceSurfacePresentModes(adapter.Handle, surface, &count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	modes := make([]vk.PresentMode, count)
	if err := resultError("vkGetPhysicalDeviceSurfacePresentModesKHR", vk.GetPhysicalDeviceSurfacePresentModes(adapter.Handle, surface, &count, modes)); err != nil {
		return nil, err
	}
	return modes[:count], nil
}

// linkFeatureChain copies every node of chain into native memory, tail
// first, so each node's pNext is the already native next node. The returned
// pointer is the head. Nothing may be released before the consuming call
// returns.
func linkFeatureChain(chain FeatureChain) (unsafe.Pointer, func()) {
	nodes := chain.Nodes()
	var next unsafe.Pointer
	frees := make([]func(), 0, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		switch s := nodes[i].native().(type) {
		case *vk.PhysicalDeviceFeatures2:
			s.PNext = next
			ref, _ := s.PassRef()
			next = unsafe.Pointer(ref)
			frees = append(frees, s.Free)
		case *vk.PhysicalDeviceVulkan11Features:
			s.PNext = next
			ref, _ := s.PassRef()
			next = unsafe.Pointer(ref)
			frees = append(frees, s.Free)
		case *vk.PhysicalDeviceVulkan13Features:
			s.PNext = next
			ref, _ := s.PassRef()
			next = unsafe.Pointer(ref)
			frees = append(frees, s.Free)
		case *vk.PhysicalDeviceExtendedDynamicStateFeatures:
			s.PNext = next
			ref, _ := s.PassRef()
			next = unsafe.Pointer(ref)
			frees = append(frees, s.Free)
		default:
			core.LogWarn("unknown feature node %s skipped", nodes[i])
		}
	}
	return next, func() {
		for _, free := range frees {
			free()
		}
	}
}

func (d *VulkanDriver) CreateDevice(adapter *AdapterDescriptor, info *vk.DeviceCreateInfo, features FeatureChain) (vk.Device, error) {
	head, release := linkFeatureChain(features)
	defer release()
	info.PNext = head
	defer func() { info.PNext = nil }()

	var device vk.Device
	err := d.lockPool.SafeCall(DeviceManagement, func() error {
		return resultError("vkCreateDevice", vk.CreateDevice(adapter.Handle, info, d.allocator, &device))
	})
	return device, err
}

func (d *VulkanDriver) DeviceQueue(device vk.Device, family, index uint32) vk.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(device, family, index, &queue)
	return queue
}

func (d *VulkanDriver) DeviceWaitIdle(device vk.Device) {
	vk.DeviceWaitIdle(device)
}

func (d *VulkanDriver) DestroyDevice(device vk.Device) {
	_ = d.lockPool.SafeCall(DeviceManagement, func() error {
		vk.DestroyDevice(device, d.allocator)
		return nil
	})
}

func (d *VulkanDriver) CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	var swapchain vk.Swapchain
	err := d.lockPool.SafeCall(SwapchainManagement, func() error {
		return resultError("vkCreateSwapchainKHR", vk.CreateSwapchain(device, info, d.allocator, &swapchain))
	})
	return swapchain, err
}

func (d *VulkanDriver) SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error) {
	var count uint32
	if err := resultError("vkGetSwapchainImagesKHR", vk.GetSwapchainImages(device, swapchain, &count, nil)); err != nil {
		return nil, err
	}
	images := make([]vk.Image, count)
	if err := resultError("vkGetSwapchainImagesKHR", vk.GetSwapchainImages(device, swapchain, &count, images)); err != nil {
		return nil, err
	}
	return images[:count], nil
}

func (d *VulkanDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	_ = d.lockPool.SafeCall(SwapchainManagement, func() error {
		vk.DestroySwapchain(device, swapchain, d.allocator)
		return nil
	})
}

func (d *VulkanDriver) CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	var view vk.ImageView
	err := d.lockPool.SafeCall(ImageManagement, func() error {
		return resultError("vkCreateImageView", vk.CreateImageView(device, info, d.allocator, &view))
	})
	return view, err
}

func (d *VulkanDriver) DestroyImageView(device vk.Device, view vk.ImageView) {
	_ = d.lockPool.SafeCall(ImageManagement, func() error {
		vk.DestroyImageView(device, view, d.allocator)
		return nil
	})
}

func (d *VulkanDriver) CreateShaderModule(device vk.Device, info *vk.ShaderModuleCreateInfo) (vk.ShaderModule, error) {
	var module vk.ShaderModule
	err := d.lockPool.SafeCall(ShaderManagement, func() error {
		return resultError("vkCreateShaderModule", vk.CreateShaderModule(device, info, d.allocator, &module))
	})
	return module, err
}

func (d *VulkanDriver) DestroyShaderModule(device vk.Device, module vk.ShaderModule) {
	_ = d.lockPool.SafeCall(ShaderManagement, func() error {
		vk.DestroyShaderModule(device, module, d.allocator)
		return nil
	})
}

func (d *VulkanDriver) CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error) {
	var layout vk.PipelineLayout
	err := d.lockPool.SafeCall(PipelineManagement, func() error {
		return resultError("vkCreatePipelineLayout", vk.CreatePipelineLayout(device, info, d.allocator, &layout))
	})
	return layout, err
}

func (d *VulkanDriver) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {
	_ = d.lockPool.SafeCall(PipelineManagement, func() error {
		vk.DestroyPipelineLayout(device, layout, d.allocator)
		return nil
	})
}

// linkRenderingInfo returns the native rendering info as a single node chain.
func linkRenderingInfo(rendering *vk.PipelineRenderingCreateInfo) (unsafe.Pointer, func()) {
	rendering.PNext = nil
	ref, _ := rendering.PassRef()
	return unsafe.Pointer(ref), rendering.Free
}

func (d *VulkanDriver) CreateGraphicsPipeline(device vk.Device, info *vk.GraphicsPipelineCreateInfo, rendering *vk.PipelineRenderingCreateInfo) (vk.Pipeline, error) {
	next, release := linkRenderingInfo(rendering)
	defer release()
	info.PNext = next
	defer func() { info.PNext = nil }()

	pipelines := make([]vk.Pipeline, 1)
	err := d.lockPool.SafeCall(PipelineManagement, func() error {
		return resultError("vkCreateGraphicsPipelines", vk.CreateGraphicsPipelines(
			device,
			vk.NullPipelineCache,
			1,
			[]vk.GraphicsPipelineCreateInfo{*info},
			d.allocator,
			pipelines))
	})
	if err != nil {
		return vk.NullPipeline, err
	}
	return pipelines[0], nil
}

func (d *VulkanDriver) DestroyPipeline(device vk.Device, pipeline vk.Pipeline) {
	_ = d.lockPool.SafeCall(PipelineManagement, func() error {
		vk.DestroyPipeline(device, pipeline, d.allocator)
		return nil
	})
}
