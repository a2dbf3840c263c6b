package vulkan

import (
	vk "github.com/goki/vulkan"
)

// Driver is the set of native calls the negotiation stages make. The
// production implementation is NewDriver; tests substitute an in-memory one.
type Driver interface {
	InstanceLayers() ([]string, error)
	InstanceExtensions() ([]string, error)
	CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error)
	DestroyInstance(instance vk.Instance)
	CreateDebugCallback(instance vk.Instance) (vk.DebugReportCallback, error)
	DestroyDebugCallback(instance vk.Instance, callback vk.DebugReportCallback)
	DestroySurface(instance vk.Instance, surface vk.Surface)

	// EnumerateAdapters returns every adapter with its properties, queue
	// families and device extensions already queried.
	EnumerateAdapters(instance vk.Instance) ([]AdapterDescriptor, error)
	SurfaceSupport(adapter *AdapterDescriptor, family uint32, surface vk.Surface) (bool, error)
	SurfaceCapabilities(adapter *AdapterDescriptor, surface vk.Surface) (vk.SurfaceCapabilities, error)
	SurfaceFormats(adapter *AdapterDescriptor, surface vk.Surface) ([]vk.SurfaceFormat, error)
	SurfacePresentModes(adapter *AdapterDescriptor, surface vk.Surface) ([]vk.PresentMode, error)

	// CreateDevice links features into info's pNext for the duration of the
	// call.
	CreateDevice(adapter *AdapterDescriptor, info *vk.DeviceCreateInfo, features FeatureChain) (vk.Device, error)
	DeviceQueue(device vk.Device, family, index uint32) vk.Queue
	DeviceWaitIdle(device vk.Device)
	DestroyDevice(device vk.Device)

	CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, error)
	SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error)
	DestroySwapchain(device vk.Device, swapchain vk.Swapchain)
	CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, error)
	DestroyImageView(device vk.Device, view vk.ImageView)

	CreateShaderModule(device vk.Device, info *vk.ShaderModuleCreateInfo) (vk.ShaderModule, error)
	DestroyShaderModule(device vk.Device, module vk.ShaderModule)
	CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error)
	DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout)
	// CreateGraphicsPipeline links rendering into info's pNext for the
	// duration of the call.
	CreateGraphicsPipeline(device vk.Device, info *vk.GraphicsPipelineCreateInfo, rendering *vk.PipelineRenderingCreateInfo) (vk.Pipeline, error)
	DestroyPipeline(device vk.Device, pipeline vk.Pipeline)
}

// Window is the windowing collaborator the bootstrap needs.
type Window interface {
	RequiredInstanceExtensions() []string
	CreateSurface(instance vk.Instance) (vk.Surface, error)
	FramebufferSize() (width, height uint32)
}
