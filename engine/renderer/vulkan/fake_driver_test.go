package vulkan

import (
	"sync"

	vk "github.com/goki/vulkan"
)

var requiredDeviceExtensions = []string{
	"VK_KHR_swapchain",
	"VK_KHR_spirv_1_4",
	"VK_KHR_synchronization2",
	"VK_KHR_create_renderpass2",
}

// fakeDriver answers native calls from canned data and records every call by
// name. Handles are all nil, so ordering is checked through calls.
type fakeDriver struct {
	mu sync.Mutex

	layers             []string
	instanceExtensions []string
	adapters           []AdapterDescriptor
	// present[adapter name][family] is the surface support answer.
	present      map[string][]bool
	capabilities vk.SurfaceCapabilities
	formats      []vk.SurfaceFormat
	presentModes []vk.PresentMode
	imageCount   int

	// fail makes the named call return the error.
	fail map[string]error

	calls          []string
	supportQueries map[uint32]int

	instanceInfo  vk.InstanceCreateInfo
	deviceInfo    vk.DeviceCreateInfo
	features      FeatureChain
	swapchainInfo vk.SwapchainCreateInfo
	viewInfos     []vk.ImageViewCreateInfo
	shaderInfo    vk.ShaderModuleCreateInfo
	pipelineInfo  vk.GraphicsPipelineCreateInfo
	renderingInfo vk.PipelineRenderingCreateInfo
}

func fakeAdapter(name string, version uint32, families []QueueFamily, extensions ...string) AdapterDescriptor {
	return AdapterDescriptor{
		Name:          name,
		Type:          vk.PhysicalDeviceTypeDiscreteGpu,
		APIVersion:    version,
		QueueFamilies: families,
		Extensions:    NewExtensionSet(extensions...),
	}
}

var (
	graphicsFamily = QueueFamily{Flags: vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit), QueueCount: 1}
	computeFamily  = QueueFamily{Flags: vk.QueueFlags(vk.QueueComputeBit), QueueCount: 1}
	transferFamily = QueueFamily{Flags: vk.QueueFlags(vk.QueueTransferBit), QueueCount: 1}
)

// newFakeDriver returns a driver with one capable adapter whose single
// family does graphics and presentation.
func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		layers:             []string{"VK_LAYER_KHRONOS_validation"},
		instanceExtensions: []string{"VK_KHR_surface", "VK_KHR_xcb_surface", "VK_KHR_portability_enumeration", debugReportExtensionName},
		adapters: []AdapterDescriptor{
			fakeAdapter("Fake GPU", makeAPIVersion(1, 3, 250), []QueueFamily{graphicsFamily}, requiredDeviceExtensions...),
		},
		present: map[string][]bool{"Fake GPU": {true}},
		capabilities: vk.SurfaceCapabilities{
			MinImageCount:    2,
			MaxImageCount:    8,
			CurrentExtent:    vk.Extent2D{Width: 800, Height: 600},
			MinImageExtent:   vk.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:   vk.Extent2D{Width: 4096, Height: 4096},
			CurrentTransform: vk.SurfaceTransformIdentityBit,
		},
		formats: []vk.SurfaceFormat{
			{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
		presentModes:   []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox},
		imageCount:     3,
		fail:           map[string]error{},
		supportQueries: map[uint32]int{},
	}
}

func (d *fakeDriver) record(call string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, call)
	return d.fail[call]
}

func (d *fakeDriver) callsNamed(prefix string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, c := range d.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			out = append(out, c)
		}
	}
	return out
}

func (d *fakeDriver) InstanceLayers() ([]string, error) {
	if err := d.record("InstanceLayers"); err != nil {
		return nil, err
	}
	return d.layers, nil
}

func (d *fakeDriver) InstanceExtensions() ([]string, error) {
	if err := d.record("InstanceExtensions"); err != nil {
		return nil, err
	}
	return d.instanceExtensions, nil
}

func (d *fakeDriver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error) {
	if err := d.record("CreateInstance"); err != nil {
		return nil, err
	}
	d.instanceInfo = *info
	return nil, nil
}

func (d *fakeDriver) DestroyInstance(instance vk.Instance) {
	_ = d.record("DestroyInstance")
}

func (d *fakeDriver) CreateDebugCallback(instance vk.Instance) (vk.DebugReportCallback, error) {
	if err := d.record("CreateDebugCallback"); err != nil {
		return vk.NullDebugReportCallback, err
	}
	return vk.NullDebugReportCallback, nil
}

func (d *fakeDriver) DestroyDebugCallback(instance vk.Instance, callback vk.DebugReportCallback) {
	_ = d.record("DestroyDebugCallback")
}

func (d *fakeDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	_ = d.record("DestroySurface")
}

func (d *fakeDriver) EnumerateAdapters(instance vk.Instance) ([]AdapterDescriptor, error) {
	if err := d.record("EnumerateAdapters"); err != nil {
		return nil, err
	}
	return append([]AdapterDescriptor(nil), d.adapters...), nil
}

func (d *fakeDriver) SurfaceSupport(adapter *AdapterDescriptor, family uint32, surface vk.Surface) (bool, error) {
	if err := d.record("SurfaceSupport"); err != nil {
		return false, err
	}
	d.mu.Lock()
	d.supportQueries[family]++
	d.mu.Unlock()
	support := d.present[adapter.Name]
	if int(family) >= len(support) {
		return false, nil
	}
	return support[family], nil
}

func (d *fakeDriver) SurfaceCapabilities(adapter *AdapterDescriptor, surface vk.Surface) (vk.SurfaceCapabilities, error) {
	if err := d.record("SurfaceCapabilities"); err != nil {
		return vk.SurfaceCapabilities{}, err
	}
	return d.capabilities, nil
}

func (d *fakeDriver) SurfaceFormats(adapter *AdapterDescriptor, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	if err := d.record("SurfaceFormats"); err != nil {
		return nil, err
	}
	return d.formats, nil
}

func (d *fakeDriver) SurfacePresentModes(adapter *AdapterDescriptor, surface vk.Surface) ([]vk.PresentMode, error) {
	if err := d.record("SurfacePresentModes"); err != nil {
		return nil, err
	}
	return d.presentModes, nil
}

func (d *fakeDriver) CreateDevice(adapter *AdapterDescriptor, info *vk.DeviceCreateInfo, features FeatureChain) (vk.Device, error) {
	if err := d.record("CreateDevice"); err != nil {
		return nil, err
	}
	d.deviceInfo = *info
	d.features = features
	return nil, nil
}

func (d *fakeDriver) DeviceQueue(device vk.Device, family, index uint32) vk.Queue {
	_ = d.record("DeviceQueue")
	return nil
}

func (d *fakeDriver) DeviceWaitIdle(device vk.Device) {
	_ = d.record("DeviceWaitIdle")
}

func (d *fakeDriver) DestroyDevice(device vk.Device) {
	_ = d.record("DestroyDevice")
}

func (d *fakeDriver) CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	if err := d.record("CreateSwapchain"); err != nil {
		return vk.NullSwapchain, err
	}
	d.swapchainInfo = *info
	return vk.NullSwapchain, nil
}

func (d *fakeDriver) SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error) {
	if err := d.record("SwapchainImages"); err != nil {
		return nil, err
	}
	return make([]vk.Image, d.imageCount), nil
}

func (d *fakeDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	_ = d.record("DestroySwapchain")
}

func (d *fakeDriver) CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	if err := d.record("CreateImageView"); err != nil {
		return vk.NullImageView, err
	}
	d.viewInfos = append(d.viewInfos, *info)
	return vk.NullImageView, nil
}

func (d *fakeDriver) DestroyImageView(device vk.Device, view vk.ImageView) {
	_ = d.record("DestroyImageView")
}

func (d *fakeDriver) CreateShaderModule(device vk.Device, info *vk.ShaderModuleCreateInfo) (vk.ShaderModule, error) {
	if err := d.record("CreateShaderModule"); err != nil {
		return vk.NullShaderModule, err
	}
	d.shaderInfo = *info
	return vk.NullShaderModule, nil
}

func (d *fakeDriver) DestroyShaderModule(device vk.Device, module vk.ShaderModule) {
	_ = d.record("DestroyShaderModule")
}

func (d *fakeDriver) CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error) {
	if err := d.record("CreatePipelineLayout"); err != nil {
		return vk.NullPipelineLayout, err
	}
	return vk.NullPipelineLayout, nil
}

func (d *fakeDriver) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {
	_ = d.record("DestroyPipelineLayout")
}

func (d *fakeDriver) CreateGraphicsPipeline(device vk.Device, info *vk.GraphicsPipelineCreateInfo, rendering *vk.PipelineRenderingCreateInfo) (vk.Pipeline, error) {
	if err := d.record("CreateGraphicsPipeline"); err != nil {
		return vk.NullPipeline, err
	}
	d.pipelineInfo = *info
	d.renderingInfo = *rendering
	return vk.NullPipeline, nil
}

func (d *fakeDriver) DestroyPipeline(device vk.Device, pipeline vk.Pipeline) {
	_ = d.record("DestroyPipeline")
}

type fakeWindow struct {
	extensions []string
	width      uint32
	height     uint32
	surfaceErr error
	sizeCalls  int
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{
		extensions: []string{"VK_KHR_surface", "VK_KHR_xcb_surface"},
		width:      800,
		height:     600,
	}
}

func (w *fakeWindow) RequiredInstanceExtensions() []string {
	return w.extensions
}

func (w *fakeWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	if w.surfaceErr != nil {
		return vk.NullSurface, w.surfaceErr
	}
	return vk.NullSurface, nil
}

func (w *fakeWindow) FramebufferSize() (uint32, uint32) {
	w.sizeCalls++
	return w.width, w.height
}

// triangleBytecode is a SPIR-V header followed by padding words.
func triangleBytecode() []byte {
	return []byte{
		0x03, 0x02, 0x23, 0x07,
		0x00, 0x00, 0x01, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}
}
