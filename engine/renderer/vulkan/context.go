package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ignite/engine/core"
)

// Startup stages, in the order Bootstrap runs them.
const (
	StageInstance  = "instance"
	StageSurface   = "surface"
	StageEnumerate = "enumerate"
	StageSelect    = "select"
	StageResolve   = "resolve"
	StageFeatures  = "features"
	StageDevice    = "device"
	StageNegotiate = "negotiate"
	StageSwapchain = "swapchain"
	StagePipeline  = "pipeline"
)

type BootstrapConfig struct {
	AppName          string
	MinAPIVersion    uint32
	Validation       bool
	Layers           []string
	DeviceExtensions []string
	VertexEntry      string
	FragmentEntry    string
}

func NewBootstrapConfig(cfg *core.Config) BootstrapConfig {
	v := cfg.MinAPIVersion()
	return BootstrapConfig{
		AppName:          cfg.Application.Name,
		MinAPIVersion:    makeAPIVersion(v.Major, v.Minor, v.Patch),
		Validation:       cfg.Vulkan.Validation,
		Layers:           cfg.Vulkan.Layers,
		DeviceExtensions: cfg.Vulkan.DeviceExtensions,
		VertexEntry:      cfg.Shaders.VertexEntry,
		FragmentEntry:    cfg.Shaders.FragmentEntry,
	}
}

// VulkanContext is everything the negotiation produced. It owns every native
// object in it; Destroy releases them in reverse creation order.
type VulkanContext struct {
	Instance      *VulkanInstance
	Surface       vk.Surface
	Adapter       *AdapterDescriptor
	Queues        QueueFamilyAssignment
	Device        *VulkanDevice
	SurfaceConfig SurfaceConfiguration
	Swapchain     *VulkanSwapchain
	Pipeline      *VulkanPipeline

	Metrics *core.StageMetrics

	driver   Driver
	teardown *Teardown
}

// Bootstrap runs the startup stages strictly in order. Each stage only starts
// once the previous one succeeded; on the first failure everything created so
// far is released and the error is returned.
func Bootstrap(driver Driver, window Window, cfg BootstrapConfig, bytecode []byte) (*VulkanContext, error) {
	vc := &VulkanContext{
		Metrics:  core.NewStageMetrics(),
		driver:   driver,
		teardown: &Teardown{},
	}
	if err := vc.bootstrap(window, cfg, bytecode); err != nil {
		vc.teardown.Run()
		return nil, err
	}
	core.LogInfo("Vulkan context ready in %s (%s).", vc.Metrics.Total(), vc.Metrics.String())
	return vc, nil
}

func (vc *VulkanContext) bootstrap(window Window, cfg BootstrapConfig, bytecode []byte) error {
	driver := vc.driver
	m := vc.Metrics

	if err := m.Measure(StageInstance, func() error {
		instance, err := CreateInstance(driver, InstanceRequest{
			AppName:    cfg.AppName,
			APIVersion: cfg.MinAPIVersion,
			Extensions: window.RequiredInstanceExtensions(),
			Layers:     cfg.Layers,
			Validation: cfg.Validation,
		}, vc.teardown)
		vc.Instance = instance
		return err
	}); err != nil {
		return err
	}

	if err := m.Measure(StageSurface, func() error {
		core.LogDebug("Creating Vulkan surface...")
		surface, err := window.CreateSurface(vc.Instance.Handle)
		if err != nil {
			return core.NewStageError(StageSurface, core.ErrSurfaceCreation, cfg.AppName, err)
		}
		vc.Surface = surface
		instance := vc.Instance.Handle
		vc.teardown.Push("surface", func() { driver.DestroySurface(instance, surface) })
		core.LogDebug("Vulkan surface created.")
		return nil
	}); err != nil {
		return err
	}

	var adapters []AdapterDescriptor
	if err := m.Measure(StageEnumerate, func() error {
		var err error
		adapters, err = EnumerateAdapters(driver, vc.Instance.Handle)
		return err
	}); err != nil {
		return err
	}

	if err := m.Measure(StageSelect, func() error {
		adapter, err := SelectSuitableAdapter(adapters, SuitabilityRequirements{
			MinAPIVersion:      cfg.MinAPIVersion,
			RequiredExtensions: cfg.DeviceExtensions,
		})
		vc.Adapter = adapter
		return err
	}); err != nil {
		return err
	}

	if err := m.Measure(StageResolve, func() error {
		queues, err := ResolveQueueFamilies(driver, vc.Adapter, vc.Surface)
		vc.Queues = queues
		return err
	}); err != nil {
		return err
	}

	var features FeatureChain
	if err := m.Measure(StageFeatures, func() error {
		features = BuildFeatureChain(vc.Adapter)
		core.LogInfo("Enabled features: %v", features.EnabledFlags())
		return nil
	}); err != nil {
		return err
	}

	if err := m.Measure(StageDevice, func() error {
		device, err := CreateLogicalDevice(driver, vc.Adapter, vc.Queues, cfg.DeviceExtensions, features)
		if err != nil {
			return err
		}
		vc.Device = device
		vc.teardown.Push("device", func() { device.Destroy(driver) })
		return nil
	}); err != nil {
		return err
	}

	if err := m.Measure(StageNegotiate, func() error {
		support, err := QuerySurfaceSupport(driver, vc.Adapter, vc.Surface)
		if err != nil {
			return err
		}
		vc.SurfaceConfig = Negotiate(support, window.FramebufferSize)
		return nil
	}); err != nil {
		return err
	}

	if err := m.Measure(StageSwapchain, func() error {
		swapchain, err := BuildSwapchain(driver, vc.Device, vc.Surface, vc.SurfaceConfig)
		if err != nil {
			return err
		}
		vc.Swapchain = swapchain
		vc.teardown.Push("swapchain", func() { swapchain.Destroy(driver) })
		return nil
	}); err != nil {
		return err
	}

	return m.Measure(StagePipeline, func() error {
		desc := NewPipelineDescriptor(cfg.VertexEntry, cfg.FragmentEntry, vc.SurfaceConfig.Format)
		pipeline, err := AssemblePipeline(driver, vc.Device, bytecode, desc)
		if err != nil {
			return err
		}
		vc.Pipeline = pipeline
		vc.teardown.Push("pipeline", func() { pipeline.Destroy(driver) })
		return nil
	})
}

// Destroy releases every native object exactly once. Safe to call again.
func (vc *VulkanContext) Destroy() {
	vc.teardown.Run()
}
