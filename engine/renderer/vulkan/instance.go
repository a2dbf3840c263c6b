package vulkan

import (
	"runtime"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ignite/engine/core"
	"golang.org/x/exp/slices"
)

const (
	engineName               = "Ignite"
	debugReportExtensionName = "VK_EXT_debug_report"
)

type InstanceRequest struct {
	AppName string
	// APIVersion is requested from the loader and also the minimum an adapter
	// must report.
	APIVersion uint32
	// Extensions the window system needs.
	Extensions []string
	Layers     []string
	Validation bool
}

// RequiredExtensions is the window list plus what the engine itself needs.
func (req InstanceRequest) RequiredExtensions() []string {
	required := append([]string(nil), req.Extensions...)
	if runtime.GOOS == "darwin" {
		required = appendUnique(required, "VK_KHR_portability_enumeration")
	}
	if req.Validation {
		required = appendUnique(required, debugReportExtensionName)
	}
	return required
}

// EnabledLayers is empty unless validation is on.
func (req InstanceRequest) EnabledLayers() []string {
	if !req.Validation {
		return nil
	}
	return append([]string(nil), req.Layers...)
}

func appendUnique(list []string, name string) []string {
	if slices.Contains(list, name) {
		return list
	}
	return append(list, name)
}

type VulkanInstance struct {
	Handle         vk.Instance
	Extensions     []string
	Layers         []string
	debugMessenger vk.DebugReportCallback
	hasDebug       bool
}

// CreateInstance verifies every requested layer and extension is available,
// then creates the instance with them enabled. Created objects are pushed on
// teardown.
func CreateInstance(driver Driver, req InstanceRequest, teardown *Teardown) (*VulkanInstance, error) {
	layers := req.EnabledLayers()
	if len(layers) > 0 {
		core.LogInfo("Validation layers enabled. Enumerating...")
		available, err := driver.InstanceLayers()
		if err != nil {
			return nil, core.NewStageError(StageInstance, core.ErrLayerUnsupported, "layer enumeration", err)
		}
		for _, layer := range layers {
			core.LogDebug("Searching for layer: %s...", layer)
			if !slices.Contains(available, layer) {
				return nil, core.NewStageError(StageInstance, core.ErrLayerUnsupported, layer, nil)
			}
		}
		core.LogInfo("All required validation layers are present.")
	}

	extensions := req.RequiredExtensions()
	available, err := driver.InstanceExtensions()
	if err != nil {
		return nil, core.NewStageError(StageInstance, core.ErrInstanceExtensionUnsupported, "extension enumeration", err)
	}
	for _, ext := range extensions {
		if !slices.Contains(available, ext) {
			return nil, core.NewStageError(StageInstance, core.ErrInstanceExtensionUnsupported, ext, nil)
		}
	}
	core.LogInfo("Required extensions: %v", extensions)

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         req.APIVersion,
		ApplicationVersion: makeAPIVersion(1, 0, 0),
		PApplicationName:   VulkanSafeString(req.AppName),
		EngineVersion:      makeAPIVersion(1, 0, 0),
		PEngineName:        VulkanSafeString(engineName),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     VulkanSafeStrings(layers),
	}
	if runtime.GOOS == "darwin" {
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}

	handle, err := driver.CreateInstance(&createInfo)
	if err != nil {
		return nil, core.NewStageError(StageInstance, core.ErrInstanceCreation, req.AppName, err)
	}
	instance := &VulkanInstance{
		Handle:     handle,
		Extensions: extensions,
		Layers:     layers,
	}
	teardown.Push("instance", func() { driver.DestroyInstance(handle) })
	core.LogInfo("Vulkan Instance created.")

	if req.Validation {
		core.LogDebug("Creating Vulkan debugger...")
		dbg, err := driver.CreateDebugCallback(handle)
		if err != nil {
			// Diagnostics only; the instance is still usable.
			core.LogWarn("vk.CreateDebugReportCallback failed with %s", err)
		} else {
			instance.debugMessenger = dbg
			instance.hasDebug = true
			teardown.Push("debug callback", func() { driver.DestroyDebugCallback(handle, dbg) })
			core.LogDebug("Vulkan debugger created.")
		}
	}

	return instance, nil
}

// debugReportFlags selects which driver messages reach the callback.
const debugReportFlags = vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
	vk.DebugReportPerformanceWarningBit | vk.DebugReportInformationBit)

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		core.LogDebug("DEBUG: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
