package vulkan

import (
	"fmt"
	"sort"
	"strings"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ignite/engine/core"
)

type QueueFamily struct {
	Flags      vk.QueueFlags
	QueueCount uint32
}

func (qf QueueFamily) IsGraphics() bool {
	return qf.Flags&vk.QueueFlags(vk.QueueGraphicsBit) != 0
}

// AdapterDescriptor is a physical device as seen at enumeration time. The
// handle is not owned.
type AdapterDescriptor struct {
	Handle        vk.PhysicalDevice
	Name          string
	Type          vk.PhysicalDeviceType
	APIVersion    uint32
	DriverVersion uint32
	QueueFamilies []QueueFamily
	Extensions    map[string]struct{}
}

func NewExtensionSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func (a *AdapterDescriptor) HasExtension(name string) bool {
	_, ok := a.Extensions[name]
	return ok
}

// MissingExtensions returns the required names the adapter does not support,
// in the order they were required.
func (a *AdapterDescriptor) MissingExtensions(required []string) []string {
	var missing []string
	for _, name := range required {
		if !a.HasExtension(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

func (a *AdapterDescriptor) HasGraphicsQueue() bool {
	for _, qf := range a.QueueFamilies {
		if qf.IsGraphics() {
			return true
		}
	}
	return false
}

func (a *AdapterDescriptor) String() string {
	return fmt.Sprintf("'%s' (%s, api %s, %d queue families, %d extensions)",
		a.Name, deviceTypeString(a.Type), versionString(a.APIVersion), len(a.QueueFamilies), len(a.Extensions))
}

// ExtensionNames returns the supported extensions sorted by name.
func (a *AdapterDescriptor) ExtensionNames() []string {
	names := make([]string, 0, len(a.Extensions))
	for n := range a.Extensions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func deviceTypeString(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	default:
		return "other"
	}
}

// EnumerateAdapters lists every adapter visible to instance. An empty list is
// not an error.
func EnumerateAdapters(driver Driver, instance vk.Instance) ([]AdapterDescriptor, error) {
	adapters, err := driver.EnumerateAdapters(instance)
	if err != nil {
		return nil, core.NewStageError(StageEnumerate, core.ErrInstanceEnumeration, "", err)
	}
	core.LogInfo("Found %d Vulkan adapter(s).", len(adapters))
	for i := range adapters {
		core.LogDebug("Adapter %d: %s", i, adapters[i].String())
	}
	return adapters, nil
}

// SuitabilityRequirements are the minimum an adapter must offer.
type SuitabilityRequirements struct {
	MinAPIVersion      uint32
	RequiredExtensions []string
}

// Rejection returns why adapter does not satisfy req, or "" when it does.
func (req SuitabilityRequirements) Rejection(adapter *AdapterDescriptor) string {
	if adapter.APIVersion < req.MinAPIVersion {
		return fmt.Sprintf("version %s < %s", versionString(adapter.APIVersion), versionString(req.MinAPIVersion))
	}
	if !adapter.HasGraphicsQueue() {
		return "no graphics queue family"
	}
	if missing := adapter.MissingExtensions(req.RequiredExtensions); len(missing) > 0 {
		return "missing extension " + strings.Join(missing, ", ")
	}
	return ""
}

// SelectSuitableAdapter returns the first adapter, in enumeration order, that
// meets req. There is no ranking: a later, more capable adapter never wins
// over an earlier suitable one.
func SelectSuitableAdapter(adapters []AdapterDescriptor, req SuitabilityRequirements) (*AdapterDescriptor, error) {
	reasons := make([]string, 0, len(adapters))
	for i := range adapters {
		adapter := &adapters[i]
		reason := req.Rejection(adapter)
		if reason == "" {
			core.LogInfo("Selected device: '%s'.", adapter.Name)
			core.LogInfo("GPU type is %s.", deviceTypeString(adapter.Type))
			core.LogInfo("Vulkan API version: %s", versionString(adapter.APIVersion))
			return adapter, nil
		}
		core.LogInfo("Skipping device '%s': %s.", adapter.Name, reason)
		reasons = append(reasons, fmt.Sprintf("%s: %s", adapter.Name, reason))
	}

	subject := "no adapters"
	if len(reasons) > 0 {
		subject = strings.Join(reasons, "; ")
	}
	return nil, core.NewStageError(StageSelect, core.ErrNoSuitableAdapter, subject, nil)
}
