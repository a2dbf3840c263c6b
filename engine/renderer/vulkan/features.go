package vulkan

import (
	"strings"

	vk "github.com/goki/vulkan"
)

type FeatureKind int

const (
	FeatureBase FeatureKind = iota
	FeatureShaderDrawParameters
	FeatureDynamicRendering
	FeatureExtendedDynamicState
)

// FeatureRequest is one node of a feature chain: a native feature struct,
// zeroed, with at most one flag enabled.
type FeatureRequest struct {
	Kind   FeatureKind
	Struct string
	Flag   string
}

func (r FeatureRequest) String() string {
	if r.Flag == "" {
		return r.Struct
	}
	return r.Struct + "{" + r.Flag + "}"
}

// native returns a freshly zeroed native struct for the node with its flag
// set. PNext is left nil; linking happens when the chain is consumed.
func (r FeatureRequest) native() interface{} {
	switch r.Kind {
	case FeatureShaderDrawParameters:
		return &vk.PhysicalDeviceVulkan11Features{
			SType:                vk.StructureTypePhysicalDeviceVulkan11Features,
			ShaderDrawParameters: vk.True,
		}
	case FeatureDynamicRendering:
		return &vk.PhysicalDeviceVulkan13Features{
			SType:            vk.StructureTypePhysicalDeviceVulkan13Features,
			DynamicRendering: vk.True,
		}
	case FeatureExtendedDynamicState:
		return &vk.PhysicalDeviceExtendedDynamicStateFeatures{
			SType:                vk.StructureTypePhysicalDeviceExtendedDynamicStateFeatures,
			ExtendedDynamicState: vk.True,
		}
	default:
		return &vk.PhysicalDeviceFeatures2{
			SType: vk.StructureTypePhysicalDeviceFeatures2,
		}
	}
}

// FeatureChain is the ordered list of feature requests handed to logical
// device creation. It is a value: nothing in it points at anything native.
type FeatureChain struct {
	nodes []FeatureRequest
}

// BuildFeatureChain returns the device feature request: the base features2
// node followed by shader draw parameters, dynamic rendering and extended
// dynamic state. The adapter's support for them is not checked.
func BuildFeatureChain(adapter *AdapterDescriptor) FeatureChain {
	return FeatureChain{nodes: []FeatureRequest{
		{Kind: FeatureBase, Struct: "PhysicalDeviceFeatures2"},
		{Kind: FeatureShaderDrawParameters, Struct: "PhysicalDeviceVulkan11Features", Flag: "shaderDrawParameters"},
		{Kind: FeatureDynamicRendering, Struct: "PhysicalDeviceVulkan13Features", Flag: "dynamicRendering"},
		{Kind: FeatureExtendedDynamicState, Struct: "PhysicalDeviceExtendedDynamicStateFeatures", Flag: "extendedDynamicState"},
	}}
}

// Nodes returns a copy of the requests in traversal order, head first.
func (c FeatureChain) Nodes() []FeatureRequest {
	return append([]FeatureRequest(nil), c.nodes...)
}

func (c FeatureChain) Len() int {
	return len(c.nodes)
}

func (c FeatureChain) Equal(other FeatureChain) bool {
	if len(c.nodes) != len(other.nodes) {
		return false
	}
	for i := range c.nodes {
		if c.nodes[i] != other.nodes[i] {
			return false
		}
	}
	return true
}

// EnabledFlags lists the enabled flag names in chain order.
func (c FeatureChain) EnabledFlags() []string {
	var flags []string
	for _, n := range c.nodes {
		if n.Flag != "" {
			flags = append(flags, n.Flag)
		}
	}
	return flags
}

func (c FeatureChain) String() string {
	parts := make([]string, len(c.nodes))
	for i, n := range c.nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, " -> ")
}
