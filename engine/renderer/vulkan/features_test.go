package vulkan

import (
	"strings"
	"testing"

	vk "github.com/goki/vulkan"
)

func TestBuildFeatureChain(t *testing.T) {
	d := newFakeDriver()
	chain := BuildFeatureChain(&d.adapters[0])

	if chain.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", chain.Len())
	}
	if !chain.Equal(BuildFeatureChain(&d.adapters[0])) {
		t.Error("two chains built for the same adapter differ")
	}

	want := []string{"shaderDrawParameters", "dynamicRendering", "extendedDynamicState"}
	got := chain.EnabledFlags()
	if len(got) != len(want) {
		t.Fatalf("EnabledFlags() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("EnabledFlags()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if nodes := chain.Nodes(); nodes[0].Kind != FeatureBase || nodes[0].Flag != "" {
		t.Errorf("head = %v, want an empty features2 node", nodes[0])
	}
	if !strings.HasPrefix(chain.String(), "PhysicalDeviceFeatures2 -> PhysicalDeviceVulkan11Features{shaderDrawParameters}") {
		t.Errorf("String() = %q", chain.String())
	}
}

func TestFeatureChain_NodesIsCopy(t *testing.T) {
	chain := BuildFeatureChain(nil)
	nodes := chain.Nodes()
	nodes[1].Flag = "tampered"

	if chain.Nodes()[1].Flag != "shaderDrawParameters" {
		t.Error("mutating Nodes() changed the chain")
	}
	if chain.Equal(FeatureChain{nodes: nodes}) {
		t.Error("Equal() = true for a different chain")
	}
}

func TestFeatureRequest_Native(t *testing.T) {
	nodes := BuildFeatureChain(nil).Nodes()

	base, ok := nodes[0].native().(*vk.PhysicalDeviceFeatures2)
	if !ok || base.SType != vk.StructureTypePhysicalDeviceFeatures2 || base.PNext != nil {
		t.Errorf("base node = %#v", nodes[0].native())
	}

	v11, ok := nodes[1].native().(*vk.PhysicalDeviceVulkan11Features)
	if !ok || v11.ShaderDrawParameters != vk.True {
		t.Errorf("vulkan 1.1 node = %#v", nodes[1].native())
	}

	v13, ok := nodes[2].native().(*vk.PhysicalDeviceVulkan13Features)
	if !ok || v13.DynamicRendering != vk.True {
		t.Errorf("vulkan 1.3 node = %#v", nodes[2].native())
	}

	eds, ok := nodes[3].native().(*vk.PhysicalDeviceExtendedDynamicStateFeatures)
	if !ok || eds.ExtendedDynamicState != vk.True {
		t.Errorf("extended dynamic state node = %#v", nodes[3].native())
	}
}
