package vulkan

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ignite/engine/core"
)

func TestNewPipelineDescriptor(t *testing.T) {
	desc := NewPipelineDescriptor("vertMain", "fragMain", vk.FormatB8g8r8a8Srgb)

	if desc.Topology != vk.PrimitiveTopologyTriangleList || desc.PolygonMode != vk.PolygonModeFill {
		t.Errorf("topology = %v, polygon mode = %v", desc.Topology, desc.PolygonMode)
	}
	if desc.CullMode != vk.CullModeBackBit || desc.FrontFace != vk.FrontFaceClockwise {
		t.Errorf("cull = %v, front face = %v", desc.CullMode, desc.FrontFace)
	}
	if desc.LineWidth != 1.0 || desc.Samples != vk.SampleCount1Bit || desc.BlendEnable {
		t.Errorf("line width = %v, samples = %v, blend = %v", desc.LineWidth, desc.Samples, desc.BlendEnable)
	}
	if len(desc.DynamicStates) != 2 || desc.DynamicStates[0] != vk.DynamicStateViewport || desc.DynamicStates[1] != vk.DynamicStateScissor {
		t.Errorf("dynamic states = %v, want viewport and scissor", desc.DynamicStates)
	}
	if desc.ViewportCount != 1 || desc.ScissorCount != 1 {
		t.Errorf("viewport count = %d, scissor count = %d", desc.ViewportCount, desc.ScissorCount)
	}
}

func TestGraphicsPipelineCreateInfo(t *testing.T) {
	desc := NewPipelineDescriptor("vertMain", "fragMain", vk.FormatB8g8r8a8Srgb)
	info, rendering := graphicsPipelineCreateInfo(desc, vk.NullShaderModule, vk.NullPipelineLayout)

	if info.StageCount != 2 || len(info.PStages) != 2 {
		t.Fatalf("stage count = %d", info.StageCount)
	}
	if info.PStages[0].Stage != vk.ShaderStageVertexBit || info.PStages[0].PName != "vertMain\x00" {
		t.Errorf("vertex stage = %v %q", info.PStages[0].Stage, info.PStages[0].PName)
	}
	if info.PStages[1].Stage != vk.ShaderStageFragmentBit || info.PStages[1].PName != "fragMain\x00" {
		t.Errorf("fragment stage = %v %q", info.PStages[1].Stage, info.PStages[1].PName)
	}
	if info.PVertexInputState.VertexBindingDescriptionCount != 0 || info.PVertexInputState.VertexAttributeDescriptionCount != 0 {
		t.Error("vertex input state is not empty")
	}
	if info.PDepthStencilState != nil {
		t.Error("depth stencil state is set")
	}
	if info.RenderPass != vk.NullRenderPass {
		t.Error("render pass is set with dynamic rendering")
	}
	if info.PColorBlendState.AttachmentCount != 1 || info.PColorBlendState.PAttachments[0].BlendEnable != vk.False {
		t.Errorf("color blend = %+v", info.PColorBlendState)
	}
	if info.PDynamicState.DynamicStateCount != 2 {
		t.Errorf("dynamic state count = %d, want 2", info.PDynamicState.DynamicStateCount)
	}
	if info.PRasterizationState.CullMode != vk.CullModeFlags(vk.CullModeBackBit) {
		t.Errorf("cull mode = %v", info.PRasterizationState.CullMode)
	}

	if rendering.ColorAttachmentCount != 1 || len(rendering.PColorAttachmentFormats) != 1 ||
		rendering.PColorAttachmentFormats[0] != vk.FormatB8g8r8a8Srgb {
		t.Errorf("rendering info = %+v", rendering)
	}
}

func TestAssemblePipeline(t *testing.T) {
	d := newFakeDriver()
	desc := NewPipelineDescriptor("vertMain", "fragMain", vk.FormatB8g8r8a8Srgb)

	pipeline, err := AssemblePipeline(d, &VulkanDevice{}, triangleBytecode(), desc)
	if err != nil {
		t.Fatalf("AssemblePipeline() error = %v", err)
	}

	want := []string{"CreateShaderModule", "CreatePipelineLayout", "CreateGraphicsPipeline", "DestroyShaderModule"}
	if len(d.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", d.calls, want)
	}
	for i := range want {
		if d.calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, d.calls[i], want[i])
		}
	}
	if d.shaderInfo.CodeSize != 16 || len(d.shaderInfo.PCode) != 4 || d.shaderInfo.PCode[0] != spirvMagic {
		t.Errorf("shader module info = %+v", d.shaderInfo)
	}
	if d.renderingInfo.PColorAttachmentFormats[0] != vk.FormatB8g8r8a8Srgb {
		t.Errorf("rendering format = %v", d.renderingInfo.PColorAttachmentFormats[0])
	}
	if pipeline.Descriptor.VertexEntry != "vertMain" {
		t.Errorf("Descriptor = %+v", pipeline.Descriptor)
	}

	d.calls = nil
	pipeline.Destroy(d)
	pipeline.Destroy(d)
	if len(d.calls) != 2 || d.calls[0] != "DestroyPipeline" || d.calls[1] != "DestroyPipelineLayout" {
		t.Errorf("Destroy() calls = %v, want pipeline then layout once", d.calls)
	}
}

func TestAssemblePipeline_Failures(t *testing.T) {
	tests := []struct {
		name     string
		bytecode []byte
		failCall string
		wantKind error
		// calls that must have happened
		wantCalls []string
	}{
		{
			name:     "empty bytecode",
			bytecode: nil,
			wantKind: core.ErrShaderModuleCreation,
		},
		{
			name:     "length not a multiple of four",
			bytecode: []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00},
			wantKind: core.ErrShaderModuleCreation,
		},
		{
			name:      "driver rejects module",
			bytecode:  triangleBytecode(),
			failCall:  "CreateShaderModule",
			wantKind:  core.ErrShaderModuleCreation,
			wantCalls: []string{"CreateShaderModule"},
		},
		{
			name:      "layout fails",
			bytecode:  triangleBytecode(),
			failCall:  "CreatePipelineLayout",
			wantKind:  core.ErrPipelineCreation,
			wantCalls: []string{"CreateShaderModule", "CreatePipelineLayout", "DestroyShaderModule"},
		},
		{
			name:      "pipeline fails",
			bytecode:  triangleBytecode(),
			failCall:  "CreateGraphicsPipeline",
			wantKind:  core.ErrPipelineCreation,
			wantCalls: []string{"CreateShaderModule", "CreatePipelineLayout", "CreateGraphicsPipeline", "DestroyPipelineLayout", "DestroyShaderModule"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDriver()
			if tt.failCall != "" {
				d.fail[tt.failCall] = &ResultError{Call: tt.failCall, Result: vk.ErrorInitializationFailed}
			}
			desc := NewPipelineDescriptor("vertMain", "fragMain", vk.FormatB8g8r8a8Srgb)

			pipeline, err := AssemblePipeline(d, &VulkanDevice{}, tt.bytecode, desc)
			if pipeline != nil {
				t.Error("AssemblePipeline() returned a pipeline on failure")
			}
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("error = %v, want %v", err, tt.wantKind)
			}
			if stage, _ := core.StageOf(err); stage != StagePipeline {
				t.Errorf("stage = %q, want %q", stage, StagePipeline)
			}
			if len(d.calls) != len(tt.wantCalls) {
				t.Fatalf("calls = %v, want %v", d.calls, tt.wantCalls)
			}
			for i := range tt.wantCalls {
				if d.calls[i] != tt.wantCalls[i] {
					t.Errorf("calls[%d] = %q, want %q", i, d.calls[i], tt.wantCalls[i])
				}
			}
		})
	}
}

func TestShaderWords(t *testing.T) {
	words, err := ShaderWords(triangleBytecode())
	if err != nil {
		t.Fatalf("ShaderWords() error = %v", err)
	}
	if len(words) != 4 || words[0] != spirvMagic || words[1] != 0x00010000 {
		t.Errorf("ShaderWords() = %#x", words)
	}

	// Misaligned input is copied, not reinterpreted in place.
	buf := append([]byte{0xff}, triangleBytecode()...)
	words, err = ShaderWords(buf[1:])
	if err != nil || words[0] != spirvMagic {
		t.Errorf("ShaderWords(misaligned) = %#x, %v", words, err)
	}
}
