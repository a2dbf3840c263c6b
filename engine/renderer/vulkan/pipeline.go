package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ignite/engine/core"
)

/**
 * @brief Holds a Vulkan pipeline and its layout.
 */
type VulkanPipeline struct {
	/** @brief The internal pipeline handle. */
	Handle vk.Pipeline
	/** @brief The pipeline layout. */
	PipelineLayout vk.PipelineLayout
	/** @brief The state the pipeline was built from. */
	Descriptor PipelineDescriptor

	device    vk.Device
	destroyed bool
}

// PipelineDescriptor is the fixed-function state of the triangle pipeline.
// Viewport and scissor are dynamic; only their counts are fixed here. The
// pipeline renders into a single color attachment through dynamic rendering,
// so no render pass exists.
type PipelineDescriptor struct {
	VertexEntry   string
	FragmentEntry string
	ColorFormat   vk.Format

	Topology       vk.PrimitiveTopology
	PolygonMode    vk.PolygonMode
	CullMode       vk.CullModeFlagBits
	FrontFace      vk.FrontFace
	LineWidth      float32
	Samples        vk.SampleCountFlagBits
	BlendEnable    bool
	ColorWriteMask vk.ColorComponentFlags
	DynamicStates  []vk.DynamicState
	ViewportCount  uint32
	ScissorCount   uint32
}

func NewPipelineDescriptor(vertexEntry, fragmentEntry string, colorFormat vk.Format) PipelineDescriptor {
	return PipelineDescriptor{
		VertexEntry:   vertexEntry,
		FragmentEntry: fragmentEntry,
		ColorFormat:   colorFormat,
		Topology:      vk.PrimitiveTopologyTriangleList,
		PolygonMode:   vk.PolygonModeFill,
		CullMode:      vk.CullModeBackBit,
		FrontFace:     vk.FrontFaceClockwise,
		LineWidth:     1.0,
		Samples:       vk.SampleCount1Bit,
		BlendEnable:   false,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) |
			vk.ColorComponentFlags(vk.ColorComponentBBit) | vk.ColorComponentFlags(vk.ColorComponentABit),
		DynamicStates: []vk.DynamicState{
			vk.DynamicStateViewport,
			vk.DynamicStateScissor,
		},
		ViewportCount: 1,
		ScissorCount:  1,
	}
}

func boolToVk(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

// graphicsPipelineCreateInfo translates desc into the native create info and
// the rendering info to chain onto it.
func graphicsPipelineCreateInfo(desc PipelineDescriptor, module vk.ShaderModule, layout vk.PipelineLayout) (vk.GraphicsPipelineCreateInfo, vk.PipelineRenderingCreateInfo) {
	// Vertices come from the shader, so there is no vertex input.
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               desc.Topology,
		PrimitiveRestartEnable: vk.False,
	}

	// Viewport and scissor are set per frame.
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: desc.ViewportCount,
		ScissorCount:  desc.ScissorCount,
	}

	rasterizerCreateInfo := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             desc.PolygonMode,
		CullMode:                vk.CullModeFlags(desc.CullMode),
		FrontFace:               desc.FrontFace,
		DepthBiasEnable:         vk.False,
		LineWidth:               desc.LineWidth,
	}

	multisamplingCreateInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples:  desc.Samples,
		SampleShadingEnable:   vk.False,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}

	colorBlendAttachmentState := vk.PipelineColorBlendAttachmentState{
		BlendEnable:    boolToVk(desc.BlendEnable),
		ColorWriteMask: desc.ColorWriteMask,
	}

	colorBlendStateCreateInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachmentState},
	}

	dynamicStateCreateInfo := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(desc.DynamicStates)),
		PDynamicStates:    desc.DynamicStates,
	}

	stages := shaderStages(module, desc.VertexEntry, desc.FragmentEntry)

	pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizerCreateInfo,
		PMultisampleState:   &multisamplingCreateInfo,
		PDepthStencilState:  nil,
		PColorBlendState:    &colorBlendStateCreateInfo,
		PDynamicState:       &dynamicStateCreateInfo,
		PTessellationState:  nil,
		Layout:              layout,
		RenderPass:          vk.NullRenderPass,
		Subpass:             0,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}

	renderingInfo := vk.PipelineRenderingCreateInfo{
		SType:                   vk.StructureTypePipelineRenderingCreateInfo,
		ColorAttachmentCount:    1,
		PColorAttachmentFormats: []vk.Format{desc.ColorFormat},
	}

	return pipelineCreateInfo, renderingInfo
}

// AssemblePipeline builds the graphics pipeline and its empty layout from
// SPIR-V bytecode. The shader module only lives for the duration of the call.
func AssemblePipeline(driver Driver, device *VulkanDevice, bytecode []byte, desc PipelineDescriptor) (*VulkanPipeline, error) {
	module, err := CreateShaderModule(driver, device.LogicalDevice, bytecode)
	if err != nil {
		return nil, err
	}
	defer driver.DestroyShaderModule(device.LogicalDevice, module)

	// No descriptor sets and no push constants.
	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         0,
		PSetLayouts:            nil,
		PushConstantRangeCount: 0,
		PPushConstantRanges:    nil,
	}
	layout, err := driver.CreatePipelineLayout(device.LogicalDevice, &pipelineLayoutCreateInfo)
	if err != nil {
		return nil, core.NewStageError(StagePipeline, core.ErrPipelineCreation, "pipeline layout", err)
	}

	createInfo, renderingInfo := graphicsPipelineCreateInfo(desc, module, layout)
	handle, err := driver.CreateGraphicsPipeline(device.LogicalDevice, &createInfo, &renderingInfo)
	if err != nil {
		driver.DestroyPipelineLayout(device.LogicalDevice, layout)
		return nil, core.NewStageError(StagePipeline, core.ErrPipelineCreation, formatString(desc.ColorFormat), err)
	}

	core.LogDebug("Graphics pipeline created!")
	return &VulkanPipeline{
		Handle:         handle,
		PipelineLayout: layout,
		Descriptor:     desc,
		device:         device.LogicalDevice,
	}, nil
}

func (pipeline *VulkanPipeline) Destroy(driver Driver) {
	if pipeline.destroyed {
		return
	}
	pipeline.destroyed = true
	// Destroy pipeline
	driver.DestroyPipeline(pipeline.device, pipeline.Handle)
	pipeline.Handle = vk.NullPipeline
	// Destroy layout
	driver.DestroyPipelineLayout(pipeline.device, pipeline.PipelineLayout)
	pipeline.PipelineLayout = vk.NullPipelineLayout
}
