package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ignite/engine/core"
)

const spirvMagic uint32 = 0x07230203

// ShaderWords reinterprets SPIR-V bytecode as the 32 bit words the driver
// expects. The bytes are copied so the result is always word aligned.
func ShaderWords(code []byte) ([]uint32, error) {
	if len(code) == 0 {
		return nil, core.NewStageError(StagePipeline, core.ErrShaderModuleCreation, "bytecode is empty", nil)
	}
	if len(code)%4 != 0 {
		return nil, core.NewStageError(StagePipeline, core.ErrShaderModuleCreation,
			fmt.Sprintf("bytecode length %d is not a multiple of 4", len(code)), nil)
	}
	words := make([]uint32, len(code)/4)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(code)), code)
	if words[0] != spirvMagic {
		core.LogWarn("Shader bytecode does not start with the SPIR-V magic number (0x%08x).", words[0])
	}
	return words, nil
}

// CreateShaderModule wraps code in a shader module on device. The caller
// destroys the module once the pipeline using it exists.
func CreateShaderModule(driver Driver, device vk.Device, code []byte) (vk.ShaderModule, error) {
	words, err := ShaderWords(code)
	if err != nil {
		return vk.NullShaderModule, err
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    words,
	}
	module, err := driver.CreateShaderModule(device, &createInfo)
	if err != nil {
		return vk.NullShaderModule, core.NewStageError(StagePipeline, core.ErrShaderModuleCreation,
			fmt.Sprintf("%d bytes", len(code)), err)
	}
	return module, nil
}

// shaderStages returns the vertex and fragment stages, both taken from the
// same module.
func shaderStages(module vk.ShaderModule, vertexEntry, fragmentEntry string) []vk.PipelineShaderStageCreateInfo {
	return []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: module,
			PName:  VulkanSafeString(vertexEntry),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: module,
			PName:  VulkanSafeString(fragmentEntry),
		},
	}
}
