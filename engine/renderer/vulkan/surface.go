package vulkan

import (
	"math"
	"strconv"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ignite/engine/core"
)

// undefinedExtent in currentExtent means the surface size follows the swapchain.
const undefinedExtent = math.MaxUint32

// SurfaceConfiguration is the negotiated swapchain shape.
type SurfaceConfiguration struct {
	Format      vk.Format
	ColorSpace  vk.ColorSpace
	PresentMode vk.PresentMode
	Extent      vk.Extent2D
	ImageCount  uint32
	// Transform the surface reports as current, passed on unchanged.
	PreTransform vk.SurfaceTransformFlagBits
}

type SurfaceSupport struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// ChooseSurfaceFormat returns the first B8G8R8A8_SRGB / SRGB_NONLINEAR entry,
// or the first entry when there is none. available must not be empty.
func ChooseSurfaceFormat(available []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range available {
		if format.Format == vk.FormatB8g8r8a8Srgb && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	return available[0]
}

// ChoosePresentMode prefers mailbox and falls back to FIFO, which every
// surface supports.
func ChoosePresentMode(available []vk.PresentMode) vk.PresentMode {
	for _, mode := range available {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	return vk.PresentModeFifo
}

// extentUndefined reports whether the surface leaves the extent to the swapchain.
func extentUndefined(extent vk.Extent2D) bool {
	return extent.Width == undefinedExtent && extent.Height == undefinedExtent
}

// ChooseSwapExtent returns the current extent unless the surface leaves it
// undefined, in which case the framebuffer size is clamped per axis into the
// supported range.
func ChooseSwapExtent(capabilities vk.SurfaceCapabilities, framebufferWidth, framebufferHeight uint32) vk.Extent2D {
	if !extentUndefined(capabilities.CurrentExtent) {
		return capabilities.CurrentExtent
	}
	return vk.Extent2D{
		Width:  MathClamp(framebufferWidth, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: MathClamp(framebufferHeight, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

// ChooseImageCount asks for triple buffering, or the surface minimum if
// that is higher. A MaxImageCount of 0 means no upper bound.
func ChooseImageCount(capabilities vk.SurfaceCapabilities) uint32 {
	count := capabilities.MinImageCount
	if count < 3 {
		count = 3
	}
	if capabilities.MaxImageCount > 0 && count > capabilities.MaxImageCount {
		count = capabilities.MaxImageCount
	}
	return count
}

// QuerySurfaceSupport reads capabilities, formats and present modes of
// surface on adapter. A surface without formats or present modes cannot host
// a swapchain and is reported as a failed query.
func QuerySurfaceSupport(driver Driver, adapter *AdapterDescriptor, surface vk.Surface) (*SurfaceSupport, error) {
	capabilities, err := driver.SurfaceCapabilities(adapter, surface)
	if err != nil {
		return nil, core.NewStageError(StageNegotiate, core.ErrSurfaceCapabilityQuery, "capabilities", err)
	}
	formats, err := driver.SurfaceFormats(adapter, surface)
	if err != nil {
		return nil, core.NewStageError(StageNegotiate, core.ErrSurfaceCapabilityQuery, "formats", err)
	}
	if len(formats) == 0 {
		return nil, core.NewStageError(StageNegotiate, core.ErrSurfaceCapabilityQuery, "surface reports no formats", nil)
	}
	modes, err := driver.SurfacePresentModes(adapter, surface)
	if err != nil {
		return nil, core.NewStageError(StageNegotiate, core.ErrSurfaceCapabilityQuery, "present modes", err)
	}
	if len(modes) == 0 {
		return nil, core.NewStageError(StageNegotiate, core.ErrSurfaceCapabilityQuery, "surface reports no present modes", nil)
	}
	return &SurfaceSupport{
		Capabilities: capabilities,
		Formats:      formats,
		PresentModes: modes,
	}, nil
}

// Negotiate composes the four choices. framebufferSize is only called when
// the surface does not dictate the extent.
func Negotiate(support *SurfaceSupport, framebufferSize func() (uint32, uint32)) SurfaceConfiguration {
	format := ChooseSurfaceFormat(support.Formats)

	var width, height uint32
	if extentUndefined(support.Capabilities.CurrentExtent) {
		width, height = framebufferSize()
	}

	cfg := SurfaceConfiguration{
		Format:       format.Format,
		ColorSpace:   format.ColorSpace,
		PresentMode:  ChoosePresentMode(support.PresentModes),
		Extent:       ChooseSwapExtent(support.Capabilities, width, height),
		ImageCount:   ChooseImageCount(support.Capabilities),
		PreTransform: support.Capabilities.CurrentTransform,
	}

	core.LogInfo("Surface format %s / %s, present mode %s, extent %dx%d, %d images.",
		formatString(cfg.Format), colorSpaceString(cfg.ColorSpace), presentModeString(cfg.PresentMode),
		cfg.Extent.Width, cfg.Extent.Height, cfg.ImageCount)
	return cfg
}

func formatString(f vk.Format) string {
	switch f {
	case vk.FormatB8g8r8a8Srgb:
		return "B8G8R8A8_SRGB"
	case vk.FormatB8g8r8a8Unorm:
		return "B8G8R8A8_UNORM"
	case vk.FormatR8g8b8a8Srgb:
		return "R8G8B8A8_SRGB"
	case vk.FormatR8g8b8a8Unorm:
		return "R8G8B8A8_UNORM"
	case vk.FormatUndefined:
		return "UNDEFINED"
	default:
		return "VkFormat(" + strconv.FormatInt(int64(f), 10) + ")"
	}
}

func colorSpaceString(c vk.ColorSpace) string {
	if c == vk.ColorSpaceSrgbNonlinear {
		return "SRGB_NONLINEAR"
	}
	return "VkColorSpace(" + strconv.FormatInt(int64(c), 10) + ")"
}

func presentModeString(m vk.PresentMode) string {
	switch m {
	case vk.PresentModeImmediate:
		return "IMMEDIATE"
	case vk.PresentModeMailbox:
		return "MAILBOX"
	case vk.PresentModeFifo:
		return "FIFO"
	case vk.PresentModeFifoRelaxed:
		return "FIFO_RELAXED"
	default:
		return "VkPresentMode(" + strconv.FormatInt(int64(m), 10) + ")"
	}
}
