package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ignite/engine/core"
)

// VulkanSwapchain owns its images and one view per image. All of them go
// away together, before the device that created them.
type VulkanSwapchain struct {
	Handle      vk.Swapchain
	ImageFormat vk.SurfaceFormat
	Extent      vk.Extent2D
	PresentMode vk.PresentMode
	Images      []vk.Image
	Views       []vk.ImageView

	device    vk.Device
	destroyed bool
}

func (vs *VulkanSwapchain) ImageCount() uint32 {
	return uint32(len(vs.Images))
}

// swapchainCreateInfo describes the swapchain for config: exclusive sharing,
// clipped, opaque, and no previous swapchain since recreation is not
// supported.
func swapchainCreateInfo(surface vk.Surface, config SurfaceConfiguration) vk.SwapchainCreateInfo {
	return vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               surface,
		MinImageCount:         config.ImageCount,
		ImageFormat:           config.Format,
		ImageColorSpace:       config.ColorSpace,
		ImageExtent:           config.Extent,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      vk.SharingModeExclusive,
		QueueFamilyIndexCount: 0,
		PQueueFamilyIndices:   nil,
		PreTransform:          config.PreTransform,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           config.PresentMode,
		Clipped:               vk.True,
		OldSwapchain:          vk.NullSwapchain,
	}
}

// imageViewCreateInfo is a 2D color view over the whole image: identity
// swizzle, one mip level, one layer.
func imageViewCreateInfo(image vk.Image, format vk.Format) vk.ImageViewCreateInfo {
	return vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
}

// BuildSwapchain creates the swapchain for config and a view for each of its
// images. On failure everything created so far is released.
func BuildSwapchain(driver Driver, device *VulkanDevice, surface vk.Surface, config SurfaceConfiguration) (*VulkanSwapchain, error) {
	createInfo := swapchainCreateInfo(surface, config)

	handle, err := driver.CreateSwapchain(device.LogicalDevice, &createInfo)
	if err != nil {
		return nil, core.NewStageError(StageSwapchain, core.ErrSwapchainCreation,
			fmt.Sprintf("%dx%d %s", config.Extent.Width, config.Extent.Height, formatString(config.Format)), err)
	}

	swapchain := &VulkanSwapchain{
		Handle:      handle,
		ImageFormat: vk.SurfaceFormat{Format: config.Format, ColorSpace: config.ColorSpace},
		Extent:      config.Extent,
		PresentMode: config.PresentMode,
		device:      device.LogicalDevice,
	}

	images, err := driver.SwapchainImages(device.LogicalDevice, handle)
	if err != nil {
		swapchain.Destroy(driver)
		return nil, core.NewStageError(StageSwapchain, core.ErrSwapchainCreation, "swapchain images", err)
	}
	swapchain.Images = images
	swapchain.Views = make([]vk.ImageView, 0, len(images))

	for i, image := range images {
		viewInfo := imageViewCreateInfo(image, config.Format)
		view, err := driver.CreateImageView(device.LogicalDevice, &viewInfo)
		if err != nil {
			swapchain.Destroy(driver)
			return nil, core.NewStageError(StageSwapchain, core.ErrSwapchainCreation,
				fmt.Sprintf("image view %d", i), err)
		}
		swapchain.Views = append(swapchain.Views, view)
	}

	core.LogInfo("Swapchain created successfully with %d images.", len(images))
	return swapchain, nil
}

func (vs *VulkanSwapchain) Destroy(driver Driver) {
	if vs.destroyed {
		return
	}
	vs.destroyed = true
	driver.DeviceWaitIdle(vs.device)

	// Only destroy the views, not the images, since those are owned by the swapchain and are thus
	// destroyed when it is.
	for i := len(vs.Views) - 1; i >= 0; i-- {
		driver.DestroyImageView(vs.device, vs.Views[i])
	}
	vs.Views = nil
	vs.Images = nil

	driver.DestroySwapchain(vs.device, vs.Handle)
	vs.Handle = vk.NullSwapchain
}
