package engine

import (
	"github.com/spaghettifunk/ignite/engine/renderer/vulkan"
)

// Game is the application running on top of the engine. Every hook is
// optional.
type Game struct {
	State        interface{}
	FnInitialize Initialize
	FnUpdate     Update
	FnOnResize   OnResize
	FnShutdown   Shutdown
}

type Initialize func(ctx *vulkan.VulkanContext) error
type Update func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
