package testbed

import (
	"time"

	"github.com/spaghettifunk/ignite/engine"
	"github.com/spaghettifunk/ignite/engine/core"
	"github.com/spaghettifunk/ignite/engine/renderer/vulkan"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	width  uint32
	height uint32

	uptime      float64
	lastReport  float64
	reportEvery float64
}

func NewTestGame() *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			State: &gameState{
				reportEvery: (30 * time.Second).Seconds(),
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

// Initialize reports what the negotiation settled on.
func (g *TestGame) Initialize(ctx *vulkan.VulkanContext) error {
	if ctx == nil {
		return nil
	}
	state := g.state()
	state.width = ctx.SurfaceConfig.Extent.Width
	state.height = ctx.SurfaceConfig.Extent.Height

	core.Logger().Info("context ready",
		"adapter", ctx.Adapter.Name,
		"graphics_family", ctx.Queues.GraphicsIndex,
		"present_family", ctx.Queues.PresentIndex,
		"features", ctx.Device.Features.String(),
		"swapchain_images", ctx.Swapchain.ImageCount(),
		"extent", ctx.Swapchain.Extent,
	)
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.state()
	state.uptime += deltaTime
	if state.uptime-state.lastReport >= state.reportEvery {
		state.lastReport = state.uptime
		core.LogInfo("Testbed up for %.0fs at %dx%d.", state.uptime, state.width, state.height)
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.state()
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("Testbed shutting down after %.1fs.", g.state().uptime)
	return nil
}
