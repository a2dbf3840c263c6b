package engine

import (
	"sync"
	"time"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/ignite/engine/assets"
	"github.com/spaghettifunk/ignite/engine/core"
	"github.com/spaghettifunk/ignite/engine/platform"
	"github.com/spaghettifunk/ignite/engine/renderer/vulkan"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released everything it owned
	EngineStageShutdown
)

func (s Stage) String() string {
	switch s {
	case EngineStageUninitialized:
		return "uninitialized"
	case EngineStageBooting:
		return "booting"
	case EngineStageBootComplete:
		return "boot complete"
	case EngineStageInitializing:
		return "initializing"
	case EngineStageInitialized:
		return "initialized"
	case EngineStageRunning:
		return "running"
	case EngineStageShuttingDown:
		return "shutting down"
	case EngineStageShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// windowSystem is what the engine needs from the platform layer.
type windowSystem interface {
	vulkan.Window
	Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error
	Shutdown() error
	PumpMessages()
	ShouldClose() bool
	GetInstanceProcAddress() unsafe.Pointer
}

type bootstrapFunc func(window windowSystem, cfg vulkan.BootstrapConfig, bytecode []byte) (*vulkan.VulkanContext, error)

type Engine struct {
	mu           sync.Mutex
	currentStage Stage

	gameInstance *Game
	config       *core.Config
	runID        core.RunID
	events       *core.EventBus
	platform     windowSystem
	bootstrap    bootstrapFunc
	context      *vulkan.VulkanContext
	watcher      *assets.ShaderWatcher
	clock        *core.Clock
	lastTime     time.Duration
	width        uint32
	height       uint32

	stop         chan struct{}
	stopOnce     sync.Once
	shutdownOnce sync.Once
	shutdownErr  error
}

func New(cfg *core.Config, g *Game) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	runID := core.NewRunID()
	core.ConfigureLogging(cfg.Logging, runID)

	events := core.NewEventBus()
	return newEngine(cfg, g, runID, events, platform.New(events), bootstrapVulkan), nil
}

func newEngine(cfg *core.Config, g *Game, runID core.RunID, events *core.EventBus, window windowSystem, bootstrap bootstrapFunc) *Engine {
	if g == nil {
		g = &Game{}
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       cfg,
		runID:        runID,
		events:       events,
		platform:     window,
		bootstrap:    bootstrap,
		clock:        core.NewClock(),
		width:        cfg.Application.Width,
		height:       cfg.Application.Height,
		stop:         make(chan struct{}),
	}
}

func bootstrapVulkan(window windowSystem, cfg vulkan.BootstrapConfig, bytecode []byte) (*vulkan.VulkanContext, error) {
	driver, err := vulkan.NewDriver(window.GetInstanceProcAddress())
	if err != nil {
		return nil, err
	}
	return vulkan.Bootstrap(driver, window, cfg, bytecode)
}

func (e *Engine) Stage() Stage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentStage
}

func (e *Engine) setStage(s Stage) {
	e.mu.Lock()
	e.currentStage = s
	e.mu.Unlock()
	core.LogDebug("Engine stage: %s", s)
}

// Context is the negotiated Vulkan context, nil before Initialize succeeds.
func (e *Engine) Context() *vulkan.VulkanContext {
	return e.context
}

func (e *Engine) Initialize() error {
	e.setStage(EngineStageBooting)
	core.LogInfo("Starting %s (run %s).", e.config.Application.Name, e.runID)

	// register some events
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)
	e.events.Register(core.EVENT_CODE_SHADER_CHANGED, e, e.onShaderChanged)
	e.setStage(EngineStageBootComplete)

	e.setStage(EngineStageInitializing)
	app := e.config.Application
	if err := e.platform.Startup(app.Name, 100, 100, app.Width, app.Height); err != nil {
		return err
	}

	bytecode, err := assets.LoadShaderBytecode(e.config.Shaders.Path)
	if err != nil {
		return err
	}

	ctx, err := e.bootstrap(e.platform, vulkan.NewBootstrapConfig(e.config), bytecode)
	if err != nil {
		if stage, ok := core.StageOf(err); ok {
			core.LogError("Vulkan startup failed at stage '%s': %s", stage, err)
		}
		return err
	}
	e.context = ctx

	if e.config.Shaders.Watch {
		watcher, err := assets.NewShaderWatcher(e.config.Shaders.Path)
		if err != nil {
			core.LogWarn("Shader hot reload notifications disabled: %s", err)
		} else {
			e.watcher = watcher
		}
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(ctx); err != nil {
			return err
		}
	}

	e.setStage(EngineStageInitialized)
	return nil
}

// Run pumps window events until the window closes, a quit event fires or
// Stop is called. Nothing is drawn.
func (e *Engine) Run() error {
	if s := e.Stage(); s != EngineStageInitialized {
		return errors.Newf("engine cannot run from stage %s", s)
	}
	e.setStage(EngineStageRunning)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for !e.stopped() {
		e.platform.PumpMessages()
		if e.platform.ShouldClose() {
			break
		}
		e.pollShaderChanges()

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		e.lastTime = currentTime

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta.Seconds()); err != nil {
				core.LogError("Game update failed, shutting down.")
				return err
			}
		}
	}

	e.clock.Stop()
	core.LogInfo("Engine ran for %s.", e.clock.Elapsed())
	return nil
}

// Stop asks Run to return. Safe from any goroutine.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stop) })
}

func (e *Engine) stopped() bool {
	select {
	case <-e.stop:
		return true
	default:
		return false
	}
}

func (e *Engine) pollShaderChanges() {
	if e.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-e.watcher.Changes():
			if !ok {
				return
			}
			var ctx core.EventContext
			ctx.Data.C[0] = change.Path
			ctx.Data.C[1] = change.Op.String()
			e.events.Fire(core.EVENT_CODE_SHADER_CHANGED, e.watcher, ctx)
		case err, ok := <-e.watcher.Errors():
			if !ok {
				return
			}
			core.LogWarn("shader watcher: %s", err)
		default:
			return
		}
	}
}

// Shutdown releases everything in reverse order of Initialize: game, shader
// watcher, Vulkan context, window. It must run on the thread that called
// Initialize; later calls return the first result.
func (e *Engine) Shutdown() error {
	e.shutdownOnce.Do(func() {
		e.setStage(EngineStageShuttingDown)
		e.Stop()

		var errs []error
		if e.gameInstance.FnShutdown != nil {
			if err := e.gameInstance.FnShutdown(); err != nil {
				errs = append(errs, err)
			}
		}
		if e.watcher != nil {
			if err := e.watcher.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if e.context != nil {
			e.context.Destroy()
		}
		e.events.Shutdown()
		if err := e.platform.Shutdown(); err != nil {
			errs = append(errs, err)
		}

		for _, err := range errs {
			e.shutdownErr = errors.CombineErrors(e.shutdownErr, err)
		}
		e.setStage(EngineStageShutdown)
		core.LogInfo("Engine shut down.")
	})
	return e.shutdownErr
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.Stop()
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	width := context.Data.U32[0]
	height := context.Data.U32[1]
	if width == e.width && height == e.height {
		return true
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)
	// The swapchain is never recreated.
	core.LogWarn("Framebuffer is now %dx%d; the swapchain keeps its startup extent.", width, height)

	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError("%s", err)
		}
	}
	return true
}

func (e *Engine) onShaderChanged(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	core.LogWarn("Shader %s changed (%s). Restart to rebuild the pipeline.", context.Data.C[0], context.Data.C[1])
	return true
}
