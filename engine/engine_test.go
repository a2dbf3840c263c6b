package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/ignite/engine/core"
	"github.com/spaghettifunk/ignite/engine/renderer/vulkan"
)

type fakeWindow struct {
	events      *core.EventBus
	startupErr  error
	startups    int
	shutdowns   int
	pumps       int
	quitAfter   int
	closeAfter  int
	startupName string
}

func (w *fakeWindow) RequiredInstanceExtensions() []string { return []string{"VK_KHR_surface"} }

func (w *fakeWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	return vk.NullSurface, nil
}

func (w *fakeWindow) FramebufferSize() (uint32, uint32) { return 800, 600 }

func (w *fakeWindow) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	w.startups++
	w.startupName = applicationName
	return w.startupErr
}

func (w *fakeWindow) Shutdown() error {
	w.shutdowns++
	return nil
}

func (w *fakeWindow) PumpMessages() {
	w.pumps++
	if w.quitAfter > 0 && w.pumps == w.quitAfter {
		w.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, w, core.EventContext{})
	}
}

func (w *fakeWindow) ShouldClose() bool {
	return w.closeAfter > 0 && w.pumps >= w.closeAfter
}

func (w *fakeWindow) GetInstanceProcAddress() unsafe.Pointer { return nil }

type bootstrapRecorder struct {
	calls    int
	cfg      vulkan.BootstrapConfig
	bytecode []byte
	err      error
}

func (b *bootstrapRecorder) bootstrap(window windowSystem, cfg vulkan.BootstrapConfig, bytecode []byte) (*vulkan.VulkanContext, error) {
	b.calls++
	b.cfg = cfg
	b.bytecode = bytecode
	return nil, b.err
}

func testConfig(t *testing.T) *core.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "slang.spv")
	if err := os.WriteFile(path, []byte{0x03, 0x02, 0x23, 0x07}, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := core.DefaultConfig()
	cfg.Shaders.Path = path
	cfg.Shaders.Watch = false
	return cfg
}

func newTestEngine(t *testing.T, g *Game) (*Engine, *fakeWindow, *bootstrapRecorder) {
	t.Helper()
	events := core.NewEventBus()
	w := &fakeWindow{events: events}
	b := &bootstrapRecorder{}
	return newEngine(testConfig(t), g, core.NewRunID(), events, w, b.bootstrap), w, b
}

func TestEngine_Initialize(t *testing.T) {
	var initialized bool
	e, w, b := newTestEngine(t, &Game{
		FnInitialize: func(ctx *vulkan.VulkanContext) error {
			initialized = true
			return nil
		},
	})

	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if e.Stage() != EngineStageInitialized {
		t.Errorf("Stage() = %s, want initialized", e.Stage())
	}
	if w.startups != 1 || w.startupName != "Hello Triangle" {
		t.Errorf("window startups = %d with name %q", w.startups, w.startupName)
	}
	if b.calls != 1 || b.cfg.VertexEntry != "vertMain" || len(b.bytecode) != 4 {
		t.Errorf("bootstrap calls = %d, cfg = %+v, bytecode = %d bytes", b.calls, b.cfg, len(b.bytecode))
	}
	if !initialized {
		t.Error("game FnInitialize not called")
	}
}

func TestEngine_InitializeFailures(t *testing.T) {
	t.Run("bootstrap fails", func(t *testing.T) {
		e, w, b := newTestEngine(t, nil)
		b.err = core.NewStageError(vulkan.StageSelect, core.ErrNoSuitableAdapter, "no adapters", nil)

		err := e.Initialize()
		if !errors.Is(err, core.ErrNoSuitableAdapter) {
			t.Fatalf("Initialize() error = %v, want ErrNoSuitableAdapter", err)
		}
		if err := e.Shutdown(); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
		if w.shutdowns != 1 || e.Stage() != EngineStageShutdown {
			t.Errorf("window shutdowns = %d, stage = %s", w.shutdowns, e.Stage())
		}
	})

	t.Run("shader missing", func(t *testing.T) {
		e, _, b := newTestEngine(t, nil)
		e.config.Shaders.Path = filepath.Join(t.TempDir(), "missing.spv")

		if err := e.Initialize(); err == nil {
			t.Fatal("Initialize() error = nil")
		}
		if b.calls != 0 {
			t.Error("bootstrap ran without bytecode")
		}
	})

	t.Run("window fails", func(t *testing.T) {
		e, w, b := newTestEngine(t, nil)
		w.startupErr = errors.New("no display")

		if err := e.Initialize(); err == nil {
			t.Fatal("Initialize() error = nil")
		}
		if b.calls != 0 {
			t.Error("bootstrap ran without a window")
		}
	})
}

func TestEngine_Run(t *testing.T) {
	t.Run("not initialized", func(t *testing.T) {
		e, _, _ := newTestEngine(t, nil)
		if err := e.Run(); err == nil {
			t.Error("Run() before Initialize error = nil")
		}
	})

	t.Run("quit event", func(t *testing.T) {
		updates := 0
		e, w, _ := newTestEngine(t, &Game{FnUpdate: func(float64) error { updates++; return nil }})
		w.quitAfter = 3
		if err := e.Initialize(); err != nil {
			t.Fatalf("Initialize() error = %v", err)
		}

		if err := e.Run(); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if w.pumps != 3 || updates != 3 {
			t.Errorf("pumps = %d, updates = %d, want 3 and 3", w.pumps, updates)
		}
	})

	t.Run("window closed", func(t *testing.T) {
		e, w, _ := newTestEngine(t, nil)
		w.closeAfter = 2
		if err := e.Initialize(); err != nil {
			t.Fatalf("Initialize() error = %v", err)
		}
		if err := e.Run(); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if w.pumps != 2 {
			t.Errorf("pumps = %d, want 2", w.pumps)
		}
	})

	t.Run("update fails", func(t *testing.T) {
		boom := errors.New("boom")
		e, _, _ := newTestEngine(t, &Game{FnUpdate: func(float64) error { return boom }})
		if err := e.Initialize(); err != nil {
			t.Fatalf("Initialize() error = %v", err)
		}
		if err := e.Run(); err != boom {
			t.Errorf("Run() error = %v, want boom", err)
		}
	})

	t.Run("stopped before run", func(t *testing.T) {
		e, w, _ := newTestEngine(t, nil)
		if err := e.Initialize(); err != nil {
			t.Fatalf("Initialize() error = %v", err)
		}
		e.Stop()
		e.Stop()
		if err := e.Run(); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if w.pumps != 0 {
			t.Errorf("pumps = %d after Stop, want 0", w.pumps)
		}
	})
}

func TestEngine_ShutdownIsIdempotent(t *testing.T) {
	shutdowns := 0
	e, w, _ := newTestEngine(t, &Game{FnShutdown: func() error { shutdowns++; return nil }})
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := e.Shutdown(); err != nil {
			t.Fatalf("Shutdown() error = %v", err)
		}
	}
	if shutdowns != 1 || w.shutdowns != 1 {
		t.Errorf("game shutdowns = %d, window shutdowns = %d, want 1 and 1", shutdowns, w.shutdowns)
	}
	if e.Stage() != EngineStageShutdown {
		t.Errorf("Stage() = %s, want shutdown", e.Stage())
	}
}

func TestEngine_OnResized(t *testing.T) {
	var gotW, gotH uint32
	calls := 0
	e, _, _ := newTestEngine(t, &Game{FnOnResize: func(w, h uint32) error {
		calls++
		gotW, gotH = w, h
		return nil
	}})
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	var ctx core.EventContext
	ctx.Data.U32[0] = 1024
	ctx.Data.U32[1] = 768
	if !e.events.Fire(core.EVENT_CODE_RESIZED, nil, ctx) {
		t.Fatal("resize event not handled")
	}
	if e.width != 1024 || e.height != 768 {
		t.Errorf("framebuffer size = %dx%d, want 1024x768", e.width, e.height)
	}
	if gotW != 1024 || gotH != 768 {
		t.Errorf("FnOnResize got %dx%d", gotW, gotH)
	}

	e.events.Fire(core.EVENT_CODE_RESIZED, nil, ctx)
	if calls != 1 {
		t.Errorf("FnOnResize calls = %d after a repeated size, want 1", calls)
	}
}

func TestEngine_ShaderWatch(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)
	e.config.Shaders.Watch = true
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if e.watcher == nil {
		t.Fatal("shader watcher not started")
	}
	e.pollShaderChanges()

	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if _, ok := <-e.watcher.Changes(); ok {
		t.Error("watcher still open after Shutdown")
	}
}
