package vulkan

import (
	"sync"

	"github.com/spaghettifunk/ignite/engine/core"
)

type teardownStep struct {
	name    string
	release func()
}

// Teardown releases native objects in the opposite order of creation. Each
// created object pushes its release right after it is created; Run executes
// them last-in first-out, exactly once.
type Teardown struct {
	mu    sync.Mutex
	steps []teardownStep
	done  bool
}

func (t *Teardown) Push(name string, release func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		core.LogWarn("teardown already ran, releasing %s immediately", name)
		release()
		return
	}
	t.steps = append(t.steps, teardownStep{name: name, release: release})
}

func (t *Teardown) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.steps)
}

func (t *Teardown) Run() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	for i := len(t.steps) - 1; i >= 0; i-- {
		core.LogDebug("Destroying %s...", t.steps[i].name)
		t.steps[i].release()
	}
	t.steps = nil
}
