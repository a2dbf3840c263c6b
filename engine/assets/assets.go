package assets

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/ignite/engine/core"
)

// LoadShaderBytecode reads a compiled SPIR-V file.
func LoadShaderBytecode(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read shader bytecode %s", path)
	}
	core.LogDebug("Loaded shader bytecode %s (%d bytes).", path, len(data))
	return data, nil
}

// ShaderChange is a change on disk of the watched shader file.
type ShaderChange struct {
	Path string
	Op   fsnotify.Op
	At   time.Time
}

// ShaderWatcher reports changes of a single shader file. The directory is
// watched rather than the file so that editors replacing the file through a
// rename are still seen.
type ShaderWatcher struct {
	path string

	fsnotify *fsnotify.Watcher
	changes  chan ShaderChange
	errors   chan error

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewShaderWatcher(path string) (*ShaderWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", path)
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create watcher")
	}
	dir := filepath.Dir(abs)
	if err := fsWatch.Add(dir); err != nil {
		fsWatch.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", dir)
	}

	sw := &ShaderWatcher{
		path:     abs,
		fsnotify: fsWatch,
		changes:  make(chan ShaderChange, 16),
		errors:   make(chan error, 1),
		done:     make(chan struct{}),
	}
	sw.wg.Add(1)
	go sw.start()

	core.LogInfo("Watching shader %s for changes.", abs)
	return sw, nil
}

func (sw *ShaderWatcher) Path() string {
	return sw.path
}

// Changes is closed by Close.
func (sw *ShaderWatcher) Changes() <-chan ShaderChange {
	return sw.changes
}

// Errors is closed by Close. Errors nobody reads in time are dropped after
// being logged.
func (sw *ShaderWatcher) Errors() <-chan error {
	return sw.errors
}

func (sw *ShaderWatcher) start() {
	defer sw.wg.Done()
	for {
		select {
		case e, ok := <-sw.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != sw.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case sw.changes <- ShaderChange{Path: sw.path, Op: e.Op, At: time.Now()}:
			case <-sw.done:
				return
			}

		case err, ok := <-sw.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("shader watcher: %s", err)
			select {
			case sw.errors <- err:
			default:
			}

		case <-sw.done:
			return
		}
	}
}

// Close stops watching. Safe to call more than once.
func (sw *ShaderWatcher) Close() error {
	var err error
	sw.closeOnce.Do(func() {
		close(sw.done)
		sw.wg.Wait()
		err = sw.fsnotify.Close()
		close(sw.changes)
		close(sw.errors)
	})
	return err
}
