//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Compiles the shaders and runs the engine with config.toml.
func (Run) Engine() error {
	if err := buildShaders(); err != nil {
		return err
	}
	fmt.Println("Run engine...")
	if _, err := executeCmd("go",
		withArgs("run", ".", "-config", "config.toml"),
		withEnv("IGNITE_SHADER_PATH", shaderOutput),
		withStream(),
	); err != nil {
		return err
	}
	return nil
}

// Runs the unit tests. None of them need a GPU or a display.
func (Run) Tests() error {
	_, err := executeCmd("go", withArgs("test", "./engine/..."), withStream())
	return err
}
