//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

const (
	shaderSource = "shaders/shader.slang"
	shaderOutput = "shaders/slang.spv"
)

// Compiles the slang shader into a single SPIR-V module holding both entry points.
func (Build) Shaders() error {
	return buildShaders()
}

// Compiles the shaders and builds the binary.
func (Build) Engine() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-o", "bin/ignite", "."), withStream())
	return err
}

func buildShaders() error {
	_, err := executeCmd("slangc", withArgs(
		shaderSource,
		"-target", "spirv",
		"-profile", "spirv_1_4",
		"-emit-spirv-directly",
		"-fvk-use-entrypoint-name",
		"-entry", "vertMain",
		"-entry", "fragMain",
		"-o", shaderOutput,
	), withStream())
	return err
}
