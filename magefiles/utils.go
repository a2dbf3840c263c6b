//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type cmdOptions struct {
	args   []string
	env    map[string]string
	stream bool
}

type cmdOption func(*cmdOptions)

func withArgs(args ...string) cmdOption {
	return func(o *cmdOptions) {
		o.args = args
	}
}

// withEnv sets a variable for the child process only.
func withEnv(key, value string) cmdOption {
	return func(o *cmdOptions) {
		o.env[key] = value
	}
}

func withStream() cmdOption {
	return func(o *cmdOptions) {
		o.stream = true
	}
}

// executeCmd runs a tool found in PATH and returns its combined output.
// Output is echoed live when streaming or when mage runs with -v.
func executeCmd(command string, options ...cmdOption) (string, error) {
	opts := &cmdOptions{env: map[string]string{}}
	for _, o := range options {
		o(opts)
	}

	if _, err := exec.LookPath(command); err != nil {
		return "", fmt.Errorf("%s is not installed or not in PATH: %w", command, err)
	}

	fmt.Printf("Executing: %s %s\n", command, strings.Join(opts.args, " "))
	if mg.Verbose() || opts.stream {
		if _, err := sh.Exec(opts.env, os.Stdout, os.Stderr, command, opts.args...); err != nil {
			return "", fmt.Errorf("error executing %s: %w", command, err)
		}
		return "", nil
	}

	out, err := sh.OutputWith(opts.env, command, opts.args...)
	if err != nil {
		fmt.Println("... failed command output:")
		fmt.Println(out)
		return "", fmt.Errorf("error executing %s: %w", command, err)
	}
	return out, nil
}
