// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build darwin

package keychain

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"sqlselect/cli/internal/logging"
)

// securityBackend stores items with the macOS security command, which keeps
// working where the Keychain API prompts or is refused for unsigned binaries.
type securityBackend struct{}

func newSecurityBackend() (*securityBackend, error) {
	if _, err := exec.LookPath("security"); err != nil {
		return nil, fmt.Errorf("security command not found: %w", err)
	}
	return &securityBackend{}, nil
}

func run(args ...string) (stdout string, stderr string, err error) {
	var out, errOut bytes.Buffer
	cmd := exec.Command("security", args...)
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	err = cmd.Run()
	return out.String(), errOut.String(), err
}

func notFound(stderr string) bool {
	return strings.Contains(stderr, "could not be found")
}

// Set replaces the item stored under key.
func (s *securityBackend) Set(key, value string) error {
	log := logging.New("info", nil)
	if err := s.Delete(key); err != nil {
		log.Debug("keychain delete before set failed", log.Args("key", key, "error", err.Error()))
	}

	_, stderr, err := run("add-generic-password", "-a", ServiceName, "-s", key, "-w", value, "-U")
	if err != nil {
		return fmt.Errorf("failed to store '%s' in keychain: %s: %w", key, strings.TrimSpace(stderr), err)
	}
	log.Debug("keychain item stored", log.Args("key", key, "bytes", len(value)))
	return nil
}

// Get returns the item stored under key.
func (s *securityBackend) Get(key string) (string, error) {
	stdout, stderr, err := run("find-generic-password", "-a", ServiceName, "-s", key, "-w")
	if err != nil {
		if notFound(stderr) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to retrieve from keychain: %s: %w", strings.TrimSpace(stderr), err)
	}
	return strings.TrimSpace(stdout), nil
}

// Delete removes the item stored under key.
func (s *securityBackend) Delete(key string) error {
	_, stderr, err := run("delete-generic-password", "-a", ServiceName, "-s", key)
	if err != nil {
		if notFound(stderr) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete from keychain: %s: %w", strings.TrimSpace(stderr), err)
	}
	return nil
}
