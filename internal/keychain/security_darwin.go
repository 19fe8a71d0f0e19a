// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build darwin

package keychain

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/pterm/pterm"

	"dbgate/cli/internal/logging"
)

// securityBackend stores secrets through the macOS security command, with
// the key as the service and ServiceName as the account.
type securityBackend struct {
	logger *pterm.Logger
}

func newSecurityBackend() (*securityBackend, error) {
	if _, err := exec.LookPath("security"); err != nil {
		return nil, fmt.Errorf("security command not found: %w", err)
	}
	level := "off"
	if os.Getenv("DBGATE_VERBOSE") == "1" {
		level = "debug"
	}
	return &securityBackend{logger: logging.New(level, os.Stderr)}, nil
}

func (s *securityBackend) run(stdout *bytes.Buffer, args ...string) (string, error) {
	cmd := exec.Command("security", args...)
	var stderr bytes.Buffer
	if stdout != nil {
		cmd.Stdout = stdout
	}
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

func (s *securityBackend) Set(key, value string) error {
	s.logger.Debug("keychain set", s.logger.Args("key", key, "length", len(value)))
	_ = s.Delete(key)

	stderr, err := s.run(nil, "add-generic-password", "-a", ServiceName, "-s", key, "-w", value, "-U")
	if err != nil {
		return fmt.Errorf("failed to store '%s' in keychain: %s: %w", key, stderr, err)
	}
	return nil
}

func (s *securityBackend) Get(key string) (string, error) {
	var stdout bytes.Buffer
	stderr, err := s.run(&stdout, "find-generic-password", "-a", ServiceName, "-s", key, "-w")
	if err != nil {
		if strings.Contains(stderr, "could not be found") {
			s.logger.Debug("keychain miss", s.logger.Args("key", key))
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to retrieve from keychain: %s: %w", stderr, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (s *securityBackend) Delete(key string) error {
	stderr, err := s.run(nil, "delete-generic-password", "-a", ServiceName, "-s", key)
	if err != nil {
		if strings.Contains(stderr, "could not be found") {
			return nil
		}
		return fmt.Errorf("failed to delete from keychain: %s: %w", stderr, err)
	}
	return nil
}
