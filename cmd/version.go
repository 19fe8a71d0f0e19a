// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

var (
	// Version is the dbgate release, printed by --version.
	// Set at build time using -ldflags "-X dbgate/cli/cmd.Version=...".
	Version = "0.0.0-dev"
)
