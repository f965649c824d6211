// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

// Version is set at build time with -ldflags "-X sqlselect/cli/cmd.Version=...".
var Version = "0.0.0-dev"
