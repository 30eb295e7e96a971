// Copyright (c) 2025 neonrpc
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

// Version is set at build time with -ldflags "-X neonrpc/cli/cmd.Version=...".
var Version = "0.0.0-dev"
