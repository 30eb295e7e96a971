// Package main is the entry point for neonrpc, an RPC façade over the Neon
// control-plane API.
package main

import (
	"neonrpc/cli/cmd"
)

func main() {
	cmd.Execute()
}
