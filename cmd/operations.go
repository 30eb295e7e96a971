package cmd

import (
	"strings"

	"neonrpc/cli/internal/entrypoint"
	"neonrpc/cli/internal/httperrors"
	"neonrpc/cli/internal/transport/grpcserver"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var operationsRemote string

var operationsCmd = &cobra.Command{
	Use:     "operations",
	Aliases: []string{"ops"},
	Short:   "List the operations and their parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		ops := current.registry().List()
		if operationsRemote != "" {
			secret, err := sharedSecret()
			if err != nil {
				return err
			}
			c, err := grpcserver.Dial(operationsRemote, secret)
			if err != nil {
				return err
			}
			defer c.Close()
			if ops, err = c.List(cmd.Context()); err != nil {
				httperrors.Present(err, "listing remote operations")
				return errReported
			}
		}
		return pterm.DefaultTable.WithHasHeader().WithData(operationTable(ops)).Render()
	},
}

func init() {
	operationsCmd.Flags().StringVar(&operationsRemote, "remote", "", "List the operations of a neonrpc gRPC server")
	rootCmd.AddCommand(operationsCmd)
}

// operationTable renders ops as rows. Optional parameters are bracketed.
func operationTable(ops []entrypoint.Operation) pterm.TableData {
	rows := pterm.TableData{{"Operation", "Parameters", "Effect"}}
	for _, op := range ops {
		params := make([]string, 0, len(op.Params))
		for _, p := range op.Params {
			if p.Required {
				params = append(params, p.Name)
			} else {
				params = append(params, "["+p.Name+"]")
			}
		}
		effect := "read-only"
		if op.Hints.Destructive {
			effect = pterm.Yellow("destructive")
		}
		rows = append(rows, []string{op.Name, strings.Join(params, " "), effect})
	}
	return rows
}
