// Copyright (c) 2025 neonrpc
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"neonrpc/cli/internal/errors"
	"neonrpc/cli/internal/httperrors"
	"neonrpc/cli/internal/operations"
	"neonrpc/cli/internal/transport/grpcserver"

	"github.com/spf13/cobra"
)

var (
	callRemote  string
	callRawArgs string
	callJSON    bool
)

var callCmd = &cobra.Command{
	Use:   "call OPERATION [name=value ...]",
	Short: "Invoke one operation and print its result",
	Long: `The call command runs a single operation locally, or against a running
'neonrpc serve --grpc' when --remote is given.

Arguments are name=value pairs, or bare values in declaration order:

  neonrpc call listBranches projectId=proj-123
  neonrpc call getBranch proj-123 br-456
  neonrpc call restoreBranch --args '{"projectId":"p","branchId":"b","source_branch_id":"s"}'

'name=' passes an explicit empty string. 'neonrpc operations' lists the
available operations and their parameters.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		payload, err := callPayload(args[1:], callRawArgs)
		if err != nil {
			return err
		}

		var env operations.Envelope
		err = spin("calling "+name, func() error {
			var err error
			env, err = invoke(cmd.Context(), name, payload)
			return err
		})
		if err != nil {
			httperrors.Present(err, "calling "+name)
			return errReported
		}
		return printEnvelope(os.Stdout, env, callJSON)
	},
}

func init() {
	callCmd.Flags().StringVar(&callRemote, "remote", "", "Address of a neonrpc gRPC server to call instead of the Neon API")
	callCmd.Flags().StringVar(&callRawArgs, "args", "", "Arguments as a JSON object or array")
	callCmd.Flags().BoolVar(&callJSON, "json", false, "Print the whole result envelope as JSON")
	rootCmd.AddCommand(callCmd)
}

// callPayload turns CLI arguments into the JSON the registry binds. Pairs
// become an object; bare values become an array. Mixing is rejected.
func callPayload(args []string, raw string) (json.RawMessage, error) {
	if raw != "" {
		if len(args) > 0 {
			return nil, errors.New(errors.InvalidArguments, "use either --args or command-line arguments, not both")
		}
		return json.RawMessage(raw), nil
	}
	if len(args) == 0 {
		return nil, nil
	}

	named := map[string]string{}
	var positional []string
	for _, a := range args {
		if k, v, ok := strings.Cut(a, "="); ok && k != "" {
			named[k] = v
			continue
		}
		positional = append(positional, a)
	}
	switch {
	case len(named) > 0 && len(positional) > 0:
		return nil, errors.New(errors.InvalidArguments, "mix of name=value and bare arguments")
	case len(named) > 0:
		return json.Marshal(named)
	default:
		return json.Marshal(positional)
	}
}

func invoke(ctx context.Context, name string, payload json.RawMessage) (operations.Envelope, error) {
	if callRemote == "" {
		return current.registry().Call(ctx, name, payload)
	}

	secret, err := sharedSecret()
	if err != nil {
		return operations.Envelope{}, err
	}
	c, err := grpcserver.Dial(callRemote, secret)
	if err != nil {
		return operations.Envelope{}, err
	}
	defer c.Close()

	var args any
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &args); err != nil {
			return operations.Envelope{}, errors.Wrap(errors.InvalidArguments, "arguments are not valid JSON", err)
		}
	}
	return c.Call(ctx, name, args)
}

func printEnvelope(w io.Writer, env operations.Envelope, asJSON bool) error {
	if asJSON {
		b, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	for _, t := range env.Texts() {
		if _, err := fmt.Fprintln(w, t); err != nil {
			return err
		}
	}
	return nil
}
