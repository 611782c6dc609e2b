package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/reviewkit/core/protocol"
	"github.com/tailored-agentic-units/reviewkit/observability"
	"github.com/tailored-agentic-units/reviewkit/suggestion"
	"github.com/tailored-agentic-units/reviewkit/tools"
)

type invokeOptions struct {
	tool     string
	args     string
	call     string
	message  bool
	validate bool
}

func (a *app) invokeCmd() *cobra.Command {
	opts := &invokeOptions{}

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Run one tool call against the configured platform",
		Long: `Run one tool call and print the text returned to the agent.

Arguments come from --args (a JSON object) or --call (a tool call as emitted
by the model). Either value may be @path to read it from a file.

--validate checks the arguments against the tool schema only; nothing is
posted.

Exit status is 1 when the tool reports a failure, 2 for invalid input and 4
for runtime errors.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.invoke(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.tool, "tool", "t", suggestion.ToolName, "tool name (ignored with --call)")
	cmd.Flags().StringVarP(&opts.args, "args", "a", "", "tool arguments as JSON or @file")
	cmd.Flags().StringVar(&opts.call, "call", "", "tool call as JSON or @file")
	cmd.Flags().BoolVar(&opts.message, "message", false, "print the result as a tool message for the agent transcript")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "check the arguments against the tool schema and exit without posting")
	cmd.MarkFlagsMutuallyExclusive("args", "call")
	return cmd
}

func (a *app) invoke(ctx context.Context, opts *invokeOptions) error {
	call, err := opts.toolCall()
	if err != nil {
		return usageErr(err)
	}

	registry, err := a.newRegistry()
	if err != nil {
		return runtimeErr(fmt.Errorf("failed to create platform: %w", err))
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	ctx = observability.WithInvocationID(ctx, uuid.NewString())

	if opts.validate {
		if err := registry.Validate(call.Name, call.RawArguments()); err != nil {
			return usageErr(err)
		}
		fmt.Fprintf(a.stdout, "arguments for %s are valid\n", call.Name)
		return nil
	}

	result, err := registry.Execute(ctx, call.Name, call.RawArguments())
	switch {
	case errors.Is(err, tools.ErrInvalidArguments), errors.Is(err, tools.ErrNotFound):
		return usageErr(err)
	case err != nil:
		return runtimeErr(err)
	}

	if opts.message {
		enc := json.NewEncoder(a.stdout)
		if err := enc.Encode(protocol.NewToolMessage(call, result.Content)); err != nil {
			return runtimeErr(err)
		}
	} else {
		fmt.Fprintln(a.stdout, result.Content)
	}

	if result.IsError {
		a.exitCode = ExitToolFailure
	}
	return nil
}

func (o *invokeOptions) toolCall() (protocol.ToolCall, error) {
	if o.call != "" {
		data, err := readValue(o.call)
		if err != nil {
			return protocol.ToolCall{}, err
		}
		var call protocol.ToolCall
		if err := json.Unmarshal(data, &call); err != nil {
			return protocol.ToolCall{}, fmt.Errorf("parse tool call: %w", err)
		}
		if call.Name == "" {
			return protocol.ToolCall{}, errors.New("tool call has no name")
		}
		if call.ID == "" {
			call.ID = "call_" + uuid.NewString()
		}
		return call, nil
	}

	if o.args == "" {
		return protocol.ToolCall{}, errors.New("one of --args or --call is required")
	}
	data, err := readValue(o.args)
	if err != nil {
		return protocol.ToolCall{}, err
	}
	return protocol.ToolCall{
		ID:        "call_" + uuid.NewString(),
		Name:      o.tool,
		Arguments: string(data),
	}, nil
}

// readValue returns v, or the contents of the file it names when it starts
// with @.
func readValue(v string) ([]byte, error) {
	path, ok := strings.CutPrefix(v, "@")
	if !ok {
		return []byte(v), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
