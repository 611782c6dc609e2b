package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/reviewkit/platform"
	"github.com/tailored-agentic-units/reviewkit/platform/local"
	"github.com/tailored-agentic-units/reviewkit/suggestion"
	"github.com/tailored-agentic-units/reviewkit/tools"
)

// newRegistry builds the configured collaborator and registers every tool
// against it.
func (a *app) newRegistry() (*tools.Registry, error) {
	platformCfg := a.cfg.PlatformConfig()
	if a.cfg.Platform == local.Name {
		platformCfg = a.stdout
	}

	collab, err := platform.New(a.cfg.Platform, platformCfg)
	if err != nil {
		return nil, err
	}

	registry := tools.NewRegistry(tools.WithObserver(a.observer))
	tool := suggestion.New(collab, suggestion.WithObserver(a.observer))
	if err := tool.Register(registry); err != nil {
		return nil, err
	}

	a.logger.Debug("tools registered", "platform", a.cfg.Platform, "count", len(registry.List()))
	return registry, nil
}

func (a *app) toolsCmd() *cobra.Command {
	var names bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool definitions offered to agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Definitions do not depend on the platform, so listing never
			// needs credentials.
			registry := tools.NewRegistry()
			if err := suggestion.New(nil).Register(registry); err != nil {
				return runtimeErr(err)
			}

			list := registry.List()
			if names {
				for _, t := range list {
					fmt.Fprintf(a.stdout, "%s\trequired: %s\n", t.Name, strings.Join(t.Required(), ", "))
				}
				return nil
			}

			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(list); err != nil {
				return runtimeErr(err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&names, "names", false, "print names and required parameters only")
	return cmd
}
