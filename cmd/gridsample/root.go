package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/born-ml/gridsample/internal/backend"
	"github.com/born-ml/gridsample/internal/backend/cpu"
	"github.com/born-ml/gridsample/internal/backend/webgpu"
	"github.com/born-ml/gridsample/internal/envconfig"
	"github.com/born-ml/gridsample/internal/onnx/operators"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "gridsample",
		Short:        "Spatial resampling of images and tensors with GridSample",
		SilenceUsage: true,
	}

	root.AddCommand(
		newVersionCmd(),
		newOpsCmd(),
		newEnvCmd(),
		newWarpCmd(),
		newInspectCmd(),
		newRunCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gridsample %s\n", version)
		},
	}
}

func newOpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List the registered operators",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, op := range newRegistry().SupportedOps() {
				fmt.Fprintln(cmd.OutOrStdout(), op)
			}
		},
	}
}

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print the effective environment configuration",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			vars := envconfig.AsMap()
			names := make([]string, 0, len(vars))
			for name := range vars {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				v := vars[name]
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%v\t# %s\n", name, v.Value, v.Description)
			}
		},
	}
}

// newRegistry registers every operator the CLI can execute.
func newRegistry() *operators.Registry {
	r := operators.NewRegistry()
	operators.RegisterGridSample(r)
	operators.RegisterAffineGrid(r)
	operators.RegisterUtilityOps(r)
	return r
}

// openBackend resolves a backend name; an empty name defers to
// GRIDSAMPLE_BACKEND. The returned func releases device resources.
func openBackend(name string) (backend.Backend, func(), error) {
	if name == "" {
		name = envconfig.Backend()
	}

	switch name {
	case envconfig.BackendCPU:
		return cpu.New(), func() {}, nil
	case envconfig.BackendWebGPU:
		be, err := webgpu.Open()
		if err != nil {
			return nil, nil, err
		}
		release := func() {}
		if r, ok := be.(interface{ Release() }); ok {
			release = r.Release
		}
		return be, release, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want %s or %s)", name, envconfig.BackendCPU, envconfig.BackendWebGPU)
	}
}
