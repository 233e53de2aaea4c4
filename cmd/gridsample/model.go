package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/born-ml/gridsample/internal/imageio"
	"github.com/born-ml/gridsample/internal/onnx"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect MODEL",
		Short: "Show an ONNX model's inputs, outputs and operators",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := onnx.GetModelInfo(args[0])
			if err != nil {
				return err
			}

			supported := make(map[string]bool)
			for _, op := range newRegistry().SupportedOps() {
				supported[op] = true
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "producer:  %s %s\n", info.ProducerName, info.ProducerVersion)
			fmt.Fprintf(w, "ir:        %d\n", info.IRVersion)
			fmt.Fprintf(w, "opset:     %d\n", info.OpsetVersion)
			fmt.Fprintf(w, "inputs:    %s\n", strings.Join(info.InputNames, ", "))
			fmt.Fprintf(w, "outputs:   %s\n", strings.Join(info.OutputNames, ", "))
			fmt.Fprintf(w, "nodes:     %d (%d initializers)\n", info.NodeCount, info.WeightCount)
			for _, op := range info.Operators {
				mark := "ok"
				if !supported[op] {
					mark = "unsupported"
				}
				fmt.Fprintf(w, "  %-28s %s\n", op, mark)
			}
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run MODEL INPUT OUTPUT",
		Short: "Run a single-input ONNX model on an image",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			alpha, err := cmd.Flags().GetBool("alpha")
			if err != nil {
				return err
			}
			backendName, err := cmd.Flags().GetString("backend")
			if err != nil {
				return err
			}

			be, release, err := openBackend(backendName)
			if err != nil {
				return err
			}
			defer release()

			model, err := onnx.Load(args[0], newRegistry(), be)
			if err != nil {
				return err
			}

			image, err := imageio.DecodeFile(args[1], alpha)
			if err != nil {
				return err
			}
			out, err := model.Forward(cmd.Context(), image)
			if err != nil {
				return err
			}

			if err := imageio.EncodeFile(args[2], out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s %v\n", args[2], out.Shape())
			return nil
		},
	}

	runCmd.Flags().Bool("alpha", false, "Feed the alpha channel as a fourth input channel")
	runCmd.Flags().String("backend", "", "Compute backend: cpu or webgpu (default: GRIDSAMPLE_BACKEND)")
	return runCmd
}
