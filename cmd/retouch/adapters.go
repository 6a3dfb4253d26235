package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/retouch/gpu"
)

var adaptersCmd = &cobra.Command{
	Use:   "adapters",
	Short: "List GPU adapters",
	Args:  cobra.NoArgs,
	RunE:  runAdapters,
}

func init() {
	adaptersCmd.Flags().String("gpu-backend", "", "only list adapters of this backend (vulkan, noop)")
	rootCmd.AddCommand(adaptersCmd)
}

func runAdapters(cmd *cobra.Command, _ []string) error {
	backend, _ := cmd.Flags().GetString("gpu-backend")
	infos := gpu.ListAdapters(backend)
	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "no GPU adapters found")
		return nil
	}
	for i, info := range infos {
		fmt.Fprintf(out, "%d: %s\n", i, info)
	}
	return nil
}
