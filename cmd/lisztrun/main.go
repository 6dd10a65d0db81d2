package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func addCommands(root *cobra.Command) {
	root.AddCommand(&cobra.Command{
		Use:   "centroid",
		Short: "load 4 vertex positions, sum them into a global, divide by count",
		RunE:  runCentroid,
	})

	cmd := &cobra.Command{
		Use:   "diffusion",
		Short: "5x5 grid heat diffusion, 1000 Jacobi iterations",
		RunE:  runDiffusion,
	}
	cmd.Flags().Int("n", 5, "grid side length")
	cmd.Flags().Int("iters", 1000, "number of Jacobi iterations")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "mesh-edges",
		Short: "build a directed edge relation from an OFF triangle mesh",
		RunE:  runMeshEdges,
	}
	cmd.Flags().String("off", "", "path to an OFF mesh file (default: built-in octahedron)")
	root.AddCommand(cmd)

	root.AddCommand(&cobra.Command{
		Use:   "insert-query",
		Short: "insert 10 rows into an empty ELASTIC relation, tagged i%2==0",
		RunE:  runInsertQuery,
	})

	root.AddCommand(&cobra.Command{
		Use:   "delete-defrag",
		Short: "continue insert-query, delete odd-tagged rows, auto-defrag",
		RunE:  runDeleteDefrag,
	})

	cmd = &cobra.Command{
		Use:   "gpu-sum",
		Short: "reduce gerr += 1 over a large relation on the simulated GPU engine",
		RunE:  runGPUSum,
	}
	cmd.Flags().Int("size", 1000000, "relation size")
	root.AddCommand(cmd)

	root.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "run every scenario in sequence",
		RunE:  runAll,
	})
}

func runAll(cmd *cobra.Command, args []string) error {
	scenarios := []func(*cobra.Command, []string) error{
		runCentroid, runDiffusion, runMeshEdges, runInsertQuery, runDeleteDefrag, runGPUSum,
	}
	for _, s := range scenarios {
		if err := s(cmd, nil); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	root := &cobra.Command{Use: "lisztrun", Short: "run the execution core's end-to-end scenarios"}
	addCommands(root)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lisztrun: %v\n", err)
		os.Exit(1)
	}
}
