package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	logLevel string
	stderr   io.Writer

	app *App
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{stderr: os.Stderr}

	rootCmd := &cobra.Command{
		Use:   "rvegen",
		Short: "Generate spherical-inclusion RVEs for Gmsh",
		Long: `rvegen fills a box with non-overlapping spheres by random sequential
addition until a target volume fraction is reached, and writes a Gmsh
script that meshes the matrix and inclusion phases.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
				return fmt.Errorf("invalid --log-level %q: %w", opts.logLevel, err)
			}
			handler := slog.NewTextHandler(opts.stderr, &slog.HandlerOptions{Level: level})
			opts.app = NewApp(slog.New(handler))
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newGenerateCmd(opts))
	rootCmd.AddCommand(newRunsCmd(opts))
	return rootCmd
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		paramsPath string
		seed       uint64
		out        Outputs
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Place inclusions and write the Gmsh script",
		Long: `Reads parameters from a YAML file (.yaml, .yml) or a Lisp script
(.rve, .lisp), places the inclusions and writes the Gmsh script. Optional
flags add an STL preview of the inclusion phase, convergence and radius
plots, and a record in a run catalog.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.app.LoadParams(paramsPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				p.Seed = seed
			}

			outcome, err := opts.app.Generate(cmd.Context(), p, out)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%d inclusions, volume fraction %g (target %g)\n",
				outcome.Summary.Inclusions, outcome.Result.VolumeFraction, p.TargetVolumeFraction)
			if outcome.Run != nil {
				fmt.Fprintf(w, "run %s\n", outcome.Run.ID)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&paramsPath, "config", "c", "", "Parameter file (.yaml, .yml, .rve, .lisp)")
	f.Uint64Var(&seed, "seed", 0, "Override the random seed")
	f.StringVarP(&out.Script, "out", "o", "rve.geo", "Gmsh script to write")
	f.StringVar(&out.STL, "stl", "", "Write an STL preview of the inclusion phase")
	f.StringVar(&out.Convergence, "plot", "", "Write a volume fraction convergence plot (.png, .svg, .pdf)")
	f.StringVar(&out.Histogram, "hist", "", "Write a radius histogram (.png, .svg, .pdf)")
	f.StringVar(&out.Catalog, "db", "", "Record the run in this SQLite catalog")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func newRunsCmd(opts *rootOptions) *cobra.Command {
	var catalog string

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the run catalog",
	}
	runsCmd.PersistentFlags().StringVar(&catalog, "db", "rvegen.db", "SQLite run catalog")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := opts.app.Runs(cmd.Context(), catalog)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tSEED\tTARGET\tACHIEVED\tINCLUSIONS")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%g\t%.4f\t%d\n",
					r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Seed,
					r.Target, r.VolumeFraction, r.Inclusions)
			}
			return tw.Flush()
		},
	}

	var outPath string
	exportCmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Write the Gmsh script of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.app.Export(cmd.Context(), catalog, args[0], outPath)
		},
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "rve.geo", "Gmsh script to write")

	runsCmd.AddCommand(listCmd, exportCmd)
	return runsCmd
}
