package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"mlproject/adapters/tabular"
	"mlproject/adapters/trainer"
	"mlproject/app"
	"mlproject/domain/dataset"
	"mlproject/internal/config"
	"mlproject/internal/errors"
	"mlproject/internal/logging"
	"mlproject/internal/preprocess"
	"mlproject/internal/profiling"
	"mlproject/internal/testkit"
	"mlproject/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:           "pipeline",
		Short:         "Student-performance data pipeline: ingestion, transformation and training",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newIngestCmd(),
		newTransformCmd(),
		newRunCmd(),
		newInspectCmd(),
		newProfileCmd(),
		newGenerateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger every subcommand shares
func setup() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	return cfg, logger, nil
}

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Read the source dataset and write raw/train/test CSV artifacts",
		Long: `Read the dataset at PIPELINE_SOURCE, copy it to the artifact directory and
split it into train.csv and test.csv.

Example: PIPELINE_SOURCE=notebook/data/stud.csv pipeline ingest`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			res, err := app.NewIngestionService(cfg, logger).RunDetailed()
			if err != nil {
				return err
			}
			fmt.Printf("train: %s (%d rows)\n", res.TrainPath, res.TrainRows)
			fmt.Printf("test:  %s (%d rows)\n", res.TestPath, res.TestRows)
			return nil
		},
	}
}

func newTransformCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transform [train] [test]",
		Short: "Fit the preprocessor on the train split and transform both splits",
		Long: `Fit the preprocessing object on the train split, transform both splits and
save the fitted object. Paths default to the artifact directory's train.csv and test.csv.

Example: pipeline transform artifacts/train.csv artifacts/test.csv`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			trainPath, testPath := cfg.Artifacts.Train, cfg.Artifacts.Test
			if len(args) > 0 {
				trainPath = args[0]
			}
			if len(args) > 1 {
				testPath = args[1]
			}

			res, err := app.NewTransformationService(cfg, dataset.StudentPerformance(), logger).
				RunDetailed(trainPath, testPath)
			if err != nil {
				return err
			}
			trainRows, cols := res.Train.Dims()
			testRows, _ := res.Test.Dims()
			fmt.Printf("train matrix: %dx%d\n", trainRows, cols)
			fmt.Printf("test matrix:  %dx%d\n", testRows, cols)
			fmt.Printf("preprocessor: %s\n", res.PreprocessorPath)
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	var skipTrain bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run ingestion, transformation and baseline training",
		Long: `Run every stage in order and write manifest.json to the artifact directory.

Example: pipeline run --skip-train`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			var modelTrainer ports.ModelTrainer
			if !skipTrain {
				modelTrainer = trainer.NewLinearRegression(cfg.Artifacts.Model)
			}

			res, err := app.NewPipeline(cfg, logger, modelTrainer).Run()
			if err != nil {
				return err
			}

			fmt.Printf("run %s completed\n", res.Manifest.RunID)
			fmt.Printf("manifest: %s\n", res.ManifestPath)
			if res.Model != nil {
				fmt.Printf("%s R2 on test: %.4f\n", res.Model.Name, res.Model.Score)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipTrain, "skip-train", false, "Stop after transformation")
	return cmd
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [preprocessor]",
		Short: "Reload a saved preprocessor and print its learned statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				path = cfg.Artifacts.Preprocessor
			}

			ct, err := preprocess.Load(path)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d output features\n", path, ct.NumFeatures())
			return ct.Describe(os.Stdout)
		},
	}
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile [source]",
		Short: "Print per-column statistics of a source table",
		Long: `Profile a CSV or XLSX table: kind, missing cells, distinct values and, for
numeric columns, summary statistics. Defaults to PIPELINE_SOURCE.

Example: pipeline profile notebook/data/stud.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			path := cfg.Source.Path
			if len(args) == 1 {
				path = args[0]
			}

			table, err := tabular.NewReader(logger).Read(path)
			if err != nil {
				return errors.SourceRead("profile source", err)
			}
			profile := profiling.NewDataProfiler().ProfileTable(table)

			fmt.Printf("%s: %d rows, %d missing cells\n", path, profile.Rows, profile.MissingCells())
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "COLUMN\tKIND\tMISSING\tDISTINCT\tTOP/MEAN\tSTD\tMIN\tMEDIAN\tMAX")
			for _, c := range profile.Columns {
				if c.Summary == nil {
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t\t\t\t\n", c.Name, c.Kind, c.Missing, c.Distinct, c.Top)
					continue
				}
				s := c.Summary
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.2f\t%.2f\t%g\t%g\t%g\n",
					c.Name, c.Kind, c.Missing, c.Distinct, s.Mean, s.StdDev, s.Min, s.Median, s.Max)
			}
			return w.Flush()
		},
	}
}

func newGenerateCmd() *cobra.Command {
	gen := testkit.DefaultStudentConfig()

	cmd := &cobra.Command{
		Use:   "generate [path]",
		Short: "Write a synthetic student-performance dataset",
		Long: `Write a seeded synthetic dataset with the student-performance columns.

Example: pipeline generate notebook/data/stud.csv --rows 1000 --missing 0.02`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultSource
			if len(args) == 1 {
				path = args[0]
			}
			if gen.Rows < 2 {
				return fmt.Errorf("--rows must be at least 2, got %d", gen.Rows)
			}
			if gen.MissingRate < 0 || gen.MissingRate >= 1 {
				return fmt.Errorf("--missing must be in [0, 1), got %g", gen.MissingRate)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
			}

			written, err := testkit.NewStudentGenerator(gen).WriteCSV(filepath.Dir(path), filepath.Base(path))
			if err != nil {
				return err
			}
			fmt.Printf("wrote %d rows to %s\n", gen.Rows, written)
			return nil
		},
	}

	cmd.Flags().IntVar(&gen.Rows, "rows", gen.Rows, "Number of students to generate")
	cmd.Flags().Int64Var(&gen.Seed, "seed", gen.Seed, "Random seed for deterministic generation")
	cmd.Flags().Float64Var(&gen.MissingRate, "missing", 0, "Probability that a feature cell is left empty")
	return cmd
}
