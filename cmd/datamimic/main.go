package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/vatskrypt/DataMimic/internal/config"
	"github.com/vatskrypt/DataMimic/internal/engine"
	"github.com/vatskrypt/DataMimic/internal/ingest"
	"github.com/vatskrypt/DataMimic/internal/orchestrator"
	"github.com/vatskrypt/DataMimic/internal/synth"
	"github.com/vatskrypt/DataMimic/internal/table"
	"github.com/vatskrypt/DataMimic/internal/util"
	"github.com/vatskrypt/DataMimic/internal/version"
)

func main() {
	app := &cli.App{
		Name:    version.Name,
		Usage:   version.Description,
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultPath,
				Usage:   "Path to configuration file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Import a source table from a CSV file or a live database",
				Action: runImport,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Dataset name (defaults to the file or table name)",
					},
					&cli.StringFlag{
						Name:  "file",
						Usage: "CSV file to import",
					},
					&cli.StringFlag{
						Name:  "pg-dsn",
						Usage: "PostgreSQL DSN to import from",
					},
					&cli.StringFlag{
						Name:  "mssql-dsn",
						Usage: "SQL Server DSN to import from",
					},
					&cli.StringFlag{
						Name:  "table",
						Usage: "Table to import when reading from a database",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum rows to import from a database (0 = all)",
					},
				},
			},
			{
				Name:   "analyze",
				Usage:  "Profile a dataset: column kinds, constraint suggestions, relations",
				Action: runAnalyze,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "dataset",
						Usage:    "Dataset ID to analyze",
						Required: true,
					},
				},
			},
			{
				Name:   "generate",
				Usage:  "Generate synthetic rows for a dataset",
				Action: runGenerate,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "dataset",
						Usage:    "Dataset ID to generate from",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "rows",
						Usage: "Number of synthetic rows (0 = match source)",
					},
					&cli.StringFlag{
						Name:  "cols",
						Usage: "Comma-separated columns to synthesize (default: all)",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Model type: auto, ctgan, copula, copulagan, tvae",
					},
					&cli.StringFlag{
						Name:  "constraints",
						Usage: `Per-column constraints as JSON, e.g. {"age":{"type":"int","min":25,"max":60}}`,
					},
					&cli.StringFlag{
						Name:  "relations",
						Usage: "Code/name column pairs, e.g. country_code:country_name",
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Random seed for the deterministic engine (0 = time-based)",
					},
					&cli.BoolFlag{
						Name:  "no-external",
						Usage: "Skip the external engine and use the deterministic one",
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Write the synthetic CSV to this file (default: stdout)",
					},
					&cli.StringFlag{
						Name:  "report",
						Usage: "Write the evaluation report JSON to this file",
					},
				},
			},
			{
				Name:   "datasets",
				Usage:  "List imported datasets",
				Action: runDatasets,
			},
			{
				Name:  "history",
				Usage: "List generation runs, or view details of a specific run",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dataset",
						Usage: "Only show runs for this dataset ID",
					},
					&cli.StringFlag{
						Name:  "run",
						Usage: "Show details for a specific run ID",
					},
				},
				Action: runHistory,
			},
			{
				Name:   "engines",
				Usage:  "List registered generation engines and their model types",
				Action: runEngines,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newService(c *cli.Context) (*orchestrator.Service, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ConfigureLogging()

	svc, err := orchestrator.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return svc, nil
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nInterrupted.")
		cancel()
	}()

	return ctx, cancel
}

func runImport(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := signalContext()
	defer cancel()

	switch {
	case c.String("file") != "":
		raw, err := os.ReadFile(c.String("file"))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", c.String("file"), err)
		}
		name := c.String("name")
		if name == "" {
			name = c.String("file")
		}
		d, err := svc.ImportCSV(name, string(raw))
		if err != nil {
			return err
		}
		fmt.Printf("Imported %s: %d columns, %d rows (dataset %s)\n", name, d.Columns, d.Rows, d.ID)
		return nil

	case c.String("pg-dsn") != "" || c.String("mssql-dsn") != "":
		tableName := c.String("table")
		if tableName == "" {
			return fmt.Errorf("--table is required when importing from a database")
		}
		t, err := fetchTable(ctx, c, tableName)
		if err != nil {
			return err
		}
		name := c.String("name")
		if name == "" {
			name = tableName
		}
		d, err := svc.ImportTable(name, t)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %s: %d columns, %d rows (dataset %s)\n", name, d.Columns, d.Rows, d.ID)
		return nil

	default:
		return fmt.Errorf("one of --file, --pg-dsn or --mssql-dsn is required")
	}
}

func fetchTable(ctx context.Context, c *cli.Context, tableName string) (*table.Table, error) {
	if dsn := c.String("pg-dsn"); dsn != "" {
		return ingest.FromPostgres(ctx, dsn, tableName, c.Int("limit"))
	}
	return ingest.FromMSSQL(ctx, c.String("mssql-dsn"), tableName, c.Int("limit"))
}

func runAnalyze(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	an, _, err := svc.Analyze(c.String("dataset"))
	if err != nil {
		return err
	}

	body, err := json.MarshalIndent(an.Contract(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(body))
	return nil
}

func runGenerate(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := signalContext()
	defer cancel()

	constraints, err := parseConstraints(c.String("constraints"))
	if err != nil {
		return err
	}
	relations, err := util.SplitPairs(c.String("relations"))
	if err != nil {
		return err
	}

	res, err := svc.Generate(ctx, orchestrator.GenerateOptions{
		DatasetID:   c.String("dataset"),
		Rows:        c.Int("rows"),
		Columns:     util.SplitCSV(c.String("cols")),
		Constraints: constraints,
		Relations:   relations,
		Model:       c.String("model"),
		Seed:        c.Int64("seed"),
		NoExternal:  c.Bool("no-external"),
		Progress:    c.String("out") != "",
	})
	if err != nil {
		return err
	}

	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, []byte(res.Synthetic.Serialize()), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Printf("Wrote %d rows to %s (engine: %s, run %s)\n",
			res.Synthetic.RowCount(), out, res.Engine, res.Run.ID)
	} else {
		fmt.Print(res.Synthetic.Serialize())
	}

	if path := c.String("report"); path != "" {
		body, err := json.MarshalIndent(res.Report, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	fmt.Fprintf(os.Stderr, "Utility %.1f  Privacy %.1f  Integrity %.1f\n",
		res.Report.UtilityScore, res.Report.PrivacyScore, res.Report.IntegrityScore)
	return nil
}

func runDatasets(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	datasets, err := svc.Datasets()
	if err != nil {
		return err
	}
	if len(datasets) == 0 {
		fmt.Println("No datasets imported.")
		return nil
	}
	for _, d := range datasets {
		fmt.Printf("%s  %-20s  %3d cols  %6d rows  %s\n",
			d.ID, util.Truncate(d.Name, 20), d.Columns, d.Rows,
			d.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runHistory(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	if runID := c.String("run"); runID != "" {
		r, err := svc.RunDetails(runID)
		if err != nil {
			return err
		}
		body, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(body))
		return nil
	}

	runs, err := svc.History(c.String("dataset"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	for _, r := range runs {
		flag := ""
		if r.Fallback {
			flag = " (fallback)"
		}
		fmt.Printf("%s  %-8s  %-10s  %s%s\n",
			r.ID, r.Status, r.ModelType, r.CreatedAt.Format("2006-01-02 15:04:05"), flag)
	}
	return nil
}

func runEngines(c *cli.Context) error {
	for _, name := range engine.Names() {
		aliases := engine.Aliases(name)
		if len(aliases) > 0 {
			fmt.Printf("%-10s  models: %v\n", name, aliases)
		} else {
			fmt.Printf("%s\n", name)
		}
	}
	return nil
}

// parseConstraints decodes the --constraints JSON flag.
func parseConstraints(raw string) (map[string]synth.FieldConstraint, error) {
	if raw == "" {
		return nil, nil
	}
	var out map[string]synth.FieldConstraint
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("invalid --constraints: %w", err)
	}
	return out, nil
}
