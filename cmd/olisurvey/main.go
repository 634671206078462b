// Package main implements the olisurvey CLI: build a composition survey from
// a sample document, run it against the remote chemistry service, and report
// the extracted properties and scaling tendencies.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hydrolytics/olisurvey/internal/config"
	"github.com/hydrolytics/olisurvey/internal/credentials"
	"github.com/hydrolytics/olisurvey/internal/logging"
	"github.com/hydrolytics/olisurvey/internal/oli"
	"github.com/hydrolytics/olisurvey/internal/report"
	"github.com/hydrolytics/olisurvey/internal/result"
	"github.com/hydrolytics/olisurvey/internal/runner"
	"github.com/hydrolytics/olisurvey/internal/sample"
	"github.com/hydrolytics/olisurvey/internal/survey"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to olisurvey config file (YAML)")
	samplePath := flag.String("sample", "", "Path to survey sample document (YAML)")
	chemistryPath := flag.String("chemistry", "", "Path to chemistry definition file (JSON)")
	fileID := flag.String("file-id", "", "Reuse an already-uploaded chemistry file ID")
	csvPath := flag.String("csv", "", "Write extracted properties to this CSV file")
	scalingCSVPath := flag.String("scaling-csv", "", "Write scaling tendencies to this CSV file")
	initCredentials := flag.Bool("init-credentials", false, "Seal service credentials from environment and exit")
	flag.Parse()

	// Environment variable overrides
	if v := os.Getenv("OLISURVEY_CONFIG"); v != "" {
		*configPath = v
	}
	if v := os.Getenv("OLISURVEY_SAMPLE"); v != "" {
		*samplePath = v
	}
	if v := os.Getenv("OLISURVEY_CHEMISTRY"); v != "" {
		*chemistryPath = v
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFromPath(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	passphrase := os.Getenv("OLISURVEY_PASSPHRASE")
	if passphrase == "" {
		log.Fatal("OLISURVEY_PASSPHRASE is required")
	}

	if *initCredentials {
		if err := sealCredentials(cfg, passphrase); err != nil {
			log.Fatalf("Failed to seal credentials: %v", err)
		}
		log.Printf("Credentials sealed to %s", cfg.Credentials.Path)
		return
	}

	if *samplePath == "" {
		log.Fatal("A sample document is required (-sample)")
	}
	if *chemistryPath == "" && *fileID == "" {
		log.Fatal("A chemistry definition (-chemistry) or file ID (-file-id) is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, options{
		samplePath:     *samplePath,
		chemistryPath:  *chemistryPath,
		fileID:         *fileID,
		csvPath:        *csvPath,
		scalingCSVPath: *scalingCSVPath,
		passphrase:     passphrase,
	}); err != nil {
		log.Fatalf("Survey failed: %v", err)
	}
}

type options struct {
	samplePath     string
	chemistryPath  string
	fileID         string
	csvPath        string
	scalingCSVPath string
	passphrase     string
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger, opts options) error {
	doc, err := sample.Load(opts.samplePath)
	if err != nil {
		return err
	}
	base, err := doc.ToState()
	if err != nil {
		return err
	}

	points, err := survey.Build(base, doc.Axes())
	if err != nil {
		return err
	}
	logger.WithField("points", len(points)).Info("survey built")

	creds, err := credentials.Load(cfg.Credentials.Path, opts.passphrase)
	if err != nil {
		return err
	}
	rootURL := creds.RootURL
	if cfg.Service.RootURL != "" {
		rootURL = cfg.Service.RootURL
	}

	client, err := oli.New(oli.Config{
		RootURL:      rootURL,
		HTTPClient:   &http.Client{Timeout: cfg.Service.Timeout()},
		PollInterval: cfg.Service.PollInterval(),
		MaxBodyBytes: cfg.Service.MaxBodyBytes,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	if _, err := client.Login(ctx, creds); err != nil {
		return err
	}

	fileID := opts.fileID
	if fileID == "" {
		fileID, err = uploadChemistry(ctx, client, opts.chemistryPath)
		if err != nil {
			return err
		}
	}

	batch := runner.New(client, runner.Config{
		Parallelism:       cfg.Runner.Parallelism,
		RequestsPerSecond: cfg.Runner.RequestsPerSecond,
		Burst:             cfg.Runner.Burst,
		MaxRetries:        cfg.Runner.MaxRetries,
		Options: oli.AnalysisOptions{
			OptionalProperties: []string{"prescalingTendencies"},
		},
		Logger: logger,
	})
	results, err := batch.Run(ctx, fileID, points)
	if err != nil {
		return err
	}

	if len(doc.Outputs.Properties) > 0 {
		table, rep := result.BasicProperties(results, doc.Outputs.Phase, doc.Outputs.Properties)
		reportTable(logger, "properties", table, rep)
		if opts.csvPath != "" {
			if err := writeCSV(opts.csvPath, table); err != nil {
				return err
			}
		}
	}
	if len(doc.Outputs.Scalants) > 0 {
		table, rep := result.ScalingTendencies(results, doc.Outputs.Scalants)
		reportTable(logger, "scaling tendencies", table, rep)
		if opts.scalingCSVPath != "" {
			if err := writeCSV(opts.scalingCSVPath, table); err != nil {
				return err
			}
		}
	}

	return nil
}

func uploadChemistry(ctx context.Context, client *oli.Client, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read chemistry definition %s: %w", path, err)
	}
	var definition any
	if err := json.Unmarshal(data, &definition); err != nil {
		return "", fmt.Errorf("parse chemistry definition %s: %w", path, err)
	}
	return client.UploadChemistryFile(ctx, definition)
}

func reportTable(logger *logging.Logger, name string, table *result.Table, rep result.Report) {
	fmt.Printf("\n%s:\n", name)
	report.Render(os.Stdout, table)
	if rep.MissingPhases > 0 || rep.MissingValues > 0 {
		logger.WithFields(map[string]any{
			"missing_phases": rep.MissingPhases,
			"missing_values": rep.MissingValues,
		}).Warn("extraction finished with missing entries")
	}
}

func writeCSV(path string, table *result.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := report.WriteCSV(f, table); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// sealCredentials reads login material from the environment and writes the
// sealed credential file.
func sealCredentials(cfg *config.Config, passphrase string) error {
	creds := credentials.Credentials{
		Username: os.Getenv("OLISURVEY_USERNAME"),
		Password: os.Getenv("OLISURVEY_PASSWORD"),
		RootURL:  os.Getenv("OLISURVEY_ROOT_URL"),
	}
	if creds.Username == "" || creds.Password == "" {
		return fmt.Errorf("OLISURVEY_USERNAME and OLISURVEY_PASSWORD are required")
	}
	return credentials.Save(cfg.Credentials.Path, creds, passphrase)
}
