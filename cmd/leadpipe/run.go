package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/smartsales/lead-pipeline/internal/config"
	"github.com/smartsales/lead-pipeline/internal/enrich"
	enrichgemini "github.com/smartsales/lead-pipeline/internal/enrich/gemini"
	"github.com/smartsales/lead-pipeline/internal/lead"
	"github.com/smartsales/lead-pipeline/internal/orchestrate"
	"github.com/smartsales/lead-pipeline/internal/pipeline"
	"github.com/smartsales/lead-pipeline/internal/reason"
	reasongemini "github.com/smartsales/lead-pipeline/internal/reason/gemini"
	"github.com/smartsales/lead-pipeline/internal/score"
	"github.com/smartsales/lead-pipeline/internal/util"
)

func runCmd() *cobra.Command {
	var (
		inputPath  string
		labelsPath string
		configPath string
		workers    int
		useGemini  bool
		wait       bool
		asJSON     bool
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process a batch of leads from a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg := config.Default()
			if configPath != "" {
				var err error
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}
			if workers > 0 {
				cfg.Workers = workers
			}

			leads, err := loadLeads(inputPath)
			if err != nil {
				return err
			}
			labeled, err := loadLabels(labelsPath)
			if err != nil {
				return err
			}

			logger := log.New(os.Stderr, "", log.LstdFlags)
			if quiet {
				logger = nil
			}

			enricher, reasoner, err := buildPorts(ctx, useGemini)
			if err != nil {
				return fmt.Errorf("configure ports: %s", util.RedactSecrets(err.Error()))
			}

			p := pipeline.New(enricher, reasoner, logger, pipeline.Options{
				Orchestrate: orchestrate.Options{
					Workers:        cfg.Workers,
					MaxRetries:     cfg.MaxRetries,
					RequestTimeout: time.Duration(cfg.RequestTimeout),
					RateLimitRPS:   cfg.RateLimitRPS,
				},
				Threshold:     cfg.QualifyThreshold,
				Rules:         cfg.Rules,
				FollowUpDelay: time.Duration(cfg.FollowUpDelay),
				FollowUpNote:  cfg.FollowUpNote,
				Sender:        cfg.Sender,
			})

			res, err := p.Run(ctx, leads, labeled)
			if err != nil {
				return err
			}

			if wait {
				p.FollowUps().Wait()
				res.CRM = p.Records().All()
				res.Memory = p.Events().All()
			} else {
				defer p.FollowUps().Close()
			}

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(snapshot(res))
			}
			printSummary(res)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Leads CSV file (columns: id, company_name, contact_name, contact_email, website, notes); built-in demo leads when omitted")
	cmd.Flags().StringVar(&labelsPath, "labels", "", "YAML file mapping lead id to ground-truth status, enables precision/recall")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file (workers, timeouts, scoring rules)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Override the configured enrichment worker count")
	cmd.Flags().BoolVar(&useGemini, "gemini", false, "Use Gemini for enrichment and reasoning (env: GEMINI_API_KEY, GEMINI_MODEL, GEMINI_BASE_URL)")
	cmd.Flags().BoolVar(&wait, "wait", true, "Wait for scheduled follow-ups to fire before exiting")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result snapshot as JSON")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Suppress progress logging")
	return cmd
}

func buildPorts(ctx context.Context, useGemini bool) (enrich.Enricher, reason.Reasoner, error) {
	if !useGemini {
		return enrich.Heuristic{}, reason.Canned{}, nil
	}
	cfg := enrichgemini.Config{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Model:   os.Getenv("GEMINI_MODEL"),
		BaseURL: os.Getenv("GEMINI_BASE_URL"),
	}
	enricher, err := enrichgemini.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	reasoner, err := reasongemini.New(ctx, reasongemini.Config(cfg))
	if err != nil {
		return nil, nil, err
	}
	return enricher, reasoner, nil
}

func loadLeads(path string) ([]lead.Lead, error) {
	if path == "" {
		return demoLeads(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return lead.ReadCSV(f)
}

func loadLabels(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	labeled := make(map[string]string)
	if err := yaml.Unmarshal(data, &labeled); err != nil {
		return nil, fmt.Errorf("parse labels: %w", err)
	}
	return labeled, nil
}

func demoLeads() []lead.Lead {
	return []lead.Lead{
		{ID: "L1", CompanyName: "AcmePay", ContactName: "Ali", ContactEmail: "ali@acmepay.com", Website: "acmepay.com", Notes: "Series A"},
		{ID: "L2", CompanyName: "ShopRight", ContactName: "Ayesha", ContactEmail: "ayesha@shopright.pk", Website: "shopright.pk", Notes: ""},
	}
}

func printSummary(res *pipeline.Result) {
	qualified := color.New(color.FgGreen, color.Bold)
	nurture := color.New(color.FgYellow)
	failed := color.New(color.FgRed)

	for _, p := range res.Processed {
		status, _ := res.CRM[p.Lead.ID]["status"].(string)
		line := fmt.Sprintf("%-8s %-20s score=%-3d", p.Lead.ID, p.Lead.CompanyName, p.Qualification.Score)
		if status == score.StatusQualified {
			qualified.Printf("%s %s\n", line, status)
		} else {
			nurture.Printf("%s %s\n", line, status)
		}
	}
	for _, e := range res.Errors {
		failed.Printf("skipped lead index=%d id=%q: %s\n", e.Index, e.ID, e.Cause)
	}

	if res.Metrics != nil {
		m := res.Metrics
		fmt.Printf("\nprecision=%.2f recall=%.2f tp=%d fp=%d tn=%d fn=%d\n",
			m.Precision, m.Recall, m.TP, m.FP, m.TN, m.FN)
	}
	fmt.Printf("records=%d leads with events=%d\n", len(res.CRM), len(res.Memory))
}

func snapshot(res *pipeline.Result) map[string]any {
	out := map[string]any{
		"crm":    res.CRM,
		"memory": res.Memory,
	}
	processed := make([]map[string]any, 0, len(res.Processed))
	for _, p := range res.Processed {
		processed = append(processed, map[string]any{
			"id":           p.Lead.ID,
			"company_name": p.Lead.CompanyName,
			"industry":     p.Lead.Enrichment.Industry,
			"score":        p.Qualification.Score,
			"reasons":      p.Qualification.Reasons,
		})
	}
	out["processed"] = processed
	if res.Metrics != nil {
		out["metrics"] = res.Metrics
	}
	if len(res.Errors) > 0 {
		out["errors"] = res.Errors
	}
	return out
}
