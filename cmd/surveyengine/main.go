package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chaitanyakcs/survey-engine-sub004/internal/config"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/llm"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/normalize"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/pipeline"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/recovery"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/render"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/storage"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/survey"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/taxonomy"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/validate"
)

var (
	rootCmd = &cobra.Command{
		Use:   "surveyengine",
		Short: "AI-powered market research survey generator",
	}
	configPath string
	outPath    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the configuration file")

	generateCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the survey document JSON to this path")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write Markdown to this path instead of stdout")
	validateCmd.Flags().StringSlice("methodology", nil, "Methodology tags for validation context")
	validateCmd.Flags().String("industry", "", "Industry for validation context")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
}

func loadRegistry(cfg *config.Config) (*taxonomy.Registry, error) {
	if cfg.Survey.TaxonomyPath != "" {
		return taxonomy.LoadFile(cfg.Survey.TaxonomyPath)
	}
	return taxonomy.Load()
}

func newNormalizer(cfg *config.Config) *normalize.Normalizer {
	if cfg.Survey.ConsolidateThreshold > 0 {
		return normalize.NewWithThreshold(cfg.Survey.ConsolidateThreshold)
	}
	return normalize.New()
}

func loadRFQ(path string) (llm.RFQ, error) {
	var rfq llm.RFQ
	raw, err := os.ReadFile(path)
	if err != nil {
		return rfq, err
	}
	if err := yaml.Unmarshal(raw, &rfq); err != nil {
		return rfq, fmt.Errorf("parsing RFQ file: %w", err)
	}
	return rfq, nil
}

var generateCmd = &cobra.Command{
	Use:   "generate [rfq.yaml]",
	Short: "Generate a survey from an RFQ file and validate it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if cfg.AI.APIKey == "" && cfg.AI.Provider != "ollama" && cfg.AI.Provider != "lmstudio" {
			log.Fatalf("AI API key not configured")
		}

		rfq, err := loadRFQ(args[0])
		if err != nil {
			log.Fatalf("Failed to load RFQ: %v", err)
		}

		reg, err := loadRegistry(cfg)
		if err != nil {
			log.Fatalf("Failed to load label taxonomy: %v", err)
		}

		ctx := context.Background()
		gen, err := llm.NewGenerator(ctx, llm.GeneratorOptions{
			Provider: cfg.AI.Provider,
			APIKey:   cfg.AI.APIKey,
			Model:    cfg.AI.Model,
			BaseURL:  cfg.AI.BaseURL,
		})
		if err != nil {
			log.Fatalf("Failed to create generator: %v", err)
		}

		store, err := storage.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("Failed to open attempts database: %v", err)
		}
		defer store.Close()

		fmt.Printf("🚀 Generating survey for %q...\n", rfq.Title)
		p := pipeline.New(gen, reg, newNormalizer(cfg), store)
		result, err := p.Generate(ctx, rfq)
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}

		fmt.Printf("✅ Attempt %s: %d questions across %d sections\n",
			result.AttemptID, survey.TotalItems(result.Document), len(result.Document.Sections))
		fmt.Printf("📊 Quality: %.2f — %s (%d issues)\n",
			result.Report.OverallScore, result.Report.Summary, len(result.Report.Issues))

		if outPath != "" {
			if err := survey.SaveDocument(outPath, result.Document); err != nil {
				log.Fatalf("Failed to write survey document: %v", err)
			}
			fmt.Printf("💾 Survey written to %s\n", outPath)
		}
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse [response.txt]",
	Short: "Recover and normalize a survey document from a raw model reply",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		raw, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("Failed to read response file: %v", err)
		}

		doc := recovery.NewParser().Parse(string(raw))
		doc = newNormalizer(cfg).Normalize(doc)
		if err := survey.CheckNotEmpty(doc); err != nil {
			log.Fatalf("Recovery produced no usable survey: %v", err)
		}

		if err := survey.SaveDocument("survey.json", doc); err != nil {
			log.Fatalf("Failed to write survey document: %v", err)
		}
		fmt.Printf("✅ Recovered %d questions into survey.json\n", survey.TotalItems(doc))
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [survey.json]",
	Short: "Validate a survey document against the label taxonomy",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		reg, err := loadRegistry(cfg)
		if err != nil {
			log.Fatalf("Failed to load label taxonomy: %v", err)
		}

		doc, err := survey.LoadDocument(args[0])
		if err != nil {
			log.Fatalf("Failed to load survey document: %v", err)
		}

		methodologies, _ := cmd.Flags().GetStringSlice("methodology")
		industry, _ := cmd.Flags().GetString("industry")

		report := validate.New(reg).Validate(doc, validate.Context{
			Methodologies: methodologies,
			Industry:      industry,
		})

		fmt.Printf("📊 Quality: %.2f — %s\n", report.OverallScore, report.Summary)
		for _, issue := range report.Issues {
			fmt.Printf("  [%s] %s: %s\n", issue.Severity, issue.Label, issue.Message)
		}
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [survey.json]",
	Short: "Render a survey document as Markdown for review",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		doc, err := survey.LoadDocument(args[0])
		if err != nil {
			log.Fatalf("Failed to load survey document: %v", err)
		}

		md := render.Markdown(doc)
		if outPath == "" {
			fmt.Print(md)
			return
		}
		if err := os.WriteFile(outPath, []byte(md), 0644); err != nil {
			log.Fatalf("Failed to write Markdown: %v", err)
		}
		fmt.Printf("✅ Markdown written to %s\n", outPath)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent generation attempts and their quality scores",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		store, err := storage.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("Failed to open attempts database: %v", err)
		}
		defer store.Close()

		attempts, err := store.ListAttempts(context.Background(), 20)
		if err != nil {
			log.Fatalf("Failed to list attempts: %v", err)
		}
		if len(attempts) == 0 {
			fmt.Println("No attempts recorded yet.")
			return
		}
		for _, a := range attempts {
			fmt.Printf("%s  %-30s  score %.2f  %s\n",
				a.CreatedAt.Format("2006-01-02 15:04"), a.RFQTitle, a.OverallScore, a.ID)
		}
	},
}
