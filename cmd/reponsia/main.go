// Copyright 2025 Forecast Consulting
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	reponsia "github.com/Forecast-Consulting-AMO/ReponsIA-v2"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/ai"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/reindex"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "reponsia",
		Usage: "RFP response assistant: pipeline, knowledge search, drafting, compliance",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Path to BadgerDB database directory",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "anthropic-key",
				Usage:   "API key for Anthropic models",
				EnvVars: []string{"ANTHROPIC_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "openai-key",
				Usage:   "API key for OpenAI models and embeddings",
				EnvVars: []string{"OPENAI_API_KEY"},
			},
			&cli.StringFlag{
				Name:  "openai-host",
				Usage: "Base URL for the OpenAI-compatible API",
				Value: "https://api.openai.com/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "text-embedding-3-small",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Add a document with its extracted text to a project",
				Action: addCommand,
				Flags: []cli.Flag{
					projectFlag(),
					&cli.StringFlag{
						Name:     "kind",
						Usage:    "Document kind (rfp, template, past-submission, reference, analysis-report)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Path to a plain-text file with the document's extracted text",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "filename",
						Usage: "Display filename (defaults to the file's base name)",
					},
				},
			},
			{
				Name:   "setup",
				Usage:  "Run the full setup pipeline: structure, extraction, indexing, feedback",
				Action: setupCommand,
				Flags:  []cli.Flag{projectFlag()},
			},
			{
				Name:   "status",
				Usage:  "Show the latest job of each type for a project",
				Action: statusCommand,
				Flags:  []cli.Flag{projectFlag()},
			},
			{
				Name:      "search",
				Usage:     "Search the project's knowledge base",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					projectFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 5,
					},
				},
			},
			{
				Name:   "draft",
				Usage:  "Generate response drafts (one group, or every pending group)",
				Action: draftCommand,
				Flags: []cli.Flag{
					projectFlag(),
					&cli.Uint64Flag{
						Name:  "group",
						Usage: "Draft group ID (omit to draft every pending group)",
					},
				},
			},
			{
				Name:   "compliance",
				Usage:  "Print the project's compliance report",
				Action: complianceCommand,
				Flags:  []cli.Flag{projectFlag()},
			},
			{
				Name:      "chat",
				Usage:     "Ask the project assistant one question",
				ArgsUsage: "<message>",
				Action:    chatCommand,
				Flags:     []cli.Flag{projectFlag()},
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed a project's knowledge chunks with the configured embedding model",
				Action: reindexCommand,
				Flags: []cli.Flag{
					projectFlag(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks per embedding batch",
						Value: reindex.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "edit",
				Usage:  "Suggest a rewrite of one item's response text",
				Action: editCommand,
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:     "item",
						Usage:    "Extracted item ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "instruction",
						Usage:    "Edit instruction, e.g. \"Raccourcir la réponse\"",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func projectFlag() cli.Flag {
	return &cli.Uint64Flag{
		Name:     "project",
		Aliases:  []string{"p"},
		Usage:    "Project ID",
		Required: true,
	}
}

// openWorkspace opens the workspace named by the global flags.
func openWorkspace(c *cli.Context) (*reponsia.Workspace, error) {
	config := ai.NewConfig(
		ai.WithAnthropicKey(c.String("anthropic-key")),
		ai.WithOpenAIKey(c.String("openai-key")),
		ai.WithOpenAIHost(c.String("openai-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := config.Validate(); err != nil {
		return nil, err
	}

	workspace, err := reponsia.Open(c.String("db"), reponsia.WithAIConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace: %w", err)
	}
	return workspace, nil
}

func projectID(c *cli.Context) core.ID {
	return core.ID(c.Uint64("project"))
}

func addCommand(c *cli.Context) error {
	kind, err := parseDocumentKind(c.String("kind"))
	if err != nil {
		return err
	}

	text, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read document text: %w", err)
	}

	filename := c.String("filename")
	if filename == "" {
		filename = filepath.Base(c.String("file"))
	}

	workspace, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer workspace.Close()

	docs, err := workspace.Repositories().Documents.AddDocuments(context.Background(), &core.Document{
		ProjectId:     projectID(c),
		Filename:      filename,
		Kind:          kind,
		MimeType:      "text/plain",
		ExtractedText: string(text),
	})
	if err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}

	fmt.Printf("Added document %d (%s, %d chars)\n", docs[0].Id, filename, len(text))
	return nil
}

func setupCommand(c *cli.Context) error {
	workspace, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer workspace.Close()

	if err := workspace.Pipeline().Run(context.Background(), projectID(c)); err != nil {
		return fmt.Errorf("setup pipeline failed: %w", err)
	}

	fmt.Println("Setup pipeline completed")
	return nil
}

func statusCommand(c *cli.Context) error {
	workspace, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer workspace.Close()

	ctx := context.Background()
	jobTypes := []struct {
		name string
		t    core.JobType
	}{
		{"structure", core.JobTypeStructure},
		{"extraction", core.JobTypeExtraction},
		{"indexing", core.JobTypeIndexing},
		{"feedback", core.JobTypeFeedback},
		{"draft-all", core.JobTypeDraftAll},
	}
	for _, jt := range jobTypes {
		job, err := workspace.Tracker().Latest(ctx, projectID(c), jt.t)
		if err != nil {
			return fmt.Errorf("failed to load %s job: %w", jt.name, err)
		}
		if job == nil {
			fmt.Printf("%-12s -\n", jt.name)
			continue
		}
		line := fmt.Sprintf("%-12s %3d%%  %s", jt.name, job.Progress, job.Message)
		if job.ErrorMessage != "" {
			line += "  [" + job.ErrorMessage + "]"
		}
		fmt.Println(line)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	workspace, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer workspace.Close()

	results, err := workspace.Retriever().Search(context.Background(), projectID(c), query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results")
		return nil
	}
	for _, result := range results {
		fmt.Printf("[%.2f] %s\n%s\n\n", result.Score, result.Chunk.SectionTitle, result.Chunk.Content)
	}
	return nil
}

func draftCommand(c *cli.Context) error {
	workspace, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer workspace.Close()

	ctx := context.Background()
	if groupID := c.Uint64("group"); groupID != 0 {
		group, err := workspace.Drafting().Generate(ctx, core.ID(groupID), func(token string) {
			fmt.Print(token)
		})
		if err != nil {
			return fmt.Errorf("draft generation failed: %w", err)
		}
		fmt.Printf("\n\nDraft group %d updated\n", group.Id)
		return nil
	}

	if err := workspace.Drafting().DraftAll(ctx, projectID(c)); err != nil {
		return fmt.Errorf("draft-all failed: %w", err)
	}
	fmt.Println("All pending sections drafted")
	return nil
}

func complianceCommand(c *cli.Context) error {
	workspace, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer workspace.Close()

	report, err := workspace.Compliance().GenerateReport(context.Background(), projectID(c))
	if err != nil {
		return fmt.Errorf("compliance report failed: %w", err)
	}

	fmt.Println(report.Summary)
	fmt.Printf("Coverage: %d%%  Quality: %d\n", report.CoveragePercent, report.QualityScore)
	if len(report.Warnings) > 0 {
		fmt.Println()
		for _, warning := range report.Warnings {
			fmt.Printf("[%s] %s\n", warning.Severity, warning.Message)
		}
	}
	return nil
}

func chatCommand(c *cli.Context) error {
	message := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if message == "" {
		return fmt.Errorf("message is required")
	}

	workspace, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer workspace.Close()

	_, err = workspace.Chat().Send(context.Background(), projectID(c), message, func(token string) {
		fmt.Print(token)
	})
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}
	fmt.Println()
	return nil
}

func reindexCommand(c *cli.Context) error {
	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	workspace, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer workspace.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	reindexer := reindex.NewReindexer(
		workspace.Repositories().Chunks,
		workspace.Provider().Embedder(),
		config,
		os.Stderr,
	)
	if err := reindexer.Run(context.Background(), projectID(c)); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}
	return nil
}

func editCommand(c *cli.Context) error {
	workspace, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer workspace.Close()

	suggestion, err := workspace.Chat().SuggestEdit(context.Background(),
		core.ID(c.Uint64("item")), c.String("instruction"), func(token string) {
			fmt.Print(token)
		})
	if err != nil {
		return fmt.Errorf("edit suggestion failed: %w", err)
	}
	fmt.Printf("\n\nSuggestion recorded for item %d\n", suggestion.ItemId)
	return nil
}

// parseDocumentKind maps the CLI label to the document kind.
func parseDocumentKind(s string) (core.DocumentKind, error) {
	switch strings.ToLower(s) {
	case "rfp":
		return core.DocumentKindRFP, nil
	case "template":
		return core.DocumentKindTemplate, nil
	case "past-submission":
		return core.DocumentKindPastSubmission, nil
	case "reference":
		return core.DocumentKindReference, nil
	case "analysis-report":
		return core.DocumentKindAnalysisReport, nil
	default:
		return 0, fmt.Errorf("invalid document kind %q: must be one of rfp, template, past-submission, reference, analysis-report", s)
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
