// Command kbctl is an operator CLI for the knowledge base service. It talks
// to Bedrock directly with the same configuration the server uses, which
// makes it useful for validating a deployment before traffic hits the API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bedrock-kb-api/internal/conf"
	"bedrock-kb-api/internal/kb/biz"
	"bedrock-kb-api/internal/kb/data"
)

var (
	configPath string
	region     string
	kbID       string
	modelARN   string
	maxResults int32
	nextToken  string
	timeout    time.Duration
)

func main() {
	root := &cobra.Command{
		Use:          "kbctl",
		Short:        "Inspect and query Bedrock knowledge bases",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (optional)")
	root.PersistentFlags().StringVar(&region, "region", "", "AWS region (overrides config)")
	root.PersistentFlags().StringVar(&kbID, "kb-id", "", "knowledge base ID (overrides config)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "per-command timeout")

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Retrieve document chunks matching a query",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearch,
	}
	searchCmd.Flags().Int32Var(&maxResults, "max-results", 5, "number of results (1-20)")
	searchCmd.Flags().StringVar(&nextToken, "next-token", "", "continuation token from a previous search")

	askCmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Generate an answer grounded in the knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE:  runAsk,
	}
	askCmd.Flags().Int32Var(&maxResults, "max-results", 5, "retrieval depth (1-10)")
	askCmd.Flags().StringVar(&modelARN, "model-arn", "", "foundation model ARN (overrides config)")

	root.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List knowledge bases visible to the account",
			Args:  cobra.NoArgs,
			RunE:  runList,
		},
		&cobra.Command{
			Use:   "describe <knowledge-base-id>",
			Short: "Show the detail record for one knowledge base",
			Args:  cobra.ExactArgs(1),
			RunE:  runDescribe,
		},
		searchCmd,
		askCmd,
		&cobra.Command{
			Use:   "validate",
			Short: "Check configuration and connectivity",
			Args:  cobra.NoArgs,
			RunE:  runValidate,
		},
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup resolves configuration, applies flag overrides and builds the use
// case the same way the server does.
func setup(ctx context.Context) (*biz.KnowledgeBaseUseCase, *conf.Config, error) {
	cfg, err := conf.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	if region != "" && region != cfg.AWS.Region {
		// Re-derive the default model ARN when the region override would
		// leave it pointing at the old region.
		if cfg.AWS.ModelARN == conf.DefaultModelARN(cfg.AWS.Region) {
			cfg.AWS.ModelARN = conf.DefaultModelARN(region)
		}
		cfg.AWS.Region = region
	}
	if kbID != "" {
		cfg.AWS.KnowledgeBaseID = kbID
	}
	if modelARN != "" {
		cfg.AWS.ModelARN = modelARN
	}

	repo, err := data.NewBedrockRepo(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, nil, fmt.Errorf("bedrock client: %w", err)
	}

	uc := biz.NewKnowledgeBaseUseCase(repo, cfg.AWS.KnowledgeBaseID, cfg.AWS.ModelARN, conf.PlaceholderKnowledgeBaseID)
	return uc, cfg, nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	uc, _, err := setup(ctx)
	if err != nil {
		return err
	}

	summaries, err := uc.ListKnowledgeBases(ctx)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("no knowledge bases found")
		return nil
	}

	for _, s := range summaries {
		statusColor := color.New(color.FgYellow)
		if s.Status == "ACTIVE" {
			statusColor = color.New(color.FgGreen)
		}
		fmt.Printf("%s  %s  %s\n",
			color.CyanString(s.ID),
			s.Name,
			statusColor.Sprint(s.Status))
	}
	return nil
}

func runDescribe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	uc, _, err := setup(ctx)
	if err != nil {
		return err
	}

	detail, err := uc.GetKnowledgeBase(ctx, args[0])
	if err != nil {
		return err
	}

	label := color.New(color.Bold)
	fmt.Printf("%s %s\n", label.Sprint("ID:"), detail.ID)
	fmt.Printf("%s %s\n", label.Sprint("Name:"), detail.Name)
	fmt.Printf("%s %s\n", label.Sprint("Description:"), detail.Description)
	fmt.Printf("%s %s\n", label.Sprint("Status:"), detail.Status)
	if detail.CreatedAt != nil {
		fmt.Printf("%s %s\n", label.Sprint("Created:"), detail.CreatedAt.UTC().Format(time.RFC3339))
	}
	if detail.UpdatedAt != nil {
		fmt.Printf("%s %s\n", label.Sprint("Updated:"), detail.UpdatedAt.UTC().Format(time.RFC3339))
	}
	if detail.RoleARN != nil {
		fmt.Printf("%s %s\n", label.Sprint("Role:"), *detail.RoleARN)
	}
	for k, v := range detail.Configuration {
		fmt.Printf("%s %s=%v\n", label.Sprint("Config:"), k, v)
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	uc, _, err := setup(ctx)
	if err != nil {
		return err
	}

	in := &biz.SearchInput{
		Query:           args[0],
		MaxResults:      maxResults,
		KnowledgeBaseID: kbID,
	}
	if nextToken != "" {
		in.NextToken = &nextToken
	}

	out, err := uc.Search(ctx, in)
	if err != nil {
		return err
	}

	fmt.Printf("%d result(s) from %s\n\n", len(out.Results), color.CyanString(out.KnowledgeBaseID))
	for i, r := range out.Results {
		fmt.Printf("%s score=%.4f source=%s", color.New(color.Bold).Sprintf("[%d]", i+1), r.Score, r.SourceType)
		if r.SourceLocation != nil {
			fmt.Printf(" %s", color.BlueString(*r.SourceLocation))
		}
		fmt.Printf("\n%s\n\n", r.Content)
	}
	if out.NextToken != nil {
		fmt.Printf("more results available, rerun with --next-token %s\n", *out.NextToken)
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	uc, _, err := setup(ctx)
	if err != nil {
		return err
	}

	out, err := uc.Summarize(ctx, &biz.SummarizeInput{
		Query:           args[0],
		MaxResults:      maxResults,
		KnowledgeBaseID: kbID,
		ModelARN:        modelARN,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n\n%s\n", color.New(color.Bold).Sprint("Answer"), out.ModelUsed, out.Text)
	if len(out.Citations) > 0 {
		fmt.Printf("\n%s\n", color.New(color.Bold).Sprint("Citations"))
		for i, c := range out.Citations {
			loc := ""
			if c.SourceLocation != nil {
				loc = " " + color.BlueString(*c.SourceLocation)
			}
			fmt.Printf("[%d]%s %s\n", i+1, loc, c.Content)
		}
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	ok := color.GreenString("ok")
	fail := color.RedString("fail")

	uc, cfg, err := setup(ctx)
	if err != nil {
		fmt.Printf("%s bedrock client: %v\n", fail, err)
		return err
	}
	fmt.Printf("%s bedrock client (region %s)\n", ok, cfg.AWS.Region)

	if cfg.AWS.KnowledgeBaseID == "" || cfg.AWS.KnowledgeBaseID == conf.PlaceholderKnowledgeBaseID {
		fmt.Printf("%s knowledge base ID not configured\n", fail)
		return fmt.Errorf("set KNOWLEDGE_BASE_ID or the kb-id flag")
	}

	detail, err := uc.GetKnowledgeBase(ctx, cfg.AWS.KnowledgeBaseID)
	if err != nil {
		fmt.Printf("%s knowledge base %s: %v\n", fail, cfg.AWS.KnowledgeBaseID, err)
		return err
	}
	fmt.Printf("%s knowledge base %s (%s, status %s)\n", ok, detail.ID, detail.Name, detail.Status)
	fmt.Printf("%s model %s\n", ok, biz.ModelShortName(cfg.AWS.ModelARN))
	return nil
}
