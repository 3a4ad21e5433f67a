package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/housegen/internal/cli/output"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new housegen project",
		Long: `Initialize a new housegen project with default configuration.

This creates:
  - housegen.yaml configuration file
  - schemas/houses.yaml dataset schema

Use --example to also create schemas demonstrating tiered sections and the
legacy flat format.`,
		Example: `  # Initialize in current directory
  housegen init

  # Initialize with example schemas
  housegen init --example

  # Initialize in a new directory
  housegen init my-dataset --example

  # Force overwrite existing config
  housegen init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			// Create renderer
			cfg := getConfig()
			mode := output.Mode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			template := "minimal"
			if example {
				template = "example"
			}
			return runInit(r, template, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Create example schemas (tiered and legacy formats)")

	return cmd
}

func runInit(r *output.Renderer, template, dir string, force bool) error {
	// Create directory if specified and doesn't exist
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Check if config already exists
	configPath := dir + "/housegen.yaml"
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("housegen.yaml already exists. Use --force to overwrite")
	}

	if err := copyTemplate(template, dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	// List created files by category
	files, _ := listTemplateFiles(template)
	groups := groupTemplateFiles(files)

	r.Header(2, "Configuration")
	for _, f := range groups["config"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Header(2, "Schemas")
	for _, f := range groups["schemas"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("housegen project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Adjust schemas/houses.yaml to taste")
	r.Println("  2. Run 'housegen generate' to produce a CSV")
	r.Println("  3. Run 'housegen load' to load it into a database")
	r.Println("  4. Run 'housegen stats' to sanity-check distributions")

	return nil
}
