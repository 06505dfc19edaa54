// ownerctl inspects ownership schema files: it validates that a file
// parses and compiles, and dry-runs resolution against sample event
// attributes. Schemas may be authored in YAML or in the JSON wire form.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/notifyhq/recipient-router/internal/domain"
	"github.com/notifyhq/recipient-router/internal/ownership"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var rootCmd = &cobra.Command{
	Use:          "ownerctl",
	Short:        "validate and dry-run ownership schema files",
	SilenceUsage: true,
}

var validateCmd = &cobra.Command{
	Use:   "validate <schema-file>",
	Short: "check that an ownership schema file parses and compiles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := loadSchemaFile(args[0])
		if err != nil {
			return err
		}

		if _, err := ownership.Compile(schema); err != nil {
			return fmt.Errorf("schema does not compile: %w", err)
		}

		fmt.Printf("%s: %d rules, fallthrough=%v\n", args[0], len(schema.Rules), schema.Fallthrough)

		return nil
	},
}

var (
	matchPaths []string
	matchURL   string
)

var matchCmd = &cobra.Command{
	Use:   "match <schema-file>",
	Short: "dry-run ownership resolution against sample paths and URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := loadSchemaFile(args[0])
		if err != nil {
			return err
		}

		compiled, err := ownership.Compile(schema)
		if err != nil {
			return fmt.Errorf("schema does not compile: %w", err)
		}

		resolved := compiled.Resolve(domain.EventAttributes{
			Paths: matchPaths,
			URL:   matchURL,
		})

		switch {
		case resolved.UsedFallthrough:
			fmt.Println("no rule matched; fallthrough to all active project members")
		case len(resolved.Owners) == 0:
			fmt.Println("no rule matched; nobody would be notified")
		default:
			for _, owner := range resolved.Owners {
				fmt.Printf("%s:%s\n", owner.Kind, owner.Identifier)
			}
		}

		return nil
	},
}

// loadSchemaFile reads a schema file, converting YAML to the JSON wire
// form first so both share one strict parser.
func loadSchemaFile(path string) (*domain.OwnershipSchema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read schema file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		var doc interface{}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("invalid yaml: %w", err)
		}

		raw, err = json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("can't convert yaml to json: %w", err)
		}
	}

	schema, err := ownership.ParseSchema(raw)
	if err != nil {
		return nil, err
	}

	return schema, nil
}

func init() {
	matchCmd.Flags().StringSliceVarP(&matchPaths, "path", "p", nil, "candidate event path (repeatable)")
	matchCmd.Flags().StringVarP(&matchURL, "url", "u", "", "event request URL")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(matchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
