// rowclass is a diagnostic command-line tool that prints the row classification
// for a saved block graph: one line per reconstructed row with its zone, its
// text composition, and its joined text.
//
// It runs only the row extraction and zone classification stages, which makes
// it useful for tuning thresholds on forms the full pipeline rejects.
//
// Usage:
//
//	rowclass -input analysis.json [options]
//
// Flags:
//
//	-input string     Path to a saved Textract analysis JSON (required if -docai not specified)
//	-docai string     Path to a saved Google Document AI response JSON (required if -input not specified)
//	-config string    Path to the config YAML file
//	-strategy string  Row strategy to use: structural or geometric (default tries both)
//
// Example:
//
//	rowclass -input survey.json
//	rowclass -input survey.json -strategy geometric -config thresholds.yml
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"gopkg.in/yaml.v3"

	"github.com/quadrat/formscribe/pkg/formstruct"
)

type textractAnalysis struct {
	Blocks []types.Block
}

func loadConfig(path string) (formstruct.Config, error) {
	cfg := formstruct.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadBlocks(inputPath, docaiPath string) ([]types.Block, error) {
	if inputPath != "" {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, err
		}
		var analysis textractAnalysis
		if err := json.Unmarshal(data, &analysis); err != nil {
			return nil, fmt.Errorf("failed to parse analysis JSON: %w", err)
		}
		return analysis.Blocks, nil
	}

	data, err := os.ReadFile(docaiPath)
	if err != nil {
		return nil, err
	}
	doc, err := formstruct.LoadDocAIDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Document AI response: %w", err)
	}
	return formstruct.BlocksFromDocAI(doc), nil
}

func main() {
	inputPath := flag.String("input", "", "Path to a saved Textract analysis JSON (required if -docai not specified)")
	docaiPath := flag.String("docai", "", "Path to a saved Google Document AI response JSON (required if -input not specified)")
	configPath := flag.String("config", "", "Path to the config YAML file")
	strategy := flag.String("strategy", "", "Row strategy to use: structural or geometric (default tries both)")

	flag.Parse()

	if (*inputPath == "" && *docaiPath == "") || (*inputPath != "" && *docaiPath != "") {
		fmt.Fprintln(os.Stderr, "Error: Either -input or -docai flag must be provided (but not both)")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var strategies []formstruct.RowStrategy
	switch *strategy {
	case "":
		strategies = []formstruct.RowStrategy{formstruct.StrategyStructural, formstruct.StrategyGeometric}
	case string(formstruct.StrategyStructural):
		strategies = []formstruct.RowStrategy{formstruct.StrategyStructural}
	case string(formstruct.StrategyGeometric):
		strategies = []formstruct.RowStrategy{formstruct.StrategyGeometric}
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown strategy %q (use structural or geometric)\n", *strategy)
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	blocks, err := loadBlocks(*inputPath, *docaiPath)
	if err != nil {
		log.Fatalf("Failed to load block graph: %v", err)
	}

	ix := formstruct.NewBlockIndex(blocks)
	var rows []formstruct.Row
	for _, s := range strategies {
		rows, err = formstruct.BuildRows(ix, s, cfg)
		if err == nil {
			fmt.Printf("Using %s rows\n", s)
			break
		}
		log.Printf("Strategy %s declined: %v", s, err)
	}
	if err != nil {
		log.Fatalf("No rows could be extracted: %v", err)
	}

	formstruct.ClassifyZones(rows, cfg)

	for _, row := range rows {
		fmt.Printf("Row %3d  %-13s %-12s  %s\n", row.Index, row.Zone, row.Composition, row.Text())
	}
}
