// formscribe is a command-line tool for reconstructing the structure of scanned tabular forms.
//
// It consumes the block graph emitted by a document-layout/OCR service (an Amazon Textract
// analysis saved as JSON, or a Google Document AI response) and rebuilds the form's logical
// shape: the title and legend, the scalar fields above the table, the canonical column-header
// schema, and the data rows keyed by that schema with per-cell provenance.
//
// Configuration:
//
// The tool accepts an optional YAML configuration file overriding the structuring thresholds:
//
//	row_gap_threshold: 0.015
//	confidence_threshold: 80.0
//	span_padding_ratio: 0.6
//	span_padding_floor: 0.015
//	parent_band_rows: 2.0
//	parent_min_confidence: 90.0
//	header_mixed_bias: 0
//
// Usage:
//
//	formscribe -input analysis.json [options]
//
// Input flags (exactly one required):
//
//	-input string   Path to a saved Textract analysis JSON ({"Blocks": [...]})
//	-docai string   Path to a saved Google Document AI response JSON
//
// Output options (at least one required):
//
//	-rows string    Path to save the structured form record as JSON
//	-boxes string   Path to save the overlay boxes as JSON
//	-report string  Path to save the HTML debug report
//	-sheet string   Path to save the reviewable PDF datasheet
//
// Other options:
//
//	-config string  Path to the YAML configuration file
//	-debug          Log each processor's claim or decline
//
// Example:
//
//	formscribe -input survey.json -rows survey_rows.json -report survey.html
//	formscribe -docai response.json -config thresholds.yml -sheet survey.pdf
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"gopkg.in/yaml.v3"

	"github.com/quadrat/formscribe/pkg/formsheet"
	"github.com/quadrat/formscribe/pkg/formstruct"
	"github.com/quadrat/formscribe/pkg/overlay"
)

// textractAnalysis matches the shape of a saved AnalyzeDocument response.
type textractAnalysis struct {
	Blocks []types.Block
}

// loadConfig reads a YAML file and overlays it on the default thresholds
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

// loadBlocks reads the block graph from either input format
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
	// Input flags.
	inputPath := flag.String("input", "", "Path to a saved Textract analysis JSON (required if -docai not specified)")
	docaiPath := flag.String("docai", "", "Path to a saved Google Document AI response JSON (required if -input not specified)")
	configPath := flag.String("config", "", "Path to the config YAML file")

	// Output flags
	rowsPath := flag.String("rows", "", "Path to save the structured form record as JSON")
	boxesPath := flag.String("boxes", "", "Path to save the overlay boxes as JSON")
	reportPath := flag.String("report", "", "Path to save the HTML debug report")
	sheetPath := flag.String("sheet", "", "Path to save the reviewable PDF datasheet")
	debug := flag.Bool("debug", false, "Log each processor's claim or decline")

	flag.Parse()

	// Create a map of provided flags to validate
	providedFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		providedFlags[f.Name] = true
	})

	// Validate that either input or docai flag is provided (but not both)
	if (*inputPath == "" && *docaiPath == "") || (*inputPath != "" && *docaiPath != "") {
		fmt.Fprintln(os.Stderr, "Error: Either -input or -docai flag must be provided (but not both)")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Validate that provided output flags have values
	hasError := false
	validateFlag := func(name string, value string) {
		if providedFlags[name] && value == "" {
			fmt.Fprintf(os.Stderr, "Error: -%s flag requires a value\n", name)
			hasError = true
		}
	}

	validateFlag("rows", *rowsPath)
	validateFlag("boxes", *boxesPath)
	validateFlag("report", *reportPath)
	validateFlag("sheet", *sheetPath)

	if hasError {
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Check if at least one output flag is provided
	hasOutputFlag := providedFlags["rows"] || providedFlags["boxes"] ||
		providedFlags["report"] || providedFlags["sheet"]

	if !hasOutputFlag {
		fmt.Fprintln(os.Stderr, "Error: At least one output flag must be provided (-rows, -boxes, -report, or -sheet)")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config from file, or fall back to the defaults.
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load the block graph.
	blocks, err := loadBlocks(*inputPath, *docaiPath)
	if err != nil {
		log.Fatalf("Failed to load block graph: %v", err)
	}
	fmt.Printf("Loaded %d blocks\n", len(blocks))

	// Run the processors. In debug mode walk the list by hand so each claim
	// or decline is visible.
	var out *formstruct.StructuredOutput
	if *debug {
		for _, processor := range formstruct.DefaultProcessors(cfg) {
			result, perr := processor.Preprocess(blocks)
			if perr != nil {
				log.Printf("Processor %s declined: %v", processor.Name(), perr)
				err = perr
				continue
			}
			log.Printf("Processor %s claimed the form", processor.Name())
			out, err = result, nil
			break
		}
		if out == nil {
			log.Fatalf("Form not recognized: %v", err)
		}
	} else {
		out, err = formstruct.Process(blocks, cfg)
		if err != nil {
			log.Fatalf("%v", err)
		}
	}
	fmt.Printf("Structured %d data rows across %d columns\n", len(out.Rows), len(out.HeaderMap))

	// Write the structured record if flag is provided.
	if *rowsPath != "" {
		rowsJSON, err := formstruct.ToJSON(out)
		if err != nil {
			log.Fatalf("Failed to convert structured record to JSON: %v", err)
		}
		if err := os.WriteFile(*rowsPath, []byte(rowsJSON), 0644); err != nil {
			log.Fatalf("Failed to write structured record: %v", err)
		}
		fmt.Println("Structured record saved to:", *rowsPath)
	}

	// Build the overlay boxes once if any overlay output is requested.
	var boxes []overlay.Box
	if *boxesPath != "" || *reportPath != "" {
		boxes = overlay.BuildBoxes(out)
	}

	// Write overlay boxes JSON if flag is provided.
	if *boxesPath != "" {
		boxesJSON, err := formstruct.ToJSON(boxes)
		if err != nil {
			log.Fatalf("Failed to convert overlay boxes to JSON: %v", err)
		}
		if err := os.WriteFile(*boxesPath, []byte(boxesJSON), 0644); err != nil {
			log.Fatalf("Failed to write overlay boxes: %v", err)
		}
		fmt.Println("Overlay boxes saved to:", *boxesPath)
	}

	// Write the HTML report if flag is provided.
	if *reportPath != "" {
		report, err := overlay.GenerateReport(out, boxes)
		if err != nil {
			log.Fatalf("Failed to generate report: %v", err)
		}
		if err := os.WriteFile(*reportPath, []byte(report), 0644); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		fmt.Println("Report saved to:", *reportPath)
	}

	// Render the PDF datasheet if flag is provided.
	if *sheetPath != "" {
		sheet, err := formsheet.Render(out, formsheet.DefaultSheetConfig())
		if err != nil {
			log.Fatalf("Failed to render datasheet: %v", err)
		}
		if err := os.WriteFile(*sheetPath, sheet, 0644); err != nil {
			log.Fatalf("Failed to write datasheet: %v", err)
		}
		fmt.Println("Datasheet saved to:", *sheetPath)
	}
}
