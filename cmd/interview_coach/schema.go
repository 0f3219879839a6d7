package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-coach/internal/feedback"
	"github.com/jonathan/interview-coach/internal/schemas"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the feedback document JSON Schema, or validate a document against it",
	Long: `Print the versioned JSON Schema that critiques are requested in and feedback documents
conform to. With --validate, check a feedback file instead. The file may be a bare document or
the output of analyze, which nests it under "feedback".`,
	RunE: runSchema,
}

var (
	schemaOutput   string
	schemaValidate string
)

func init() {
	schemaCmd.Flags().StringVarP(&schemaOutput, "out", "o", "", "Write the schema to a file instead of stdout")
	schemaCmd.Flags().StringVar(&schemaValidate, "validate", "", "Path to a feedback JSON file to validate")
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, _ []string) error {
	schema, err := feedback.ContractV1.PromptSchema()
	if err != nil {
		return err
	}

	if schemaValidate != "" {
		if err := validateDocumentFile(schema, schemaValidate); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Validation failed:\n%v\n", err)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Validation passed (schema version %s)\n", feedback.ContractV1.Version)
		return nil
	}

	if schemaOutput != "" {
		if err := os.WriteFile(schemaOutput, []byte(schema+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), schema)
	return err
}

// validateDocumentFile checks the document in path, unwrapping a top-level "feedback" field.
func validateDocumentFile(schema, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return schemas.ValidateJSONString(schema, string(documentJSON(data)))
}

func documentJSON(data []byte) []byte {
	var envelope struct {
		Feedback json.RawMessage `json:"feedback"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Feedback) > 0 && envelope.Feedback[0] == '{' {
		return envelope.Feedback
	}
	return data
}
