package main

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

func writeJSON(payload any) error {
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}

func writeYAML(payload any) error {
	out, err := yaml.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

// writeDoc renders payload as JSON or YAML depending on flags, JSON by
// default for structured documents.
func writeDoc(payload any, jsonOutput, yamlOutput bool) error {
	if yamlOutput && !jsonOutput {
		return writeYAML(payload)
	}
	return writeJSON(payload)
}
