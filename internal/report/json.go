package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/slicekit/slicer/internal/prd"
)

// WriteJSON writes the result as indented JSON.
func WriteJSON(w io.Writer, res *prd.DecompositionResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

// WriteJSONFile writes the result to the given path, creating parent
// directories as needed.
func WriteJSONFile(path string, res *prd.DecompositionResult) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := WriteJSON(f, res); err != nil {
		return err
	}
	return f.Close()
}

// ReadJSONFile loads a previously written result.
func ReadJSONFile(path string) (*prd.DecompositionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var res prd.DecompositionResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &res, nil
}
