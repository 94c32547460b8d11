package export

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// WriteJSON writes the whole report as one indented JSON document.
func WriteJSON(w io.Writer, report *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
