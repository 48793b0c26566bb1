package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/arrivals/internal/core/domain"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// itemView is the structured form of a recorded item.
type itemView struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"displayName" yaml:"display_name"`
	URL         string `json:"url" yaml:"url"`
}

func toItemViews(items []domain.RecentItem) []itemView {
	out := make([]itemView, len(items))
	for i, item := range items {
		out[i] = itemView{
			ID:          item.ID,
			Name:        item.Name,
			DisplayName: item.DisplayName(),
			URL:         item.URL,
		}
	}
	return out
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: output format %q", domain.ErrInvalidInput, format)
	}
}

// writeItems prints a numbered list of items.
func writeItems(w io.Writer, items []domain.RecentItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for i, item := range items {
		fmt.Fprintf(w, "  %d. %s\n", i+1, item.DisplayName())
		if item.URL != "" {
			fmt.Fprintf(w, "     %s\n", item.URL)
		}
	}
}

func validFormat(format string) bool {
	switch format {
	case formatText, formatJSON, formatYAML:
		return true
	default:
		return false
	}
}
