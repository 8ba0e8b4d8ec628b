package reporting

import (
	"encoding/json"
	"io"
	"time"

	"github.com/xkilldash9x/hrmcheck/api/schemas"
)

type jsonRenderer struct{}

type jsonReport struct {
	Tool        string         `json:"tool"`
	Version     string         `json:"version,omitempty"`
	Title       string         `json:"title"`
	GeneratedAt time.Time      `json:"generated_at"`
	Runs        []jsonRunEntry `json:"runs"`
}

type jsonRunEntry struct {
	*schemas.Run
	Summary schemas.Summary `json:"summary"`
}

func (jsonRenderer) render(w io.Writer, runs []*schemas.Run, m meta) error {
	doc := jsonReport{
		Tool:        ToolName,
		Version:     m.Version,
		Title:       m.Title,
		GeneratedAt: m.now().UTC(),
		Runs:        make([]jsonRunEntry, 0, len(runs)),
	}
	for _, run := range runs {
		doc.Runs = append(doc.Runs, jsonRunEntry{Run: run, Summary: run.Summary()})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ") // Pretty print
	return encoder.Encode(doc)
}
