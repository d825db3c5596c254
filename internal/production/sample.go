package production

import (
	_ "embed"
	"fmt"
	"maps"

	"gopkg.in/yaml.v3"
)

//go:embed sample_rows.yaml
var sampleRowsYAML []byte

var sampleRows = mustLoadSample(sampleRowsYAML)

func mustLoadSample(data []byte) []RawRow {
	var rows []RawRow
	if err := yaml.Unmarshal(data, &rows); err != nil {
		panic(fmt.Sprintf("production: decode sample rows: %v", err))
	}
	return rows
}

// SampleRows returns a fresh copy of the fallback dataset.
func SampleRows() []RawRow {
	out := make([]RawRow, len(sampleRows))
	for i, row := range sampleRows {
		out[i] = maps.Clone(row)
	}
	return out
}
