// ABOUTME: Technical metadata extraction and catalog metadata validation
// ABOUTME: Decodes audio for its properties and checks catalog records against a JSON schema
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/hippolingua/hippolingua/pkg/audio"
)

// Decoder decodes a complete audio blob. *codec.Engine satisfies it.
type Decoder interface {
	Decode(ctx context.Context, data []byte, c audio.Container) (*audio.Segment, error)
}

// TechnicalMetadata describes the physical properties of an audio file
type TechnicalMetadata struct {
	FileName      string  `json:"file_name"`
	FileSizeBytes int64   `json:"file_size_bytes"`
	FileFormat    string  `json:"file_format"`
	Duration      float64 `json:"duration"`
	SampleRate    int     `json:"sample_rate"`
	Channels      int     `json:"channels"`
	BitDepth      int     `json:"bit_depth"`
	FrameCount    int     `json:"frame_count"`
}

// Inspect decodes data and reports its technical metadata
func Inspect(ctx context.Context, dec Decoder, name string, data []byte) (*TechnicalMetadata, error) {
	c, err := audio.Detect(name, data)
	if err != nil {
		return nil, err
	}

	seg, err := dec.Decode(ctx, data, c)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", name, err)
	}

	return &TechnicalMetadata{
		FileName:      filepath.Base(name),
		FileSizeBytes: int64(len(data)),
		FileFormat:    string(c),
		Duration:      seg.Duration().Seconds(),
		SampleRate:    seg.Format.SampleRate,
		Channels:      seg.Format.Channels,
		BitDepth:      seg.Format.BitDepth,
		FrameCount:    seg.Frames(),
	}, nil
}

// Catalog is the editorial metadata stored alongside each asset.
// Fields without omitempty are required.
type Catalog struct {
	Title       string   `json:"title" jsonschema:"display title"`
	Languages   []string `json:"languages" jsonschema:"language codes spoken in the recording"`
	Duration    float64  `json:"duration" jsonschema:"length in seconds"`
	ContentType string   `json:"content_type" jsonschema:"kind of content such as song or story"`

	Description     string   `json:"description,omitempty"`
	Characters      []string `json:"characters,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	DifficultyLevel string   `json:"difficulty_level,omitempty"`
	AgeRange        string   `json:"age_range,omitempty"`
}

// ValidationReport is the outcome of catalog validation
type ValidationReport struct {
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing_fields"`
	Extra   []string `json:"extra_fields"`
	Errors  []string `json:"errors,omitempty"`
}

// CatalogSchema returns the JSON schema of Catalog
func CatalogSchema() (*jsonschema.Schema, error) {
	return jsonschema.For[Catalog](nil)
}

// ValidateCatalog checks a decoded JSON object against the catalog schema.
// Extra fields are reported but do not invalidate the record.
func ValidateCatalog(record map[string]any) (*ValidationReport, error) {
	schema, err := CatalogSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog schema: %w", err)
	}

	report := &ValidationReport{Missing: []string{}, Extra: []string{}}
	for _, field := range schema.Required {
		if _, ok := record[field]; !ok {
			report.Missing = append(report.Missing, field)
		}
	}
	for field := range record {
		if _, ok := schema.Properties[field]; !ok {
			report.Extra = append(report.Extra, field)
		}
	}
	sort.Strings(report.Missing)
	sort.Strings(report.Extra)

	// Type checks only; presence and unknown fields are reported above
	schema.Required = nil
	schema.AdditionalProperties = &jsonschema.Schema{}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog schema: %w", err)
	}
	if err := resolved.Validate(record); err != nil {
		report.Errors = append(report.Errors, err.Error())
	}

	report.Valid = len(report.Missing) == 0 && len(report.Errors) == 0
	return report, nil
}

// ParseCatalog decodes a JSON object for validation
func ParseCatalog(data []byte) (map[string]any, error) {
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("catalog is not a JSON object: %w", err)
	}
	return record, nil
}

// MergeCatalog fills catalog fields derivable from technical metadata
// without overwriting what the record already has
func MergeCatalog(record map[string]any, tech *TechnicalMetadata, languages []string) {
	if _, ok := record["duration"]; !ok && tech != nil {
		record["duration"] = tech.Duration
	}
	if _, ok := record["languages"]; !ok && len(languages) > 0 {
		langs := make([]any, len(languages))
		for i, l := range languages {
			langs[i] = l
		}
		record["languages"] = langs
	}
}
