// Package ingestion loads project requests from disk and normalizes them for a run.
package ingestion

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// Request formats
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// LoadRequest reads a project request from a .yaml, .yml or .json file.
func LoadRequest(path string) (*types.ProjectRequest, *Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("request file not found: %w", err)
		}
		return nil, nil, fmt.Errorf("failed to read request file: %w", err)
	}

	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}

	req, err := ParseRequest(raw, format)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	meta := NewMetadata(raw, path, format)
	meta.BlueprintSize = len(req.Blueprint)
	return req, meta, nil
}

// ParseRequest decodes, normalizes and validates a request. Unknown fields are rejected.
func ParseRequest(raw []byte, format string) (*types.ProjectRequest, error) {
	var req types.ProjectRequest
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return nil, fmt.Errorf("failed to parse request JSON: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("request is empty")
			}
			return nil, fmt.Errorf("failed to parse request YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported request format %q", format)
	}

	Normalize(&req)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// Normalize cleans free text and assigns request and correlation ids when absent.
func Normalize(req *types.ProjectRequest) {
	req.Prompt = CleanText(req.Prompt)
	req.SuccessCriteria = CleanList(req.SuccessCriteria)
	req.UserQuestions = CleanList(req.UserQuestions)
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.CorrelationID == "" {
		req.CorrelationID = req.RequestID
	}
	for i := range req.Blueprint {
		entry := &req.Blueprint[i]
		entry.Title = strings.TrimSpace(entry.Title)
		entry.Description = CleanText(entry.Description)
		entry.QualityRequirements = CleanList(entry.QualityRequirements)
	}
}

// WriteOutput writes the normalized request and its metadata into outDir.
func WriteOutput(outDir string, req *types.ProjectRequest, meta *Metadata) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	reqJSON, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "request.normalized.json"), reqJSON, 0644); err != nil {
		return fmt.Errorf("failed to write request file: %w", err)
	}

	metaJSON, err := meta.ToJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "request.meta.json"), metaJSON, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}
	return nil
}
