package api

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/benchboard/benchboard/schema"
)

// Supported system output file types.
const (
	FileTypeJSON  = "json"
	FileTypeJSONL = "jsonl"
	FileTypeText  = "text"
	FileTypeTSV   = "tsv"
)

// fileProps is a base64 encoded file attached to a submission.
type fileProps struct {
	Data     string `json:"data" validate:"required"`
	FileType string `json:"file_type" validate:"omitempty,oneof=json jsonl text tsv"`
}

// systemMetadata is the evaluation record plus ownership fields.
type systemMetadata struct {
	schema.SystemInfo
	IsPrivate   bool     `json:"is_private"`
	SharedUsers []string `json:"shared_users" validate:"omitempty,dive,email"`
}

// createSystemRequest is the body of POST /systems.
type createSystemRequest struct {
	Metadata      systemMetadata `json:"metadata" validate:"required"`
	SystemOutput  fileProps      `json:"system_output" validate:"required"`
	CustomDataset *fileProps     `json:"custom_dataset,omitempty" validate:"omitempty"`
}

// system builds the document to store.
func (r createSystemRequest) system(creator string) schema.System {
	return schema.System{
		Creator:     creator,
		IsPrivate:   r.Metadata.IsPrivate,
		SharedUsers: r.Metadata.SharedUsers,
		SystemInfo:  r.Metadata.SystemInfo,
	}
}

// systemOutputsResponse is the body of GET /systems/:id/outputs.
type systemOutputsResponse struct {
	SystemOutputs []schema.SystemOutput `json:"system_outputs"`
	Total         int                   `json:"total"`
}

// ParseOutputs splits a decoded output file into one output per example.
// JSON files must hold an array; line based files yield one output per non-empty line.
// Output ids are the example positions.
func ParseOutputs(data []byte, fileType string) ([]schema.SystemOutput, error) {
	var items []string
	switch fileType {
	case FileTypeJSON:
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("json system output must be an array: %w", err)
		}
		for _, r := range raw {
			var buf bytes.Buffer
			if err := json.Compact(&buf, r); err != nil {
				return nil, fmt.Errorf("invalid json system output: %w", err)
			}
			items = append(items, buf.String())
		}
	case FileTypeJSONL, FileTypeText, FileTypeTSV, "":
		scanner := bufio.NewScanner(bytes.NewReader(data))
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			line := bytes.TrimRight(scanner.Bytes(), "\r")
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			if fileType == FileTypeJSONL && !json.Valid(line) {
				return nil, fmt.Errorf("invalid jsonl system output at example %d", len(items))
			}
			items = append(items, string(line))
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read system output: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported file_type %q", fileType)
	}

	outputs := make([]schema.SystemOutput, len(items))
	for i, item := range items {
		outputs[i] = schema.SystemOutput{OutputID: strconv.Itoa(i), Data: item}
	}
	return outputs, nil
}
