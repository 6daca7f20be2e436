package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/emmett/conteo/internal/command"
	"github.com/emmett/conteo/internal/models"
)

type InterpretArgs struct {
	Text   string `json:"text" jsonschema:"required,description=Transcript text to interpret"`
	Buffer string `json:"buffer,omitempty" jsonschema:"description=Carry-over buffer from a previous call"`
}

type QueryTotalsArgs struct {
	Finca  string `json:"finca" jsonschema:"required,description=Farm name"`
	Bloque string `json:"bloque" jsonschema:"required,description=Block identifier"`
	Cama   string `json:"cama" jsonschema:"required,description=Bed identifier"`
	Date   string `json:"date,omitempty" jsonschema:"description=Day to total (YYYY-MM-DD in the recording timezone; default today)"`
}

type ListModelsArgs struct{}

func (s *Server) handleInterpretText(ctx context.Context, req *sdk.CallToolRequest, args InterpretArgs) (*sdk.CallToolResult, any, error) {
	res := command.Interpret(args.Buffer, args.Text)

	payload, err := json.MarshalIndent(map[string]any{
		"buffer": res.Buffer,
		"events": res.Events,
	}, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode events: %w", err)
	}

	return &sdk.CallToolResult{
		Content: []sdk.Content{
			&sdk.TextContent{Text: string(payload)},
		},
	}, nil, nil
}

func (s *Server) handleQueryTotals(ctx context.Context, req *sdk.CallToolRequest, args QueryTotalsArgs) (*sdk.CallToolResult, any, error) {
	asOf := time.Now()
	if args.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", args.Date, s.tz)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid date %q: %w", args.Date, err)
		}
		asOf = day.Add(12 * time.Hour)
	}

	counts, skipped, err := s.store.CountsForDay(ctx, args.Finca, args.Bloque, args.Cama, asOf, s.tz)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query totals: %w", err)
	}

	total := 0
	for _, v := range counts {
		total += v
	}

	payload, err := json.MarshalIndent(map[string]any{
		"counts":          counts,
		"total":           total,
		"skipped_records": skipped,
	}, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode totals: %w", err)
	}

	return &sdk.CallToolResult{
		Content: []sdk.Content{
			&sdk.TextContent{Text: string(payload)},
		},
	}, nil, nil
}

func (s *Server) handleListModels(ctx context.Context, req *sdk.CallToolRequest, args ListModelsArgs) (*sdk.CallToolResult, any, error) {
	downloaded, err := models.ListDownloadedModels()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list models: %w", err)
	}

	content := []sdk.Content{
		&sdk.TextContent{Text: fmt.Sprintf("Downloaded models (%d):", len(downloaded))},
	}

	for _, model := range downloaded {
		content = append(content, &sdk.TextContent{Text: fmt.Sprintf("- %s", model)})
	}

	return &sdk.CallToolResult{Content: content}, nil, nil
}
