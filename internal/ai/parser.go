package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/virtualstage/backlot/pkg/logger"
)

// ErrEmptyStoryText reports a parse attempt on an empty script.
var ErrEmptyStoryText = errors.New("ai: story text is empty")

// ParsedCharacter is one character extracted from the script.
type ParsedCharacter struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Role        string `json:"role"`
	Appearances int    `json:"appearances"`
}

// ParsedLocation is one location extracted from the script.
type ParsedLocation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Scenes      int    `json:"scenes"`
}

// ParsedAsset is one production asset extracted from the script.
type ParsedAsset struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Complexity  string `json:"complexity"`
}

// ParsedSequence is a narrative unit grouping related shots.
type ParsedSequence struct {
	SequenceNumber int      `json:"sequence_number"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Location       string   `json:"location"`
	Characters     []string `json:"characters"`
	EstimatedTime  string   `json:"estimated_time"`
	TotalShots     int      `json:"total_shots"`
}

// ParsedShot is a single camera take within a sequence.
type ParsedShot struct {
	ShotNumber          int      `json:"shot_number"`
	SequenceNumber      int      `json:"sequence_number"`
	Description         string   `json:"description"`
	Characters          []string `json:"characters"`
	Location            string   `json:"location"`
	CameraAngle         string   `json:"camera_angle"`
	Complexity          string   `json:"complexity"`
	EstimatedTime       string   `json:"estimated_time"`
	SpecialRequirements []string `json:"special_requirements"`
}

// ParseResult is the structured breakdown extracted from a script.
type ParseResult struct {
	Characters         []ParsedCharacter `json:"characters"`
	Locations          []ParsedLocation  `json:"locations"`
	Assets             []ParsedAsset     `json:"assets"`
	Sequences          []ParsedSequence  `json:"sequences"`
	Shots              []ParsedShot      `json:"shots"`
	Summary            string            `json:"summary"`
	TotalSequences     int               `json:"total_sequences"`
	TotalShots         int               `json:"total_shots"`
	EstimatedTotalTime string            `json:"estimated_total_time"`
}

const parserSystemPrompt = "You are a professional script analyzer for 3D production. " +
	"Always return valid JSON only, no markdown, no code blocks. Return ONLY the JSON object, nothing else."

const parserPromptTemplate = `You are a professional script analyzer for 3D production and animation.

IMPORTANT: Understand that SEQUENCES and SHOTS are two different things:
- SEQUENCE: A group of related shots that form a complete scene or narrative unit (like a scene in a movie)
- SHOT: An individual camera shot within a sequence (a single camera take)

Analyze this story/script and extract structured data in JSON format:

%s

Return a JSON object with this exact structure:
{
    "characters": [
        {
            "name": "character name",
            "description": "physical and personality description",
            "role": "protagonist/antagonist/supporting",
            "appearances": number of times character appears
        }
    ],
    "locations": [
        {
            "name": "location name",
            "description": "detailed location description",
            "type": "indoor/outdoor/fantasy/sci-fi/realistic",
            "scenes": number of scenes in this location
        }
    ],
    "assets": [
        {
            "name": "asset name",
            "type": "model/prop/environment/effect",
            "description": "what this asset is",
            "complexity": "low/medium/high"
        }
    ],
    "sequences": [
        {
            "sequence_number": 1,
            "title": "sequence title or name",
            "description": "what happens in this sequence (the overall scene/narrative unit)",
            "location": "location name",
            "characters": ["character names in this sequence"],
            "estimated_time": "time estimate for entire sequence",
            "total_shots": number of shots in this sequence
        }
    ],
    "shots": [
        {
            "shot_number": 1,
            "sequence_number": 1,
            "description": "what happens in this specific shot (individual camera take)",
            "characters": ["character names in this shot"],
            "location": "location name",
            "camera_angle": "close-up/wide/medium/etc",
            "complexity": "low/medium/high",
            "estimated_time": "time estimate for this shot like '1-2 days'",
            "special_requirements": ["any special effects or requirements"]
        }
    ],
    "summary": "brief summary of the story",
    "total_sequences": number,
    "total_shots": number,
    "estimated_total_time": "overall time estimate"
}

CRITICAL:
- Each SHOT must belong to a SEQUENCE (use sequence_number to link them)
- SEQUENCES are higher level - they group related shots together
- SHOTS are individual camera takes within sequences
- A sequence can have multiple shots
- Extract both sequences AND shots separately

Be thorough and extract all details. Return ONLY valid JSON, no additional text.`

const regenerationContextTemplate = `

CURRENT PRODUCTION DATA (the team may have edited names and descriptions by hand):
%s

When re-analyzing, keep the names and descriptions from the current production
data wherever they still fit the story. Only rename or drop an entity when the
story itself contradicts it. New entities found in the story must be added.`

const (
	parserTemperature = 0.3
	parserMaxTokens   = 4000
)

// Parser extracts a structured production breakdown from raw script text.
type Parser struct {
	client *Client
	log    *zap.Logger
}

// NewParser builds a script parser on the supplied completion client.
func NewParser(client *Client) *Parser {
	return &Parser{
		client: client,
		log:    logger.WithModule("ai"),
	}
}

// ParseStory analyzes the script and returns the structured breakdown.
// A model that rejects response_format is retried once without it.
func (p *Parser) ParseStory(ctx context.Context, storyText string) (*ParseResult, error) {
	if strings.TrimSpace(storyText) == "" {
		return nil, ErrEmptyStoryText
	}

	req := CompletionRequest{
		Messages: []Message{
			{Role: "system", Content: parserSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(parserPromptTemplate, storyText)},
		},
		Temperature:  parserTemperature,
		MaxTokens:    parserMaxTokens,
		JSONResponse: true,
	}

	content, err := p.client.CreateCompletion(ctx, req)
	if errors.Is(err, ErrResponseFormat) {
		p.log.Debug("model rejected response_format, retrying without it")
		req.JSONResponse = false
		content, err = p.client.CreateCompletion(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	content = stripCodeFences(content)

	var result ParseResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("ai: parse model output: %w", err)
	}
	return &result, nil
}

// RegenerateStory re-analyzes a script while seeding the prompt with the
// current production data, so manual edits to names and descriptions survive
// the re-parse.
func (p *Parser) RegenerateStory(ctx context.Context, storyText string, current *ParseResult) (*ParseResult, error) {
	if strings.TrimSpace(storyText) == "" {
		return nil, ErrEmptyStoryText
	}
	if current == nil {
		return p.ParseStory(ctx, storyText)
	}

	snapshot, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("ai: marshal current data: %w", err)
	}

	prompt := fmt.Sprintf(parserPromptTemplate, storyText) +
		fmt.Sprintf(regenerationContextTemplate, string(snapshot))

	req := CompletionRequest{
		Messages: []Message{
			{Role: "system", Content: parserSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:  parserTemperature,
		MaxTokens:    parserMaxTokens,
		JSONResponse: true,
	}

	content, err := p.client.CreateCompletion(ctx, req)
	if errors.Is(err, ErrResponseFormat) {
		p.log.Debug("model rejected response_format, retrying without it")
		req.JSONResponse = false
		content, err = p.client.CreateCompletion(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	content = stripCodeFences(content)

	var result ParseResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("ai: parse model output: %w", err)
	}
	return &result, nil
}

// stripCodeFences removes markdown code fences that models occasionally wrap
// around JSON output despite instructions.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = text[7:]
	}
	if strings.HasPrefix(text, "```") {
		text = text[3:]
	}
	if strings.HasSuffix(text, "```") {
		text = text[:len(text)-3]
	}
	return strings.TrimSpace(text)
}
