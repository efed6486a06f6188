package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

const maxResponseBytes = 1 << 20

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewClient builds a generator client from configuration.
func NewClient(cfg config.GeneratorConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, sberrors.ConfigRequired("generator.api_key")
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.TimeoutDuration()},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Section implements TextGenerator.
func (c *Client) Section(ctx context.Context, identity, category, section string) (string, error) {
	prompt := fmt.Sprintf(
		"Write two short paragraphs of website copy for the %q section of %s, a %s business. "+
			"Plain Markdown, no headings, no links.",
		section, identity, category)

	content, err := c.complete(ctx, []chatMessage{
		{Role: "system", Content: "You write concise, welcoming website copy."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", sberrors.ContentGenerationFailed(section, err)
	}
	return content, nil
}

// Refine implements TextGenerator.
func (c *Client) Refine(ctx context.Context, req RefineRequest) (*RefineResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(
		"Polish these website inputs: make the business name professional, expand the website type "+
			"for clarity, and return at most four clean section titles. Respond with JSON only, "+
			"keys business_name, website_type, sections.\n%s", payload)

	content, err := c.complete(ctx, []chatMessage{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	// Models occasionally wrap JSON in a fenced block.
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var result RefineResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &result); err != nil {
		return nil, fmt.Errorf("refinement returned malformed JSON: %w", err)
	}
	if result.BusinessName == "" || result.WebsiteType == "" || len(result.Sections) == 0 {
		return nil, fmt.Errorf("refinement returned incomplete structure")
	}
	return &result, nil
}

func (c *Client) complete(ctx context.Context, messages []chatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, Temperature: 0.7})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generator returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("malformed completion response: %w", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("completion response contained no content")
	}
	return parsed.Choices[0].Message.Content, nil
}
