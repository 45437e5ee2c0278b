package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const mealAnalysisPrompt = `You are a nutritionist. Analyze the meal in the photo and respond with JSON only:
{"label": string, "confidence": number 0-1, "macros": {"calories": number, "protein_g": number, "carbs_g": number, "fats_g": number}}`

const dietPlanPrompt = `You are a nutritionist. Build a 7-day diet plan for the profile below and respond with JSON only:
{"daily_calories": number, "meals_per_day": number, "days": [{"day": string, "meals": [{"name": string, "description": string, "calories": number}]}]}
Profile: %s`

// OpenAIAnalyzer implements Analyzer against an OpenAI-compatible
// chat-completions API (vision via image data URIs).
type OpenAIAnalyzer struct {
	baseURL     string
	apiKey      string
	model       string
	visionModel string
	client      *http.Client
}

func NewOpenAIAnalyzer(baseURL, apiKey, model, visionModel string) *OpenAIAnalyzer {
	return &OpenAIAnalyzer{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		visionModel: visionModel,
		client:      &http.Client{Timeout: 60 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// AnalyzeMeal sends the photo as a data URI and parses the structured macro
// estimate from the model reply.
func (o *OpenAIAnalyzer) AnalyzeMeal(ctx context.Context, image []byte, mimeType string) (*MealAnalysis, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	content := []map[string]any{
		{"type": "text", "text": mealAnalysisPrompt},
		{"type": "image_url", "image_url": map[string]string{"url": dataURI}},
	}

	raw, err := o.complete(ctx, o.visionModel, []chatMessage{{Role: "user", Content: content}})
	if err != nil {
		return nil, err
	}

	var analysis MealAnalysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, fmt.Errorf("analyzer returned malformed JSON: %w", err)
	}
	return &analysis, nil
}

// GenerateDietPlan asks the chat model for a plan and returns the raw JSON.
func (o *OpenAIAnalyzer) GenerateDietPlan(ctx context.Context, profile DietProfile) (json.RawMessage, error) {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(dietPlanPrompt, profileJSON)
	return o.complete(ctx, o.model, []chatMessage{{Role: "user", Content: prompt}})
}

func (o *OpenAIAnalyzer) complete(ctx context.Context, model string, messages []chatMessage) (json.RawMessage, error) {
	payload := chatRequest{Model: model, Messages: messages}
	payload.ResponseFormat = &struct {
		Type string `json:"type"`
	}{Type: "json_object"}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return nil, fmt.Errorf("analyzer request failed: %s", parsed.Error.Message)
		}
		return nil, fmt.Errorf("analyzer request failed: %s", resp.Status)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("analyzer returned no choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	// Some models wrap JSON answers in markdown fences despite instructions.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return json.RawMessage(strings.TrimSpace(content)), nil
}
