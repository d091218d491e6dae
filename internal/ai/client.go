package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (c *Client) SetModel(model string) {
	c.model = model
}

// TaskDraft is a task extracted from free text. Time is "HH:MM".
type TaskDraft struct {
	Name           string `json:"name"`
	Time           string `json:"time"`
	ActiveDays     []int  `json:"active_days"`
	NeedMoreInfo   bool   `json:"need_more_info"`
	FollowUpPrompt string `json:"follow_up_prompt"`
	RawResponse    string `json:"-"`
}

const systemPromptTemplate = `You turn a short message into a recurring daily reminder for a personal task tracker.

Current time: %s

Fill the fields:
- name: what to do, short and imperative ("Take pill", "Water plants").
- time: 24-hour time of day as HH:MM. Convert "8pm" to "20:00", "noon" to "12:00".
- active_days: weekdays the reminder repeats on, 0 = Sunday through 6 = Saturday.
  "every day" or no mention means all seven days. "weekdays" means 1-5, "weekends" means 0 and 6.
- need_more_info: true when the message has no recognizable task or no time.
- follow_up_prompt: the question to ask when need_more_info is true, otherwise empty.`

func systemPrompt(now time.Time) string {
	return fmt.Sprintf(systemPromptTemplate, now.Format("2006-01-02 15:04 (Monday)"))
}

// JSON Schema for structured output
var taskSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"name": {
			"type": "string",
			"description": "Short task name"
		},
		"time": {
			"type": "string",
			"description": "Time of day, HH:MM in 24-hour form"
		},
		"active_days": {
			"type": "array",
			"items": {"type": "integer", "minimum": 0, "maximum": 6},
			"description": "Weekdays the task repeats on, 0 = Sunday"
		},
		"need_more_info": {
			"type": "boolean",
			"description": "Whether the message lacks a task or a time"
		},
		"follow_up_prompt": {
			"type": "string",
			"description": "Question to ask the user when need_more_info is true"
		}
	},
	"required": ["name", "time", "active_days", "need_more_info", "follow_up_prompt"],
	"additionalProperties": false
}`)

// ParseTask asks the model to extract one task from userMessage.
func (c *Client) ParseTask(ctx context.Context, userMessage string, now time.Time) (*TaskDraft, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt(now),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userMessage,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "task",
				Schema: taskSchema,
				Strict: true,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call AI API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from AI")
	}

	content := resp.Choices[0].Message.Content
	draft := &TaskDraft{RawResponse: content}

	if err := json.Unmarshal([]byte(content), draft); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	return draft, nil
}
