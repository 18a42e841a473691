package llm

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Config struct {
	APIKey    string
	Model     string
	Providers []string
}

var config *Config

func Init(cfg *Config) {
	config = cfg
}

// OpenRouter API structures
type Message struct {
	Role    string    `json:"role"`
	Content []Content `json:"content"`
}

type Content struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ProviderPreferences struct {
	Order          []string `json:"order,omitempty"`
	AllowFallbacks *bool    `json:"allow_fallbacks,omitempty"`
}

type ChatRequest struct {
	Model       string               `json:"model"`
	Messages    []Message            `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens"`
	Provider    *ProviderPreferences `json:"provider,omitempty"`
}

type ChatResponse struct {
	Choices []Choice  `json:"choices"`
	Error   *APIError `json:"error,omitempty"`
}

type Choice struct {
	Message ResponseMessage `json:"message"`
}

type ResponseMessage struct {
	Content string `json:"content"`
}

type APIError struct {
	Message string      `json:"message"`
	Type    string      `json:"type"`
	Code    interface{} `json:"code"` // Can be string or number
}

const (
	openRouterURL    = "https://openrouter.ai/api/v1/chat/completions"
	openRouterModels = "https://openrouter.ai/api/v1/models"
	maxRetries       = 3
	initialDelay     = 1 * time.Second

	// noTextSentinel is what the model is instructed to answer when the
	// captured image contains no readable text.
	noTextSentinel = "NO_TEXT_FOUND"
)

func getProviderPreferences() *ProviderPreferences {
	if config == nil || len(config.Providers) == 0 {
		return nil
	}

	allowFallbacks := false
	return &ProviderPreferences{
		Order:          config.Providers,
		AllowFallbacks: &allowFallbacks,
	}
}

// QueryVision sends a PNG image to the configured OpenRouter vision model and
// returns the raw extracted text. An image with no readable text returns ""
// with a nil error; the caller decides whether that is a failure.
func QueryVision(imageData []byte) (string, error) {
	if config == nil {
		return "", fmt.Errorf("LLM client not initialized")
	}
	if config.APIKey == "" {
		return "", fmt.Errorf("API key is required")
	}
	if config.Model == "" {
		return "", fmt.Errorf("model is required")
	}

	base64Image := base64.StdEncoding.EncodeToString(imageData)
	imageURL := fmt.Sprintf("data:image/png;base64,%s", base64Image)

	request := ChatRequest{
		Model: config.Model,
		Messages: []Message{
			{
				Role: "user",
				Content: []Content{
					{
						Type: "text",
						Text: "Perform OCR on this image. It contains a short form-field label.\n" +
							"Return ONLY the raw extracted text with:\n" +
							"- No formatting\n" +
							"- No XML/HTML tags\n" +
							"- No markdown\n" +
							"- No explanations\n" +
							"- Preserve line breaks accurately from the visual layout.\n" +
							"If no text found, return '" + noTextSentinel + "'",
					},
					{
						Type: "image_url",
						ImageURL: &ImageURL{
							URL: imageURL,
						},
					},
				},
			},
		},
		Temperature: 0.1,
		MaxTokens:   500,
		Provider:    getProviderPreferences(),
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(initialDelay) * (1.5 * float64(attempt)))
			time.Sleep(delay)
		}

		response, err := makeAPIRequest(request)
		if err != nil {
			lastErr = err
			continue
		}

		if len(response.Choices) == 0 {
			lastErr = fmt.Errorf("no choices in API response")
			continue
		}

		extractedText := response.Choices[0].Message.Content
		if extractedText == "" || extractedText == noTextSentinel {
			return "", nil
		}

		return cleanExtractedText(extractedText), nil
	}

	return "", fmt.Errorf("failed after %d attempts: %v", maxRetries, lastErr)
}

// Ping verifies connectivity and credentials with a cheap models request.
func Ping() error {
	if config == nil {
		return fmt.Errorf("LLM client not initialized")
	}
	if config.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	req, err := http.NewRequest("GET", openRouterModels, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", config.APIKey))

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	return nil
}

func makeAPIRequest(request ChatRequest) (*ChatResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequest("POST", openRouterURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", config.APIKey))
	req.Header.Set("X-Title", "Profile Clip")

	client := &http.Client{Timeout: 45 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %v", err)
	}
	defer resp.Body.Close()

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}

	if response.Error != nil {
		return nil, fmt.Errorf("API error: %s (type: %s, code: %v)", response.Error.Message, response.Error.Type, response.Error.Code)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	return &response, nil
}

func cleanExtractedText(text string) string {
	// Some models wrap output in stray image tags; strip them.
	if text == "</image>" {
		return ""
	}
	if len(text) > 8 && text[len(text)-8:] == "</image>" {
		text = text[:len(text)-8]
	}
	return text
}
