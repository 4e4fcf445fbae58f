package services

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent"

// FallbackMessage is what the user sees whenever generation fails for any
// reason. Upstream failures never surface as HTTP errors.
const FallbackMessage = "DebateBot is currently unavailable. Please try again."

const (
	geminiTimeout   = 45 * time.Second
	geminiAttempts  = 3
	geminiBackoff   = 800 * time.Millisecond
	logBodyTruncLen = 800
)

// Generator produces a bot reply for a rendered prompt. The bool reports
// whether generation actually succeeded; on failure the returned text is a
// usable fallback, never empty.
type Generator interface {
	Generate(prompt string) (bool, string)
}

// GeminiClient calls the Gemini generateContent REST endpoint with a bounded
// timeout and retries transient failures with exponential backoff.
type GeminiClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
	sleep    func(time.Duration)
}

func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey:   apiKey,
		endpoint: defaultGeminiEndpoint,
		client:   &http.Client{Timeout: geminiTimeout},
		sleep:    time.Sleep,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

// extractCandidateText pulls the reply text from the first candidate. A
// finish reason indicating suppression yields an empty string.
func extractCandidateText(resp geminiResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	switch candidate.FinishReason {
	case "SAFETY", "BLOCKED", "OTHER":
		return ""
	}

	parts := make([]string, 0, len(candidate.Content.Parts))
	for _, part := range candidate.Content.Parts {
		if text := strings.TrimSpace(part.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// Generate sends the prompt to Gemini. 429 and 5xx responses are retried up
// to 3 total attempts with 0.8s/1.6s/3.2s backoff; transport errors count
// against the same budget. Any other non-200 status, or a 200 whose text
// cannot be extracted, fails without further retries. All failure modes
// degrade to (false, FallbackMessage).
func (g *GeminiClient) Generate(prompt string) (bool, string) {
	if g.apiKey == "" {
		log.Println("GEMINI_API_KEY is not set")
		return false, FallbackMessage
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		log.Printf("failed to marshal Gemini request: %v", err)
		return false, FallbackMessage
	}

	for attempt := 0; attempt < geminiAttempts; attempt++ {
		req, err := http.NewRequest(http.MethodPost, g.endpoint, bytes.NewReader(body))
		if err != nil {
			log.Printf("failed to build Gemini request: %v", err)
			return false, FallbackMessage
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", g.apiKey)

		resp, err := g.client.Do(req)
		if err != nil {
			log.Printf("Gemini call failed (attempt %d): %v", attempt+1, err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			log.Printf("Gemini response read failed (attempt %d): %v", attempt+1, err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var parsed geminiResponse
			if err := json.Unmarshal(respBody, &parsed); err != nil {
				log.Printf("Gemini 200 but unparseable body: %v raw=%s", err, truncate(respBody, logBodyTruncLen))
				return false, FallbackMessage
			}
			if text := extractCandidateText(parsed); text != "" {
				return true, text
			}
			log.Printf("Gemini 200 but no text parsed. raw=%s", truncate(respBody, logBodyTruncLen))
			return false, FallbackMessage
		}

		if resp.StatusCode == http.StatusTooManyRequests ||
			(resp.StatusCode >= 500 && resp.StatusCode < 600) {
			log.Printf("Gemini transient error %d (attempt %d): %s", resp.StatusCode, attempt+1, truncate(respBody, 500))
			g.sleep(geminiBackoff << attempt)
			continue
		}

		log.Printf("Gemini API non-200: %d - %s", resp.StatusCode, truncate(respBody, logBodyTruncLen))
		break
	}

	return false, FallbackMessage
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
