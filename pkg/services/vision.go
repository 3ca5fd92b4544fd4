package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"peermarket/pkg/config"
)

// VisionService turns a listing photo into a draft title and description
// using Gemini generateContent with inline image data. The messaging core
// never touches this; it is an external collaborator of the item flow.
type VisionService struct {
	apiKey  string
	enabled bool
}

var ErrVisionDisabled = errors.New("vision is disabled via config")

func NewVisionService() *VisionService {
	return &VisionService{
		apiKey:  config.GeminiAPIKey,
		enabled: config.IsVisionEnabled,
	}
}

func (s *VisionService) IsEnabled() bool {
	return s.enabled && strings.TrimSpace(s.apiKey) != ""
}

// ListingDraft is what the client pre-fills the item form with.
type ListingDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AnalyzeImage asks the model for a marketplace title/description of the
// image (base64-encoded JPEG/PNG bytes, no data-URL prefix).
func (s *VisionService) AnalyzeImage(ctx context.Context, base64Image string) (*ListingDraft, error) {
	if !s.enabled {
		log.Printf("[vision] disabled via config (IsVisionEnabled=false)")
		return nil, ErrVisionDisabled
	}
	if strings.TrimSpace(s.apiKey) == "" {
		log.Printf("[vision] GEMINI_API_KEY is not set")
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if strings.TrimSpace(base64Image) == "" {
		return nil, fmt.Errorf("empty image payload")
	}

	models := []string{config.GeminiModel, "gemini-2.0-flash"}
	tried := make(map[string]error)

	for _, m := range models {
		if strings.TrimSpace(m) == "" {
			continue
		}
		draft, err := s.callGenerateContent(ctx, m, base64Image)
		if err != nil && isRetriable(err) {
			sleepWithContext(ctx, 2*time.Second)
			draft, err = s.callGenerateContent(ctx, m, base64Image)
		}
		if err == nil && draft != nil && strings.TrimSpace(draft.Title) != "" {
			return draft, nil
		}
		if err != nil {
			tried[m] = err
			log.Printf("[vision] model %s failed: %v", m, err)
		}
	}

	var b strings.Builder
	b.WriteString("all vision models failed: ")
	first := true
	for m, e := range tried {
		if !first {
			b.WriteString("; ")
		}
		first = false
		b.WriteString(fmt.Sprintf("%s -> %v", m, e))
	}
	return nil, errors.New(b.String())
}

func (s *VisionService) callGenerateContent(ctx context.Context, model, base64Image string) (*ListingDraft, error) {
	reqBody := map[string]any{
		"contents": []any{
			map[string]any{
				"role": "user",
				"parts": []any{
					map[string]any{"text": "You are helping a seller post an item on a second-hand marketplace. Look at the photo and reply with JSON only, no markdown fences, of the form {\"title\": \"...\", \"description\": \"...\"}. The title is short (max 8 words); the description is 2-3 honest sentences about the item and its visible condition."},
					map[string]any{"inlineData": map[string]any{
						"mimeType": "image/jpeg",
						"data":     base64Image,
					}},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature":     0.4,
			"maxOutputTokens": 512,
		},
	}
	bodyBytes, _ := json.Marshal(reqBody)

	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", model, s.apiKey)
	log.Printf("[vision] using model %s", model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBytes)))
	}

	var parsed map[string]any
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return nil, fmt.Errorf("bad response: %w", err)
	}
	text := ""
	if cands, ok := parsed["candidates"].([]any); ok && len(cands) > 0 {
		if first, ok := cands[0].(map[string]any); ok {
			if content, ok := first["content"].(map[string]any); ok {
				if parts, ok := content["parts"].([]any); ok {
					for _, p := range parts {
						if pm, ok := p.(map[string]any); ok {
							if txt, ok := pm["text"].(string); ok && strings.TrimSpace(txt) != "" {
								text = txt
								break
							}
						}
					}
				}
			}
		}
	}
	return parseDraft(text)
}

// parseDraft extracts the JSON draft from model output, tolerating markdown
// fences the model sometimes adds despite the instruction.
func parseDraft(text string) (*ListingDraft, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty model output")
	}
	if i := strings.Index(text, "{"); i >= 0 {
		if j := strings.LastIndex(text, "}"); j > i {
			text = text[i : j+1]
		}
	}
	var draft ListingDraft
	if err := json.Unmarshal([]byte(text), &draft); err != nil {
		return nil, fmt.Errorf("unparseable draft: %w", err)
	}
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Description = strings.TrimSpace(draft.Description)
	if draft.Title == "" {
		return nil, fmt.Errorf("draft missing title")
	}
	return &draft, nil
}

func isRetriable(err error) bool {
	if err == nil {
		return false
	}
	e := strings.ToLower(err.Error())
	if strings.Contains(e, "status 503") || strings.Contains(e, "unavailable") {
		return true
	}
	if strings.Contains(e, "status 429") || strings.Contains(e, "resource_exhausted") || strings.Contains(e, "quota") {
		return true
	}
	return false
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
