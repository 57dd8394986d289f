package inference

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"google.golang.org/genai"

	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
	"github.com/CamiloThisPunk/PlanUnsch/internal/validation"
)

const (
	DefaultGeminiEndpoint   = "https://generativelanguage.googleapis.com/"
	DefaultGeminiAPIVersion = "v1beta"
	DefaultGeminiModel      = "gemini-2.5-flash"

	// DefaultMaxResponseBytes caps how much of a generateContent response is read.
	DefaultMaxResponseBytes = 8 << 20
)

// GeminiConfig configures the Gemini generateContent client.
type GeminiConfig struct {
	Endpoint         string
	APIVersion       string
	APIKey           string
	Model            string
	HTTPClient       *http.Client
	MaxResponseBytes int64
	Now              func() time.Time
}

// Gemini asks a Gemini model to list the events in a syllabus.
type Gemini struct {
	cfg       GeminiConfig
	client    *genai.Client
	validator *validation.Validator
}

// NewGemini builds a Gemini client, filling unset fields with defaults.
// Endpoints carrying a version suffix such as ".../v1beta" are split into
// base URL and API version.
func NewGemini(cfg GeminiConfig, v *validation.Validator) (*Gemini, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultGeminiModel
	}
	cfg.Endpoint, cfg.APIVersion = splitEndpoint(cfg.Endpoint, cfg.APIVersion)
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	base := http.DefaultClient
	if cfg.HTTPClient != nil {
		base = cfg.HTTPClient
	}
	hc := *base
	transport := hc.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	hc.Transport = limitedTransport{base: transport, limit: cfg.MaxResponseBytes}
	cfg.HTTPClient = &hc

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.Endpoint,
			APIVersion: cfg.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{cfg: cfg, client: client, validator: v}, nil
}

func splitEndpoint(endpoint, version string) (string, string) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultGeminiEndpoint
	}
	if i := strings.LastIndexByte(endpoint, '/'); i >= 0 {
		last := endpoint[i+1:]
		if strings.HasPrefix(last, "v1") {
			endpoint = endpoint[:i]
			if version == "" {
				version = last
			}
		}
	}
	if version == "" {
		version = DefaultGeminiAPIVersion
	}
	return strings.TrimRight(endpoint, "/") + "/", version
}

// limitedTransport truncates response bodies at limit bytes.
type limitedTransport struct {
	base  http.RoundTripper
	limit int64
}

func (t limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	res, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	res.Body = limitedBody{Reader: io.LimitReader(res.Body, t.limit), Closer: res.Body}
	return res, nil
}

type limitedBody struct {
	io.Reader
	io.Closer
}

var eventSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {Type: genai.TypeString, Description: "Concise title of the academic event."},
			"date":  {Type: genai.TypeString, Description: "Due date in YYYY-MM-DD format."},
			"type": {
				Type:        genai.TypeString,
				Enum:        []string{"Exam", "Assignment", "Reading", "Project", "Other"},
				Description: "The kind of event.",
			},
		},
		Required:         []string{"title", "date", "type"},
		PropertyOrdering: []string{"title", "date", "type"},
	},
}

func (g *Gemini) prompt(text string) string {
	year := g.cfg.Now().Year()
	return fmt.Sprintf(`You are an expert academic assistant. Analyze the following university syllabus text and extract every academic event.
An academic event is any task or date with a deadline, such as an exam, quiz, assignment, project, paper or required reading.
For each event identify its title, its due date and its type.
The date MUST be in YYYY-MM-DD format. If no year is given, assume the current year is %d.
The type must be one of: Exam, Assignment, Reading, Project, Other.
Return the results as a JSON array of objects. If no events are found, return an empty array.

Syllabus text:
---
%s
---`, year, text)
}

// Infer sends text to the model and returns the validated candidates.
func (g *Gemini) Infer(ctx context.Context, text string) ([]models.Candidate, error) {
	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(g.prompt(text)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   eventSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	raw, err := parseGenerateResponse(resp)
	if err != nil {
		return nil, err
	}
	candidates := Sanitize(g.validator, raw)
	logger.Infof("Gemini returned %d candidates (%d kept) in %v", len(raw), len(candidates), time.Since(start).Round(time.Millisecond))
	return candidates, nil
}

func parseGenerateResponse(resp *genai.GenerateContentResponse) ([]models.Candidate, error) {
	if resp == nil {
		return nil, fmt.Errorf("generate response is empty")
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return nil, fmt.Errorf("prompt blocked: %s", fb.BlockReason)
	}

	text := stripCodeFence(strings.TrimSpace(resp.Text()))
	if text == "" {
		if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
			if reason := resp.Candidates[0].FinishReason; reason != "" && reason != genai.FinishReasonStop {
				return nil, fmt.Errorf("generation stopped: %s", reason)
			}
		}
		return nil, fmt.Errorf("generate response has no text")
	}
	return parseCandidates(text)
}

// parseCandidates reads a JSON array of events, or an object wrapping one under "events".
func parseCandidates(text string) ([]models.Candidate, error) {
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("model output is not valid JSON")
	}
	result := gjson.Parse(text)
	if result.IsObject() {
		result = result.Get("events")
	}
	if !result.IsArray() {
		return nil, fmt.Errorf("model output is not a list of events")
	}

	var out []models.Candidate
	result.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		kind := item.Get("type").String()
		if kind == "" {
			kind = item.Get("category").String()
		}
		out = append(out, models.Candidate{
			Title: item.Get("title").String(),
			Date:  models.Date(item.Get("date").String()),
			Type:  models.EventType(kind),
		})
		return true
	})
	return out, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
