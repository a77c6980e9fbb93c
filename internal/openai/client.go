package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/pathakanu/medTrack/internal/adherence"
	"github.com/pathakanu/medTrack/internal/model"
)

// Client wraps the OpenAI SDK for the health analysis call and speech
// synthesis.
type Client struct {
	apiKey string
	client *openai.Client
	model  openai.ChatModel
}

// ErrClientNotInitialised is returned when attempting to call the API without a configured client.
var ErrClientNotInitialised = errors.New("openai client not initialised")

// Analysis is the structured result of a health analysis request. A
// response that cannot be decoded into this shape is discarded whole;
// partial results are never surfaced.
type Analysis struct {
	Summary              string   `json:"summary"`
	Recommendations      []string `json:"recommendations"`
	Warnings             []string `json:"warnings"`
	PositivePoints       []string `json:"positivePoints"`
	PotentialSideEffects []string `json:"potentialSideEffects,omitempty"`
}

// New returns an OpenAI client when apiKey is provided, otherwise a stub
// whose calls fail with ErrClientNotInitialised.
func New(apiKey string) *Client {
	if apiKey == "" {
		return &Client{}
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		apiKey: apiKey,
		client: &client,
		model:  openai.ChatModelGPT4oMini,
	}
}

const analysisSystemPrompt = `You are a caring medical assistant specialising in elderly health.
Analyse the patient's day and respond with a single JSON object, nothing else, using exactly these keys:
{"summary": string, "recommendations": [string], "warnings": [string], "positivePoints": [string], "potentialSideEffects": [string]}
Warn immediately when critical medications are overdue. Relate reported symptoms to the known side effects of taken medications. Keep the tone warm and encouraging.`

// AnalyzeHealth sends the day's vitals, adherence gaps and known side
// effects and returns the structured analysis.
func (c *Client) AnalyzeHealth(ctx context.Context, snap model.Snapshot, customHours map[string]int, hour int) (*Analysis, error) {
	if c.client == nil {
		return nil, ErrClientNotInitialised
	}

	req := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(analysisSystemPrompt),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(buildAnalysisPrompt(snap, customHours, hour)),
					},
				},
			},
		},
		Temperature:         openai.Float(0.4),
		MaxCompletionTokens: openai.Int(700),
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completion received")
	}

	return parseAnalysis(resp.Choices[0].Message.Content)
}

// buildAnalysisPrompt renders the patient's day as structured text.
func buildAnalysisPrompt(snap model.Snapshot, customHours map[string]int, hour int) string {
	report := snap.CurrentReport

	var taken, sideEffects []string
	for _, med := range snap.Medications {
		if !snap.Taken[med.ID] {
			continue
		}
		taken = append(taken, med.Name)
		if len(med.SideEffects) > 0 {
			sideEffects = append(sideEffects, fmt.Sprintf("%s: (%s)", med.Name, strings.Join(med.SideEffects, ", ")))
		}
	}

	var late []string
	for _, med := range adherence.Late(snap.Medications, snap.Taken, customHours, hour) {
		name := med.Name
		if med.Critical {
			name += " (critical)"
		}
		late = append(late, name)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Patient: %s (age %d)\n\n", snap.PatientName, snap.PatientAge)
	fmt.Fprintf(&sb, "Today's vitals:\n")
	fmt.Fprintf(&sb, "- blood pressure: %s/%s\n", orDash(report.SystolicBP), orDash(report.DiastolicBP))
	fmt.Fprintf(&sb, "- blood sugar: %s mg/dL\n", orDash(report.BloodSugar))
	fmt.Fprintf(&sb, "- oxygen: %s%%\n", orDash(report.OxygenLevel))
	fmt.Fprintf(&sb, "- heart rate: %s bpm\n", orDash(report.HeartRate))
	fmt.Fprintf(&sb, "- water intake: %d glasses\n", report.WaterIntake)
	fmt.Fprintf(&sb, "- mood: %s\n\n", orNone(report.Mood))
	fmt.Fprintf(&sb, "Medications taken today: %s\n", orNone(strings.Join(taken, ", ")))
	fmt.Fprintf(&sb, "Medications overdue: %s\n", orNone(strings.Join(late, ", ")))
	fmt.Fprintf(&sb, "Known side effects of taken medications: %s\n", orNone(strings.Join(sideEffects, " | ")))
	fmt.Fprintf(&sb, "Current symptoms: %s\n", orNone(strings.Join(report.Symptoms, ", ")))
	fmt.Fprintf(&sb, "Patient notes: %s\n", orNone(report.Notes))
	return sb.String()
}

// parseAnalysis decodes the model output, tolerating a fenced code block
// but rejecting anything that is not the expected object.
func parseAnalysis(content string) (*Analysis, error) {
	text := strings.TrimSpace(content)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var analysis Analysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, fmt.Errorf("invalid analysis output: %w", err)
	}
	if analysis.Summary == "" {
		return nil, fmt.Errorf("analysis output missing summary")
	}
	return &analysis, nil
}

// Synthesize converts text to speech audio bytes.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}
	if c.client == nil {
		return nil, ErrClientNotInitialised
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := c.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model: openai.SpeechModelTTS1,
		Voice: openai.AudioSpeechNewParamsVoiceAlloy,
		Input: text,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func orDash(v int) string {
	if v == 0 {
		return "--"
	}
	return fmt.Sprintf("%d", v)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}
