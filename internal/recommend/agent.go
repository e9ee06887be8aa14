package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"wellbeing-insights-go/internal/logger"
	"wellbeing-insights-go/internal/types"
)

const (
	llmTimeout   = 25 * time.Second
	llmRetryTime = 45 * time.Second
)

const systemPrompt = "You are an expert HR consultant specializing in employee wellbeing and organizational development. Provide data-driven, actionable recommendations in JSON format."

// Generator builds department risk summaries and turns them into
// recommendations via an OpenAI-compatible chat endpoint, degrading to
// rule-based cards when no model is reachable.
type Generator struct {
	src   Source
	log   *logrus.Entry
	now   func() time.Time
	retry time.Duration
}

func NewGenerator(src Source, lg *logger.Logger) *Generator {
	return &Generator{
		src:   src,
		log:   lg.Component("recommend"),
		now:   time.Now,
		retry: llmRetryTime,
	}
}

// Request mirrors the recommendations endpoint payload.
type Request struct {
	Department string   `json:"department"`
	Quarter    string   `json:"quarter,omitempty"`
	Year       int      `json:"year,omitempty"`
	FocusAreas []string `json:"focus_areas,omitempty"`
}

// Generate assembles the risk context, prompts the model and parses its
// JSON answer. A transport failure degrades to the rule-based fallback and
// an unparsable answer is returned as raw text; only store failures and an
// empty filter result surface through the Error field or the returned error.
func (g *Generator) Generate(ctx context.Context, req Request) (*types.RecommendationResponse, error) {
	resp := &types.RecommendationResponse{
		Department:  req.Department,
		Quarter:     req.Quarter,
		Year:        req.Year,
		GeneratedAt: g.now().UTC().Format(time.RFC3339),
	}

	summary, err := g.RiskSummary(ctx, Query{Department: req.Department, Quarter: req.Quarter, Year: req.Year})
	if errors.Is(err, ErrNoData) {
		resp.Error = ErrNoData.Error()
		return resp, nil
	}
	if err != nil {
		return nil, err
	}
	resp.Context = summary

	if os.Getenv("USE_MOCK_LLM") == "true" {
		g.log.Info("mock LLM mode ON, returning deterministic recommendations")
		resp.Recommendations = mockOutput()
		return resp, nil
	}

	raw, err := g.complete(ctx, buildPrompt(req, summary))
	if err != nil {
		g.log.WithError(err).Warn("llm call failed, using rule-based fallback")
		resp.Recommendations = FallbackOutput(FallbackCards(summary))
		resp.Error = fmt.Sprintf("llm unavailable: %v", err)
		return resp, nil
	}

	result := Repair(raw)
	if result.IsParsed() {
		resp.Recommendations = result.Parsed
	} else {
		resp.RawText = result.RawText
		resp.Error = result.Reason
	}
	return resp, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete posts a chat completion and returns the first choice's content.
// 4xx responses are permanent; everything else retries with backoff until
// the retry window closes. Defaults target a local Ollama gateway.
func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	apiURL := os.Getenv("LLM_GATEWAY_URL")
	if apiURL == "" {
		apiURL = "http://localhost:11434/v1/chat/completions"
	}
	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = "llama3.2"
	}
	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" {
		apiKey = "ollama"
	}

	payload := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	}
	data, _ := json.Marshal(payload)

	var content string
	var lastErr error

	op := func() error {
		callCtx, cancel := context.WithTimeout(ctx, llmTimeout)
		defer cancel()

		req, _ := http.NewRequestWithContext(callCtx, "POST", apiURL, bytes.NewReader(data))
		req.Header.Set("Authorization", "Bearer "+apiKey)
		req.Header.Set("Content-Type", "application/json")

		client := &http.Client{Timeout: llmTimeout}
		httpResp, err := client.Do(req)
		if err != nil {
			lastErr = err
			g.log.WithError(err).Warn("llm request failed")
			return err
		}
		defer httpResp.Body.Close()

		body, _ := io.ReadAll(httpResp.Body)
		g.log.WithField("http_status", httpResp.StatusCode).Debug("llm response received")

		if httpResp.StatusCode >= 400 {
			lastErr = fmt.Errorf("llm status %d: %s", httpResp.StatusCode, strings.TrimSpace(string(body)))
			if httpResp.StatusCode < 500 {
				return backoff.Permanent(lastErr)
			}
			return lastErr
		}

		var parsed chatResponse
		if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Choices) == 0 {
			lastErr = fmt.Errorf("unexpected llm response: %s", strings.TrimSpace(string(body)))
			return lastErr
		}
		content = strings.TrimSpace(parsed.Choices[0].Message.Content)
		lastErr = nil
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = g.retry

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return "", fmt.Errorf("llm completion failed: %w", lastErr)
	}
	return content, nil
}

const promptTemplate = `You are an expert HR consultant analyzing employee wellbeing data. Based on the following data for the %s department, provide specific, actionable recommendations to improve employee satisfaction and reduce risks.

**Department Data Summary:**
- Department: %s
- Quarter: %s
- Year: %s
- Total Employees: %d
- Total Survey Responses: %d
- Average Workload: %s hours

**Risk Metrics:**
- Burnout Risk: %.1f%%
- Turnover Risk: %.1f%%
- Bad Sentiment Count: %d out of %d
- Bad Score Count: %d responses

**Average Scores (1-10 scale):**
- Job Satisfaction: %s
- Work-Life Balance: %s
- Manager Support: %s
- Growth Opportunities: %s
- eNPS: %s
- Sentiment: %s

**Common Issues (Categories):**
%s

**Sample Employee Comments:**
%s

**Focus Areas:** %s

Based on this data, provide:
1. **Top 3 Priority Actions** - Immediate steps to address the most critical issues
2. **Recommended Events/Programs** - Specific team-building activities, workshops, or initiatives
3. **Long-term Strategies** - Sustainable changes to improve department culture
4. **Metrics to Track** - KPIs to monitor improvement

Format your response as a JSON object with the following structure:
{
    "priority_actions": [
        {"action": "description", "rationale": "why this is important", "timeline": "when to implement"}
    ],
    "recommended_events": [
        {"event": "name", "description": "details", "expected_impact": "what this will improve"}
    ],
    "long_term_strategies": [
        {"strategy": "description", "implementation": "how to implement"}
    ],
    "metrics_to_track": ["metric1", "metric2", "metric3"]
}

Provide only the JSON response, no additional text.`

func buildPrompt(req Request, s *types.RiskSummary) string {
	quarter := req.Quarter
	if quarter == "" {
		quarter = "All quarters"
	}
	year := "All years"
	if req.Year != 0 {
		year = strconv.Itoa(req.Year)
	}

	return fmt.Sprintf(promptTemplate,
		req.Department,
		req.Department,
		quarter,
		year,
		s.TotalEmployees,
		s.TotalResponses,
		scoreOrNA(s.AvgWorkload),
		s.BurnoutRiskPercentage,
		s.TurnoverRiskPercentage,
		s.BadSentimentCount,
		s.TotalResponses,
		s.BadScoreCount,
		scoreOrNA(s.AvgJobSatisfaction),
		scoreOrNA(s.AvgWorkLifeBalance),
		scoreOrNA(s.AvgManagerSupport),
		scoreOrNA(s.AvgGrowthOpportunities),
		scoreOrNA(s.AvgENPS),
		scoreOrNA(s.AvgSentiment),
		listOr(s.CommonBadCategories, "None identified"),
		commentLines(s.SampleBadComments),
		listOr(req.FocusAreas, "All areas"),
	)
}

func scoreOrNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

func listOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

// commentLines renders up to three sample comments as a bulleted block.
func commentLines(comments []string) string {
	if len(comments) == 0 {
		return "No comments available"
	}
	if len(comments) > 3 {
		comments = comments[:3]
	}
	lines := make([]string, len(comments))
	for i, c := range comments {
		lines[i] = "- " + c
	}
	return strings.Join(lines, "\n")
}

// mockOutput backs USE_MOCK_LLM=true for offline demos.
func mockOutput() *types.RecommendationOutput {
	return &types.RecommendationOutput{
		PriorityActions: []types.PriorityAction{
			{
				Action:    "Run workload rebalancing session with team leads",
				Rationale: "Work-life balance scores trail the rest of the survey",
				Timeline:  "Within 2 weeks",
			},
			{
				Action:    "Start monthly growth check-ins for flagged employees",
				Rationale: "Low growth scores drive the turnover risk tier",
				Timeline:  "Within 1 month",
			},
		},
		RecommendedEvents: []types.RecommendedEvent{
			{
				Event:          "Focus Friday",
				Description:    "One meeting-free day per sprint for deep work",
				ExpectedImpact: "Recovers focus time and lowers reported overload",
			},
		},
		LongTermStrategies: []types.LongTermStrategy{
			{
				Strategy:       "Publish internal mobility paths per role",
				Implementation: "Quarterly career panels plus a posted skills matrix",
			},
		},
		MetricsToTrack: []string{"Burnout_Rate", "Turnover_Risk", "eNPS", "Overall_Engagement"},
	}
}
