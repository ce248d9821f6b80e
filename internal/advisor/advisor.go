// Package advisor is the engine's optional natural-language advisor: given
// a Violation, produce a human-readable explanation of why it was flagged
// and how to fix it. Spec §1 places this out of scope as "an external
// collaborator with a specified contract only" — the orchestrator never
// calls it; a hosting CLI may wire it in on top of a finished Report.
//
// Grounded on the teacher's diagnostic package (analyzer.go's structured,
// non-text result shape and prompt.go's BuildAnalysisPrompt string
// builder), generalized from "explain why our taint analyzer may have
// missed a flow an LLM found" to "explain why this architectural rule
// fired". The teacher calls an LLM over plain net/http (no third-party
// client SDK in the pack), so NetHTTPAdvisor does the same.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shivasurya/code-pathfinder/archrules/model"
)

// Advisor produces a natural-language explanation for a single violation.
type Advisor interface {
	Explain(ctx context.Context, v model.Violation) (string, error)
}

// Noop is the default Advisor: it never makes a network call and always
// returns a deterministic, rule-metadata-derived explanation. Satisfies
// "specified contract only" when no external advisor is configured.
type Noop struct{}

// Explain returns a templated explanation built only from the violation's
// own fields.
func (Noop) Explain(_ context.Context, v model.Violation) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) flagged at %s.\n", v.RuleName, v.RuleID, v.Location.String())
	if chain := v.ChainString(); chain != "" {
		fmt.Fprintf(&b, "Call chain: %s\n", chain)
	}
	b.WriteString(v.Message)
	return b.String(), nil
}

// NetHTTPAdvisor calls an OpenAI-compatible chat completion endpoint to
// explain a violation in prose, grounded on the teacher's
// diagnostic/prompt.go + diagnostic/analyzer.go LLM-call shape (plain
// net/http POST of a JSON chat-completion request, no SDK dependency).
type NetHTTPAdvisor struct {
	Endpoint string
	APIKey   string
	Model    string
	Client   *http.Client
}

// NewNetHTTPAdvisor creates an advisor that posts to endpoint using apiKey
// bearer auth and the given model name.
func NewNetHTTPAdvisor(endpoint, apiKey, model string) *NetHTTPAdvisor {
	return &NetHTTPAdvisor{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Model:    model,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Explain builds a prompt from the violation and posts it to the
// configured chat-completion endpoint, returning the first choice's
// message content.
func (a *NetHTTPAdvisor) Explain(ctx context.Context, v model.Violation) (string, error) {
	payload := chatRequest{
		Model: a.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You explain static architectural rule violations concisely for a developer fixing them."},
			{Role: "user", Content: buildExplainPrompt(v)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("advisor: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("advisor: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.APIKey)
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("advisor: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("advisor: endpoint returned %d: %s", resp.StatusCode, string(data))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("advisor: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("advisor: empty response")
	}
	return parsed.Choices[0].Message.Content, nil
}

// buildExplainPrompt renders a violation into a natural-language prompt,
// grounded on the teacher's BuildAnalysisPrompt string-builder style.
func buildExplainPrompt(v model.Violation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rule %s (%s), severity %s, fired at %s.\n", v.RuleID, v.RuleName, v.Severity, v.Location.String())
	fmt.Fprintf(&b, "Message: %s\n", v.Message)
	if chain := v.ChainString(); chain != "" {
		fmt.Fprintf(&b, "Call chain: %s\n", chain)
	}
	b.WriteString("Explain in two or three sentences why this violates the architectural rule and how to fix it.")
	return b.String()
}
