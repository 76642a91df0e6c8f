package narrative

import (
	"context"
	"fmt"
	"os"
	"strings"

	"filing_digest/pkg/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// RiskAgent extracts risk factors through a dedicated Gemini client.
// It predates the unified Provider path and keeps its own model handle
// so risk extraction can run on a different model than the rest of the
// enrichment.
type RiskAgent struct {
	client    *genai.Client
	modelName string
}

// NewRiskAgent creates the agent from the GEMINI_API_KEY environment variable.
func NewRiskAgent(ctx context.Context) (*RiskAgent, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	return &RiskAgent{
		client:    client,
		modelName: "gemini-2.0-flash",
	}, nil
}

// IdentifyRisks asks the model for the material risk factors in a
// filing excerpt. Returns nil when the model reports none.
func (a *RiskAgent) IdentifyRisks(ctx context.Context, companyName string, filingExcerpt string) (*models.Risks, error) {
	model := a.client.GenerativeModel(a.modelName)
	model.SetTemperature(0.2)

	fullPrompt := fmt.Sprintf("%s\n\nCompany: %s\n\nFiling Excerpt:\n%s\n\nReturn ONLY valid JSON.",
		riskSystemPrompt, companyName, filingExcerpt)

	resp, err := model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	return parseRisks(sb.String())
}
