package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"scavnger-backend/internal/metrics"
	"scavnger-backend/internal/pipeline"
	"scavnger-backend/internal/utils"
)

// ProofVerifier judges proof submissions with a generative vision model.
// It is strictly fail-closed: a model call error, empty response, or
// unparseable judgment yields verified=false with a diagnostic reason.
// Ambiguous oracle state must never authorize a blockchain submission.
type ProofVerifier struct {
	client *genai.Client
	model  string
	logger *logrus.Logger
}

// NewProofVerifier creates the Gemini-backed verification oracle. The API
// key is required; its absence is a startup error for the oracle service.
func NewProofVerifier(ctx context.Context, apiKey, model string, logger *logrus.Logger) (*ProofVerifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if logger == nil {
		logger = logrus.New()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &ProofVerifier{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// BuildJudgePrompt constructs the fixed judging instruction: challenge
// context, strict skepticism, and a two-field JSON verdict.
func BuildJudgePrompt(challengeTitle, taskDescription string) string {
	return fmt.Sprintf(`You are the strict AI Judge for a high-stakes crypto challenge called "Protocol 75".
Users stake real money on their discipline. Your job is to verify if their proof matches the daily task.

CONTEXT:
- Challenge Name: %q
- Daily Task Requirement: %q

INSTRUCTIONS:
1. Analyze the provided image or text proof strictly.
2. If the proof clearly demonstrates the task (e.g., a gym selfie for a workout task, code commit for a coding task), mark as VERIFIED.
3. If the proof is vague, irrelevant, unrelated, or looks fake (e.g., a black screen, a picture of a wall, or code that doesn't match), mark as REJECTED.
4. Be skeptical. If in doubt, reject.

OUTPUT FORMAT:
Return ONLY a JSON object with this structure:
{
  "verified": boolean,
  "reason": "Short explanation of your decision"
}`, challengeTitle, taskDescription)
}

// Verify implements pipeline.VerificationOracle.
func (v *ProofVerifier) Verify(ctx context.Context, challengeTitle, taskDescription string, proof pipeline.ProofSubmission) pipeline.Decision {
	parts := []*genai.Part{
		genai.NewPartFromText(BuildJudgePrompt(challengeTitle, taskDescription)),
	}

	if proof.Kind == pipeline.ProofKindImage {
		data, err := utils.DecodeProofImage(proof.Content)
		if err != nil {
			metrics.OracleFailClosed.WithLabelValues("bad_image").Inc()
			return pipeline.Decision{Verified: false, Reason: "Proof image could not be decoded"}
		}
		contentType := proof.ContentType
		if contentType == "" {
			contentType = utils.DataURLContentType(proof.Content, "image/jpeg")
		}
		parts = append(parts, genai.NewPartFromBytes(data, contentType))
	} else {
		parts = append(parts, genai.NewPartFromText("USER PROOF SUBMISSION:\n"+proof.Content))
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := v.client.Models.GenerateContent(ctx, v.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		oerr := &pipeline.OracleError{Reason: "model call failed", Err: err}
		v.logger.WithError(oerr).Error("Verification oracle call failed, rejecting fail-closed")
		metrics.OracleFailClosed.WithLabelValues("call_failed").Inc()
		return pipeline.Decision{Verified: false, Reason: "Verification system error"}
	}

	text := resp.Text()
	v.logger.WithField("judgment", text).Debug("🤖 Gemini judgment received")

	decision, err := ParseDecision(text)
	if err != nil {
		oerr := &pipeline.OracleError{Reason: "unparseable judgment", Err: err}
		v.logger.WithError(oerr).Error("Verification oracle judgment unusable, rejecting fail-closed")
		metrics.OracleFailClosed.WithLabelValues("parse_failed").Inc()
		return pipeline.Decision{Verified: false, Reason: "AI returned an unusable response"}
	}

	return decision
}

// ParseDecision parses the model's structured verdict. Empty output or a
// verdict missing the reason field is an error; the caller rejects
// fail-closed.
func ParseDecision(text string) (pipeline.Decision, error) {
	trimmed := strings.TrimSpace(text)
	// Some models wrap JSON output in a markdown fence despite the response
	// MIME type.
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	if trimmed == "" {
		return pipeline.Decision{}, fmt.Errorf("empty model response")
	}

	var decision pipeline.Decision
	if err := json.Unmarshal([]byte(trimmed), &decision); err != nil {
		return pipeline.Decision{}, fmt.Errorf("failed to parse judgment: %w", err)
	}
	if decision.Reason == "" {
		return pipeline.Decision{}, fmt.Errorf("judgment missing reason")
	}
	return decision, nil
}

// Close releases the underlying model client.
func (v *ProofVerifier) Close() error {
	// The genai client holds no resources that need explicit release beyond
	// its HTTP transport.
	return nil
}
