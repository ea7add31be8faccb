// Package assistant answers the messages that are not part of a booking
// dialogue: questions about the consulting programme, greetings, follow-ups.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ingenieria-ia/booking-chat-backend/internal/chat"
)

const systemPrompt = "Eres el asistente virtual de KIT CONSULTING, especializado en ayudas " +
	"gubernamentales para la transformación digital de empresas. " +
	"Tu objetivo es explicar el programa y guiar a los usuarios en el proceso. " +
	"Si detectas interés, especialmente en servicios de IA, " +
	"sugiere agendar una cita de consultoría."

// Assistant implements chat.Responder on top of Gemini.
type Assistant struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func New(ctx context.Context, apiKey, modelName string) (*Assistant, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	return &Assistant{client: client, model: model}, nil
}

func (a *Assistant) Close() error {
	return a.client.Close()
}

// Respond sends the message with the (fragment-stripped) history as chat
// context and returns the model's text reply.
func (a *Assistant) Respond(ctx context.Context, message string, history []chat.Turn) (string, error) {
	cs := a.model.StartChat()
	cs.History = toContents(history)

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("gemini returned no text")
	}
	return sb.String(), nil
}

func toContents(history []chat.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		role := "model"
		if t.IsUser {
			role = "user"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(t.Text)},
		})
	}
	return contents
}
