// Package llm generates email copy with a chat completion model.
package llm

import "context"

// Generator produces the body and subject of an email from a resolved prompt.
// Implementations return raw model text; callers clean it up.
type Generator interface {
	GenerateBody(ctx context.Context, prompt string) (string, error)
	GenerateSubject(ctx context.Context, prompt string) (string, error)
}

const (
	bodySystemPrompt = "You are an expert email writer. Create professional, friendly email content based on the user's prompt. " +
		"Return ONLY the email body content as plain text without any HTML tags, markdown formatting, or code blocks."
	bodyUserPrompt = `Write an email body with this prompt: "%s". Make it professional and engaging. ` +
		"Return ONLY the email body content as plain text."

	subjectSystemPrompt = "You are an expert email subject line writer. Create compelling, professional subject lines."
	subjectUserPrompt   = `Create a subject line for an email about: "%s". Keep it under 60 characters.`
)
