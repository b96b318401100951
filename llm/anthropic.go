package llm

import (
	"encoding/json"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/vinayprograms/pagesum/preferences"
)

// AnthropicVersion is the Messages API version header value.
const AnthropicVersion = "2023-06-01"

// ClaudeSystemPrompt is the persona sent as the system field.
const ClaudeSystemPrompt = "You are a helpful assistant that summarizes web pages into a concise and informative summary."

const (
	claudeMaxTokens    = 500
	claudeTemperature  = 0.7
	claudePrimer       = "Page summary: <summary>"
	claudeStopSequence = "</summary>"
)

// buildClaude encodes a Messages call. The assistant turn primes the reply
// inside a <summary> tag and the stop sequence ends it at the closing tag.
func buildClaude(sel preferences.Selection, pageText, markup string) ([]byte, http.Header, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(sel.Model),
		MaxTokens:   claudeMaxTokens,
		Temperature: anthropic.Float(claudeTemperature),
		System: []anthropic.TextBlockParam{
			{Text: ClaudeSystemPrompt + markup},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(
				"Human: " + sel.Instruction + "\n" + pageText + "\n\nAssistant:",
			)),
			anthropic.NewAssistantMessage(anthropic.NewTextBlock(claudePrimer)),
		},
		StopSequences: []string{claudeStopSequence},
	}
	body, err := json.Marshal(params)
	if err != nil {
		return nil, nil, err
	}

	h := http.Header{}
	h.Set("x-api-key", sel.Secret)
	h.Set("anthropic-version", AnthropicVersion)
	h.Set("anthropic-dangerous-direct-browser-access", "true")
	return body, h, nil
}

// parseClaude returns the first content block's text. A body without a
// content array, such as an error object, is rejected.
func parseClaude(body []byte) (string, error) {
	if err := checkEnvelope(body, "content", true); err != nil {
		return "", err
	}
	var msg anthropic.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return "", err
	}
	if len(msg.Content) == 0 {
		return "", nil
	}
	return msg.Content[0].Text, nil
}
