package llm

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/vinayprograms/pagesum/preferences"
)

const deepSeekTemperature = 0.7

// buildDeepSeek encodes an OpenAI-compatible chat completion. With a markup
// fragment it is the system turn, followed by instruction and page text as
// two user turns. Without one the instruction is the system turn.
func buildDeepSeek(sel preferences.Selection, pageText, markup string) ([]byte, http.Header, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if markup != "" {
		messages = []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(strings.TrimSpace(markup)),
			openai.UserMessage(sel.Instruction),
			openai.UserMessage(pageText),
		}
	} else {
		messages = []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(sel.Instruction),
			openai.UserMessage(pageText),
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(sel.Model),
		Messages:    messages,
		Temperature: openai.Float(deepSeekTemperature),
	}
	body, err := json.Marshal(params)
	if err != nil {
		return nil, nil, err
	}
	return body, bearer(sel.Secret), nil
}

// parseDeepSeek returns the first choice's content. A missing choices
// field decodes to no text.
func parseDeepSeek(body []byte) (string, error) {
	if err := checkEnvelope(body, "choices", false); err != nil {
		return "", err
	}
	var resp openai.ChatCompletion
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
