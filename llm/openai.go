package llm

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"github.com/vinayprograms/pagesum/preferences"
)

// buildOpenAI encodes a Responses API call with a single combined input.
func buildOpenAI(sel preferences.Selection, pageText, markup string) ([]byte, http.Header, error) {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(sel.Model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(sel.Instruction + markup + pageText),
		},
	}
	body, err := json.Marshal(params)
	if err != nil {
		return nil, nil, err
	}
	return body, bearer(sel.Secret), nil
}

// parseOpenAI joins every assistant output_text part, in order.
func parseOpenAI(body []byte) (string, error) {
	if err := checkEnvelope(body, "output", true); err != nil {
		return "", err
	}
	var resp responses.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}

	var parts []string
	for _, item := range resp.Output {
		if item.Type != "message" || string(item.Role) != "assistant" {
			continue
		}
		for _, c := range item.Content {
			if c.Type == "output_text" {
				parts = append(parts, c.Text)
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}
