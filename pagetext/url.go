package pagetext

import (
	"fmt"
	"strings"

	"mvdan.cc/xurls/v2"

	"github.com/vinayprograms/pagesum/errors"
)

// FindURL returns the first http(s) URL in text. A bare URL is returned
// unchanged; anything else (a pasted sentence, a chat line) is scanned.
func FindURL(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.InvalidInput("no page URL given")
	}

	re, err := xurls.StrictMatchingScheme("https?://")
	if err != nil {
		return "", fmt.Errorf("failed to create regexp: %w", err)
	}

	u := re.FindString(text)
	if u == "" {
		return "", errors.InvalidInput(fmt.Sprintf("no http(s) URL found in %q", text))
	}
	return u, nil
}
