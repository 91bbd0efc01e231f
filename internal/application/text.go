package application

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/ericfisherdev/ttsvault/internal/domain/model"
)

var (
	blankRuns        = regexp.MustCompile(`[ \t]*\n[ \t\n]*`)
	spaceBeforePunct = regexp.MustCompile(` +([,.;:!?])`)
)

// TextNormalizer reduces markdown or HTML input to the plain text that is
// sent for synthesis. Plain text passes through untouched.
type TextNormalizer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewTextNormalizer creates a normalizer with a strip-all HTML policy.
func NewTextNormalizer() *TextNormalizer {
	policy := bluemonday.StrictPolicy()
	policy.AddSpaceWhenStrippingTag(true)
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
	)
	return &TextNormalizer{md: md, policy: policy}
}

// Normalize converts text of the given format to plain text. An empty
// format is treated as plain.
func (n *TextNormalizer) Normalize(text string, format model.TextFormat) (string, error) {
	switch format {
	case "", model.TextFormatPlain:
		return text, nil
	case model.TextFormatMarkdown:
		var buf bytes.Buffer
		if err := n.md.Convert([]byte(text), &buf); err != nil {
			return "", fmt.Errorf("render markdown: %w", err)
		}
		return n.strip(buf.String()), nil
	case model.TextFormatHTML:
		return n.strip(text), nil
	default:
		return "", fmt.Errorf("%w: unsupported text_format %q", ErrInvalidRequest, format)
	}
}

func (n *TextNormalizer) strip(markup string) string {
	// StrictPolicy re-escapes entities in the text it keeps.
	plain := html.UnescapeString(n.policy.Sanitize(markup))

	lines := strings.Split(blankRuns.ReplaceAllString(plain, "\n"), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return spaceBeforePunct.ReplaceAllString(strings.Join(out, "\n"), "$1")
}
