package extract

import (
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownStrategy extracts plain text from markdown by parsing the AST and
// dropping formatting. Registered before PlainStrategy so that text/markdown
// doesn't get indexed with its markup noise.
type MarkdownStrategy struct{}

// Handles reports whether the MIME type looks like markdown.
func (s *MarkdownStrategy) Handles(mimeType string) bool {
	return strings.Contains(strings.ToLower(mimeType), "markdown")
}

// Extract walks the parsed AST and collects text content, separating block
// nodes with blank lines so paragraph boundaries survive for the chunker.
func (s *MarkdownStrategy) Extract(_ context.Context, data []byte) (*Result, error) {
	parser := goldmark.New()
	doc := parser.Parser().Parse(text.NewReader(data))

	var builder strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			builder.Write(node.Segment.Value(data))
			if node.SoftLineBreak() || node.HardLineBreak() {
				builder.WriteString("\n")
			}
		case *ast.String:
			builder.Write(node.Value)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if builder.Len() > 0 && !strings.HasSuffix(builder.String(), "\n\n") {
				builder.WriteString("\n\n")
			}
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				builder.Write(line.Value(data))
			}
		default:
			// Separate block-level nodes with a blank line.
			if n.Type() == ast.TypeBlock && builder.Len() > 0 && !strings.HasSuffix(builder.String(), "\n\n") {
				builder.WriteString("\n\n")
			}
		}
		return ast.WalkContinue, nil
	})

	return &Result{Text: strings.TrimSpace(builder.String())}, nil
}
