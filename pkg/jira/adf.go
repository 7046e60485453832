package jira

import (
	"strings"

	"github.com/felixgeelhaar/jirasdk/core/issue"
)

// Document converts plain text to an ADF document with one paragraph per
// blank-line separated block. Empty input yields an empty document.
func Document(text string) *issue.ADF {
	doc := issue.NewADF()
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		doc.AddParagraph(para)
	}
	return doc
}

// PlainText flattens an ADF document back to text, joining paragraphs with
// blank lines.
func PlainText(doc *issue.ADF) string {
	if doc.IsEmpty() {
		return ""
	}
	var paras []string
	for _, block := range doc.Content {
		var sb strings.Builder
		collectText(block, &sb)
		if sb.Len() > 0 {
			paras = append(paras, sb.String())
		}
	}
	return strings.Join(paras, "\n\n")
}

func collectText(n issue.ADFNode, sb *strings.Builder) {
	if n.Type == "text" {
		sb.WriteString(n.Text)
	}
	for _, c := range n.Content {
		collectText(c, sb)
	}
}
