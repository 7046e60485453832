package jira

import "testing"

func TestDocument(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		paras int
	}{
		{"empty", "", 0},
		{"single", "one line", 1},
		{"two paragraphs", "first\n\nsecond", 2},
		{"blank blocks skipped", "first\n\n\n\n  \n\nsecond", 2},
		{"single newline stays in paragraph", "a\nb", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Document(tt.in)
			if doc.Type != "doc" || doc.Version != 1 {
				t.Errorf("unexpected root %+v", doc)
			}
			if len(doc.Content) != tt.paras {
				t.Errorf("expected %d paragraphs, got %d", tt.paras, len(doc.Content))
			}
		})
	}
}

func TestPlainText(t *testing.T) {
	in := "first\n\nsecond"
	if got := PlainText(Document(in)); got != in {
		t.Errorf("PlainText = %q, want %q", got, in)
	}
	if got := PlainText(nil); got != "" {
		t.Errorf("PlainText(nil) = %q, want empty", got)
	}
}
