package chat

import (
	"fmt"
	"strings"
)

// promptInstructions is the fixed instruction block appended after the
// context section. It tells the model to prefer supplied context but
// permits falling back to general knowledge with a disclosure.
const promptInstructions = `Answer the question below. Prefer the context documents above when they are relevant. If the context does not cover the question, you may answer from general knowledge, but say explicitly that the answer is not based on the knowledge base.`

const promptInstructionsNoContext = `Answer the question below. No knowledge-base documents are available, so answer from general knowledge and say explicitly that the answer is not based on the knowledge base.`

// BuildPrompt concatenates the retrieved documents and the question into the
// model prompt. Documents are included verbatim, in retrieval order, with no
// deduplication, ranking, or chunking. With zero documents the context
// section is omitted entirely.
func BuildPrompt(question string, docs []Document) string {
	var b strings.Builder

	if len(docs) > 0 {
		b.WriteString("Context documents:\n\n")
		for i, d := range docs {
			fmt.Fprintf(&b, "Document %d: %s\n%s\n\n", i+1, d.Title, d.Content)
		}
		b.WriteString(promptInstructions)
	} else {
		b.WriteString(promptInstructionsNoContext)
	}

	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String()
}
