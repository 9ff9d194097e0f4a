package query

import (
	"fmt"
	"strings"

	"github.com/calyptra/dochub/index"
)

// answerPromptTemplate grounds the model in retrieved chunks. The
// instructions keep answers inside the hub's domain even for vague questions.
const answerPromptTemplate = `Use the context below to answer accurately and completely.

- Always use the provided context.
- Infer missing details logically if partially available.
- If the question is generic, answer in the context domain.
- Be concise and clear.

Context: %s

Question: %s

Answer:`

// renderPrompt assembles the final prompt from retrieved chunks and the question.
func renderPrompt(hits []index.SearchHit, question string) string {
	texts := make([]string, 0, len(hits))
	for _, hit := range hits {
		texts = append(texts, hit.Chunk.Text)
	}
	return fmt.Sprintf(answerPromptTemplate, strings.Join(texts, "\n\n"), question)
}
