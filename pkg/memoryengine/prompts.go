package memoryengine

import (
	"fmt"
	"strings"

	"github.com/memoria-systems/memoria/pkg/memory"
	"github.com/memoria-systems/memoria/pkg/rankingkernel"
)

// buildPrompt composes the fixed template from spec.md §4.3: a labeled
// "Recent Chat" block, a labeled "Semantically Relevant Memories" block
// (when semantic retrieval ran), and a labeled "Important Memories (ranked
// by RFM)" block (when RFM retrieval ran), followed by the user's turn.
func buildPrompt(userInput string, recent []memory.ChatRecord, semantic []memory.Similar, rfm []memory.Record) string {
	var b strings.Builder

	if len(recent) > 0 {
		b.WriteString("Recent Chat:\n")
		for _, c := range recent {
			fmt.Fprintf(&b, "- (%s) User: %s | Assistant: %s\n",
				rankingkernel.TimeAgoHuman(c.Timestamp), c.UserMessage, c.BotResponse)
		}
		b.WriteString("\n")
	}

	if len(semantic) > 0 {
		b.WriteString("Semantically Relevant Memories:\n")
		for _, m := range semantic {
			fmt.Fprintf(&b, "- %s (similarity=%.2f, %s)\n", m.Text, m.Similarity, rankingkernel.TimeAgoHuman(m.LastUsed))
		}
		b.WriteString("\n")
	}

	if len(rfm) > 0 {
		b.WriteString("Important Memories (ranked by RFM):\n")
		for _, m := range rfm {
			fmt.Fprintf(&b, "- %s (rfm_score=%.2f, %s)\n", m.Text, m.RFMScore, rankingkernel.TimeAgoHuman(m.LastUsed))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "User: %s\n", userInput)
	return b.String()
}

// extractPrompt asks the oracle for 0-2 candidate memory sentences from a
// single exchange (spec.md §4.4 Step A).
func extractPrompt(userMsg, botResp string) string {
	return fmt.Sprintf(`From the exchange below, extract 0 to 2 short, third-person sentences
about the user that would be useful to remember in future conversations.
Each sentence should be about 15 words, rich in nouns and verbs. Write each
on its own line prefixed with "- ". If nothing is worth remembering, reply
with exactly "None".

User: %s
Assistant: %s`, userMsg, botResp)
}

// decisionPrompt formats the candidate and up to 3 similar existing
// memories, asking for exactly one of add/merge:<indices>/override:<indices>/none
// (spec.md §4.4 Step B).
func decisionPrompt(candidate string, similar []memory.Similar) string {
	var b strings.Builder
	b.WriteString("Candidate memory:\n")
	fmt.Fprintf(&b, "%s\n\n", candidate)

	if len(similar) == 0 {
		b.WriteString("There are no existing similar memories.\n\n")
	} else {
		b.WriteString("Existing similar memories:\n")
		for i, m := range similar {
			fmt.Fprintf(&b, "%d. %s (similarity=%.2f)\n", i+1, m.Text, m.Similarity)
		}
		b.WriteString("\n")
	}

	b.WriteString(`Decide how the candidate relates to the existing memories above. Reply with
exactly one of:
- add
- merge:<comma-separated 1-based indices>
- override:<comma-separated 1-based indices>
- none
`)
	return b.String()
}

// consolidatePrompt asks the oracle to merge an existing memory with a
// candidate into one sentence (spec.md §4.4 Step C, merge).
func consolidatePrompt(existingText, candidateText string) string {
	return fmt.Sprintf(`Merge the following two statements about the same user into one sentence
of at most 20 words (or two short sentences), preserving the important
keywords from both.

Existing: %s
New: %s`, existingText, candidateText)
}

// magnitudePrompt asks the oracle to score a memory's importance on a 0-5
// integer scale (spec.md §4.4 Step C, add/merge/override).
func magnitudePrompt(text string) string {
	return fmt.Sprintf(`Rate how personal or informative this memory is on an integer scale from
0 (trivial) to 5 (highly personal/important). Reply with only the digit.

Memory: %s`, text)
}
