package scoring

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the instruction text sent alongside the response schema.
func BuildPrompt(in Input, language string) string {
	if language == "" {
		language = "English"
	}

	var b strings.Builder
	b.WriteString("You are a personality psychologist analysing a 4-dimension personality questionnaire ")
	b.WriteString("for SoulMatch, a Danish app that helps lonely people find friends and communities.\n\n")

	b.WriteString("Each answer is a slider value from 0 (strongly disagree) to 100 (strongly agree).\n")
	b.WriteString("Dimensions: EI = Extrovert(E)/Introvert(I), SN = Sensing(S)/Intuition(N), ")
	b.WriteString("TF = Thinking(T)/Feeling(F), JP = Judging(J)/Perceiving(P).\n")
	b.WriteString("For a question with reversed=false a high answer points to the FIRST letter of its dimension; ")
	b.WriteString("for reversed=true a high answer points to the SECOND letter.\n\n")

	b.WriteString("Answers:\n")
	for i, it := range in.Items {
		fmt.Fprintf(&b, "%d. [%s, reversed=%t] %q -> %d\n", i+1, it.Dimension, it.Reversed, it.QuestionText, it.AnswerValue)
	}

	b.WriteString("\nProfile context (use ONLY to personalise the descriptions, never to change scores):\n")
	fmt.Fprintf(&b, "Bio: %s\n", orNone(in.Bio))
	fmt.Fprintf(&b, "Interests: %s\n", orNone(strings.Join(in.Interests, ", ")))
	fmt.Fprintf(&b, "Personality tags: %s\n", orNone(strings.Join(in.PersonalityTags, ", ")))

	b.WriteString("\nFor every dimension decide the dominant trait letter and a score from 0 to 100 ")
	b.WriteString("expressing how strongly the answers lean towards that trait (50 = perfectly balanced, 100 = maximal). ")
	fmt.Fprintf(&b, "Write each description in %s, two or three warm sentences addressed to the user. ", language)
	b.WriteString("Return exactly one entry per dimension in the order EI, SN, TF, JP, ")
	b.WriteString("and a type_code made of the four dominant letters in that order.")

	return b.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}
