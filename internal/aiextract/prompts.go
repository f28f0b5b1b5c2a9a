package aiextract

import (
	"fmt"
	"strings"
)

const SystemPrompt = "You convert exam documents into structured question data. Reply with JSON only."

const ExtractionPromptTemplate = `You are an exam question extractor.
Extract every question from the input text.

Output a STRICT JSON array, no prose before or after it:
[
  {
    "text": "full question stem including any scenario or context that precedes it",
    "type": "multipleChoice|true_false|enumeration|essay",
    "options": ["option text", "..."],
    "correctAnswer": "string",
    "hasEmbeddedAnswer": false,
    "embeddedAnswerLetter": ""
  }
]

Rules:
- "text" must contain all scenario/context needed to answer, ending with "?" or ".".
- multipleChoice: list option texts without their letters; correctAnswer is the text of the correct option.
- true_false: options are ["True","False"]; correctAnswer is "true" or "false".
- enumeration: options are []; correctAnswer lists the expected items.
- essay: options are []; correctAnswer is "".
- Some exams encode the answer in the question label: "B2." means question 2 and the correct option is B.
  In that case set hasEmbeddedAnswer true, embeddedAnswerLetter to the letter, and correctAnswer to that option.
- Do not invent questions that are not in the text.
- If there are no questions, return [].

Few-shot example:
Input: "B2. What is the boiling point of water? A) 50C B) 100C C) 150C"
Output: [{"text":"What is the boiling point of water?","type":"multipleChoice","options":["50C","100C","150C"],"correctAnswer":"100C","hasEmbeddedAnswer":true,"embeddedAnswerLetter":"B"}]
`

const FallbackPromptTemplate = `List the exam questions found in the text below as a JSON array.
Each item: {"text": "...", "type": "multipleChoice", "options": ["..."], "correctAnswer": "..."}.
Return only the JSON array.
`

func BuildExtractionPrompt(text string) string {
	return ExtractionPromptTemplate + "\n\nText:\n" + strings.TrimSpace(text)
}

func BuildFallbackPrompt(text string) string {
	return FallbackPromptTemplate + "\nText:\n" + strings.TrimSpace(text)
}

// BuildBlockPrompt asks for the question(s) in one block. The model may answer
// with an object or an array.
func BuildBlockPrompt(block string) string {
	return ExtractionPromptTemplate + "\n\nThe input is a single question block. Return an array with one item unless it clearly holds several questions.\n\nText:\n" + strings.TrimSpace(block)
}

// BuildAnswerOptionsPrompt asks for options consistent with a known answer.
func BuildAnswerOptionsPrompt(questionText, answer string) string {
	return fmt.Sprintf(`Write four multiple choice options for the question below.
One option must be exactly %q; the other three must be plausible but wrong.
Return STRICT JSON: {"options": ["...", "...", "...", "..."], "correctAnswer": %q}

Question: %s`, answer, answer, strings.TrimSpace(questionText))
}

// BuildQuestionForAnswerPrompt asks for a question whose answer is known.
func BuildQuestionForAnswerPrompt(source, answer string) string {
	return fmt.Sprintf(`Using only the context below, write one multiple choice question whose correct answer is %q.
Return STRICT JSON: {"text": "...", "type": "multipleChoice", "options": ["...", "...", "...", "..."], "correctAnswer": %q}

Context:
%s`, answer, answer, strings.TrimSpace(source))
}
