package gap

import (
	"fmt"

	"jdgap-backend/internal/llm"
)

// maxPromptChars caps how much resume and JD text is embedded in the prompt.
const maxPromptChars = 8000

const systemPrompt = `You are a senior career advisor and resume expert. Your task is to analyze how well a candidate's resume matches a target job description (JD).

Evaluate along these dimensions:
1. Skill match
2. Experience relevance
3. Education fit
4. Alignment of projects/achievements with the role's requirements

You must return a strict JSON object in this exact format:
{
  "match_score": integer from 0 to 100,
  "summary": "one-sentence summary of the match",
  "strengths": [
    {"point": "matching strength", "evidence": "specific evidence from the resume"}
  ],
  "gaps": [
    {"point": "gap", "priority": "high/medium/low", "suggestion": "remediation suggestion"}
  ],
  "keywords": [
    {"jd_keyword": "keyword from the JD", "evidence": "matching resume content (may be null)", "recommended_phrase": "phrasing to use in the resume"}
  ],
  "craft_questions": ["follow-up questions that help the candidate supply missing information"]
}

Rules:
- strengths: 3-6 entries
- gaps: 3-6 entries, sorted by priority (high first)
- keywords: the 5-10 most important keywords
- craft_questions: 2-4 entries that help the candidate add effective detail`

// buildMessages assembles the chat messages for one analysis call.
func buildMessages(resumeText, jdText, targetRole string) []llm.Message {
	return []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildUserPrompt(resumeText, jdText, targetRole)},
	}
}

func buildUserPrompt(resumeText, jdText, targetRole string) string {
	roleInfo := ""
	if targetRole != "" {
		roleInfo = fmt.Sprintf("Target role: %s\n\n", targetRole)
	}
	return fmt.Sprintf(`%s## Resume
%s

## Job Description (JD)
%s

Analyze the match between the resume and the JD and return the analysis as JSON.`,
		roleInfo, truncateRunes(resumeText, maxPromptChars), truncateRunes(jdText, maxPromptChars))
}

// truncateRunes limits s to n characters without splitting a UTF-8 sequence.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
