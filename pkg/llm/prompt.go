package llm

import (
	"fmt"
	"strings"
)

const promptVersion = "v1"

const systemPrompt = `You are an expert Amazon listing optimizer. You rewrite product titles, bullet points and descriptions so they are clear, keyword-rich and compliant with marketplace style rules.

Rules:
1. Keep every factual claim: sizes, materials, quantities, compatibility
2. Do not invent features, certifications or awards
3. Title under 200 characters, most important keywords first
4. Five concise bullet points, each starting with a short benefit phrase
5. Description in plain prose, no HTML
6. Keywords are comma-separated search terms not already in the title`

// BuildOptimizePrompt renders the user prompt for one listing. The output is
// deterministic for a given input.
func BuildOptimizePrompt(input OptimizeInput) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Original Title:\n%s\n\n", input.Title))
	sb.WriteString(fmt.Sprintf("Original Bullets:\n%s\n\n", strings.Join(input.Bullets, "\n")))
	sb.WriteString(fmt.Sprintf("Original Description:\n%s\n\n", input.Description))
	sb.WriteString(`Return ONLY a valid JSON object with exactly these keys and no other text:
{
  "opt_title": "optimized title",
  "opt_bullets": ["bullet 1", "bullet 2"],
  "opt_description": "optimized description",
  "keywords": "keyword one, keyword two"
}`)
	return sb.String()
}
