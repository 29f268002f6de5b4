package prompts

import "fmt"

// ImprovementSuggestions embeds the serialised interview performance.
func ImprovementSuggestions(performanceJSON string) string {
	prompt := `Analyze these interview responses and provide:
1. 3 key strengths (bullet points)
2. 3 areas needing improvement (bullet points)
3. 3 specific action items (bullet points)

Interview Performance:
%s

Format as JSON with keys: strengths, improvements, action_items`
	return fmt.Sprintf(prompt, performanceJSON)
}

func CourseRecommendations(domain string) string {
	prompt := `Recommend 5 best online courses for %s.
For each provide: title, platform, description, and url.
Format as JSON with 'courses' array.`
	return fmt.Sprintf(prompt, domain)
}

func EntryLevelTitles(domain string) string {
	prompt := `Suggest 3 entry-level job titles in %s for someone with beginner skills.
Just return the job titles as a comma-separated list. Do NOT include any explanation or extra text.`
	return fmt.Sprintf(prompt, domain)
}
