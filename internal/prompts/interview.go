// Package prompts holds the text templates sent to the Generative Text
// Service.
package prompts

import "fmt"

// DomainPrediction asks for a bare job title for the description.
func DomainPrediction(jobDescription string) string {
	prompt := `Analyze the following job description and predict the most appropriate job title/domain.
Return ONLY the job title (e.g., "Data Scientist", "Frontend Developer") in plain text, no additional text.

Job Description:
%s`
	return fmt.Sprintf(prompt, jobDescription)
}

const HRQuestionSystem = "You are an expert HR interviewer. Generate only the interview questions, no additional text."

// HRQuestions requests n behavioural questions, the first being a
// self-introduction.
func HRQuestions(domain string, n int) string {
	prompt := `Generate exactly %d basic HR and behavioral interview questions for a %s candidate. First question should be self introduction.
Return ONLY a clean numbered list of questions with no additional commentary or formatting.
Example:
1. Tell me about a time you faced a difficult challenge at work
2. Describe a situation where you had to work with a difficult teammate`
	return fmt.Sprintf(prompt, n, domain)
}

const TechQuestionSystem = "You are a technical interviewer. Return ONLY the questions as a numbered list."

// TechQuestions requests n technical questions at the given difficulty.
func TechQuestions(domain, difficulty string, n int) string {
	prompt := `Generate exactly %d %s-level technical questions for %s.
Return ONLY a clean numbered list like:
1. Question one?
2. Question two?
No introductory text or additional commentary.`
	return fmt.Sprintf(prompt, n, difficulty, domain)
}

const HREvaluatorSystem = `You are an expert HR interviewer with 15 years of experience at top tech companies.
Your task is to generate relevant HR interview questions or evaluate answers with detailed feedback.
For evaluations, provide:
1. Score (1-10)
2. Detailed feedback
3. 3 actionable improvement tips`

// HREvaluation asks for a labelled evaluation of one HR answer.
func HREvaluation(question, answer string) string {
	prompt := `Evaluate this HR interview response:
Question: %s
Answer: %s

Provide:
1. Numerical score (1-10) labeled 'Score:'
2. Detailed feedback labeled 'Feedback:'
3. Exactly 3 improvement tips labeled 'Improvement Tips:'
Use this exact format:
Score: [number]/10
Feedback: [text]
Improvement Tips:
- [tip 1]
- [tip 2]
- [tip 3]`
	return fmt.Sprintf(prompt, question, answer)
}

const TechEvaluatorSystem = `You are a senior technical interviewer at a top tech company.
Your tasks:
1. Generate relevant technical questions for specific job domains
2. Evaluate technical answers with:
   - Accuracy score (1-10)
   - Detailed technical feedback
   - Actionable improvement suggestions`

// TechEvaluation asks for a labelled evaluation including knowledge gaps.
func TechEvaluation(domain, question, answer string) string {
	prompt := `Evaluate this technical interview response for %s:
Question: %s
Answer: %s

Provide:
1. Accuracy score (1-10) labeled 'Score:'
2. Technical feedback labeled 'Feedback:'
3. 2-3 improvement tips labeled 'Improvement Tips:'
4. Any identified knowledge gaps labeled 'Knowledge Gaps:'

Use this exact format:
Score: [number]/10
Feedback: [detailed technical analysis]
Improvement Tips:
- [tip 1]
- [tip 2]
Knowledge Gaps:
- [gap 1]`
	return fmt.Sprintf(prompt, domain, question, answer)
}
