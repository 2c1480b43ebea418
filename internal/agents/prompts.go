package agents

import (
	"fmt"

	"jobsniper/internal/config"
)

const defaultParsePrompt = `Extract the following information from this resume in JSON format:

Resume Content:
%s

Extract the following fields:
1. name: The candidate's full name
2. skills: A list of all technical and soft skills mentioned
3. education: Details about education including degrees and institutions
4. experience: Work experience details with company names and durations
5. contact: Contact information (email, phone)
6. years_of_experience: Estimated total years of experience

Return ONLY valid JSON with these fields. Do not include any additional text or explanation.`

const defaultMatchPrompt = `Compare this candidate profile against the job description and return a JSON assessment.

Candidate Profile:
%s

Job Description:
%s

Return ONLY valid JSON with these fields:
1. match_score: Overall compatibility score from 0 to 100
2. grade: Letter grade for the match (A+, A, B+, B, C+, C, or D)
3. matched_skills: List of candidate skills that the job requires
4. missing_skills: List of required skills the candidate lacks
5. summary: Two or three sentences explaining the assessment`

const defaultRecommendPrompt = `Recommend skills for this candidate to learn next and return a JSON plan.

Candidate Profile:
%s

Target Role:
%s

Return ONLY valid JSON with these fields:
1. recommended_skills: List of 5-8 skills ordered by impact
2. learning_paths: List of objects with fields skill, level, resources (list), duration
3. summary: Two or three sentences explaining the recommendations`

// resolvePrompt returns the configured override when set, otherwise
// the built-in default
func resolvePrompt(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}

func buildParsePrompt(prompts config.PromptConfig, resumeText string) string {
	return fmt.Sprintf(resolvePrompt(prompts.ParseResume, defaultParsePrompt), resumeText)
}

func buildMatchPrompt(prompts config.PromptConfig, profileJSON, jobDescription string) string {
	return fmt.Sprintf(resolvePrompt(prompts.MatchJob, defaultMatchPrompt), profileJSON, jobDescription)
}

func buildRecommendPrompt(prompts config.PromptConfig, profileJSON, targetRole string) string {
	if targetRole == "" {
		targetRole = "not specified; recommend broadly useful skills for the candidate's field"
	}
	return fmt.Sprintf(resolvePrompt(prompts.RecommendSkills, defaultRecommendPrompt), profileJSON, targetRole)
}
