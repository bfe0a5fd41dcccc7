package prompt

import (
	"fmt"
	"strings"

	"github.com/alecf/careerprep/internal/models"
)

const (
	// CoachSystemPrompt is used for free-text generations
	CoachSystemPrompt = `You are an experienced career coach and technical interviewer.
Write for the candidate directly. Be specific, practical, and encouraging.`

	// JSONSystemPrompt is used when the response must be a JSON document
	JSONSystemPrompt = `You are an experienced career coach and technical interviewer.

CRITICAL RULES:
1. Respond with a single JSON document and nothing else
2. Do not wrap the JSON in markdown code blocks
3. Follow the requested format exactly, including field names
4. Do not add notes or explanations outside the JSON`

	coverLetterTemplate = `Write a professional cover letter for a %s position at %s.

About the candidate:
- Industry: %s
- Years of Experience: %d
- Skills: %s
- Professional Background: %s

Job Description:
%s

Requirements:
1. Use a professional, enthusiastic tone
2. Highlight relevant skills and experience
3. Show understanding of the company's needs
4. Keep it concise (max 400 words)
5. Use proper business letter formatting in markdown
6. Include specific examples of achievements
7. Relate candidate's background to job requirements

Format the letter in markdown.`

	quizTemplate = `Generate 10 technical interview questions for a %s professional%s.

Each question should be multiple choice with 4 options.

Return the response in this JSON format only, no additional text:
{
  "questions": [
    {
      "question": "string",
      "options": ["string", "string", "string", "string"],
      "correctAnswer": "string",
      "explanation": "string"
    }
  ]
}`

	jobQuestionsTemplate = `Generate 8 targeted interview questions for a job interview based on:

Student's Skills: %s
Job Description: %s
%s
Create questions that:
1. Match the job requirements if a job description is provided
2. Test the candidate's actual technical skills
3. Include behavioral and technical questions
4. Are realistic for actual interviews

Return the response in this JSON format only, no additional text:
{
  "questions": [
    {
      "question": "string",
      "type": "technical",
      "context": "why this question is asked",
      "suggestedAnswer": "string",
      "tips": ["tip1", "tip2", "tip3"]
    }
  ]
}`

	insightsTemplate = `Analyze the current state of the %s industry and provide insights in ONLY the following JSON format without any additional notes or explanations:
{
  "salaryRanges": [
    { "role": "string", "min": number, "max": number, "median": number, "location": "string" }
  ],
  "growthRate": number,
  "demandLevel": "High" | "Medium" | "Low",
  "topSkills": ["skill1", "skill2"],
  "marketOutlook": "Positive" | "Neutral" | "Negative",
  "keyTrends": ["trend1", "trend2"],
  "recommendedSkills": ["skill1", "skill2"]
}

IMPORTANT: Return ONLY the JSON. No additional text, notes, or markdown formatting.
Include at least 5 common roles for salary ranges.
Growth rate should be a percentage.
Include at least 5 skills and trends.`

	roadmapTemplate = `Create a detailed skill improvement roadmap for a professional to transition from their current skills to industry-required skills.

Current Skills: %s
Industry: %s
Target Skills to Learn: %s
Years of Experience: %s

Generate a structured 3-phase roadmap with the following JSON format ONLY (no additional text):
{
  "phases": [
    {
      "phase": 1,
      "name": "string (e.g., 'Foundation Building')",
      "duration": "string (e.g., '4 weeks')",
      "skills": ["skill1", "skill2"],
      "resources": [
        {
          "type": "course|project|practice|certification|tutorial|community",
          "title": "string",
          "platform": "string (e.g., Udemy, Coursera, GitHub)",
          "duration": "string (e.g., '20 hours')"
        }
      ],
      "milestone": "string (achievable goal for this phase)",
      "tips": "string (practical advice)"
    }
  ]
}

Requirements:
1. Create exactly 3 phases (Foundation, Development, Mastery)
2. Distribute skills across phases logically
3. Include 3-4 realistic resources per phase
4. Make milestones achievable and measurable
5. Provide practical, actionable tips
6. Estimate realistic timeframes based on skill difficulty`

	challengesTemplate = `Generate 5 coding interview practice problems in %s%s.

Return the response in this JSON format only, no additional text:
{
  "challenges": [
    {
      "title": "string",
      "description": "string",
      "difficulty": "Easy" | "Medium" | "Hard",
      "language": "%s",
      "category": "string (e.g., Arrays, Strings, Graphs)",
      "starterCode": "string",
      "solution": "string",
      "testCases": [
        { "input": "string", "expectedOutput": "string", "explanation": "string" }
      ],
      "hints": ["hint1", "hint2"]
    }
  ]
}`

	improvementTipTemplate = `The user got the following %s technical interview questions wrong:

%s

Based on these mistakes, provide a concise, specific improvement tip.
Focus on the knowledge gaps revealed by these wrong answers.
Keep the response under 2 sentences and make it encouraging.
Don't explicitly mention the mistakes, instead focus on what to learn/practice.`
)

// CoverLetter builds the cover letter prompt
func CoverLetter(user models.User, job models.JobTarget) string {
	return fmt.Sprintf(coverLetterTemplate,
		job.JobTitle, job.CompanyName,
		user.Industry, user.Experience, strings.Join(user.Skills, ", "), user.Bio,
		job.JobDescription)
}

// Quiz builds the multiple-choice quiz prompt
func Quiz(industry string, skills []string) string {
	expertise := ""
	if len(skills) > 0 {
		expertise = " with expertise in " + strings.Join(skills, ", ")
	}
	return fmt.Sprintf(quizTemplate, industry, expertise)
}

// JobQuestions builds the targeted interview question prompt. The resume
// text, when known, is appended as extra context.
func JobQuestions(skillsList, jobDescription, resumeText string) string {
	if jobDescription == "" {
		jobDescription = "Not provided - generate general questions for their skills"
	}
	resume := ""
	if resumeText = strings.TrimSpace(resumeText); resumeText != "" {
		resume = "\nResume:\n" + resumeText + "\n"
	}
	return fmt.Sprintf(jobQuestionsTemplate, skillsList, jobDescription, resume)
}

// IndustryInsights builds the market insight prompt
func IndustryInsights(industry string) string {
	return fmt.Sprintf(insightsTemplate, industry)
}

// SkillRoadmap builds the three-phase roadmap prompt
func SkillRoadmap(currentSkills []string, industry string, skillsToLearn []string, experience int) string {
	current := strings.Join(currentSkills, ", ")
	if current == "" {
		current = "Basic fundamentals"
	}
	if industry == "" {
		industry = "Technology"
	}
	years := "Entry-level"
	if experience > 0 {
		years = fmt.Sprintf("%d", experience)
	}
	return fmt.Sprintf(roadmapTemplate, current, industry, strings.Join(skillsToLearn, ", "), years)
}

// CodingChallenges builds the practice problem prompt
func CodingChallenges(language, difficulty string) string {
	level := ""
	if difficulty != "" {
		level = " at " + difficulty + " difficulty"
	}
	return fmt.Sprintf(challengesTemplate, language, level, language)
}

// ImprovementTip builds the follow-up prompt for wrongly answered questions
func ImprovementTip(industry string, wrong []models.QuestionResult) string {
	parts := make([]string, len(wrong))
	for i, q := range wrong {
		parts[i] = fmt.Sprintf("Question: %q\nCorrect Answer: %q\nUser Answer: %q", q.Question, q.Answer, q.UserAnswer)
	}
	return fmt.Sprintf(improvementTipTemplate, industry, strings.Join(parts, "\n\n"))
}
