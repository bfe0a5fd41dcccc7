package coach

import (
	"github.com/alecf/careerprep/internal/models"
	"github.com/alecf/careerprep/internal/parser"
)

var quizShape = parser.JSON[models.Quiz]("quiz", `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["question", "options", "correctAnswer"],
        "properties": {
          "question": {"type": "string", "minLength": 1},
          "options": {"type": "array", "minItems": 4, "maxItems": 4, "items": {"type": "string"}},
          "correctAnswer": {"type": "string"},
          "explanation": {"type": "string"}
        }
      }
    }
  }
}`)

var jobQuestionsShape = parser.JSON[models.JobQuestionSet]("jobQuestions", `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["question", "type"],
        "properties": {
          "question": {"type": "string", "minLength": 1},
          "type": {"type": "string"},
          "context": {"type": "string"},
          "suggestedAnswer": {"type": "string"},
          "tips": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`)

var insightsShape = parser.JSON[models.Insights]("industryInsights", `{
  "type": "object",
  "required": ["salaryRanges", "growthRate", "demandLevel", "topSkills", "marketOutlook", "keyTrends", "recommendedSkills"],
  "properties": {
    "salaryRanges": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["role", "min", "max", "median"],
        "properties": {
          "role": {"type": "string"},
          "min": {"type": "number"},
          "max": {"type": "number"},
          "median": {"type": "number"},
          "location": {"type": "string"}
        }
      }
    },
    "growthRate": {"type": "number"},
    "demandLevel": {"enum": ["High", "Medium", "Low"]},
    "topSkills": {"type": "array", "minItems": 1, "items": {"type": "string"}},
    "marketOutlook": {"enum": ["Positive", "Neutral", "Negative"]},
    "keyTrends": {"type": "array", "items": {"type": "string"}},
    "recommendedSkills": {"type": "array", "items": {"type": "string"}}
  }
}`)

var roadmapShape = parser.JSON[models.Roadmap]("skillRoadmap", `{
  "type": "object",
  "required": ["phases"],
  "properties": {
    "phases": {
      "type": "array",
      "minItems": 3,
      "maxItems": 3,
      "items": {
        "type": "object",
        "required": ["phase", "name", "skills"],
        "properties": {
          "phase": {"type": "integer"},
          "name": {"type": "string"},
          "duration": {"type": "string"},
          "skills": {"type": "array", "items": {"type": "string"}},
          "resources": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["type", "title"],
              "properties": {
                "type": {"type": "string"},
                "title": {"type": "string"},
                "platform": {"type": "string"},
                "duration": {"type": "string"}
              }
            }
          },
          "milestone": {"type": "string"},
          "tips": {"type": "string"}
        }
      }
    }
  }
}`)

var challengesShape = parser.JSON[models.ChallengeSet]("codingChallenges", `{
  "type": "object",
  "required": ["challenges"],
  "properties": {
    "challenges": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["title", "description", "difficulty", "testCases"],
        "properties": {
          "title": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "difficulty": {"enum": ["Easy", "Medium", "Hard"]},
          "language": {"type": "string"},
          "category": {"type": "string"},
          "starterCode": {"type": "string"},
          "solution": {"type": "string"},
          "testCases": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["input", "expectedOutput"],
              "properties": {
                "input": {"type": "string"},
                "expectedOutput": {"type": "string"},
                "explanation": {"type": "string"}
              }
            }
          },
          "hints": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`)
