package agents

// Loose JSON schemas used for best-effort shape validation of provider
// output. Only field presence and basic typing are enforced; the
// post-processing step coerces everything else.

const profileSchema = `{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "skills": {"type": ["array", "string"]},
    "education": {"type": "string"},
    "experience": {"type": "string"},
    "contact": {"type": "string"},
    "years_of_experience": {"type": ["integer", "number", "string"]}
  },
  "required": ["name"]
}`

const matchSchema = `{
  "type": "object",
  "properties": {
    "match_score": {"type": ["integer", "number", "string"]},
    "grade": {"type": "string"},
    "matched_skills": {"type": ["array", "string"]},
    "missing_skills": {"type": ["array", "string"]},
    "summary": {"type": "string"}
  },
  "required": ["match_score"]
}`

const recommendationsSchema = `{
  "type": "object",
  "properties": {
    "recommended_skills": {"type": ["array", "string"]},
    "learning_paths": {"type": "array"},
    "summary": {"type": "string"}
  },
  "required": ["recommended_skills"]
}`
