package agents

// Static payloads served when every provider fails or none is
// configured. They mirror the shapes the providers are asked for, so
// post-processing treats them exactly like a real response.

const demoProfileJSON = `{
  "name": "Alex Johnson",
  "skills": [
    "Python",
    "Java",
    "SQL",
    "ML",
    "NLP",
    "AI",
    "Data Science",
    "Machine Learning",
    "Spark",
    "TensorFlow",
    "Communication",
    "Leadership"
  ],
  "education": "M.S. in Computer Science, Stanford University (2020-2022)\nB.S. in Statistics, UC Berkeley (2016-2020)",
  "experience": "Senior Data Scientist at Tech Innovations (2022-Present)\nData Analyst at DataCorp (2020-2022)",
  "contact": "alex.johnson@example.com | (555) 123-4567",
  "years_of_experience": 5
}`

const demoMatchJSON = `{
  "match_score": 75,
  "grade": "B",
  "matched_skills": [],
  "missing_skills": [],
  "summary": "Detailed matching unavailable; estimate based on general profile fit."
}`

const demoRecommendationsJSON = `{
  "recommended_skills": [
    "Cloud Computing (AWS/GCP)",
    "Docker",
    "Kubernetes",
    "System Design",
    "Advanced SQL"
  ],
  "learning_paths": [
    {
      "skill": "Cloud Computing (AWS/GCP)",
      "level": "beginner",
      "resources": ["AWS Cloud Practitioner Essentials", "Google Cloud Skills Boost"],
      "duration": "4-6 weeks"
    },
    {
      "skill": "Docker",
      "level": "beginner",
      "resources": ["Docker official getting started guide"],
      "duration": "2-3 weeks"
    }
  ],
  "summary": "Broadly useful skills for most software and data roles."
}`
