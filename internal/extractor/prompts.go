package extractor

// The three analysis prompts. Each instructs the model to answer with a
// single JSON object matching the task's schema; the client rejects and
// re-asks anything that does not.

const sentimentPrompt = `You are a call quality analyst for a university admissions call center.
The call is between a PROSPECT (prospective applicant) and an AGENT (admissions representative).

Analyze the transcript below and return ONLY a JSON object with exactly these keys:
{
  "overall_sentiment": "",
  "prospect_emotion": "",
  "agent_emotion": "",
  "interest_level": ""
}

Rules:
- overall_sentiment MUST be one of: Positive, Neutral, Negative.
- prospect_emotion: one short label for the prospect's dominant emotion (e.g. enthusiasm, doubt, frustration, calm).
- agent_emotion: one short label for the agent's dominant emotional register (e.g. empathy, professionalism, impatience).
- interest_level MUST be one of: High, Medium, Low. It measures how interested the prospect is in enrolling.
- Ground every judgement in the transcript. Do not invent details.
- Return ONLY the JSON object. No commentary, no markdown fences.

TRANSCRIPT:
"""%s"""
`

const topicIntentPrompt = `You are a call analytics engine for a university admissions call center.
The call is between a PROSPECT (prospective applicant) and an AGENT (admissions representative).

Analyze the transcript below and return ONLY a JSON object with exactly these keys:
{
  "topics": [],
  "enrollment_intent": "",
  "keywords": [],
  "questions": []
}

Rules:
- topics: the subjects discussed. Prefer these categories when they apply:
  Admission Requirements, Costs, Scholarships, Schedules, Program Curriculum, Enrollment Process, Other.
  You may add a short free-text topic if none fits.
- enrollment_intent MUST be "Yes" or "No": does the prospect indicate willingness to continue the admissions process?
- keywords: AT MOST 5 short keywords that characterize the call.
- questions: the literal questions the prospect asked, quoted from the transcript in order.
- Return ONLY the JSON object. No commentary, no markdown fences.

TRANSCRIPT:
"""%s"""
`

const improvementPrompt = `You are a service quality coach for a university admissions call center.
The call is between a PROSPECT (prospective applicant) and an AGENT (admissions representative).

A prior analysis of this call concluded:
- overall sentiment: %s
- prospect emotion: %s
- agent emotion: %s
- prospect interest level: %s

Using that analysis and the transcript below, return ONLY a JSON object with exactly these keys:
{
  "justification": "",
  "improvement_action": ""
}

Rules:
- justification: 1-3 sentences explaining the sentiment and interest assessment, citing concrete moments in the call.
- improvement_action: one concrete action the agent or institution should take next time. If the call had no
  meaningful weakness, state a minor refinement rather than inventing a problem.
- Return ONLY the JSON object. No commentary, no markdown fences.

TRANSCRIPT:
"""%s"""
`
