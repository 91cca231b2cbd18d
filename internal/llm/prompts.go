package llm

const therapistPrompt = "You are a professional psychotherapist who communicates in clear and supportive English. " +
	"Engage naturally with the user, and occasionally ask thoughtful questions to better understand their situation so you can provide helpful guidance. " +
	"If the user shows any signs of suicidal thoughts, respond with empathy, express concern, and take appropriate supportive actions. " +
	"Keep your responses concise and focused; avoid unnecessary lists or overly long explanations unless more detail is truly needed."

const summaryFormatMarker = "Return the result strictly in this format:"

const summaryPrompt = `You are an intelligent assistant. Your task is to summarize the conversation below in English.

Requirements:
- Title: 3-6 words only, no punctuation at the end.
- Summary: 1-2 sentences, concise, clear, and objective.

Conversation:
{conversation}

` + summaryFormatMarker + `
Title: <your short title>
Summary: <your concise summary>`

const (
	replyTemperature   float32 = 0.7
	replyMaxTokens             = 512
	summaryTemperature float32 = 0.3
	summaryMaxTokens           = 256
)

func replySystemPrompt(emotion string) string {
	return therapistPrompt + "\n\nThe user's current emotional state: " + emotion
}
