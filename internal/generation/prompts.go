package generation

import "fmt"

// FallbackPhrase is the exact text the assistant is instructed to emit when
// the supplied transcript context does not cover a question. The pipeline
// never synthesizes it; the model decides when it applies.
const FallbackPhrase = "This information is not available in the transcript."

const systemInstruction = "You are an educational assistant that helps users understand YouTube video content. " +
	"You provide summaries and answer questions based STRICTLY on the video transcript provided. " +
	"Never use information outside what's explicitly in the transcript. " +
	"If asked about something not covered in the transcript, respond with '" + FallbackPhrase + "'"

func summaryPrompt(context string) string {
	return fmt.Sprintf("Summarize the following video transcript in bullet points using markdown:\n\n%s\n\nSummary:", context)
}

func answerPrompt(question, context string) string {
	return fmt.Sprintf(
		"You are a helpful assistant. Use the transcript below to answer the user's question as accurately as possible. "+
			"Respond in markdown format with bullet points or short paragraphs as needed.\n\n"+
			"**Transcript:**\n%s\n\n**Question:** %s\n\n**Answer:**",
		context, question)
}
