package models

const (
	// ThinkTag strips reasoning blocks some models emit before the answer.
	ThinkTag = `(?s)<think>.*?</think>`
)

var (
	ExtractPromptTemplate = `You are a helpful assistant designed to extract information from a document based on a user-provided keyword.

Keyword: %s

Please extract all information from the document that is relevant to the keyword. Present the information in a clear and concise manner.
Respond with a JSON object of the form {"relevantInformation": "..."} and nothing else.
`

	AnswerPromptTemplate = `You are an expert at answering questions based on uploaded documents.

You will be given a document and a question. You will answer the question based on the document, and provide references to the source material.

Question: %s

Respond with a JSON object of the form {"answer": "...", "sources": ["..."]} and nothing else.
`

	FollowUpPromptTemplate = `You are an expert AI assistant that answers questions based on the context of a document.

Previous Question: %s
Previous Answer: %s

Follow-up Question: %s

Respond with a JSON object of the form {"answer": "..."} and nothing else.
`

	DocumentTextPreamble = "Document Text:\n%s"

	DocumentMediaPreamble = "Document (analyze content from the attached media):"
)
