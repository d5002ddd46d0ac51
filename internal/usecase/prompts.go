package usecase

const topicSystemPrompt = "You are a helpful assistant."

const topicUserPromptFormat = `Your tasks are the following:
0. Read the user's query: %s
1. Identify and extract the principal main topic of the user's query. There can only be one principal main topic.
2. Check if the user's query is inappropriate or nonsense input.
3. Return the main topic only, without any other text, as standalone text.
4. Do not include anything else other than the main topic: no symbols, no decorators, no curly brackets, just the main topic.`

const summarySystemPrompt = `You are a skilled summarizer specializing in encyclopedia content. Your goal is to craft concise, informative summaries that directly answer the user's query.
Focus on the most relevant information and present it in a way that enhances the user's understanding of the topic.`

const summaryUserPromptFormat = `Question: %s

Article Text:

%s

Summary:`
