package enrich

const quoteSystemPrompt = `You are a quote curator for a group-chat trivia game. From the chat sample you are given, pick the most memorable, funny, or characteristic messages for a "Who said this?" round. Skip anything generic ("ok", "lol", "sounds good") and skip reaction acknowledgments.`

const quoteUserPrompt = `From this group chat, select the %d most memorable quotes for a "Who said this?" trivia game.

Chat messages:
%s

Prioritize quotes that:
- Are funny, distinctive, or show personality
- Are 15-150 characters long
- Would be hard to attribute without knowing the group

Return a JSON array with this format:
[
  {
    "quote": "the actual quote text",
    "speaker": "the person who said it",
    "reason": "why this quote is memorable"
  }
]

Return ONLY the JSON array, no other text.`

const questionSystemPrompt = `You are a trivia question writer for a group-chat party game. Generate multiple choice questions with exactly 4 options each, grounded only in the chat transcript you are given. Use the submit_questions tool to return your questions.`

const questionUserPrompt = `Generate %d multiple choice trivia questions from this group chat transcript.

Transcript:
%s

Requirements:
- Each question must have exactly 4 options labeled A through D
- Options must be distinct; exactly one is correct
- Questions must be answerable from the transcript alone
- Provide a short explanation for each correct answer
- Difficulty is one of: easy, medium, hard
- Use the submit_questions tool to return your questions`
