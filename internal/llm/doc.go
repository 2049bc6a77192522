// Package llm turns free-form expense sentences into structured extraction
// results. It supports the OpenAI and Anthropic APIs plus an offline
// heuristic provider, with rate limiting, retries, and normalization of the
// untrusted model output before it reaches the rest of the application.
package llm
