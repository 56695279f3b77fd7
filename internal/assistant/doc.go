// Package assistant talks to an OpenAI-compatible chat completion endpoint to
// generate asset trees from natural-language prompts.
//
// The client retries transient failures (408, 429, 5xx and timeouts) with
// capped exponential backoff, honoring Retry-After when the server sends it.
// A Conversation keeps earlier turns so follow-up prompts refine the last tree.
package assistant
