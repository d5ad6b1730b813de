// Package answer generates short natural-language answers about movies. It
// renders the supporting catalog records into a grounding prompt and calls
// an OpenAI-compatible chat completion endpoint, retrying transient HTTP
// failures with exponential backoff.
package answer
