// Package ai defines the narrow interfaces dochub needs from AI services:
// embedding text into vectors and generating grounded answers from a prompt.
//
// Implementations live in subpackages (ai/openai for OpenAI-compatible APIs,
// ai/mock for tests). Consumers depend only on the interfaces here, so the
// embedding model and chat model are swappable configuration, not
// architecture.
package ai
