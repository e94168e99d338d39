package config

import "time"

const (
	// History window sent with a freeform turn: last 5 turns, i.e. up to
	// 10 messages (user + assistant per turn), oldest first.
	HistoryWindowMessages = 10

	// AI request timeout
	RequestTimeout = 90 * time.Second

	// Web page fetch timeout for URL summarization
	PageFetchTimeout = 30 * time.Second

	// Chat titles derived from the first user message are truncated to this
	// many runes.
	MaxTitleLen = 40

	// Greeting seeded into every new chat. Chats are never empty.
	GreetingText = "Hello! How can I help you today?"

	// Title used before the first user message arrives.
	DefaultChatTitle = "New Chat"

	// System instruction fallbacks when settings are unset.
	DefaultPersona  = "You are a helpful AI assistant."
	DefaultLanguage = "the user's input language"

	// Single user-facing error message for failed turns.
	ErrorReplyText = "Sorry, I encountered an error. Please try again."

	// Voice used for speech synthesis.
	SpeechVoice = "Kore"

	// Gemini pricing per 1M tokens (USD), used for per-turn cost accounting.
	PromptPricePerMillion     = 0.30
	CompletionPricePerMillion = 2.50
)

// Languages selectable in the settings panel.
var Languages = []string{
	"English",
	"Spanish",
	"French",
	"German",
	"Mandarin",
	"Japanese",
	"Korean",
	"Russian",
	"Hindi",
	"Urdu",
}
