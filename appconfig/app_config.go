package appconfig

import (
	"github.com/SaiNageswarS/go-api-boot/config"
)

type AppConfig struct {
	config.BootConfig `ini:",extends"`

	EmbeddingModel      string `env:"EMBEDDING-MODEL" ini:"embedding_model"`
	EmbeddingDimensions int    `env:"EMBEDDING-DIMENSIONS" ini:"embedding_dimensions"`
	LLMProvider         string `env:"LLM-PROVIDER" ini:"llm_provider"`
	AnthropicModel      string `env:"ANTHROPIC-MODEL" ini:"anthropic_model"`
	OllamaChatModel     string `env:"OLLAMA-CHAT-MODEL" ini:"ollama_chat_model"`
	DocsDir             string `env:"DOCS-DIR" ini:"docs_dir"`
	MaxResults          int    `env:"MAX-RESULTS" ini:"max_results"`
	MaxMessages         int    `env:"MAX-MESSAGES" ini:"max_messages"`
	HTTPPort            string `env:"HTTP-PORT" ini:"http_port"`
}
