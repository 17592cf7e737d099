package llm

// Config configures the OpenAI-compatible chat completion client.
type Config struct {
	APIKey  string `env:"OPENAI_API_KEY,required"`
	Model   string `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	BaseURL string `env:"OPENAI_BASE_URL"` // empty means the public OpenAI endpoint

	BodyMaxTokens    int     `env:"OPENAI_BODY_MAX_TOKENS" envDefault:"500"`
	SubjectMaxTokens int     `env:"OPENAI_SUBJECT_MAX_TOKENS" envDefault:"50"`
	Temperature      float32 `env:"OPENAI_TEMPERATURE" envDefault:"0.7"`
}
