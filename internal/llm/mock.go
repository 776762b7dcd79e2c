package llm

import "context"

// MockChatClient permite tests sin llamar a un LLM real.
type MockChatClient struct {
	Response     string
	Err          error
	LastMessages []ChatMessage
	Calls        int
}

func (m *MockChatClient) Complete(_ context.Context, messages []ChatMessage) (string, error) {
	m.Calls++
	m.LastMessages = messages
	return m.Response, m.Err
}

// MockSpeechSynthesizer captura la voz pedida y devuelve audio fijo.
type MockSpeechSynthesizer struct {
	Audio     []byte
	Err       error
	LastVoice string
	LastText  string
}

func (m *MockSpeechSynthesizer) Synthesize(_ context.Context, text, voice string) ([]byte, error) {
	m.LastText = text
	m.LastVoice = voice
	return m.Audio, m.Err
}

// MockImageGenerator registra el prompt y devuelve una URL fija.
type MockImageGenerator struct {
	URL        string
	Err        error
	LastPrompt string
	Calls      int
}

func (m *MockImageGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.Calls++
	m.LastPrompt = prompt
	return m.URL, m.Err
}
