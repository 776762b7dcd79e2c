package domain

// UploadCategory describe una fuente de datos del Data Upload Center.
// El catalogo es una tabla de configuracion, no logica por categoria.
type UploadCategory struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// UploadCatalog lista las categorias en el orden en que se presentan.
var UploadCatalog = []UploadCategory{
	{ID: "media", Label: "Photos & Videos", Icon: "image", Description: "Visual context: appearance, relationships, life events."},
	{ID: "voice", Label: "Voice Recordings", Icon: "mic", Description: "Audio samples to capture tone and speech patterns."},
	{ID: "social", Label: "Social Accounts", Icon: "message-circle", Description: "Connect social profiles to learn interests and style."},
	{ID: "text", Label: "Written Text", Icon: "file-text", Description: "Letters, posts and notes that show how the person writes."},
	{ID: "browsing", Label: "Browsing History", Icon: "globe", Description: "Reading and viewing habits."},
	{ID: "personality_tests", Label: "Personality Tests", Icon: "clipboard", Description: "Results from prior assessments."},
	{ID: "email", Label: "Email Archives", Icon: "mail", Description: "Correspondence history."},
	{ID: "handwriting", Label: "Handwriting Samples", Icon: "pen", Description: "Scanned handwritten material."},
	{ID: "professional", Label: "Professional Docs", Icon: "briefcase", Description: "Resumes, publications and work documents."},
	{ID: "gaming", Label: "Gaming Profiles", Icon: "gamepad", Description: "Play styles and preferences."},
	{ID: "media_accounts", Label: "Media Accounts", Icon: "play", Description: "Streaming and music accounts."},
	{ID: "values", Label: "Values & Beliefs", Icon: "heart", Description: "What the person holds important."},
}

// FindUploadCategory busca una categoria por id; ok=false si no existe.
func FindUploadCategory(id string) (UploadCategory, bool) {
	for _, c := range UploadCatalog {
		if c.ID == id {
			return c, true
		}
	}
	return UploadCategory{}, false
}
