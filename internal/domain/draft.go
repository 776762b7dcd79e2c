package domain

// Estados del asistente de onboarding, en orden de avance estricto.
// ContributionCode salta directo a StateDataUpload.
const (
	StateTypeSelect  = "type_select"
	StateProfile     = "profile_create"
	StatePersonality = "personality_sliders"
	StateDataUpload  = "data_upload"
	StateDashboard   = "dashboard"
)

// DraftProfile es el borrador de avatar acumulado durante el onboarding.
// Vive en el store de sesion (no en Postgres) hasta finalizar o abandonar.
type DraftProfile struct {
	AvatarType       string      `json:"avatar_type,omitempty"`
	FirstName        string      `json:"first_name,omitempty"`
	LastName         string      `json:"last_name,omitempty"`
	Gender           string      `json:"gender,omitempty"`
	YearOfBirth      int         `json:"year_of_birth,omitempty"`
	YearOfDeath      *int        `json:"year_of_death,omitempty"`
	BirthPlace       string      `json:"birth_place,omitempty"`
	PlacesLived      []string    `json:"places_lived,omitempty"`
	Ethnicity        string      `json:"ethnicity,omitempty"`
	Photos           []string    `json:"photos,omitempty"`
	Personality      Personality `json:"personality,omitempty"`
	ContributionCode string      `json:"contribution_code,omitempty"`
	EditAvatarID     string      `json:"edit_avatar_id,omitempty"`
	AvatarID         string      `json:"avatar_id,omitempty"`
	State            string      `json:"state"`
}

// HasEntry indica si la sesion puede estar en pasos posteriores a
// TypeSelect: hace falta un borrador iniciado o un codigo de contribucion.
func (d *DraftProfile) HasEntry() bool {
	if d == nil {
		return false
	}
	return d.AvatarType != "" || d.ContributionCode != ""
}
