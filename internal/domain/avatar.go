package domain

import (
	"strings"
	"time"
)

const (
	AvatarTypeSelf     = "self"
	AvatarTypeLovedOne = "loved_one"

	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// MaxAvatarsPerUser limita cuantos avatares puede poseer un usuario.
const MaxAvatarsPerUser = 2

// Avatar es el gemelo digital persistido de una persona.
type Avatar struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	AvatarType     string      `json:"avatar_type"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name,omitempty"`
	Gender         string      `json:"gender,omitempty"`
	YearOfBirth    int         `json:"year_of_birth"`
	YearOfDeath    *int        `json:"year_of_death,omitempty"`
	BirthPlace     string      `json:"birth_place,omitempty"`
	PlacesLived    []string    `json:"places_lived,omitempty"`
	Ethnicity      string      `json:"ethnicity,omitempty"`
	Photos         []string    `json:"photos,omitempty"`
	Personality    Personality `json:"personality,omitempty"`
	CompositeImage string      `json:"composite_image,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// FullName combina nombre y apellido sin espacios sobrantes.
func (a *Avatar) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
}

// Initials devuelve el monograma para mostrar cuando no hay retrato.
func (a *Avatar) Initials() string {
	var sb strings.Builder
	for _, part := range strings.Fields(a.FullName()) {
		r := []rune(part)
		sb.WriteString(strings.ToUpper(string(r[0])))
	}
	return sb.String()
}

// Deceased indica si el avatar corresponde a una persona fallecida.
func (a *Avatar) Deceased() bool {
	return a.YearOfDeath != nil && *a.YearOfDeath > 0
}

// CompletenessScore calcula que tan completo esta el perfil: base 30,
// hasta 25 por fotos (5 por foto) y 5 por cada campo demografico presente.
// El resultado se recorta a 100.
func (a *Avatar) CompletenessScore() int {
	score := 30

	photoPoints := len(a.Photos) * 5
	if photoPoints > 25 {
		photoPoints = 25
	}
	score += photoPoints

	if strings.TrimSpace(a.Gender) != "" {
		score += 5
	}
	if a.YearOfBirth > 0 {
		score += 5
	}
	if strings.TrimSpace(a.BirthPlace) != "" {
		score += 5
	}
	if len(a.PlacesLived) > 0 {
		score += 5
	}
	if strings.TrimSpace(a.Ethnicity) != "" {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}
