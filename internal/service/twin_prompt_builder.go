package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"twin-llm/internal/domain"
)

// ChatSettings ajusta la voz del gemelo para un turno puntual.
type ChatSettings struct {
	// TimePeriod: "current" (default), "middleAge" o "youngAdult".
	TimePeriod string `json:"time_period,omitempty"`
	// EmotionalState: "happy", "reflective", "nostalgic" o "neutral".
	EmotionalState string `json:"emotional_state,omitempty"`
}

const (
	TimePeriodCurrent    = "current"
	TimePeriodMiddleAge  = "middleAge"
	TimePeriodYoungAdult = "youngAdult"
)

// Edades sinteticas cuando el usuario pide hablar con el gemelo en otra
// etapa de su vida.
const (
	middleAgeYears  = 50
	youngAdultYears = 25
)

// TwinPromptBuilder arma el prompt de condicionamiento de rol a partir
// del avatar. Es determinista: mismo avatar, settings y reloj producen
// el mismo texto.
type TwinPromptBuilder struct{}

// BuildSystemPrompt genera el mensaje system que fija la identidad del
// gemelo. now solo se usa para calcular la edad actual.
func (TwinPromptBuilder) BuildSystemPrompt(avatar *domain.Avatar, settings ChatSettings, now time.Time) string {
	fullName := avatar.FullName()
	if fullName == "" {
		fullName = "Your loved one"
	}
	firstName := strings.TrimSpace(avatar.FirstName)
	if firstName == "" {
		firstName = fullName
	}

	gender := avatar.Gender
	if gender == "" || gender == domain.GenderOther {
		gender = "person"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are %s, a ", fullName))
	if avatar.Ethnicity != "" {
		sb.WriteString(avatar.Ethnicity + " ")
	}
	sb.WriteString(gender)
	if desc := ageDescription(avatar, settings, now); desc != "" {
		sb.WriteString(" who " + desc)
	}
	if avatar.BirthPlace != "" {
		sb.WriteString(" and was born in " + avatar.BirthPlace)
	}
	sb.WriteString(".\n")

	sb.WriteString("Speak in the first person as if you are this person talking to someone you care about deeply.\n")
	sb.WriteString("Be warm, personable, and authentic. Share stories, memories, and wisdom as this person would.\n")
	sb.WriteString("If you don't know something specific, be honest about it rather than making up detailed facts,\n")
	sb.WriteString(fmt.Sprintf("but stay in character as %s.\n", firstName))

	if len(avatar.Personality) > 0 {
		sb.WriteString("\nYour personality, on a 0 to 1 scale:\n")
		ids := make([]string, 0, len(avatar.Personality))
		for id := range avatar.Personality {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			sb.WriteString(fmt.Sprintf("- %s: %.2f\n", id, avatar.Personality[id]))
		}
	}

	if tone := toneDirective(settings.EmotionalState); tone != "" {
		sb.WriteString("\n" + tone + "\n")
	}

	return sb.String()
}

// ageDescription resuelve la edad con la que habla el gemelo. Un
// time_period distinto de current impone una edad sintetica y ancla el
// discurso en la decada correspondiente.
func ageDescription(avatar *domain.Avatar, settings ChatSettings, now time.Time) string {
	if avatar.YearOfBirth <= 0 {
		return ""
	}

	var syntheticAge int
	switch settings.TimePeriod {
	case TimePeriodMiddleAge:
		syntheticAge = middleAgeYears
	case TimePeriodYoungAdult:
		syntheticAge = youngAdultYears
	}

	if syntheticAge > 0 {
		decade := decadeOf(avatar.YearOfBirth + syntheticAge)
		return fmt.Sprintf("is %d years old, speaking from the %s", syntheticAge, decade)
	}

	if avatar.Deceased() {
		return fmt.Sprintf("lived from %d to %d", avatar.YearOfBirth, *avatar.YearOfDeath)
	}

	return fmt.Sprintf("is %d years old", now.Year()-avatar.YearOfBirth)
}

// decadeOf formatea el año como referencia de decada, ej. 1972 → "1970s".
func decadeOf(year int) string {
	return fmt.Sprintf("%ds", (year/10)*10)
}

func toneDirective(emotionalState string) string {
	switch emotionalState {
	case "happy":
		return "Right now you are in a happy, upbeat mood. Let joy and lightness come through in your words."
	case "reflective":
		return "Right now you are in a reflective mood. Take your time, weigh your words, and look inward."
	case "nostalgic":
		return "Right now you are feeling nostalgic. Reminisce warmly about the past and the people in it."
	case "neutral", "":
		return ""
	default:
		return ""
	}
}
