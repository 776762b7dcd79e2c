package domain

// Los 8 rasgos fijos del cuestionario de personalidad.
const (
	TraitOptimism           = "optimism"
	TraitExtraversion       = "extraversion"
	TraitOrganization       = "organization"
	TraitRiskTaking         = "riskTaking"
	TraitThinkingStyle      = "thinkingStyle"
	TraitChangeAttitude     = "changeAttitude"
	TraitPatience           = "patience"
	TraitCommunicationStyle = "communicationStyle"
)

// DefaultTraitValue es el punto medio de cada dial.
const DefaultTraitValue = 0.5

// TraitIDs lista los rasgos en el orden en que se presentan al usuario.
var TraitIDs = []string{
	TraitOptimism,
	TraitExtraversion,
	TraitOrganization,
	TraitRiskTaking,
	TraitThinkingStyle,
	TraitChangeAttitude,
	TraitPatience,
	TraitCommunicationStyle,
}

// Personality mapea id de rasgo a un valor continuo en [0,1].
type Personality map[string]float64

// DefaultPersonality devuelve el vector con todos los diales en 0.5.
func DefaultPersonality() Personality {
	p := make(Personality, len(TraitIDs))
	for _, id := range TraitIDs {
		p[id] = DefaultTraitValue
	}
	return p
}

// IsKnownTrait valida que el id pertenezca al catalogo fijo.
func IsKnownTrait(id string) bool {
	for _, known := range TraitIDs {
		if known == id {
			return true
		}
	}
	return false
}

// Merge aplica los valores conocidos de other sobre una copia de p,
// ignorando rasgos fuera del catalogo y valores fuera de [0,1].
func (p Personality) Merge(other Personality) Personality {
	merged := make(Personality, len(TraitIDs))
	for k, v := range p {
		merged[k] = v
	}
	for k, v := range other {
		if !IsKnownTrait(k) || v < 0 || v > 1 {
			continue
		}
		merged[k] = v
	}
	return merged
}
