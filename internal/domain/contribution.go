package domain

import "time"

// MinContributionCodeLength es el largo minimo aceptado antes de
// consultar el store.
const MinContributionCodeLength = 6

// ContributionCode permite a un tercero aportar datos a un avatar ajeno.
type ContributionCode struct {
	Code      string    `json:"code"`
	AvatarID  string    `json:"avatar_id"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
