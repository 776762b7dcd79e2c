package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"twin-llm/internal/domain"
	"twin-llm/internal/repository"
)

var (
	// ErrOnboardingReset: la sesion no tiene borrador ni codigo de
	// contribucion; la maquina vuelve forzada a TypeSelect. Se re-chequea
	// en cada entrada, no es un redirect de una sola vez.
	ErrOnboardingReset = errors.New("onboarding reset to type select")
	// ErrUploadProcessing: el avance sintetico todavia no llego a 100.
	ErrUploadProcessing = errors.New("upload still processing")
)

// Destinos posibles tras el paso de personalidad. El flujo original
// mostro ambos ordenes en distintas revisiones; aca es configuracion.
const (
	PersonalityNextDashboard = "dashboard"
	PersonalityNextUpload    = "upload"
)

// ProfileInput son los campos del paso ProfileCreate.
type ProfileInput struct {
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Gender      string   `json:"gender"`
	YearOfBirth int      `json:"year_of_birth"`
	YearOfDeath *int     `json:"year_of_death"`
	BirthPlace  string   `json:"birth_place"`
	PlacesLived []string `json:"places_lived"`
	Ethnicity   string   `json:"ethnicity"`
	Photos      []string `json:"photos"`
}

// DashboardSummary es el estado terminal del asistente.
type DashboardSummary struct {
	Avatars      []domain.Avatar `json:"avatars"`
	Completeness int             `json:"completeness"`
}

// OnboardingService implementa la maquina de estados del asistente:
// TypeSelect → ProfileCreate → PersonalitySliders → DataUpload →
// Dashboard, con el salto ContributionCode → DataUpload.
type OnboardingService struct {
	logger          *zap.Logger
	drafts          DraftStore
	avatars         repository.AvatarRepository
	codes           repository.ContributionCodeRepository
	progress        *ProgressRegistry
	personalityNext string
}

func NewOnboardingService(
	logger *zap.Logger,
	drafts DraftStore,
	avatars repository.AvatarRepository,
	codes repository.ContributionCodeRepository,
	progress *ProgressRegistry,
	personalityNext string,
) *OnboardingService {
	if personalityNext != PersonalityNextUpload {
		personalityNext = PersonalityNextDashboard
	}
	return &OnboardingService{
		logger:          logger,
		drafts:          drafts,
		avatars:         avatars,
		codes:           codes,
		progress:        progress,
		personalityNext: personalityNext,
	}
}

// Start emite una sesion de onboarding nueva en TypeSelect.
func (s *OnboardingService) Start(ctx context.Context) (string, domain.DraftProfile, error) {
	sessionID := uuid.NewString()
	draft := domain.DraftProfile{State: domain.StateTypeSelect}
	if err := s.drafts.Save(ctx, sessionID, draft); err != nil {
		return "", domain.DraftProfile{}, fmt.Errorf("save draft: %w", err)
	}
	return sessionID, draft, nil
}

// SelectType fija el tipo de avatar y avanza a ProfileCreate.
func (s *OnboardingService) SelectType(ctx context.Context, sessionID, avatarType string) (domain.DraftProfile, error) {
	if avatarType != domain.AvatarTypeSelf && avatarType != domain.AvatarTypeLovedOne {
		return domain.DraftProfile{}, invalidFormat("avatar_type")
	}

	draft, _, err := s.loadDraft(ctx, sessionID)
	if err != nil {
		return domain.DraftProfile{}, err
	}

	draft.AvatarType = avatarType
	draft.State = domain.StateProfile
	if err := s.drafts.Save(ctx, sessionID, draft); err != nil {
		return domain.DraftProfile{}, fmt.Errorf("save draft: %w", err)
	}
	return draft, nil
}

// RedeemContribution valida el codigo localmente (largo minimo) antes de
// cualquier consulta y salta directo a DataUpload.
func (s *OnboardingService) RedeemContribution(ctx context.Context, sessionID, code string) (domain.DraftProfile, error) {
	code = strings.TrimSpace(code)
	if len(code) < domain.MinContributionCodeLength {
		return domain.DraftProfile{}, invalidFormat("code")
	}

	if _, err := s.codes.GetByCode(ctx, code); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DraftProfile{}, fmt.Errorf("contribution code: %w", ErrNotFound)
		}
		return domain.DraftProfile{}, fmt.Errorf("get contribution code: %w", err)
	}

	draft, _, err := s.loadDraft(ctx, sessionID)
	if err != nil {
		return domain.DraftProfile{}, err
	}

	draft.ContributionCode = code
	draft.State = domain.StateDataUpload
	if err := s.drafts.Save(ctx, sessionID, draft); err != nil {
		return domain.DraftProfile{}, fmt.Errorf("save draft: %w", err)
	}
	s.progress.Start(sessionID)
	return draft, nil
}

// Draft devuelve el borrador vigente; soporta recarga de pagina.
func (s *OnboardingService) Draft(ctx context.Context, sessionID string) (domain.DraftProfile, error) {
	return s.guard(ctx, sessionID)
}

// SubmitProfile valida y persiste el avatar (alta con tope atomico o
// edicion), espeja el borrador y avanza a PersonalitySliders.
func (s *OnboardingService) SubmitProfile(ctx context.Context, sessionID, userID string, input ProfileInput, editAvatarID string) (domain.DraftProfile, domain.Avatar, error) {
	draft, err := s.guard(ctx, sessionID)
	if err != nil {
		return domain.DraftProfile{}, domain.Avatar{}, err
	}

	if err := validateProfile(draft.AvatarType, input); err != nil {
		return domain.DraftProfile{}, domain.Avatar{}, err
	}

	now := time.Now().UTC()
	avatar := domain.Avatar{
		UserID:      userID,
		AvatarType:  draft.AvatarType,
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Gender:      input.Gender,
		YearOfBirth: input.YearOfBirth,
		BirthPlace:  strings.TrimSpace(input.BirthPlace),
		PlacesLived: input.PlacesLived,
		Ethnicity:   strings.TrimSpace(input.Ethnicity),
		Photos:      input.Photos,
		UpdatedAt:   now,
	}
	if draft.AvatarType == domain.AvatarTypeLovedOne {
		avatar.YearOfDeath = input.YearOfDeath
	}

	if editAvatarID != "" {
		existing, err := s.avatars.GetByID(ctx, editAvatarID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.DraftProfile{}, domain.Avatar{}, fmt.Errorf("avatar %s: %w", editAvatarID, ErrNotFound)
			}
			return domain.DraftProfile{}, domain.Avatar{}, fmt.Errorf("get avatar: %w", err)
		}
		if existing.UserID != userID {
			return domain.DraftProfile{}, domain.Avatar{}, ErrForbidden
		}
		avatar.ID = editAvatarID
		avatar.CreatedAt = existing.CreatedAt
		if err := s.avatars.Update(ctx, avatar); err != nil {
			return domain.DraftProfile{}, domain.Avatar{}, fmt.Errorf("update avatar: %w", err)
		}
	} else {
		avatar.ID = uuid.NewString()
		avatar.CreatedAt = now
		if err := s.avatars.Create(ctx, avatar); err != nil {
			if errors.Is(err, repository.ErrAvatarLimit) {
				return domain.DraftProfile{}, domain.Avatar{}, fmt.Errorf("avatars per user: %w", ErrLimitExceeded)
			}
			return domain.DraftProfile{}, domain.Avatar{}, fmt.Errorf("create avatar: %w", err)
		}
	}

	// Espejo del borrador: una recarga no pierde el progreso.
	draft.FirstName = avatar.FirstName
	draft.LastName = avatar.LastName
	draft.Gender = avatar.Gender
	draft.YearOfBirth = avatar.YearOfBirth
	draft.YearOfDeath = avatar.YearOfDeath
	draft.BirthPlace = avatar.BirthPlace
	draft.PlacesLived = avatar.PlacesLived
	draft.Ethnicity = avatar.Ethnicity
	draft.Photos = avatar.Photos
	draft.AvatarID = avatar.ID
	draft.EditAvatarID = editAvatarID
	draft.State = domain.StatePersonality
	if err := s.drafts.Save(ctx, sessionID, draft); err != nil {
		return domain.DraftProfile{}, domain.Avatar{}, fmt.Errorf("save draft: %w", err)
	}
	return draft, avatar, nil
}

// CommitTrait persiste un dial apenas se mueve; no hay "guardar" por dial.
func (s *OnboardingService) CommitTrait(ctx context.Context, sessionID, traitID string, value float64) (domain.DraftProfile, error) {
	draft, err := s.guard(ctx, sessionID)
	if err != nil {
		return domain.DraftProfile{}, err
	}
	if !domain.IsKnownTrait(traitID) {
		return domain.DraftProfile{}, fmt.Errorf("trait %s: %w", traitID, ErrNotFound)
	}
	if value < 0 || value > 1 {
		return domain.DraftProfile{}, invalidFormat("value")
	}

	if draft.Personality == nil {
		draft.Personality = domain.DefaultPersonality()
	}
	draft.Personality[traitID] = value
	if err := s.drafts.Save(ctx, sessionID, draft); err != nil {
		return domain.DraftProfile{}, fmt.Errorf("save draft: %w", err)
	}
	return draft, nil
}

// SubmitPersonality fusiona el vector en el avatar. skip confirma el
// vector por defecto (todo 0.5). Devuelve el proximo estado segun la
// configuracion del flujo.
func (s *OnboardingService) SubmitPersonality(ctx context.Context, sessionID string, traits domain.Personality, skip bool) (domain.DraftProfile, error) {
	draft, err := s.guard(ctx, sessionID)
	if err != nil {
		return domain.DraftProfile{}, err
	}

	vector := domain.DefaultPersonality()
	if !skip {
		if draft.Personality != nil {
			vector = vector.Merge(draft.Personality)
		}
		vector = vector.Merge(traits)
	}

	if draft.AvatarID != "" {
		if err := s.avatars.UpdatePersonality(ctx, draft.AvatarID, vector); err != nil {
			return domain.DraftProfile{}, fmt.Errorf("update personality: %w", err)
		}
	}

	draft.Personality = vector
	if s.personalityNext == PersonalityNextUpload {
		draft.State = domain.StateDataUpload
		s.progress.Start(sessionID)
	} else {
		draft.State = domain.StateDashboard
	}
	if err := s.drafts.Save(ctx, sessionID, draft); err != nil {
		return domain.DraftProfile{}, fmt.Errorf("save draft: %w", err)
	}
	return draft, nil
}

// Catalog expone las categorias del Data Upload Center.
func (s *OnboardingService) Catalog() []domain.UploadCategory {
	return domain.UploadCatalog
}

// AcknowledgeUpload reconoce la conexion de una categoria. No exige
// exito de red para avanzar; el reconocimiento es local.
func (s *OnboardingService) AcknowledgeUpload(ctx context.Context, sessionID, categoryID string) (domain.UploadCategory, error) {
	if _, err := s.guard(ctx, sessionID); err != nil {
		return domain.UploadCategory{}, err
	}
	category, ok := domain.FindUploadCategory(categoryID)
	if !ok {
		return domain.UploadCategory{}, fmt.Errorf("upload category %s: %w", categoryID, ErrNotFound)
	}
	s.progress.Start(sessionID)
	return category, nil
}

// UploadProgress devuelve el avance sintetico de la sesion.
func (s *OnboardingService) UploadProgress(ctx context.Context, sessionID string) (QualityTracker, error) {
	if _, err := s.guard(ctx, sessionID); err != nil {
		return QualityTracker{}, err
	}
	s.progress.Start(sessionID)
	tracker, _ := s.progress.Snapshot(sessionID)
	return tracker, nil
}

// Complete cierra el asistente: exige progreso completo (salvo skip),
// destruye el borrador y libera el estado de avance.
func (s *OnboardingService) Complete(ctx context.Context, sessionID string, skip bool) error {
	draft, err := s.guard(ctx, sessionID)
	if err != nil {
		return err
	}

	if !skip && draft.State == domain.StateDataUpload {
		tracker, ok := s.progress.Snapshot(sessionID)
		if !ok || !tracker.Done() {
			return ErrUploadProcessing
		}
	}

	s.progress.Stop(sessionID)
	if err := s.drafts.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// Dashboard calcula la completitud promedio de los avatares del usuario.
func (s *OnboardingService) Dashboard(ctx context.Context, userID string) (DashboardSummary, error) {
	avatars, err := s.avatars.ListByUserID(ctx, userID)
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("list avatars: %w", err)
	}

	summary := DashboardSummary{Avatars: avatars}
	if len(avatars) == 0 {
		return summary, nil
	}

	total := 0
	for i := range avatars {
		total += avatars[i].CompletenessScore()
	}
	score := total / len(avatars)
	if score > 100 {
		score = 100
	}
	summary.Completeness = score
	return summary, nil
}

// guard es la condicion comun de ProfileCreate en adelante: sin borrador
// iniciado ni codigo, la maquina vuelve a TypeSelect.
func (s *OnboardingService) guard(ctx context.Context, sessionID string) (domain.DraftProfile, error) {
	draft, ok, err := s.loadDraftRaw(ctx, sessionID)
	if err != nil {
		return domain.DraftProfile{}, err
	}
	if !ok || !draft.HasEntry() {
		reset := domain.DraftProfile{State: domain.StateTypeSelect}
		if err := s.drafts.Save(ctx, sessionID, reset); err != nil {
			s.logger.Warn("reset draft failed", zap.Error(err), zap.String("session_id", sessionID))
		}
		return domain.DraftProfile{}, ErrOnboardingReset
	}
	return draft, nil
}

// loadDraft carga el borrador o arranca uno vacio en TypeSelect (los
// pasos de entrada no exigen borrador previo).
func (s *OnboardingService) loadDraft(ctx context.Context, sessionID string) (domain.DraftProfile, bool, error) {
	draft, ok, err := s.loadDraftRaw(ctx, sessionID)
	if err != nil {
		return domain.DraftProfile{}, false, err
	}
	if !ok {
		draft = domain.DraftProfile{State: domain.StateTypeSelect}
	}
	return draft, ok, nil
}

func (s *OnboardingService) loadDraftRaw(ctx context.Context, sessionID string) (domain.DraftProfile, bool, error) {
	draft, ok, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return domain.DraftProfile{}, false, fmt.Errorf("get draft: %w", err)
	}
	return draft, ok, nil
}

// validateProfile corta en el primer error: exactamente un aviso de
// campo por intento fallido.
func validateProfile(avatarType string, input ProfileInput) error {
	if strings.TrimSpace(input.FirstName) == "" {
		return missingField("first_name")
	}
	if input.YearOfBirth == 0 {
		return missingField("year_of_birth")
	}
	if input.YearOfBirth < 1000 || input.YearOfBirth > 9999 {
		return invalidFormat("year_of_birth")
	}
	if input.YearOfDeath != nil && avatarType == domain.AvatarTypeLovedOne {
		if *input.YearOfDeath < 1000 || *input.YearOfDeath > 9999 {
			return invalidFormat("year_of_death")
		}
		if *input.YearOfDeath < input.YearOfBirth {
			return invalidFormat("year_of_death")
		}
	}
	return nil
}
