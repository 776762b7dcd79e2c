package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"twin-llm/internal/domain"
	"twin-llm/internal/repository"
)

func newTestOnboarding(avatars *mockAvatarRepo, codes *mockCodeRepo, next string) (*OnboardingService, *ProgressRegistry) {
	progress := NewProgressRegistry()
	svc := NewOnboardingService(zap.NewNop(), NewMemoryDraftStore(), avatars, codes, progress, next)
	return svc, progress
}

func intPtr(v int) *int { return &v }

func TestOnboarding_StartIssuesSessionInTypeSelect(t *testing.T) {
	svc, _ := newTestOnboarding(newMockAvatarRepo(), newMockCodeRepo(), PersonalityNextDashboard)

	sessionID, draft, err := svc.Start(context.Background())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if sessionID == "" {
		t.Fatalf("expected a session id")
	}
	if draft.State != domain.StateTypeSelect {
		t.Fatalf("expected state %s, got %s", domain.StateTypeSelect, draft.State)
	}
}

func TestOnboarding_GuardResetsWithoutEntry(t *testing.T) {
	svc, _ := newTestOnboarding(newMockAvatarRepo(), newMockCodeRepo(), PersonalityNextDashboard)

	sessionID, _, err := svc.Start(context.Background())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Sin tipo elegido ni codigo: cualquier paso posterior vuelve al inicio.
	_, _, err = svc.SubmitProfile(context.Background(), sessionID, "user-1", ProfileInput{FirstName: "Rosa", YearOfBirth: 1945}, "")
	if !errors.Is(err, ErrOnboardingReset) {
		t.Fatalf("expected ErrOnboardingReset, got %v", err)
	}

	draft, err := svc.Draft(context.Background(), sessionID)
	if err == nil && draft.State != domain.StateTypeSelect {
		t.Fatalf("expected draft reset to type select")
	}
}

func TestOnboarding_GuardResetIsNotOneShot(t *testing.T) {
	svc, _ := newTestOnboarding(newMockAvatarRepo(), newMockCodeRepo(), PersonalityNextDashboard)

	sessionID, _, _ := svc.Start(context.Background())

	for i := 0; i < 3; i++ {
		if _, err := svc.CommitTrait(context.Background(), sessionID, domain.TraitOptimism, 0.7); !errors.Is(err, ErrOnboardingReset) {
			t.Fatalf("attempt %d: expected ErrOnboardingReset, got %v", i, err)
		}
	}
}

func TestOnboarding_SelectTypeAdvances(t *testing.T) {
	svc, _ := newTestOnboarding(newMockAvatarRepo(), newMockCodeRepo(), PersonalityNextDashboard)

	sessionID, _, _ := svc.Start(context.Background())
	draft, err := svc.SelectType(context.Background(), sessionID, domain.AvatarTypeSelf)
	if err != nil {
		t.Fatalf("select type failed: %v", err)
	}
	if draft.State != domain.StateProfile {
		t.Fatalf("expected state %s, got %s", domain.StateProfile, draft.State)
	}
	if draft.AvatarType != domain.AvatarTypeSelf {
		t.Fatalf("avatar type not recorded")
	}
}

func TestOnboarding_SelectTypeRejectsUnknown(t *testing.T) {
	svc, _ := newTestOnboarding(newMockAvatarRepo(), newMockCodeRepo(), PersonalityNextDashboard)

	sessionID, _, _ := svc.Start(context.Background())
	_, err := svc.SelectType(context.Background(), sessionID, "pet")
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "avatar_type" {
		t.Fatalf("expected field error naming avatar_type, got %v", err)
	}
}

func TestOnboarding_ShortContributionCodeFailsBeforeLookup(t *testing.T) {
	codes := newMockCodeRepo()
	svc, _ := newTestOnboarding(newMockAvatarRepo(), codes, PersonalityNextDashboard)

	sessionID, _, _ := svc.Start(context.Background())
	_, err := svc.RedeemContribution(context.Background(), sessionID, "abc")
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "code" {
		t.Fatalf("expected field error naming code, got %v", err)
	}
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestOnboarding_UnknownContributionCode(t *testing.T) {
	svc, _ := newTestOnboarding(newMockAvatarRepo(), newMockCodeRepo(), PersonalityNextDashboard)

	sessionID, _, _ := svc.Start(context.Background())
	_, err := svc.RedeemContribution(context.Background(), sessionID, "ZZZZZZZZ")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOnboarding_ContributionCodeJumpsToUpload(t *testing.T) {
	codes := newMockCodeRepo(domain.ContributionCode{Code: "ABC234XY", AvatarID: "avatar-9"})
	svc, _ := newTestOnboarding(newMockAvatarRepo(), codes, PersonalityNextDashboard)

	sessionID, _, _ := svc.Start(context.Background())
	draft, err := svc.RedeemContribution(context.Background(), sessionID, "ABC234XY")
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if draft.State != domain.StateDataUpload {
		t.Fatalf("expected jump to %s, got %s", domain.StateDataUpload, draft.State)
	}
	if !draft.HasEntry() {
		t.Fatalf("contribution entry should satisfy the guard")
	}
}

func TestOnboarding_SubmitProfileValidationOrder(t *testing.T) {
	svc, _ := newTestOnboarding(newMockAvatarRepo(), newMockCodeRepo(), PersonalityNextDashboard)
	sessionID, _, _ := svc.Start(context.Background())
	_, _ = svc.SelectType(context.Background(), sessionID, domain.AvatarTypeLovedOne)

	cases := []struct {
		name  string
		input ProfileInput
		field string
	}{
		{"sin nombre", ProfileInput{YearOfBirth: 1945}, "first_name"},
		{"sin anio", ProfileInput{FirstName: "Rosa"}, "year_of_birth"},
		{"anio corto", ProfileInput{FirstName: "Rosa", YearOfBirth: 45}, "year_of_birth"},
		{"muerte antes de nacer", ProfileInput{FirstName: "Rosa", YearOfBirth: 1945, YearOfDeath: intPtr(1940)}, "year_of_death"},
	}
	for _, tc := range cases {
		_, _, err := svc.SubmitProfile(context.Background(), sessionID, "user-1", tc.input, "")
		var fieldErr *FieldError
		if !errors.As(err, &fieldErr) {
			t.Fatalf("%s: expected a field error, got %v", tc.name, err)
		}
		if fieldErr.Field != tc.field {
			t.Fatalf("%s: expected field %s, got %s", tc.name, tc.field, fieldErr.Field)
		}
	}
}

func TestOnboarding_SubmitProfileCreatesAvatarAndAdvances(t *testing.T) {
	avatars := newMockAvatarRepo()
	svc, _ := newTestOnboarding(avatars, newMockCodeRepo(), PersonalityNextDashboard)
	sessionID, _, _ := svc.Start(context.Background())
	_, _ = svc.SelectType(context.Background(), sessionID, domain.AvatarTypeLovedOne)

	draft, avatar, err := svc.SubmitProfile(context.Background(), sessionID, "user-1", ProfileInput{
		FirstName:   "Rosa",
		LastName:    "Marconi",
		Gender:      domain.GenderFemale,
		YearOfBirth: 1945,
		YearOfDeath: intPtr(2020),
		BirthPlace:  "Rosario",
	}, "")
	if err != nil {
		t.Fatalf("submit profile failed: %v", err)
	}
	if len(avatars.created) != 1 {
		t.Fatalf("expected one avatar created, got %d", len(avatars.created))
	}
	if draft.State != domain.StatePersonality {
		t.Fatalf("expected state %s, got %s", domain.StatePersonality, draft.State)
	}
	if draft.AvatarID != avatar.ID {
		t.Fatalf("draft should mirror the created avatar id")
	}
	if avatar.YearOfDeath == nil || *avatar.YearOfDeath != 2020 {
		t.Fatalf("year of death not persisted")
	}
}

func TestOnboarding_AvatarCapMapsToLimitExceeded(t *testing.T) {
	avatars := newMockAvatarRepo()
	avatars.createErr = repository.ErrAvatarLimit
	svc, _ := newTestOnboarding(avatars, newMockCodeRepo(), PersonalityNextDashboard)
	sessionID, _, _ := svc.Start(context.Background())
	_, _ = svc.SelectType(context.Background(), sessionID, domain.AvatarTypeSelf)

	_, _, err := svc.SubmitProfile(context.Background(), sessionID, "user-1", ProfileInput{FirstName: "Yo", YearOfBirth: 1990}, "")
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}
}

func TestOnboarding_CommitTraitPersistsInDraft(t *testing.T) {
	svc, _ := newTestOnboarding(newMockAvatarRepo(), newMockCodeRepo(), PersonalityNextDashboard)
	sessionID, _, _ := svc.Start(context.Background())
	_, _ = svc.SelectType(context.Background(), sessionID, domain.AvatarTypeSelf)

	draft, err := svc.CommitTrait(context.Background(), sessionID, domain.TraitOptimism, 0.9)
	if err != nil {
		t.Fatalf("commit trait failed: %v", err)
	}
	if draft.Personality[domain.TraitOptimism] != 0.9 {
		t.Fatalf("trait value not committed")
	}
	// Los demas arrancan en el valor neutro.
	if draft.Personality[domain.TraitPatience] != domain.DefaultTraitValue {
		t.Fatalf("untouched traits should sit at the default value")
	}
}

func TestOnboarding_CommitTraitRejectsUnknownAndOutOfRange(t *testing.T) {
	svc, _ := newTestOnboarding(newMockAvatarRepo(), newMockCodeRepo(), PersonalityNextDashboard)
	sessionID, _, _ := svc.Start(context.Background())
	_, _ = svc.SelectType(context.Background(), sessionID, domain.AvatarTypeSelf)

	if _, err := svc.CommitTrait(context.Background(), sessionID, "charisma", 0.5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown trait, got %v", err)
	}
	if _, err := svc.CommitTrait(context.Background(), sessionID, domain.TraitOptimism, 1.5); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat for out-of-range value, got %v", err)
	}
}

func TestOnboarding_SkipPersonalityWritesDefaultVector(t *testing.T) {
	avatars := newMockAvatarRepo()
	svc, _ := newTestOnboarding(avatars, newMockCodeRepo(), PersonalityNextDashboard)
	sessionID, _, _ := svc.Start(context.Background())
	_, _ = svc.SelectType(context.Background(), sessionID, domain.AvatarTypeSelf)
	_, _, err := svc.SubmitProfile(context.Background(), sessionID, "user-1", ProfileInput{FirstName: "Yo", YearOfBirth: 1990}, "")
	if err != nil {
		t.Fatalf("submit profile failed: %v", err)
	}

	draft, err := svc.SubmitPersonality(context.Background(), sessionID, nil, true)
	if err != nil {
		t.Fatalf("submit personality failed: %v", err)
	}
	if draft.State != domain.StateDashboard {
		t.Fatalf("expected state %s, got %s", domain.StateDashboard, draft.State)
	}
	for _, id := range domain.TraitIDs {
		if avatars.lastPersonality[id] != domain.DefaultTraitValue {
			t.Fatalf("trait %s: expected default %v, got %v", id, domain.DefaultTraitValue, avatars.lastPersonality[id])
		}
	}
}

func TestOnboarding_PersonalityNextStepConfigurable(t *testing.T) {
	avatars := newMockAvatarRepo()
	svc, _ := newTestOnboarding(avatars, newMockCodeRepo(), PersonalityNextUpload)
	sessionID, _, _ := svc.Start(context.Background())
	_, _ = svc.SelectType(context.Background(), sessionID, domain.AvatarTypeSelf)
	if _, _, err := svc.SubmitProfile(context.Background(), sessionID, "user-1", ProfileInput{FirstName: "Yo", YearOfBirth: 1990}, ""); err != nil {
		t.Fatalf("submit profile failed: %v", err)
	}

	draft, err := svc.SubmitPersonality(context.Background(), sessionID, nil, false)
	if err != nil {
		t.Fatalf("submit personality failed: %v", err)
	}
	if draft.State != domain.StateDataUpload {
		t.Fatalf("expected state %s, got %s", domain.StateDataUpload, draft.State)
	}
}

func TestOnboarding_AcknowledgeUnknownCategory(t *testing.T) {
	svc, _ := newTestOnboarding(newMockAvatarRepo(), newMockCodeRepo(), PersonalityNextDashboard)
	sessionID, _, _ := svc.Start(context.Background())
	_, _ = svc.SelectType(context.Background(), sessionID, domain.AvatarTypeSelf)

	if _, err := svc.AcknowledgeUpload(context.Background(), sessionID, "telepathy"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.AcknowledgeUpload(context.Background(), sessionID, "media"); err != nil {
		t.Fatalf("known category rejected: %v", err)
	}
}

func TestOnboarding_CompleteGatedOnProgress(t *testing.T) {
	codes := newMockCodeRepo(domain.ContributionCode{Code: "ABC234XY", AvatarID: "avatar-9"})
	svc, progress := newTestOnboarding(newMockAvatarRepo(), codes, PersonalityNextDashboard)
	sessionID, _, _ := svc.Start(context.Background())
	if _, err := svc.RedeemContribution(context.Background(), sessionID, "ABC234XY"); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	// Recien arrancado: el progreso no llego a 100.
	if err := svc.Complete(context.Background(), sessionID, false); !errors.Is(err, ErrUploadProcessing) {
		t.Fatalf("expected ErrUploadProcessing, got %v", err)
	}

	// Con skip no hay espera.
	if err := svc.Complete(context.Background(), sessionID, true); err != nil {
		t.Fatalf("skip complete failed: %v", err)
	}

	// El borrador se destruyo: el siguiente acceso resetea.
	if _, err := svc.Draft(context.Background(), sessionID); !errors.Is(err, ErrOnboardingReset) {
		t.Fatalf("expected draft gone after complete, got %v", err)
	}
	if _, ok := progress.Snapshot(sessionID); ok {
		t.Fatalf("progress state should be released on complete")
	}
}

func TestOnboarding_CompleteAfterConvergence(t *testing.T) {
	codes := newMockCodeRepo(domain.ContributionCode{Code: "ABC234XY", AvatarID: "avatar-9"})
	svc, progress := newTestOnboarding(newMockAvatarRepo(), codes, PersonalityNextDashboard)

	start := time.Now()
	progress.now = func() time.Time { return start }

	sessionID, _, _ := svc.Start(context.Background())
	if _, err := svc.RedeemContribution(context.Background(), sessionID, "ABC234XY"); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	// Tres minutos despues la serie ya convergio.
	progress.now = func() time.Time { return start.Add(3 * time.Minute) }
	if err := svc.Complete(context.Background(), sessionID, false); err != nil {
		t.Fatalf("complete after convergence failed: %v", err)
	}
}

func TestOnboarding_DashboardAveragesCompleteness(t *testing.T) {
	a1 := domain.Avatar{ID: "a1", UserID: "user-1", FirstName: "Rosa", YearOfBirth: 1945, Gender: domain.GenderFemale, BirthPlace: "Rosario", Ethnicity: "italiana", PlacesLived: []string{"Rosario"}}
	a2 := domain.Avatar{ID: "a2", UserID: "user-1", FirstName: "Juan"}
	avatars := newMockAvatarRepo(a1, a2)
	svc, _ := newTestOnboarding(avatars, newMockCodeRepo(), PersonalityNextDashboard)

	summary, err := svc.Dashboard(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if len(summary.Avatars) != 2 {
		t.Fatalf("expected 2 avatars, got %d", len(summary.Avatars))
	}
	want := (a1.CompletenessScore() + a2.CompletenessScore()) / 2
	if summary.Completeness != want {
		t.Fatalf("expected completeness %d, got %d", want, summary.Completeness)
	}
}
