package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/ai"
	"github.com/virtualstage/backlot/internal/models"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
	"github.com/virtualstage/backlot/pkg/mail"
)

func requireBadRequest(t *testing.T, err error) {
	t.Helper()

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusBadRequest, appErr.StatusCode)
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed-password",
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestOrganization(t *testing.T, db *gorm.DB, name string) *models.Organization {
	t.Helper()

	org := models.Organization{Name: name}
	require.NoError(t, db.Create(&org).Error)
	return &org
}

func createTestTeam(t *testing.T, db *gorm.DB, organizationID, name string) *models.Team {
	t.Helper()

	team := models.Team{OrganizationID: organizationID, Name: name}
	require.NoError(t, db.Create(&team).Error)
	return &team
}

func createTestStory(t *testing.T, db *gorm.DB, userID, title string) *models.Story {
	t.Helper()

	story := models.Story{UserID: userID, Title: title}
	require.NoError(t, db.Create(&story).Error)
	return &story
}

func createTestCharacter(t *testing.T, db *gorm.DB, storyID, name string) *models.Character {
	t.Helper()

	character := models.Character{StoryID: storyID, Name: name, Role: "supporting"}
	require.NoError(t, db.Create(&character).Error)
	return &character
}

func createTestLocation(t *testing.T, db *gorm.DB, storyID, name string) *models.Location {
	t.Helper()

	location := models.Location{StoryID: storyID, Name: name, LocationType: "outdoor"}
	require.NoError(t, db.Create(&location).Error)
	return &location
}

func createTestStoryAsset(t *testing.T, db *gorm.DB, storyID, name string) *models.StoryAsset {
	t.Helper()

	asset := models.StoryAsset{
		StoryID:    storyID,
		Name:       name,
		AssetType:  models.AssetTypeProp,
		Complexity: models.ComplexityMedium,
	}
	require.NoError(t, db.Create(&asset).Error)
	return &asset
}

func createTestSequence(t *testing.T, db *gorm.DB, storyID string, number int) *models.Sequence {
	t.Helper()

	sequence := models.Sequence{
		StoryID:        storyID,
		SequenceNumber: number,
		Title:          fmt.Sprintf("Sequence %d", number),
	}
	require.NoError(t, db.Create(&sequence).Error)
	return &sequence
}

func createTestShot(t *testing.T, db *gorm.DB, storyID string, sequenceID *string, number int) *models.Shot {
	t.Helper()

	shot := models.Shot{
		StoryID:    storyID,
		SequenceID: sequenceID,
		ShotNumber: number,
		Complexity: models.ComplexityMedium,
	}
	require.NoError(t, db.Create(&shot).Error)
	return &shot
}

func createTestTalent(t *testing.T, db *gorm.DB, name, talentType string) *models.Talent {
	t.Helper()

	talent := models.Talent{
		Name:               name,
		TalentType:         talentType,
		AvailabilityStatus: models.TalentAvailable,
	}
	require.NoError(t, db.Create(&talent).Error)
	return &talent
}

// stubStoryParser satisfies StoryParser with canned results, recording the
// text it was handed so tests can assert on the calls.
type stubStoryParser struct {
	parseResult      *ai.ParseResult
	regenerateResult *ai.ParseResult
	err              error

	parseCalls      []string
	regenerateCalls []string
}

func (p *stubStoryParser) ParseStory(_ context.Context, storyText string) (*ai.ParseResult, error) {
	p.parseCalls = append(p.parseCalls, storyText)
	if p.err != nil {
		return nil, p.err
	}
	return p.parseResult, nil
}

func (p *stubStoryParser) RegenerateStory(_ context.Context, storyText string, _ *ai.ParseResult) (*ai.ParseResult, error) {
	p.regenerateCalls = append(p.regenerateCalls, storyText)
	if p.err != nil {
		return nil, p.err
	}
	if p.regenerateResult != nil {
		return p.regenerateResult, nil
	}
	return p.parseResult, nil
}

// captureMailer records outbound messages instead of delivering them.
type captureMailer struct {
	mu       sync.Mutex
	messages []mail.Message
	err      error
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *captureMailer) sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mail.Message, len(m.messages))
	copy(out, m.messages)
	return out
}
