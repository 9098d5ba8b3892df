package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/models"
	"github.com/virtualstage/backlot/pkg/crypto"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
	"github.com/virtualstage/backlot/pkg/mail"
)

const (
	defaultInvitationExpiry     = 7 * 24 * time.Hour
	defaultInvitationTokenBytes = 32
	invitationQRCodeSize        = 256
)

var (
	// ErrInvitationNotFound indicates no invitation matches the identifier or token.
	ErrInvitationNotFound = apperrors.New("INVITATION_NOT_FOUND", "Invitation not found", http.StatusNotFound)
	// ErrInvitationNotPending rejects operations on consumed or cancelled invitations.
	ErrInvitationNotPending = apperrors.New("INVITATION_NOT_PENDING", "Invitation is not pending", http.StatusBadRequest)
	// ErrInvitationExpired indicates the invitation deadline has passed.
	ErrInvitationExpired = apperrors.New("INVITATION_EXPIRED", "Invitation has expired", http.StatusBadRequest)
	// ErrInvitationEmailMismatch rejects acceptance by a different email address.
	ErrInvitationEmailMismatch = apperrors.New("INVITATION_EMAIL_MISMATCH", "Email does not match invitation", http.StatusBadRequest)
	// ErrInvitationCancelPending rejects cancelling an invitation that already settled.
	ErrInvitationCancelPending = apperrors.New("INVITATION_CANCEL_PENDING", "Can only cancel pending invitations", http.StatusBadRequest)
)

// InvitationOption customises InvitationService behaviour.
type InvitationOption func(*InvitationService)

// WithInvitationBaseURL configures the frontend URL used in invitation links.
func WithInvitationBaseURL(url string) InvitationOption {
	return func(s *InvitationService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithInvitationExpiry overrides the invitation lifetime.
func WithInvitationExpiry(d time.Duration) InvitationOption {
	return func(s *InvitationService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithInvitationClock injects a custom clock primarily for testing.
func WithInvitationClock(clock func() time.Time) InvitationOption {
	return func(s *InvitationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// CreateInvitationInput carries the payload for a new invitation.
type CreateInvitationInput struct {
	Email          string
	OrganizationID string
	TeamID         *string
	RoleID         *string
	InvitedByID    string
}

// InvitationService issues, serves and consumes organization invitations.
type InvitationService struct {
	db            *gorm.DB
	mailer        mail.Mailer
	notifications *NotificationService
	auditService  *AuditService
	baseURL       string
	expiry        time.Duration
	now           func() time.Time
}

// NewInvitationService constructs an InvitationService with the provided dependencies.
// Mailer and notifications may be nil; delivery is then skipped.
func NewInvitationService(db *gorm.DB, mailer mail.Mailer, notifications *NotificationService, auditService *AuditService, opts ...InvitationOption) (*InvitationService, error) {
	if db == nil {
		return nil, errors.New("invitation service: db is required")
	}

	service := &InvitationService{
		db:            db,
		mailer:        mailer,
		notifications: notifications,
		auditService:  auditService,
		expiry:        defaultInvitationExpiry,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// Create issues an invitation and dispatches the invite email. Email
// delivery failures do not fail the invitation; they are recorded in the
// audit log instead.
func (s *InvitationService) Create(ctx context.Context, input CreateInvitationInput) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	orgID := strings.TrimSpace(input.OrganizationID)
	if orgID == "" {
		return nil, apperrors.NewBadRequest("organization id is required")
	}
	invitedBy := strings.TrimSpace(input.InvitedByID)
	if invitedBy == "" {
		return nil, apperrors.NewBadRequest("inviting user id is required")
	}

	token, err := crypto.GenerateToken(defaultInvitationTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("invitation service: generate token: %w", err)
	}

	invitation := &models.Invitation{
		Email:          email,
		OrganizationID: orgID,
		Token:          token,
		InvitedByID:    invitedBy,
		Status:         models.InvitationStatusPending,
		ExpiresAt:      s.now().Add(s.expiry),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Organization{}).Where("id = ?", orgID).Count(&count).Error; err != nil {
			return fmt.Errorf("invitation service: check organization: %w", err)
		}
		if count == 0 {
			return ErrOrganizationNotFound
		}

		if input.TeamID != nil && strings.TrimSpace(*input.TeamID) != "" {
			teamID := strings.TrimSpace(*input.TeamID)
			if err := tx.Model(&models.Team{}).Where("id = ? AND organization_id = ?", teamID, orgID).Count(&count).Error; err != nil {
				return fmt.Errorf("invitation service: check team: %w", err)
			}
			if count == 0 {
				return ErrTeamNotFound
			}
			invitation.TeamID = &teamID
		}
		if input.RoleID != nil && strings.TrimSpace(*input.RoleID) != "" {
			roleID := strings.TrimSpace(*input.RoleID)
			if err := tx.Model(&models.Role{}).Where("id = ?", roleID).Count(&count).Error; err != nil {
				return fmt.Errorf("invitation service: check role: %w", err)
			}
			if count == 0 {
				return ErrRoleNotFound
			}
			invitation.RoleID = &roleID
		}

		if err := tx.Create(invitation).Error; err != nil {
			return fmt.Errorf("invitation service: create invitation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deliver(ctx, invitation)
	s.notifyInvitee(ctx, invitation)

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "invitation.create",
		Resource: invitation.ID,
		Result:   "success",
		Metadata: map[string]any{
			"email":           email,
			"organization_id": orgID,
		},
	})

	return s.getByID(ctx, invitation.ID)
}

// List returns invitations, newest first, optionally scoped to one organization.
func (s *InvitationService) List(ctx context.Context, organizationID string) ([]models.Invitation, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Preload("Organization").
		Preload("Team").
		Preload("Role").
		Preload("InvitedBy").
		Order("created_at DESC")

	if orgID := strings.TrimSpace(organizationID); orgID != "" {
		query = query.Where("organization_id = ?", orgID)
	}

	var invitations []models.Invitation
	if err := query.Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("invitation service: list invitations: %w", err)
	}
	return invitations, nil
}

// GetByToken serves the public invitation lookup. Pending invitations past
// their deadline flip to expired before the error is returned.
func (s *InvitationService) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	invitation, err := s.loadByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.requirePending(ctx, invitation); err != nil {
		return nil, err
	}
	return invitation, nil
}

// Accept consumes a pending invitation on behalf of the acting user,
// assigning the invitation's organization, team and role.
func (s *InvitationService) Accept(ctx context.Context, token, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}

	invitation, err := s.loadByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.requirePending(ctx, invitation); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("invitation service: load user: %w", err)
	}

	if !strings.EqualFold(user.Email, invitation.Email) {
		return nil, ErrInvitationEmailMismatch
	}

	now := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userUpdates := map[string]any{
			"organization_id": invitation.OrganizationID,
		}
		if invitation.TeamID != nil {
			userUpdates["team_id"] = *invitation.TeamID
		}
		if invitation.RoleID != nil {
			userUpdates["role_id"] = *invitation.RoleID
		}
		if err := tx.Model(&user).Updates(userUpdates).Error; err != nil {
			return fmt.Errorf("invitation service: assign user: %w", err)
		}

		if err := tx.Model(invitation).Updates(map[string]any{
			"status":      models.InvitationStatusAccepted,
			"accepted_at": now,
		}).Error; err != nil {
			return fmt.Errorf("invitation service: mark accepted: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyAccepted(ctx, invitation, &user)

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &user.ID,
		Action:   "invitation.accept",
		Resource: invitation.ID,
		Result:   "success",
	})

	var accepted models.User
	if err := s.db.WithContext(ctx).
		Preload("Organization").
		Preload("Team").
		Preload("Role").
		First(&accepted, "id = ?", user.ID).Error; err != nil {
		return nil, fmt.Errorf("invitation service: reload user: %w", err)
	}
	return &accepted, nil
}

// Cancel marks a pending invitation cancelled. The row is kept for the
// invitation history.
func (s *InvitationService) Cancel(ctx context.Context, id string) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	invitation, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if invitation.Status != models.InvitationStatusPending {
		return nil, ErrInvitationCancelPending
	}

	if err := s.db.WithContext(ctx).Model(invitation).
		Update("status", models.InvitationStatusCancelled).Error; err != nil {
		return nil, fmt.Errorf("invitation service: cancel invitation: %w", err)
	}
	invitation.Status = models.InvitationStatusCancelled

	recordAudit(s.auditService, ctx, AuditEntry{
		Action:   "invitation.cancel",
		Resource: invitation.ID,
		Result:   "success",
	})

	return invitation, nil
}

// QRCode renders the invitation link as a PNG for onboarding screens.
func (s *InvitationService) QRCode(ctx context.Context, id string) ([]byte, error) {
	invitation, err := s.getByID(ensureContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(s.invitationLink(invitation.Token), qrcode.Medium, invitationQRCodeSize)
}

// MarkExpired flips pending invitations past their deadline to expired and
// reports how many rows changed. Run by the maintenance scheduler.
func (s *InvitationService) MarkExpired(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("status = ? AND expires_at < ?", models.InvitationStatusPending, s.now()).
		Update("status", models.InvitationStatusExpired)
	if result.Error != nil {
		return 0, fmt.Errorf("invitation service: mark expired: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *InvitationService) getByID(ctx context.Context, id string) (*models.Invitation, error) {
	var invitation models.Invitation
	err := s.db.WithContext(ctx).
		Preload("Organization").
		Preload("Team").
		Preload("Role").
		Preload("InvitedBy").
		First(&invitation, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invitation service: get invitation: %w", err)
	}
	return &invitation, nil
}

func (s *InvitationService) loadByToken(ctx context.Context, token string) (*models.Invitation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.NewBadRequest("token is required")
	}

	var invitation models.Invitation
	err := s.db.WithContext(ctx).
		Preload("Organization").
		Preload("Team").
		Preload("Role").
		Preload("InvitedBy").
		Where("token = ?", token).
		First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invitation service: find invitation: %w", err)
	}
	return &invitation, nil
}

// requirePending enforces the pending/expiry gate shared by lookup and accept.
func (s *InvitationService) requirePending(ctx context.Context, invitation *models.Invitation) error {
	if invitation.Status != models.InvitationStatusPending {
		return ErrInvitationNotPending
	}
	if invitation.ExpiresAt.Before(s.now()) {
		if err := s.db.WithContext(ctx).Model(invitation).
			Update("status", models.InvitationStatusExpired).Error; err != nil {
			return fmt.Errorf("invitation service: mark expired: %w", err)
		}
		invitation.Status = models.InvitationStatusExpired
		return ErrInvitationExpired
	}
	return nil
}

func (s *InvitationService) deliver(ctx context.Context, invitation *models.Invitation) {
	if s.mailer == nil {
		return
	}

	var org models.Organization
	orgName := "Backlot"
	if err := s.db.WithContext(ctx).First(&org, "id = ?", invitation.OrganizationID).Error; err == nil {
		orgName = org.Name
	}

	message := mail.Message{
		To:      []string{invitation.Email},
		Subject: fmt.Sprintf("Invitation to join %s - Backlot", orgName),
		Body:    s.invitationBody(invitation, orgName),
	}

	if err := s.mailer.Send(ctx, message); err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		// Invitations stay valid when email delivery fails.
		recordAudit(s.auditService, ctx, AuditEntry{
			Action:   "invitation.email",
			Resource: invitation.ID,
			Result:   "failure",
			Metadata: map[string]any{"error": err.Error()},
		})
	}
}

func (s *InvitationService) notifyInvitee(ctx context.Context, invitation *models.Invitation) {
	if s.notifications == nil {
		return
	}

	var user models.User
	if err := s.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", invitation.Email).
		First(&user).Error; err != nil {
		return
	}

	_, _ = s.notifications.Create(ctx, CreateNotificationInput{
		UserID:  user.ID,
		Type:    "invitation.received",
		Title:   "You have been invited",
		Message: "You have been invited to join an organization on Backlot.",
		Metadata: map[string]any{
			"invitation_id": invitation.ID,
			"token":         invitation.Token,
		},
	})
}

func (s *InvitationService) notifyAccepted(ctx context.Context, invitation *models.Invitation, user *models.User) {
	if s.notifications == nil {
		return
	}

	_, _ = s.notifications.Create(ctx, CreateNotificationInput{
		UserID:  invitation.InvitedByID,
		Type:    "invitation.accepted",
		Title:   "Invitation accepted",
		Message: fmt.Sprintf("%s accepted your invitation.", user.FullName()),
		Metadata: map[string]any{
			"invitation_id": invitation.ID,
			"user_id":       user.ID,
		},
	})
}

func (s *InvitationService) invitationLink(token string) string {
	if s.baseURL == "" {
		return token
	}
	return fmt.Sprintf("%s/accept-invitation/%s/", s.baseURL, token)
}

func (s *InvitationService) invitationBody(invitation *models.Invitation, orgName string) string {
	return fmt.Sprintf(
		"Hello,\n\nYou have been invited to join %s on Backlot.\n\nClick here to accept: %s\n\nThis invitation expires in 7 days.\n\nIf you didn't expect this invitation, you can ignore this email.\n",
		orgName, s.invitationLink(invitation.Token),
	)
}
