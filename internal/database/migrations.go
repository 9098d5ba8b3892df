package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/models"
	"github.com/virtualstage/backlot/internal/permissions"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.Team{},
		&models.Role{},
		&models.Permission{},
		&models.Invitation{},
		&models.StoryAccess{},
		&models.Session{},
		&models.PasswordResetToken{},
		&models.AuditLog{},
		&models.Notification{},
		&models.CacheEntry{},
		&models.Story{},
		&models.Character{},
		&models.Location{},
		&models.StoryAsset{},
		&models.Sequence{},
		&models.Shot{},
		&models.CharacterImage{},
		&models.LocationImage{},
		&models.AssetImage{},
		&models.ArtControlSettings{},
		&models.Chat{},
		&models.Department{},
		&models.StoryDepartment{},
		&models.AssetDepartmentAssignment{},
		&models.ShotDepartmentAssignment{},
		&models.Talent{},
		&models.CharacterTalentAssignment{},
		&models.AssetTalentAssignment{},
		&models.ShotTalentAssignment{},
	)
}

// SeedData populates the permission catalog, system roles, the default
// department list and the default organization. Existing rows are left
// untouched so operator edits survive restarts.
func SeedData(db *gorm.DB) error {
	if err := permissions.Sync(context.Background(), db); err != nil {
		return err
	}

	if err := seedRoles(db); err != nil {
		return err
	}

	if err := seedDepartments(db); err != nil {
		return err
	}

	return seedDefaultOrganization(db)
}

func seedRoles(db *gorm.DB) error {
	for _, seed := range defaultRoles() {
		perms, err := models.PermissionsJSON(seed.permissions)
		if err != nil {
			return fmt.Errorf("seed role %s: %w", seed.name, err)
		}

		role := models.Role{
			BaseModel:   models.BaseModel{ID: seed.id},
			Name:        seed.name,
			Description: seed.description,
			IsSystem:    true,
			Permissions: perms,
		}

		if err := db.Where(models.Role{Name: seed.name}).
			Attrs(role).
			FirstOrCreate(&models.Role{}).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", seed.name, err)
		}
	}
	return nil
}

func seedDepartments(db *gorm.DB) error {
	for _, seed := range defaultDepartments() {
		dept := models.Department{
			BaseModel:      models.BaseModel{ID: seed.departmentType},
			Name:           seed.name,
			DepartmentType: seed.departmentType,
			Description:    seed.description,
			Icon:           seed.icon,
			Color:          seed.color,
			IsActive:       true,
			DisplayOrder:   seed.displayOrder,
		}

		if err := db.Where(models.Department{DepartmentType: seed.departmentType}).
			Attrs(dept).
			FirstOrCreate(&models.Department{}).Error; err != nil {
			return fmt.Errorf("seed department %s: %w", seed.name, err)
		}
	}
	return nil
}

func seedDefaultOrganization(db *gorm.DB) error {
	org := models.Organization{
		BaseModel:   models.BaseModel{ID: "studio"},
		Name:        "Backlot Studio",
		Slug:        "backlot-studio",
		Description: "Default organization",
	}
	if err := db.Where(models.Organization{Slug: org.Slug}).
		Attrs(org).
		FirstOrCreate(&models.Organization{}).Error; err != nil {
		return fmt.Errorf("seed organization: %w", err)
	}

	var created models.Organization
	if err := db.Where("slug = ?", org.Slug).First(&created).Error; err != nil {
		return fmt.Errorf("seed organization: %w", err)
	}

	team := models.Team{
		BaseModel:      models.BaseModel{ID: "production"},
		OrganizationID: created.ID,
		Name:           "Production",
		Description:    "Default production team",
	}
	if err := db.Where(models.Team{OrganizationID: created.ID, Name: team.Name}).
		Attrs(team).
		FirstOrCreate(&models.Team{}).Error; err != nil {
		return fmt.Errorf("seed team: %w", err)
	}

	return nil
}
