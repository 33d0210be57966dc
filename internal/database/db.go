package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"backend/internal/model"
	"backend/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true, // map unique violations to gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models. UserRole first so the many2many relation
	// reuses the explicit composite-key table.
	err = db.AutoMigrate(
		&model.UserRole{},
		&model.User{},
		&model.Role{},
		&model.Capability{},
		&model.RefreshToken{},
		&model.Template{},
		&model.Payment{},
		&model.Wedding{},
		&model.Guest{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// capability seed: code, name, group, granted-to roles
var seedCapabilities = []struct {
	code, name, group string
	roles             []string
}{
	{"admin-write", "Administrative writes", "admin", nil},
	{"users.read", "Read accounts", "users", []string{model.RoleEmployee}},
	{"users.write", "Create and update accounts", "users", nil},
	{"users.delete", "Remove accounts", "users", nil},
	{"roles.manage", "Manage role assignments", "admin", nil},
	{"weddings.manage", "Operate on any wedding", "weddings", []string{model.RoleEmployee}},
	{"weddings.audit", "See soft-deleted weddings and guests", "weddings", []string{model.RoleEmployee}},
	{"payments.read", "Read any payment", "payments", []string{model.RoleEmployee}},
	{"payments.write", "Settle and refund payments", "payments", nil},
	{"templates.write", "Manage the template catalog", "templates", nil},
}

var seedRoles = []struct {
	name, description string
}{
	{model.RoleSuperuser, "Full access to everything"},
	{model.RoleCustomer, "Self-service wedding owner"},
	{model.RoleEmployee, "Support staff"},
}

// Seed ensures the built-in roles, the capability catalog, and the first
// superuser account exist before the server accepts traffic. The role
// registry's last-superuser invariant depends on this precondition.
func Seed(db *gorm.DB) error {
	roleRepo := repository.NewRoleRepository(db)
	return repository.NewTransactionManager(db).RunInTx(context.Background(), func(txCtx context.Context) error {
		roles := make(map[string]*model.Role, len(seedRoles))
		for _, seed := range seedRoles {
			role, err := roleRepo.EnsureRole(txCtx, seed.name, seed.description)
			if err != nil {
				return fmt.Errorf("seed role %s: %w", seed.name, err)
			}
			roles[seed.name] = role
		}

		grants := make(map[string][]model.Capability)
		for _, seed := range seedCapabilities {
			cap := model.Capability{Code: seed.code, Name: seed.name, Group: seed.group}
			if err := roleRepo.FindOrCreateCapability(txCtx, &cap); err != nil {
				return fmt.Errorf("seed capability %s: %w", seed.code, err)
			}
			for _, roleName := range seed.roles {
				grants[roleName] = append(grants[roleName], cap)
			}
		}
		for roleName, caps := range grants {
			if err := roleRepo.ReplaceCapabilities(txCtx, roles[roleName].ID, caps); err != nil {
				return fmt.Errorf("grant capabilities to %s: %w", roleName, err)
			}
		}

		return seedFirstSuperuser(repository.GetDB(txCtx, db), roles[model.RoleSuperuser])
	})
}

// seedFirstSuperuser provisions FIRST_SUPERUSER_EMAIL with the superuser
// role when no holder exists yet.
func seedFirstSuperuser(tx *gorm.DB, superuser *model.Role) error {
	var holders int64
	err := tx.Model(&model.UserRole{}).
		Where("role_id = ?", superuser.ID).
		Count(&holders).Error
	if err != nil {
		return err
	}
	if holders > 0 {
		return nil
	}

	email := os.Getenv("FIRST_SUPERUSER_EMAIL")
	password := os.Getenv("FIRST_SUPERUSER_PASSWORD")
	if email == "" || password == "" {
		return fmt.Errorf("no superuser exists and FIRST_SUPERUSER_EMAIL/FIRST_SUPERUSER_PASSWORD are unset")
	}

	var user model.User
	err = tx.Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if hashErr != nil {
			return hashErr
		}
		user = model.User{
			Email:           &email,
			FullName:        "First Superuser",
			Password:        string(hashed),
			IsActive:        true,
			IsEmailVerified: true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create first superuser: %w", err)
		}
	case err != nil:
		return fmt.Errorf("look up first superuser: %w", err)
	}

	link := model.UserRole{UserID: user.ID, RoleID: superuser.ID}
	if err := tx.Create(&link).Error; err != nil {
		return fmt.Errorf("attach superuser role: %w", err)
	}
	log.Println("Seeded first superuser", email)
	return nil
}
