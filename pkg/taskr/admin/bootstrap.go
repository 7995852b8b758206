package admin

import (
	"context"
	"fmt"

	"github.com/mikepea/taskr/pkg/taskr/auth"
	"github.com/mikepea/taskr/pkg/taskr/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// EnsureAdminExists creates an admin user from the given credentials when
// the database has no admin yet. It reports whether a user was created.
func EnsureAdminExists(ctx context.Context, db *gorm.DB, email, password string, log logrus.FieldLogger) (bool, error) {
	db = db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("system_role = ?", models.SystemRoleAdmin).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}

	adminUser := models.User{
		Email:        email,
		Name:         "Admin",
		PasswordHash: hashedPassword,
		SystemRole:   models.SystemRoleAdmin,
	}
	if err := db.Create(&adminUser).Error; err != nil {
		return false, fmt.Errorf("create admin %s: %w", email, err)
	}

	log.WithField("email", email).Warn("created default admin user; change its password")
	return true, nil
}
