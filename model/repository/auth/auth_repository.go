package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	entity "gallery.GO/model/entity"
)

// ErrInactiveAdmin is returned when a token belongs to a disabled admin account.
var ErrInactiveAdmin = errors.New("admin user inactive")

// Grant is what an admin access token may do.
type Grant struct {
	Token     *entity.OauthToken
	RoleID    uint
	RoleName  string
	Resources []string
}

// Allows reports whether the grant covers resource. Magento_Backend::all covers everything.
func (g *Grant) Allows(resource string) bool {
	if g == nil {
		return false
	}
	for _, r := range g.Resources {
		if r == resource || r == "Magento_Backend::all" {
			return true
		}
	}
	return false
}

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

// FindActiveToken returns a non-revoked access token by its token string.
func (r *AuthRepository) FindActiveToken(ctx context.Context, token string) (*entity.OauthToken, error) {
	var t entity.OauthToken
	err := r.db.WithContext(ctx).Where("token = ? AND type = 'access' AND revoked = 0", token).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindActiveAdmin returns the admin account, ErrInactiveAdmin when it is disabled.
func (r *AuthRepository) FindActiveAdmin(ctx context.Context, adminID uint) (*entity.AdminUser, error) {
	var u entity.AdminUser
	if err := r.db.WithContext(ctx).First(&u, adminID).Error; err != nil {
		return nil, err
	}
	if u.IsActive != 1 {
		return nil, ErrInactiveAdmin
	}
	return &u, nil
}

// FindUserRole returns the role assignment (role_type='U') for a given admin user ID.
func (r *AuthRepository) FindUserRole(ctx context.Context, adminID uint) (*entity.AuthorizationRole, error) {
	var role entity.AuthorizationRole
	err := r.db.WithContext(ctx).Where("user_id = ? AND role_type = 'U'", adminID).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// FindGroupRole returns the group role (role_type='G') by role ID.
func (r *AuthRepository) FindGroupRole(ctx context.Context, roleID uint) (*entity.AuthorizationRole, error) {
	var role entity.AuthorizationRole
	err := r.db.WithContext(ctx).Where("role_id = ? AND role_type = 'G'", roleID).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// FindAllowedResources returns all allowed ACL resource IDs for a given role ID.
func (r *AuthRepository) FindAllowedResources(ctx context.Context, roleID uint) ([]string, error) {
	var rules []entity.AuthorizationRule
	if err := r.db.WithContext(ctx).Where("role_id = ? AND permission = 'allow'", roleID).Find(&rules).Error; err != nil {
		return nil, err
	}
	resources := make([]string, 0, len(rules))
	for _, rule := range rules {
		if rule.ResourceID != nil {
			resources = append(resources, *rule.ResourceID)
		}
	}
	return resources, nil
}

// GrantForToken walks token -> admin -> user role -> group role -> allowed rules.
// Integration tokens without an admin get an empty grant.
func (r *AuthRepository) GrantForToken(ctx context.Context, token string) (*Grant, error) {
	t, err := r.FindActiveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	g := &Grant{Token: t}
	if t.AdminID == nil {
		return g, nil
	}
	if _, err := r.FindActiveAdmin(ctx, *t.AdminID); err != nil {
		return nil, fmt.Errorf("admin %d: %w", *t.AdminID, err)
	}
	userRole, err := r.FindUserRole(ctx, *t.AdminID)
	if err != nil {
		return g, nil
	}
	groupRole, err := r.FindGroupRole(ctx, userRole.ParentID)
	if err != nil {
		return g, nil
	}
	g.RoleID, g.RoleName = groupRole.RoleID, groupRole.RoleName
	if g.Resources, err = r.FindAllowedResources(ctx, groupRole.RoleID); err != nil {
		return nil, fmt.Errorf("acl rules for role %d: %w", groupRole.RoleID, err)
	}
	return g, nil
}
