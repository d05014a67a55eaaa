package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"foodguard/internal/model"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService("test-secret")

	user := &model.User{
		ID:               uuid.New(),
		Email:            "manager@harborbistro.com",
		Role:             model.RoleAdmin,
		RestaurantID:     uuid.New(),
		SubscriptionType: model.SubscriptionSensor,
	}

	token, err := svc.Issue(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Equal(t, user.RestaurantID.String(), claims.RestaurantID)
	assert.Equal(t, model.SubscriptionSensor, claims.SubscriptionType)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenService_SuperadminOmitsRestaurant(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.Issue(&model.User{
		ID:    uuid.New(),
		Email: "root@foodguard.app",
		Role:  model.RoleSuperadmin,
	})
	assert.NoError(t, err)

	claims, err := svc.Verify(token)
	assert.NoError(t, err)
	assert.Empty(t, claims.RestaurantID)
	assert.Empty(t, claims.SubscriptionType)
}

func TestTokenService_VerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a").Issue(&model.User{
		ID:    uuid.New(),
		Email: "manager@harborbistro.com",
		Role:  model.RoleAdmin,
	})
	assert.NoError(t, err)

	_, err = NewTokenService("secret-b").Verify(token)
	assert.Error(t, err)
}

func TestTokenService_VerifyRejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-secret")

	_, err := svc.Verify("not-a-token")
	assert.Error(t, err)
}
