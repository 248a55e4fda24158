package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"reviewhub/internal/apperr"
	"reviewhub/internal/httpapi/models"
)

func actorWithRole(role string) Actor {
	return Actor{ID: "user-123", Username: "testuser", Role: role, Authenticated: true}
}

func kindOf(t *testing.T, err error) apperr.Kind {
	t.Helper()
	appErr := apperr.As(err)
	if appErr == nil {
		t.Fatalf("expected an apperr error, got %v", err)
	}
	return appErr.Kind
}

func TestAllow_CatalogReadsAreOpen(t *testing.T) {
	for _, verb := range []Verb{VerbList, VerbRetrieve} {
		assert.NoError(t, Allow(Anonymous(), verb, DomainCatalog, false))
		assert.NoError(t, Allow(actorWithRole(models.RoleUser), verb, DomainCatalog, false))
	}
}

func TestAllow_CatalogWritesAreAdminOnly(t *testing.T) {
	for _, verb := range []Verb{VerbCreate, VerbUpdate, VerbDelete} {
		err := Allow(Anonymous(), verb, DomainCatalog, false)
		assert.Equal(t, apperr.KindUnauthenticated, kindOf(t, err))

		err = Allow(actorWithRole(models.RoleUser), verb, DomainCatalog, false)
		assert.Equal(t, apperr.KindForbidden, kindOf(t, err))

		err = Allow(actorWithRole(models.RoleModerator), verb, DomainCatalog, false)
		assert.Equal(t, apperr.KindForbidden, kindOf(t, err))

		assert.NoError(t, Allow(actorWithRole(models.RoleAdmin), verb, DomainCatalog, false))
	}
}

func TestAllow_ContentCreateRequiresAuth(t *testing.T) {
	err := Allow(Anonymous(), VerbCreate, DomainContent, false)
	assert.Equal(t, apperr.KindUnauthenticated, kindOf(t, err))

	assert.NoError(t, Allow(actorWithRole(models.RoleUser), VerbCreate, DomainContent, false))
}

func TestAllow_ContentModifyOwnerOrElevated(t *testing.T) {
	for _, verb := range []Verb{VerbUpdate, VerbDelete} {
		// The author may touch their own resource.
		assert.NoError(t, Allow(actorWithRole(models.RoleUser), verb, DomainContent, true))

		// A stranger with the plain role may not.
		err := Allow(actorWithRole(models.RoleUser), verb, DomainContent, false)
		assert.Equal(t, apperr.KindForbidden, kindOf(t, err))

		// Moderators and admins may touch anything.
		assert.NoError(t, Allow(actorWithRole(models.RoleModerator), verb, DomainContent, false))
		assert.NoError(t, Allow(actorWithRole(models.RoleAdmin), verb, DomainContent, false))

		// Anonymous is told to authenticate, not that it is forbidden.
		err = Allow(Anonymous(), verb, DomainContent, false)
		assert.Equal(t, apperr.KindUnauthenticated, kindOf(t, err))
	}
}

func TestAllow_UsersDomainIsAdminOnly(t *testing.T) {
	for _, verb := range []Verb{VerbList, VerbRetrieve, VerbCreate, VerbUpdate, VerbDelete} {
		err := Allow(actorWithRole(models.RoleModerator), verb, DomainUsers, false)
		assert.Equal(t, apperr.KindForbidden, kindOf(t, err))

		assert.NoError(t, Allow(actorWithRole(models.RoleAdmin), verb, DomainUsers, false))
	}
}

func TestAllow_SelfDomain(t *testing.T) {
	for _, verb := range []Verb{VerbRetrieve, VerbUpdate} {
		err := Allow(Anonymous(), verb, DomainSelf, true)
		assert.Equal(t, apperr.KindUnauthenticated, kindOf(t, err))

		assert.NoError(t, Allow(actorWithRole(models.RoleUser), verb, DomainSelf, true))
	}

	// The self domain has no delete rule at all.
	err := Allow(actorWithRole(models.RoleAdmin), VerbDelete, DomainSelf, true)
	assert.Equal(t, apperr.KindForbidden, kindOf(t, err))
}
