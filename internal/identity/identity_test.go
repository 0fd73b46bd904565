package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mirindaq/EcomStore-sub002/pkg/errors"
)

func TestPrincipal_StaffAccessors(t *testing.T) {
	p := NewStaffPrincipal(Staff{ID: 1, Email: "ops@example.com", Name: "Ops"})

	assert.Equal(t, RoleStaff, p.Role())
	assert.True(t, p.IsStaff())

	s, err := p.Staff()
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.ID)

	_, err = p.Customer()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrWrongRole)
}

func TestPrincipal_CustomerAccessors(t *testing.T) {
	p := NewCustomerPrincipal(Customer{ID: 2, Email: "jo@example.com", Name: "Jo"})

	assert.Equal(t, RoleCustomer, p.Role())
	assert.False(t, p.IsStaff())

	c, err := p.Customer()
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.ID)

	_, err = p.Staff()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrWrongRole)
}

func TestPrincipal_ContextRoundTrip(t *testing.T) {
	p := NewStaffPrincipal(Staff{ID: 1})

	ctx := WithPrincipal(context.Background(), p)
	assert.Same(t, p, FromContext(ctx))
}

func TestFromContext_AnonymousIsNil(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}
