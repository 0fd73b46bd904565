package identity

import (
	"context"

	apperrors "github.com/mirindaq/EcomStore-sub002/pkg/errors"
)

// Role tags a principal as staff or customer.
type Role string

const (
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// Staff carries the staff-specific identity fields.
type Staff struct {
	ID    int64
	Email string
	Name  string
}

// Customer carries the customer-specific identity fields.
type Customer struct {
	ID    int64
	Email string
	Name  string
}

// Principal is a role-tagged union over the authenticated caller. Exactly one
// of the role payloads is set, matching the Role tag. Accessors return a
// typed wrong-role error instead of panicking on a bad assumption about who
// is calling.
type Principal struct {
	role     Role
	staff    *Staff
	customer *Customer
}

// NewStaffPrincipal creates a principal acting in the staff role.
func NewStaffPrincipal(s Staff) *Principal {
	return &Principal{role: RoleStaff, staff: &s}
}

// NewCustomerPrincipal creates a principal acting in the customer role.
func NewCustomerPrincipal(c Customer) *Principal {
	return &Principal{role: RoleCustomer, customer: &c}
}

// Role returns the principal's role tag.
func (p *Principal) Role() Role {
	return p.role
}

// Staff returns the staff payload, or a wrong-role error when the principal
// is not staff.
func (p *Principal) Staff() (*Staff, error) {
	if p.role != RoleStaff {
		return nil, apperrors.WrongRole(string(RoleStaff), string(p.role))
	}
	return p.staff, nil
}

// Customer returns the customer payload, or a wrong-role error when the
// principal is not a customer.
func (p *Principal) Customer() (*Customer, error) {
	if p.role != RoleCustomer {
		return nil, apperrors.WrongRole(string(RoleCustomer), string(p.role))
	}
	return p.customer, nil
}

// IsStaff reports whether the principal acts in the staff role.
func (p *Principal) IsStaff() bool {
	return p.role == RoleStaff
}

type contextKey struct{}

// WithPrincipal stores the principal on the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal stored on the context, or nil when the
// request is anonymous.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(contextKey{}).(*Principal)
	return p
}
