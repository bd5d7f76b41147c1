package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"goldrefinery/m/domain"
)

func ptr(v int64) *int64 { return &v }

func TestAuthorize(t *testing.T) {
	admin := Subject{UserID: 1, Role: domain.RoleAdmin}
	manager := Subject{UserID: 2, Role: domain.RoleCompanyManager, CompanyID: ptr(10)}
	salesman := Subject{UserID: 3, Role: domain.RoleSalesman, CompanyID: ptr(10)}
	orphan := Subject{UserID: 4, Role: domain.RoleSalesman}

	tests := []struct {
		name    string
		subject Subject
		action  Action
		target  *int64
		wantErr bool
	}{
		{"admin manages companies", admin, ManageCompanies, nil, false},
		{"manager cannot manage companies", manager, ManageCompanies, nil, true},
		{"admin sells for any tenant", admin, RecordSale, ptr(99), false},
		{"manager manages own products", manager, ManageProducts, ptr(10), false},
		{"manager blocked on other tenant", manager, ManageProducts, ptr(11), true},
		{"salesman cannot manage products", salesman, ManageProducts, ptr(10), true},
		{"salesman sells for own tenant", salesman, RecordSale, ptr(10), false},
		{"salesman blocked on other tenant", salesman, RecordSale, ptr(11), true},
		{"salesman views products", salesman, ViewProducts, nil, false},
		{"salesman cannot view reports", salesman, ViewReports, nil, true},
		{"user without company blocked", orphan, RecordSale, ptr(10), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.subject, tt.action, tt.target)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrForbidden)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScope(t *testing.T) {
	assert.Nil(t, Scope(Subject{Role: domain.RoleAdmin}))
	assert.Equal(t, ptr(7), Scope(Subject{Role: domain.RoleCompanyManager, CompanyID: ptr(7)}))
	assert.Equal(t, ptr(-1), Scope(Subject{Role: domain.RoleSalesman}))
}

func TestCanAssignRole(t *testing.T) {
	admin := Subject{Role: domain.RoleAdmin}
	manager := Subject{Role: domain.RoleCompanyManager, CompanyID: ptr(1)}

	assert.True(t, CanAssignRole(admin, domain.RoleAdmin))
	assert.True(t, CanAssignRole(manager, domain.RoleSalesman))
	assert.True(t, CanAssignRole(manager, domain.RoleCompanyManager))
	assert.False(t, CanAssignRole(manager, domain.RoleAdmin))
	assert.False(t, CanAssignRole(admin, domain.Role("owner")))
}
