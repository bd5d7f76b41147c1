package domain

import "time"

type Role string

const (
	RoleAdmin          Role = "admin"
	RoleCompanyManager Role = "company_manager"
	RoleSalesman       Role = "salesman"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCompanyManager, RoleSalesman:
		return true
	}
	return false
}

type User struct {
	ID        int64     `db:"id" json:"id"`
	CompanyID *int64    `db:"company_id" json:"company_id,omitempty"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password" json:"-"`
	Role      Role      `db:"role" json:"role"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Locale    string    `db:"locale" json:"locale"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
