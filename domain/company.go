package domain

import "time"

// Company is the tenant. Every other record except admin users belongs to one.
type Company struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	NameAr    *string   `db:"name_ar" json:"name_ar,omitempty"`
	Email     string    `db:"email" json:"email"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Address   *string   `db:"address" json:"address,omitempty"`
	AddressAr *string   `db:"address_ar" json:"address_ar,omitempty"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Worker struct {
	ID        int64     `db:"id" json:"id"`
	CompanyID int64     `db:"company_id" json:"company_id"`
	Name      string    `db:"name" json:"name"`
	NameAr    *string   `db:"name_ar" json:"name_ar,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	IDNumber  *string   `db:"id_number" json:"id_number,omitempty"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
