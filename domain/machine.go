package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type MachineType string

const (
	MachineRefining MachineType = "refining"
	MachineMelting  MachineType = "melting"
	MachineCasting  MachineType = "casting"
	MachineOther    MachineType = "other"
)

type MachineStatus string

const (
	MachineActive      MachineStatus = "active"
	MachineMaintenance MachineStatus = "maintenance"
	MachineInactive    MachineStatus = "inactive"
)

type MachineCategory struct {
	ID        int64     `db:"id" json:"id"`
	CompanyID int64     `db:"company_id" json:"company_id"`
	Name      string    `db:"name" json:"name"`
	NameAr    *string   `db:"name_ar" json:"name_ar,omitempty"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Machine struct {
	ID           int64           `db:"id" json:"id"`
	CompanyID    int64           `db:"company_id" json:"company_id"`
	CategoryID   *int64          `db:"category_id" json:"category_id,omitempty"`
	CategoryName *string         `db:"category_name" json:"category_name,omitempty"`
	Name         string          `db:"name" json:"name"`
	NameAr       *string         `db:"name_ar" json:"name_ar,omitempty"`
	SerialNumber string          `db:"serial_number" json:"serial_number"`
	Type         MachineType     `db:"type" json:"type"`
	Status       MachineStatus   `db:"status" json:"status"`
	CostPerUnit  decimal.Decimal `db:"cost_per_unit" json:"cost_per_unit"`
	Unit         string          `db:"unit" json:"unit"`
	Description  *string         `db:"description" json:"description,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}
