// Package seed loads demo data and product catalogs into a fresh database.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"goldrefinery/m/domain"
	"goldrefinery/m/internal/store"
)

const (
	AdminEmail    = "admin@gold.com"
	AdminPassword = "11235813nJ"
	StaffPassword = "password123"
)

func str(s string) *string { return &s }

// Demo creates the demo tenant with its staff, workers, and machines.
// Products come from the catalog import. It does nothing when the admin account already exists and
// returns the demo company id either way.
func Demo(ctx context.Context, db *sqlx.DB, log *zap.Logger) (int64, error) {
	admin, err := store.GetUserByEmail(ctx, db, AdminEmail)
	if err == nil {
		log.Info("demo data already present", zap.Int64("admin_id", admin.ID))
		return demoCompanyID(ctx, db)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	adminHash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	staffHash, err := bcrypt.GenerateFromPassword([]byte(StaffPassword), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	if err := store.CreateUser(ctx, tx, &domain.User{
		Name: "Admin", Email: AdminEmail, Password: string(adminHash),
		Role: domain.RoleAdmin, Locale: "en", IsActive: true,
	}); err != nil {
		return 0, fmt.Errorf("seed admin: %w", err)
	}

	company := &domain.Company{
		Name:      "Golden Refinery LLC",
		NameAr:    str("شركة التكرير الذهبي"),
		Email:     "info@goldenrefinery.com",
		Phone:     str("+971 4 123 4567"),
		Address:   str("Business Bay, Dubai, UAE"),
		AddressAr: str("الخليج التجاري، دبي، الإمارات"),
		IsActive:  true,
	}
	if err := store.CreateCompany(ctx, tx, company); err != nil {
		return 0, fmt.Errorf("seed company: %w", err)
	}

	staff := []domain.User{
		{Name: "Ahmed Al Mansouri", Email: "manager@goldenrefinery.com", Role: domain.RoleCompanyManager, Phone: str("+971 50 123 4567")},
		{Name: "Mohammed Hassan", Email: "sales@goldenrefinery.com", Role: domain.RoleSalesman, Phone: str("+971 50 234 5678")},
	}
	for i := range staff {
		u := &staff[i]
		u.CompanyID = &company.ID
		u.Password = string(staffHash)
		u.Locale = "en"
		u.IsActive = true
		if err := store.CreateUser(ctx, tx, u); err != nil {
			return 0, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}

	workers := []domain.Worker{
		{Name: "Ali Rahman", NameAr: str("علي رحمن"), Phone: str("+971 50 345 6789"), IDNumber: str("EMP001")},
		{Name: "Khalid Ahmed", NameAr: str("خالد أحمد"), Phone: str("+971 50 456 7890"), IDNumber: str("EMP002")},
	}
	for i := range workers {
		w := &workers[i]
		w.CompanyID = company.ID
		w.IsActive = true
		if err := store.CreateWorker(ctx, tx, w); err != nil {
			return 0, fmt.Errorf("seed worker %s: %w", w.Name, err)
		}
	}

	categories := map[domain.MachineType]*domain.MachineCategory{
		domain.MachineRefining: {Name: "Refining Equipment", NameAr: str("معدات التكرير")},
		domain.MachineMelting:  {Name: "Melting Equipment", NameAr: str("معدات الصهر")},
		domain.MachineCasting:  {Name: "Casting Equipment", NameAr: str("معدات السباكة")},
	}
	for _, kind := range []domain.MachineType{domain.MachineRefining, domain.MachineMelting, domain.MachineCasting} {
		c := categories[kind]
		c.CompanyID = company.ID
		c.IsActive = true
		if err := store.CreateMachineCategory(ctx, tx, c); err != nil {
			return 0, fmt.Errorf("seed category %s: %w", c.Name, err)
		}
	}

	machines := []domain.Machine{
		{Name: "Gold Refining Machine A1", NameAr: str("آلة تكرير الذهب A1"), SerialNumber: "GRM-2024-001", Type: domain.MachineRefining,
			Status: domain.MachineActive, CostPerUnit: decimal.NewFromInt(150), Description: str("High-capacity gold refining machine")},
		{Name: "Gold Melting Furnace B2", NameAr: str("فرن صهر الذهب B2"), SerialNumber: "GMF-2024-002", Type: domain.MachineMelting,
			Status: domain.MachineActive, CostPerUnit: decimal.NewFromInt(200), Description: str("Industrial gold melting furnace")},
		{Name: "Casting Machine C3", NameAr: str("آلة السباكة C3"), SerialNumber: "GCM-2024-003", Type: domain.MachineCasting,
			Status: domain.MachineMaintenance, CostPerUnit: decimal.NewFromInt(120), Description: str("Precision gold casting machine")},
	}
	for i := range machines {
		m := &machines[i]
		m.CompanyID = company.ID
		m.CategoryID = &categories[m.Type].ID
		m.Unit = "hour"
		if err := store.CreateMachine(ctx, tx, m); err != nil {
			return 0, fmt.Errorf("seed machine %s: %w", m.SerialNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	log.Info("demo data seeded", zap.Int64("company_id", company.ID))
	return company.ID, nil
}

func demoCompanyID(ctx context.Context, db *sqlx.DB) (int64, error) {
	var id int64
	err := db.GetContext(ctx, &id, db.Rebind(`SELECT id FROM companies WHERE email = ?`), "info@goldenrefinery.com")
	if err != nil {
		return 0, fmt.Errorf("find demo company: %w", err)
	}
	return id, nil
}
