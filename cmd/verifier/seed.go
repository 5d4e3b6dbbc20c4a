package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/LeventeLantos/payment-verification/internal/config"
	"github.com/LeventeLantos/payment-verification/internal/model"
	"github.com/LeventeLantos/payment-verification/internal/repo"
)

const sampleCounterparty = "sagarmanthan0001-1@oksbi"

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample users and payments for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.LoadAll()
			if err != nil {
				return err
			}
			dialect, err := repo.ParseDialect(cfg.Database.Driver)
			if err != nil {
				return err
			}
			db, err := repo.Open(dialect, cfg.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()

			return seed(cmd.Context(), cmd.OutOrStdout(), repo.NewSQLPaymentRepo(db, dialect))
		},
	}
}

func sampleUsers() []model.User {
	return []model.User{
		{ID: "admin-manths", Name: "Manths", Role: model.RoleAdmin, Status: model.AccountApproved, BuildingID: "F"},
		{ID: "member123", Name: "John Doe", Role: model.RoleMember, Status: model.AccountApproved, BuildingID: "F"},
		{ID: "member456", Name: "Jane Smith", Role: model.RoleMember, Status: model.AccountApproved, BuildingID: "F"},
	}
}

func samplePayments() []model.Payment {
	amount := decimal.NewNullDecimal(decimal.NewFromInt(2500))
	desc := "Monthly Maintenance - July 2025"

	return []model.Payment{
		{
			ID: uuid.NewString(), UserID: "admin-manths", Username: "Manths",
			BuildingID: "F", HouseNumber: "101", Description: desc,
			ExpectedAmount: amount, ExpectedCounterpartyID: sampleCounterparty,
			Status: model.Success, SMSVerified: true,
		},
		{
			ID: uuid.NewString(), UserID: "member123", Username: "John Doe",
			BuildingID: "F", HouseNumber: "102", Description: desc,
			ExpectedAmount: amount, ExpectedCounterpartyID: sampleCounterparty,
			Status: model.Pending,
		},
		{
			ID: uuid.NewString(), UserID: "member456", Username: "Jane Smith",
			BuildingID: "F", HouseNumber: "201", Description: desc,
			ExpectedAmount: amount, ExpectedCounterpartyID: sampleCounterparty,
			Status: model.Failed,
		},
	}
}

func seed(ctx context.Context, w io.Writer, r repo.PaymentRepository) error {
	for _, u := range sampleUsers() {
		if err := r.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("create user %s: %w", u.ID, err)
		}
	}

	for _, p := range samplePayments() {
		if err := r.CreatePayment(ctx, p); err != nil {
			return fmt.Errorf("create payment for %s: %w", p.Username, err)
		}
		fmt.Fprintf(w, "added payment %s: %s - ₹%s - %s\n", p.ID, p.Username, p.ExpectedAmount.Decimal.String(), p.Status)
	}
	return nil
}
