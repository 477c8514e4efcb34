// Command seed creates a set of demo accounts with opening balances for
// local development.
package main

import (
	"log"

	"remit/internal/config"
	"remit/internal/models"
	"remit/internal/repositories"

	"github.com/shopspring/decimal"
)

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}
	defer repositories.CloseDB()

	var count int64
	if err := repositories.DB.Model(&models.Account{}).Count(&count).Error; err != nil {
		log.Fatalf("failed to inspect accounts: %v", err)
	}
	if count > 0 {
		log.Printf("accounts already seeded (%d present), nothing to do", count)
		return
	}

	openingBalances := []string{"1000.00", "500.00", "250.00", "0.00"}
	for _, balance := range openingBalances {
		account := models.Account{
			Balance: decimal.RequireFromString(balance),
			Status:  models.AccountStatusActive,
		}
		if err := repositories.DB.Create(&account).Error; err != nil {
			log.Fatalf("failed to create account: %v", err)
		}
		log.Printf("created account %d with balance %s", account.ID, account.Balance)
	}

	log.Println("seed accounts created")
}
