package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/stock-management/internal/catalog"
	catalogDatamodel "github.com/frahmantamala/stock-management/internal/core/datamodel/catalog"
	ledgerDatamodel "github.com/frahmantamala/stock-management/internal/core/datamodel/ledger"
	"github.com/frahmantamala/stock-management/internal/ledger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with the default accounts and a sample catalog for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies(configPath)
		if err != nil {
			log.Fatalf("failed to init dependencies: %v", err)
		}
		defer deps.Close()

		ctx := context.Background()

		if clearData {
			if err := clearInventory(ctx, deps.GormDB); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared areas, branches, items, stock and transactions")
		}

		if err := deps.Services.User.EnsureDefaultAccounts(ctx); err != nil {
			log.Fatalf("failed to seed default accounts: %v", err)
		}
		fmt.Println("Default accounts ensured: admin, user")

		existing, err := deps.Services.Catalog.ListAreas(ctx)
		if err != nil {
			log.Fatalf("failed to list areas: %v", err)
		}
		if len(existing) > 0 {
			fmt.Println("catalog already populated; use --clear to reseed")
			return
		}

		if err := seedCatalog(ctx, deps.Services.Catalog, deps.Services.Ledger); err != nil {
			log.Fatalf("failed to seed catalog: %v", err)
		}
		fmt.Println("Sample catalog seeded successfully")
	},
}

var sampleAreas = []struct {
	Name     string
	Branches []string
}{
	{"North", []string{"North Main", "North Depot"}},
	{"South", []string{"South Main"}},
}

var sampleItems = []string{"Gloves", "Masks", "Sanitizer", "Paper Towels"}

func seedCatalog(ctx context.Context, catalogService *catalog.Service, ledgerService *ledger.Service) error {
	var items []*catalog.Item
	for _, name := range sampleItems {
		item, err := catalogService.CreateItem(ctx, catalog.ItemDTO{Name: name})
		if err != nil {
			return fmt.Errorf("create item %s: %w", name, err)
		}
		items = append(items, item)
		fmt.Printf("Seeded item: %s\n", name)
	}

	today := time.Now().Format("2006-01-02")
	for _, a := range sampleAreas {
		area, err := catalogService.CreateArea(ctx, catalog.AreaDTO{Name: a.Name})
		if err != nil {
			return fmt.Errorf("create area %s: %w", a.Name, err)
		}

		for _, branchName := range a.Branches {
			branch, err := catalogService.CreateBranch(ctx, catalog.BranchDTO{Name: branchName, AreaID: area.ID})
			if err != nil {
				return fmt.Errorf("create branch %s: %w", branchName, err)
			}

			for i, item := range items {
				_, err := ledgerService.AddStock(ctx, ledger.AddStockDTO{
					BranchID: branch.ID,
					ItemID:   item.ID,
					Quantity: int64(10 * (i + 1)),
					Date:     today,
					Remarks:  "opening balance",
				})
				if err != nil {
					return fmt.Errorf("add opening stock for %s/%s: %w", branchName, item.Name, err)
				}
			}
			fmt.Printf("Seeded branch %s in %s with opening stock\n", branchName, a.Name)
		}
	}
	return nil
}

func clearInventory(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&ledgerDatamodel.Transaction{},
			&ledgerDatamodel.Stock{},
			&catalogDatamodel.Branch{},
			&catalogDatamodel.Item{},
			&catalogDatamodel.Area{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
