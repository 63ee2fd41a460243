// Command seed_demo fills the primary datastore with a small demo data
// set: a handful of products across two price lists, clients with their
// salespeople, and an admin login. Useful for trying the API without a
// real spreadsheet import.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/craftline/pricedeskgo/internal/config"
	"github.com/craftline/pricedeskgo/internal/database"
	"github.com/craftline/pricedeskgo/internal/models"
	"github.com/craftline/pricedeskgo/internal/store"
	"github.com/craftline/pricedeskgo/internal/utils"
)

var demoData = map[string][]map[string]interface{}{
	models.CollectionProducts: {
		{"ID": "DIY-001", "Name": "Do It Yourself", "Category": "Rugs", "SubCategory": "Flatweave", "Brand": "Craftline", "PriceListName": "INDIA25", "Rate": "1450", "Size": "8x10", "Color": "Indigo", "Style": "Handloom"},
		{"ID": "DIY-002", "Name": "Do It Yourself", "Category": "Rugs", "SubCategory": "Flatweave", "Brand": "Craftline", "PriceListName": "USA25", "Rate": "219", "Size": "8x10", "Color": "Indigo", "Style": "Handloom"},
		{"ID": "WVS-101", "Name": "Weaves", "Category": "Rugs", "SubCategory": "Pile", "Brand": "Craftline", "PriceListName": "USA25", "Rate": "349", "Size": "9x12", "Color": "Ivory", "Style": "Hand-knotted"},
		{"ID": "THR-040", "Name": "Throws Classic", "Category": "Throws", "SubCategory": "Wool", "Brand": "Loomhouse", "PriceListName": "INDIA25", "Rate": "820", "Size": "50x60", "Color": "Charcoal", "Style": "Handloom"},
	},
	models.CollectionSalespeople: {
		{"ID": "SP-1", "Name": "Asha Verma", "Email": "asha@example.com", "Phone": "+91 98100 00001"},
		{"ID": "SP-2", "Name": "Daniel Reyes", "Email": "daniel@example.com", "Phone": "+1 212 555 0102"},
	},
	models.CollectionClients: {
		{"ID": "CL-100", "Name": "Harbor Interiors", "Email": "buying@harborinteriors.example", "City": "Boston", "SalespersonID": "SP-2"},
		{"ID": "CL-101", "Name": "Mehta Exports", "Email": "office@mehtaexports.example", "City": "Jaipur", "SalespersonID": "SP-1"},
	},
	models.CollectionColors: {
		{"ID": "COL-IND", "Name": "Indigo", "HexCode": "#264E70"},
		{"ID": "COL-IVY", "Name": "Ivory", "HexCode": "#F4F1E8"},
		{"ID": "COL-CHL", "Name": "Charcoal", "HexCode": "#36454F"},
	},
	models.CollectionStyles: {
		{"ID": "STY-HL", "Name": "Handloom"},
		{"ID": "STY-HK", "Name": "Hand-knotted"},
	},
}

func main() {
	fmt.Println("🌱 PriceDesk Demo Data Seeder")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if cfg.Context != config.ContextPrivileged {
		log.Fatalf("❌ Seeding requires a privileged context, got %s", cfg.Context)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("🔨 Running database migrations...")
	if err := db.AutoMigrate(&models.UserAuth{}, &models.Document{}, &models.KVEntry{}, &models.SyncMetadata{}); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	ctx := context.Background()
	primary := store.NewGormStore(db)

	total := 0
	for _, collection := range models.PrimaryCollections() {
		docs := demoData[collection]
		for _, fields := range docs {
			id := fields["ID"].(string)
			if err := primary.WriteDocument(ctx, collection, id, fields); err != nil {
				log.Fatalf("❌ Seed %s/%s: %v", collection, id, err)
			}
		}
		if len(docs) > 0 {
			fmt.Printf("  ✅ %s: %d records\n", collection, len(docs))
			primary.TouchSyncMetadata(ctx, collection, "seeded", "seed-demo", len(docs))
			total += len(docs)
		}
	}

	// Admin login for the write endpoints
	hash, err := utils.HashPassword("admin123")
	if err != nil {
		log.Fatalf("❌ Hash password: %v", err)
	}
	admin := models.UserAuth{Email: "admin@example.com", Password: hash, Name: "Demo Admin", Role: "admin", IsActive: true}
	if err := db.Where("email = ?", admin.Email).FirstOrCreate(&admin).Error; err != nil {
		log.Fatalf("❌ Seed admin user: %v", err)
	}
	fmt.Println("  ✅ admin@example.com / admin123")

	fmt.Printf("🌱 Done: %d records seeded\n", total)
}
