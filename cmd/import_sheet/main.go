// Command import_sheet loads a spreadsheet into one primary collection.
// It runs against the primary datastore directly and therefore needs a
// privileged deployment; restricted nodes receive the data through sync.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/craftline/pricedeskgo/internal/config"
	"github.com/craftline/pricedeskgo/internal/database"
	"github.com/craftline/pricedeskgo/internal/importer"
	"github.com/craftline/pricedeskgo/internal/models"
	"github.com/craftline/pricedeskgo/internal/storage"
	"github.com/craftline/pricedeskgo/internal/store"
	"github.com/craftline/pricedeskgo/internal/utils"
)

func main() {
	var (
		file       = flag.String("file", "", "path to the .xlsx workbook")
		sheet      = flag.String("sheet", "", "sheet name (default: first sheet)")
		collection = flag.String("collection", models.CollectionProducts, "target collection")
	)
	flag.Parse()

	fmt.Println("📦 PriceDesk Sheet Importer")

	if *file == "" {
		log.Fatalf("❌ -file is required (collections: %s)", strings.Join(models.PrimaryCollections(), ", "))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if cfg.Context != config.ContextPrivileged {
		log.Fatalf("❌ Import requires a privileged context, got %s", cfg.Context)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.Document{}, &models.KVEntry{}, &models.SyncMetadata{}); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("❌ Cannot open %s: %v", *file, err)
	}
	defer f.Close()

	raws, err := importer.ReadSheet(f, *sheet)
	if err != nil {
		log.Fatalf("❌ Failed to read sheet: %v", err)
	}
	fmt.Printf("📄 %s: %d data rows\n", *file, len(raws))

	ctx := context.Background()
	primary := store.NewGormStore(db)

	result, err := importer.Import(ctx, primary, *collection, raws)
	if err != nil {
		log.Fatalf("❌ Import failed: %v", err)
	}

	snapshot, err := store.NewSnapshotStore(cfg.SnapshotDir)
	if err != nil {
		log.Fatalf("❌ Cannot open snapshot store: %v", err)
	}
	shim := storage.New(store.NewGormKV(db), snapshot, nil)
	instanceID, err := utils.LoadOrGenerateInstanceID(ctx, shim)
	if err != nil {
		instanceID = "import-cli"
	}
	primary.TouchSyncMetadata(ctx, result.Collection, "imported", instanceID, result.Imported)

	fmt.Printf("✅ Done: %d imported, %d skipped of %d rows\n", result.Imported, result.Skipped, result.Rows)
}
