package importer

import (
	"bytes"
	"context"
	"testing"

	"github.com/craftline/pricedeskgo/internal/models"
	"github.com/xuri/excelize/v2"
)

type fakeDatastore struct {
	writes map[string]map[string]interface{}
}

func newFakeDatastore() *fakeDatastore {
	return &fakeDatastore{writes: make(map[string]map[string]interface{})}
}

func (f *fakeDatastore) ReadCollection(ctx context.Context, collection string) ([]map[string]interface{}, error) {
	return nil, nil
}

func (f *fakeDatastore) WriteDocument(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	f.writes[collection+"/"+id] = fields
	return nil
}

func (f *fakeDatastore) DeleteDocument(ctx context.Context, collection, id string) error {
	delete(f.writes, collection+"/"+id)
	return nil
}

func buildWorkbook(t *testing.T, headers []string, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			t.Fatalf("set header: %v", err)
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return &buf
}

func TestReadSheetHeadersAndRows(t *testing.T) {
	buf := buildWorkbook(t,
		[]string{"product id", "Name", "price_list", ""},
		[][]string{
			{"DIY", "Do It Yourself", "INDIA25", "junk"},
			{"", "", "", ""},
			{"WVS", "Weaves", "USA25"},
		},
	)

	raws, err := ReadSheet(buf, "")
	if err != nil {
		t.Fatalf("ReadSheet: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("expected 2 rows (blank row dropped), got %d", len(raws))
	}
	if raws[0]["product id"] != "DIY" {
		t.Errorf("raw header not preserved verbatim: %v", raws[0])
	}
	if _, ok := raws[0][""]; ok {
		t.Errorf("empty header column should be dropped")
	}
	if raws[1]["price_list"] != "USA25" {
		t.Errorf("short row misaligned: %v", raws[1])
	}
}

func TestImportNormalizesAndWrites(t *testing.T) {
	ds := newFakeDatastore()
	raws := []map[string]interface{}{
		{"product id": "DIY", "NAME": "Do It Yourself", "PriceList": "INDIA25"},
		{"Name": "No Identifier Yet", "price list": "USA25"},
		{"stray": "nothing usable"},
	}

	result, err := Import(context.Background(), ds, models.CollectionProducts, raws)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Imported != 2 || result.Skipped != 1 {
		t.Fatalf("imported=%d skipped=%d, want 2/1", result.Imported, result.Skipped)
	}

	fields, ok := ds.writes["products/DIY"]
	if !ok {
		t.Fatalf("DIY row not written: %v", ds.writes)
	}
	if fields["PriceListName"] != "INDIA25" {
		t.Errorf("alias not canonicalized: %v", fields)
	}

	// The ID-less row gets a generated identifier.
	found := false
	for key, f := range ds.writes {
		if key == "products/DIY" {
			continue
		}
		if f["Name"] == "No Identifier Yet" && f["ID"] != "" {
			found = true
		}
	}
	if !found {
		t.Errorf("row without ID should be written under a generated one: %v", ds.writes)
	}
}

func TestImportRejectsDerivedCollection(t *testing.T) {
	if _, err := Import(context.Background(), newFakeDatastore(), models.CollectionCategories, nil); err == nil {
		t.Fatal("importing into a derived collection should fail")
	}
}
