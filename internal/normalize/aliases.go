package normalize

import "github.com/craftline/pricedeskgo/internal/models"

// FieldSpec maps one canonical field to its source aliases, in priority
// order. The canonical name is implicitly the highest-priority alias, which
// makes normalization idempotent. Matching is done on folded keys (case,
// spaces, underscores and hyphens ignored), so an alias only needs to be
// listed when its folded form differs from the canonical one.
type FieldSpec struct {
	Canonical string
	Aliases   []string
}

// fieldSpecs is the per-kind alias registry. This is deliberately a plain
// data table: sources rename columns between spreadsheet revisions, and a new
// alias should be one line here, not a code change.
var fieldSpecs = map[models.Kind][]FieldSpec{
	models.KindProduct: {
		{Canonical: "ID", Aliases: []string{"ProductID", "SKU", "ItemCode", "Code"}},
		{Canonical: "Name", Aliases: []string{"ProductName", "DesignName", "Design", "Title"}},
		{Canonical: "Category", Aliases: []string{"ProductCategory", "Cat"}},
		{Canonical: "SubCategory", Aliases: []string{"SubCat", "ProductSubCategory"}},
		{Canonical: "Brand", Aliases: []string{"BrandName", "Mill"}},
		{Canonical: "PriceListName", Aliases: []string{"PriceList", "PriceListID"}},
		{Canonical: "Rate", Aliases: []string{"Price", "UnitPrice", "RateUSD", "Amount"}},
		{Canonical: "Size", Aliases: []string{"ProductSize", "Dimensions"}},
		{Canonical: "Color", Aliases: []string{"Colour", "ColorName", "ColourName"}},
		{Canonical: "Style", Aliases: []string{"StyleName", "Construction"}},
		{Canonical: "ImageURL", Aliases: []string{"Image", "ImageLink", "PhotoURL"}},
	},
	models.KindClient: {
		{Canonical: "ID", Aliases: []string{"ClientID", "CustomerID", "Code"}},
		{Canonical: "Name", Aliases: []string{"ClientName", "CustomerName", "Company"}},
		{Canonical: "Email", Aliases: []string{"EmailID", "Mail"}},
		{Canonical: "Phone", Aliases: []string{"PhoneNumber", "Mobile", "Contact"}},
		{Canonical: "City", Aliases: []string{"Location", "Town"}},
		{Canonical: "SalespersonID", Aliases: []string{"Salesperson", "SalesRep", "AgentID"}},
	},
	models.KindSalesperson: {
		{Canonical: "ID", Aliases: []string{"SalespersonID", "EmployeeID", "Code"}},
		{Canonical: "Name", Aliases: []string{"SalespersonName", "EmployeeName"}},
		{Canonical: "Email", Aliases: []string{"EmailID", "Mail"}},
		{Canonical: "Phone", Aliases: []string{"PhoneNumber", "Mobile"}},
	},
	models.KindColor: {
		{Canonical: "ID", Aliases: []string{"ColorID", "ColourID", "Code"}},
		{Canonical: "Name", Aliases: []string{"ColorName", "Colour", "ColourName", "Color"}},
		{Canonical: "HexCode", Aliases: []string{"Hex", "HexValue", "ColorCode"}},
	},
	models.KindStyle: {
		{Canonical: "ID", Aliases: []string{"StyleID", "Code"}},
		{Canonical: "Name", Aliases: []string{"StyleName", "Style"}},
		{Canonical: "Description", Aliases: []string{"Desc", "Details"}},
	},
	models.KindQuote: {
		{Canonical: "ID", Aliases: []string{"QuoteID", "QuoteNumber", "QuoteNo"}},
		{Canonical: "ClientID", Aliases: []string{"Client", "CustomerID"}},
		{Canonical: "Date", Aliases: []string{"QuoteDate", "CreatedDate", "CreatedAt"}},
		{Canonical: "Total", Aliases: []string{"TotalAmount", "GrandTotal", "Amount"}},
		{Canonical: "Status", Aliases: []string{"QuoteStatus", "State"}},
	},
	models.KindOrder: {
		{Canonical: "ID", Aliases: []string{"OrderID", "OrderNumber", "OrderNo"}},
		{Canonical: "QuoteID", Aliases: []string{"Quote", "QuoteNumber"}},
		{Canonical: "ClientID", Aliases: []string{"Client", "CustomerID"}},
		{Canonical: "Date", Aliases: []string{"OrderDate", "CreatedDate", "CreatedAt"}},
		{Canonical: "Total", Aliases: []string{"TotalAmount", "GrandTotal", "Amount"}},
		{Canonical: "Status", Aliases: []string{"OrderStatus", "State"}},
	},
}

// Fields returns the canonical field names for a kind, in registry order.
func Fields(kind models.Kind) []string {
	specs := fieldSpecs[kind]
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		out = append(out, s.Canonical)
	}
	return out
}
