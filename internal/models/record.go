package models

// Record is one normalized entity instance (product, client, quote...).
// Keys are canonical field names for the record's kind; values are kept as
// strings because every upstream source (spreadsheet rows, JSONB documents,
// snapshot files) delivers string-shaped scalars.
type Record map[string]string

// Get returns the value for a canonical field, or "" if absent.
func (r Record) Get(field string) string {
	return r[field]
}

// ID returns the record identifier field, or "" for degenerate records.
func (r Record) ID() string {
	return r["ID"]
}

// IsDegenerate reports whether the record carries no non-empty field at all.
// Degenerate records are passed through the pipeline, never discarded;
// filtering them is the consumer's call.
func (r Record) IsDegenerate() bool {
	for _, v := range r {
		if v != "" {
			return false
		}
	}
	return true
}

// Clone returns an independent copy. Cached records are treated as immutable,
// so handlers that mutate a record must clone it first.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Kind identifies the entity kind of a record.
type Kind string

const (
	KindProduct     Kind = "product"
	KindClient      Kind = "client"
	KindSalesperson Kind = "salesperson"
	KindColor       Kind = "color"
	KindStyle       Kind = "style"
	KindQuote       Kind = "quote"
	KindOrder       Kind = "order"
)

// Primary collection names. These are the collections that exist in the
// primary datastore; derived collections are computed, never stored.
const (
	CollectionProducts    = "products"
	CollectionClients     = "clients"
	CollectionSalespeople = "salespeople"
	CollectionColors      = "colors"
	CollectionStyles      = "styles"
	CollectionQuotes      = "quotes"
	CollectionOrders      = "orders"
)

// Derived collection names, all projected from products.
const (
	CollectionCategories    = "categories"
	CollectionSubcategories = "subcategories"
	CollectionBrands        = "brands"
	CollectionPriceLists    = "priceLists"
)

// collectionKinds maps each primary collection to its entity kind.
var collectionKinds = map[string]Kind{
	CollectionProducts:    KindProduct,
	CollectionClients:     KindClient,
	CollectionSalespeople: KindSalesperson,
	CollectionColors:      KindColor,
	CollectionStyles:      KindStyle,
	CollectionQuotes:      KindQuote,
	CollectionOrders:      KindOrder,
}

// derivedSource maps each derived collection to the product field it projects.
var derivedSource = map[string]string{
	CollectionCategories:    "Category",
	CollectionSubcategories: "SubCategory",
	CollectionBrands:        "Brand",
	CollectionPriceLists:    "PriceListName",
}

// PrimaryCollections returns the stored collection names in load order:
// products first (critical path), the rest behind it.
func PrimaryCollections() []string {
	return []string{
		CollectionProducts,
		CollectionClients,
		CollectionSalespeople,
		CollectionColors,
		CollectionStyles,
		CollectionQuotes,
		CollectionOrders,
	}
}

// DerivedCollections returns the computed collection names.
func DerivedCollections() []string {
	return []string{
		CollectionCategories,
		CollectionSubcategories,
		CollectionBrands,
		CollectionPriceLists,
	}
}

// KnownCollection reports whether name is a primary or derived collection.
func KnownCollection(name string) bool {
	if _, ok := collectionKinds[name]; ok {
		return true
	}
	_, ok := derivedSource[name]
	return ok
}

// IsDerived reports whether name is a derived collection.
func IsDerived(name string) bool {
	_, ok := derivedSource[name]
	return ok
}

// KindFor returns the entity kind stored in a primary collection.
func KindFor(name string) (Kind, bool) {
	k, ok := collectionKinds[name]
	return k, ok
}

// DerivedField returns the product field a derived collection projects.
func DerivedField(name string) (string, bool) {
	f, ok := derivedSource[name]
	return f, ok
}
