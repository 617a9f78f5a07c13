package schema

// Family is a group of tables whose columns are resolved together.
type Family string

const (
	FamilyCatalog Family = "catalog"
	FamilySales   Family = "sales"
)

const (
	TableProducts   = "products"
	TableCategories = "categories"
	TableInventory  = "inventory"
	TableSales      = "sales"
	TableSaleItems  = "sale_items"
	TableCustomers  = "customers"
)

// Role is the meaning of a column independent of its physical name.
type Role string

// catalog family
const (
	ProductID          Role = "prod_id"
	ProductName        Role = "prod_name"
	ProductPrice       Role = "prod_price"
	ProductCategoryFK  Role = "prod_cat_fk"
	CategoryID         Role = "cat_id"
	CategoryName       Role = "cat_name"
	InventoryQty       Role = "inv_qty"
	InventoryProductFK Role = "inv_prod_fk"
)

// sales family
const (
	SaleID            Role = "sale_id"
	SaleDate          Role = "sale_date"
	TotalAmount       Role = "total_amount"
	PaymentMethod     Role = "payment_method"
	SaleStatus        Role = "status"
	SaleProofPath     Role = "proof_of_payment_path"
	CustomerFK        Role = "customer_fk"
	CustomerPK        Role = "customer_pk"
	CustomerFirst     Role = "customer_first"
	CustomerLast      Role = "customer_last"
	SaleItemSaleFK    Role = "sale_item_sale_fk"
	SaleItemProductFK Role = "sale_item_product_fk"
	SaleItemQty       Role = "sale_item_qty"
	SaleItemPrice     Role = "sale_item_price"
	SalesProductName  Role = "product_name"
	SalesProductID    Role = "product_id"
)

// rule describes how one role is found in one table. Candidates are tried in
// order and the first structural match wins.
type rule struct {
	role  Role
	table string
	exact []string
	// each entry matches a column whose lower-cased name contains all of its parts
	contains [][]string
	// primary-key-like roles fall back to the table's first column
	firstColumn bool
	fallback    string
}

var catalogRules = []rule{
	{
		role: ProductID, table: TableProducts,
		exact:       []string{"id", "product_id"},
		contains:    [][]string{{"product", "id"}},
		firstColumn: true, fallback: "id",
	},
	{
		role: ProductName, table: TableProducts,
		exact:    []string{"name", "product_name"},
		contains: [][]string{{"product", "name"}},
		fallback: "name",
	},
	{
		role: ProductPrice, table: TableProducts,
		exact:    []string{"price", "unit_price"},
		contains: [][]string{{"price"}},
		fallback: "price",
	},
	{
		role: ProductCategoryFK, table: TableProducts,
		exact:    []string{"category_id"},
		contains: [][]string{{"category", "id"}},
		fallback: "category_id",
	},
	{
		role: CategoryID, table: TableCategories,
		exact:       []string{"id", "category_id"},
		contains:    [][]string{{"category", "id"}},
		firstColumn: true, fallback: "id",
	},
	{
		role: CategoryName, table: TableCategories,
		exact:    []string{"name", "category_name"},
		contains: [][]string{{"name"}},
		fallback: "name",
	},
	{
		role: InventoryQty, table: TableInventory,
		exact:    []string{"quantity", "current_stock"},
		contains: [][]string{{"qty"}, {"stock"}},
		fallback: "quantity",
	},
	{
		role: InventoryProductFK, table: TableInventory,
		exact:    []string{"product_id"},
		contains: [][]string{{"product", "id"}},
		fallback: "product_id",
	},
}

var salesRules = []rule{
	{
		role: SaleID, table: TableSales,
		exact:       []string{"id", "sale_id"},
		contains:    [][]string{{"sale", "id"}},
		firstColumn: true, fallback: "id",
	},
	{
		role: SaleDate, table: TableSales,
		exact:    []string{"sale_date", "date", "created_at", "transaction_date"},
		contains: [][]string{{"sale", "date"}, {"trans", "date"}, {"order", "date"}, {"date"}},
		fallback: "sale_date",
	},
	{
		role: TotalAmount, table: TableSales,
		exact:    []string{"total_amount", "grand_total", "amount", "total"},
		contains: [][]string{{"total", "amount"}, {"grand", "total"}, {"amount"}},
		fallback: "total_amount",
	},
	{
		role: PaymentMethod, table: TableSales,
		exact:    []string{"payment_method", "payment_type", "paymentmode"},
		contains: [][]string{{"payment", "method"}, {"payment", "type"}, {"pay"}},
		fallback: "payment_method",
	},
	{
		role: SaleStatus, table: TableSales,
		exact:    []string{"status"},
		contains: [][]string{{"status"}},
		fallback: "status",
	},
	{
		role: SaleProofPath, table: TableSales,
		exact:    []string{"proof_of_payment_path", "receipt_path", "attachment_path"},
		contains: [][]string{{"proof", "path"}, {"receipt", "path"}, {"payment", "path"}},
		fallback: "proof_of_payment_path",
	},
	{
		role: CustomerFK, table: TableSales,
		exact:    []string{"customer_id", "client_id", "customer"},
		contains: [][]string{{"customer", "id"}, {"client", "id"}, {"cust"}},
		fallback: "customer_id",
	},
	{
		role: CustomerPK, table: TableCustomers,
		exact:       []string{"id", "customer_id"},
		contains:    [][]string{{"customer", "id"}, {"client", "id"}},
		firstColumn: true, fallback: "id",
	},
	{
		role: CustomerFirst, table: TableCustomers,
		exact:    []string{"first_name", "firstname", "given_name"},
		contains: [][]string{{"first"}, {"given"}},
		fallback: "first_name",
	},
	{
		role: CustomerLast, table: TableCustomers,
		exact:    []string{"last_name", "lastname", "surname", "family_name"},
		contains: [][]string{{"last"}, {"sur", "name"}, {"family"}},
		fallback: "last_name",
	},
	{
		role: SaleItemSaleFK, table: TableSaleItems,
		exact:    []string{"sale_id", "sales_id", "order_id"},
		contains: [][]string{{"sale", "id"}, {"order", "id"}},
		fallback: "sale_id",
	},
	{
		role: SaleItemProductFK, table: TableSaleItems,
		exact:    []string{"product_id", "item_id"},
		contains: [][]string{{"product", "id"}, {"item", "id"}},
		fallback: "product_id",
	},
	{
		role: SaleItemQty, table: TableSaleItems,
		exact:    []string{"quantity", "qty", "amount"},
		contains: [][]string{{"qty"}, {"quantity"}},
		fallback: "quantity",
	},
	{
		role: SaleItemPrice, table: TableSaleItems,
		exact:    []string{"price", "unit_price", "amount"},
		contains: [][]string{{"price"}, {"amount"}},
		fallback: "price",
	},
	{
		role: SalesProductName, table: TableProducts,
		exact:    []string{"name", "product_name"},
		contains: [][]string{{"product", "name"}},
		fallback: "name",
	},
	{
		role: SalesProductID, table: TableProducts,
		exact:       []string{"id", "product_id"},
		contains:    [][]string{{"product", "id"}},
		firstColumn: true, fallback: "id",
	},
}

func rulesFor(f Family) []rule {
	switch f {
	case FamilyCatalog:
		return catalogRules
	case FamilySales:
		return salesRules
	default:
		return nil
	}
}

// Roles lists the roles of a family in resolution order.
func Roles(f Family) []Role {
	rules := rulesFor(f)
	out := make([]Role, len(rules))
	for i, r := range rules {
		out[i] = r.role
	}
	return out
}

// Tables lists the tables a family reads, each once, in first-use order.
func Tables(f Family) []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range rulesFor(f) {
		if !seen[r.table] {
			seen[r.table] = true
			out = append(out, r.table)
		}
	}
	return out
}
