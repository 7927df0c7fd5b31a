package analytics

// Status and alert literals are bound as parameters, never inlined.
const (
	StatusCompleted = "COMPLETED"
	AlertOutOfStock = "OUT_OF_STOCK"
	AlertLowStock   = "LOW_STOCK"

	recentSalesLimit = 5
	topProductsLimit = 5
)

const inventoryQuery = `SELECT
    COUNT(*),
    SUM(p.current_stock)::numeric,
    SUM(p.current_stock * p.cost_price),
    COUNT(*) FILTER (WHERE p.current_stock <= p.reorder_level),
    COUNT(*) FILTER (WHERE p.current_stock = 0),
    AVG(p.current_stock::numeric)
FROM products p
WHERE p.is_active`

// Month filters use NOW() in the session time zone of the backend.
const salesQuery = `SELECT
    COUNT(DISTINCT sh.sale_id),
    COALESCE(SUM(si.quantity), 0)::numeric,
    COALESCE(SUM(si.line_total), 0),
    COALESCE(AVG(si.line_total), 0)
FROM sales_headers sh
LEFT JOIN sales_items si ON si.sale_id = sh.sale_id
WHERE sh.status = @status
  AND EXTRACT(YEAR FROM sh.sale_date) = EXTRACT(YEAR FROM NOW())
  AND EXTRACT(MONTH FROM sh.sale_date) = EXTRACT(MONTH FROM NOW())`

const purchasesQuery = `SELECT
    COUNT(DISTINCT ph.purchase_id),
    COALESCE(SUM(pi.quantity), 0)::numeric,
    COALESCE(SUM(pi.line_total), 0)
FROM purchase_headers ph
LEFT JOIN purchase_items pi ON pi.purchase_id = ph.purchase_id
WHERE EXTRACT(YEAR FROM ph.purchase_date) = EXTRACT(YEAR FROM NOW())
  AND EXTRACT(MONTH FROM ph.purchase_date) = EXTRACT(MONTH FROM NOW())`

const alertsQuery = `SELECT
    COUNT(*),
    COUNT(*) FILTER (WHERE a.alert_type = @out_of_stock),
    COUNT(*) FILTER (WHERE a.alert_type = @low_stock)
FROM inventory_alerts a
WHERE NOT a.is_resolved`

const recentSalesQuery = `SELECT
    sh.sale_id,
    sh.invoice_number,
    c.customer_name,
    w.warehouse_name,
    COALESCE(SUM(si.line_total), 0),
    COUNT(si.sale_item_id),
    sh.sale_date
FROM sales_headers sh
LEFT JOIN customers c ON c.customer_id = sh.customer_id
LEFT JOIN warehouses w ON w.warehouse_id = sh.warehouse_id
LEFT JOIN sales_items si ON si.sale_id = sh.sale_id
WHERE sh.status = @status
GROUP BY sh.sale_id, sh.invoice_number, c.customer_name, w.warehouse_name, sh.sale_date
ORDER BY sh.sale_date DESC
LIMIT @row_limit`

const topProductsQuery = `SELECT
    p.product_id,
    p.product_name,
    SUM(si.quantity)::numeric,
    SUM(si.line_total) AS revenue
FROM sales_items si
JOIN sales_headers sh ON sh.sale_id = si.sale_id
JOIN products p ON p.product_id = si.product_id
WHERE sh.status = @status
  AND EXTRACT(YEAR FROM sh.sale_date) = EXTRACT(YEAR FROM NOW())
  AND EXTRACT(MONTH FROM sh.sale_date) = EXTRACT(MONTH FROM NOW())
GROUP BY p.product_id, p.product_name
ORDER BY revenue DESC
LIMIT @row_limit`

const categoriesQuery = `SELECT
    c.category_id,
    c.category_name,
    COUNT(p.product_id),
    COALESCE(SUM(p.current_stock), 0)::numeric,
    COALESCE(SUM(p.current_stock * p.cost_price), 0) AS inventory_value
FROM categories c
LEFT JOIN products p ON p.category_id = c.category_id AND p.is_active
GROUP BY c.category_id, c.category_name
ORDER BY inventory_value DESC`

const warehousesQuery = `SELECT
    w.warehouse_id,
    w.warehouse_name,
    COALESCE(SUM(ps.on_hand_qty), 0)::numeric,
    COUNT(DISTINCT ps.product_id)
FROM warehouses w
LEFT JOIN product_stocks ps ON ps.warehouse_id = w.warehouse_id
WHERE w.is_active
GROUP BY w.warehouse_id, w.warehouse_name
ORDER BY w.warehouse_name`
