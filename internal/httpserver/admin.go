package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eventcard/terminal/internal/backend"
	"github.com/eventcard/terminal/internal/catalog"
	"github.com/eventcard/terminal/internal/logging"
	"github.com/eventcard/terminal/internal/reports"
	"github.com/eventcard/terminal/internal/util"
)

type AdminHTTP struct {
	Catalog *catalog.Service
	Reports *reports.Service
}

// paramID returns 0 for anything that is not a positive integer; the
// services reject 0 with a field error.
func paramID(c echo.Context) int64 {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func queryInt64(c echo.Context, name string) *int64 {
	v := c.QueryParam(name)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		// Keep the value so validation reports it instead of silently
		// widening the filter.
		n = 0
	}
	return &n
}

func adminLogger(c echo.Context, handler string) *zap.Logger {
	return logging.FromContext(c.Request().Context()).With(zap.String("handler", handler))
}

func (h *AdminHTTP) Products(c echo.Context) error {
	l := adminLogger(c, "admin.products")

	items, err := h.Catalog.Products(c.Request().Context(), backend.ProductFilter{
		PointOfSaleID: queryInt64(c, "point_of_sale_id"),
		Type:          c.QueryParam("type"),
	})
	if err != nil {
		return fail(c, l, "get_products", err)
	}
	return ok(c, http.StatusOK, items)
}

func (h *AdminHTTP) ProductTypes(c echo.Context) error {
	l := adminLogger(c, "admin.product_types")

	types, err := h.Catalog.ProductTypes(c.Request().Context())
	if err != nil {
		return fail(c, l, "get_product_types", err)
	}
	return ok(c, http.StatusOK, types)
}

func (h *AdminHTTP) Product(c echo.Context) error {
	l := adminLogger(c, "admin.product")

	item, err := h.Catalog.Product(c.Request().Context(), paramID(c))
	if err != nil {
		return fail(c, l, "get_product", err)
	}
	return ok(c, http.StatusOK, item)
}

func (h *AdminHTTP) CreateProduct(c echo.Context) error {
	l := adminLogger(c, "admin.create_product")

	var req catalog.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(c, l, "create_product", err)
	}
	item, err := h.Catalog.CreateProduct(c.Request().Context(), req)
	if err != nil {
		return fail(c, l, "create_product", err)
	}
	l.Info("create_product_success", zap.Int64("product_id", item.ID))
	return ok(c, http.StatusCreated, item)
}

func (h *AdminHTTP) UpdateProduct(c echo.Context) error {
	l := adminLogger(c, "admin.update_product")

	var req catalog.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(c, l, "update_product", err)
	}
	item, err := h.Catalog.UpdateProduct(c.Request().Context(), paramID(c), req)
	if err != nil {
		return fail(c, l, "update_product", err)
	}
	l.Info("update_product_success", zap.Int64("product_id", item.ID))
	return ok(c, http.StatusOK, item)
}

func (h *AdminHTTP) DeleteProduct(c echo.Context) error {
	l := adminLogger(c, "admin.delete_product")

	id := paramID(c)
	if err := h.Catalog.DeleteProduct(c.Request().Context(), id); err != nil {
		return fail(c, l, "delete_product", err)
	}
	l.Info("delete_product_success", zap.Int64("product_id", id))
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHTTP) PointsOfSale(c echo.Context) error {
	l := adminLogger(c, "admin.points_of_sale")

	list, err := h.Catalog.PointsOfSale(c.Request().Context())
	if err != nil {
		return fail(c, l, "get_points_of_sale", err)
	}
	return ok(c, http.StatusOK, list)
}

func (h *AdminHTTP) CreatePointOfSale(c echo.Context) error {
	l := adminLogger(c, "admin.create_point_of_sale")

	var req catalog.PointOfSaleRequest
	if err := c.Bind(&req); err != nil {
		return badBody(c, l, "create_point_of_sale", err)
	}
	p, err := h.Catalog.CreatePointOfSale(c.Request().Context(), req)
	if err != nil {
		return fail(c, l, "create_point_of_sale", err)
	}
	return ok(c, http.StatusCreated, p)
}

func (h *AdminHTTP) UpdatePointOfSale(c echo.Context) error {
	l := adminLogger(c, "admin.update_point_of_sale")

	var req catalog.PointOfSaleRequest
	if err := c.Bind(&req); err != nil {
		return badBody(c, l, "update_point_of_sale", err)
	}
	p, err := h.Catalog.UpdatePointOfSale(c.Request().Context(), paramID(c), req)
	if err != nil {
		return fail(c, l, "update_point_of_sale", err)
	}
	return ok(c, http.StatusOK, p)
}

func (h *AdminHTTP) DeletePointOfSale(c echo.Context) error {
	l := adminLogger(c, "admin.delete_point_of_sale")

	if err := h.Catalog.DeletePointOfSale(c.Request().Context(), paramID(c)); err != nil {
		return fail(c, l, "delete_point_of_sale", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func reportFilter(c echo.Context) (reports.Filter, int, int) {
	f := reports.Filter{
		From:          c.QueryParam("from"),
		To:            c.QueryParam("to"),
		PointOfSaleID: queryInt64(c, "point_of_sale_id"),
		Type:          c.QueryParam("type"),
	}
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	return f, page, size
}

func (h *AdminHTTP) SalesReport(c echo.Context) error {
	l := adminLogger(c, "admin.sales_report")

	f, page, size := reportFilter(c)
	rep, err := h.Reports.Sales(c.Request().Context(), f, page, size)
	if err != nil {
		return fail(c, l, "sales_report", err)
	}
	return ok(c, http.StatusOK, rep)
}

func (h *AdminHTTP) TransactionsReport(c echo.Context) error {
	l := adminLogger(c, "admin.transactions_report")

	f, page, size := reportFilter(c)
	rep, err := h.Reports.Transactions(c.Request().Context(), f, page, size)
	if err != nil {
		return fail(c, l, "transactions_report", err)
	}
	return ok(c, http.StatusOK, rep)
}
