package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventcard/terminal/internal/backend"
	"github.com/eventcard/terminal/internal/domain"
)

type recordedRequest struct {
	method, path string
	body         map[string]any
}

func newTestService(t *testing.T, reply string) (*Service, func() []recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rr := recordedRequest{method: r.Method, path: r.URL.Path}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &rr.body)
		}
		mu.Lock()
		reqs = append(reqs, rr)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)

	svc := &Service{Backend: backend.NewClient(srv.URL, time.Second)}
	return svc, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), reqs...)
	}
}

func TestService_CreateProduct_Validation(t *testing.T) {
	t.Parallel()

	svc, requests := newTestService(t, `{"success":true}`)

	tests := []struct {
		name  string
		req   ProductRequest
		field string
	}{
		{name: "missing name", req: ProductRequest{Price: 10, Type: "bebida"}, field: "nombre"},
		{name: "missing price", req: ProductRequest{Name: "Soda", Type: "bebida"}, field: "precio"},
		{name: "non numeric price", req: ProductRequest{Name: "Soda", Price: "diez", Type: "bebida"}, field: "precio"},
		{name: "zero price", req: ProductRequest{Name: "Soda", Price: "0", Type: "bebida"}, field: "precio"},
		{name: "missing type", req: ProductRequest{Name: "Soda", Price: 10.5}, field: "tipo"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreateProduct(context.Background(), tt.req)
			var de *domain.Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, domain.KindFormat, de.Kind)
			assert.Equal(t, tt.field, de.Field)
		})
	}
	assert.Empty(t, requests())
}

func TestService_CreateProduct(t *testing.T) {
	t.Parallel()

	svc, requests := newTestService(t, `{"success":true,"message":"Producto creado","data":{"id":12,"nombre":"Soda","precio":"10.50","tipo":"bebida","punto_venta_id":4,"activo":1}}`)

	pos := int64(4)
	item, err := svc.CreateProduct(context.Background(), ProductRequest{
		Name:          " Soda ",
		Price:         "10.5",
		Type:          "Bebida",
		PointOfSaleID: &pos,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), item.ID)
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("10.5")))

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].method)
	assert.Equal(t, "/api/productos", reqs[0].path)
	assert.Equal(t, "Soda", reqs[0].body["nombre"])
	assert.Equal(t, "bebida", reqs[0].body["tipo"])
	assert.Equal(t, 10.5, reqs[0].body["precio"])
	assert.Equal(t, float64(4), reqs[0].body["punto_venta_id"])
	assert.Equal(t, true, reqs[0].body["activo"])
}

func TestService_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	svc, requests := newTestService(t, `{"success":true,"message":"ok"}`)
	ctx := context.Background()

	inactive := false
	item, err := svc.UpdateProduct(ctx, 7, ProductRequest{Name: "Chips", Price: 15, Type: "snack", Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, int64(7), item.ID)
	assert.False(t, item.Active)

	require.NoError(t, svc.DeleteProduct(ctx, 7))
	require.NoError(t, svc.DeletePointOfSale(ctx, 3))

	p, err := svc.UpdatePointOfSale(ctx, 3, PointOfSaleRequest{Name: "Bar", Type: "Barra"})
	require.NoError(t, err)
	assert.Equal(t, "barra", p.Type)
	assert.True(t, p.Active)

	_, err = svc.UpdateProduct(ctx, 0, ProductRequest{Name: "x", Price: 1, Type: "y"})
	assert.Equal(t, domain.KindFormat, domain.KindOf(err))

	reqs := requests()
	require.Len(t, reqs, 4)
	assert.Equal(t, http.MethodPut, reqs[0].method)
	assert.Equal(t, "/api/productos/7", reqs[0].path)
	assert.Equal(t, http.MethodDelete, reqs[1].method)
	assert.Equal(t, "/api/productos/7", reqs[1].path)
	assert.Equal(t, "/api/puntos-venta/3", reqs[2].path)
	assert.Equal(t, "/api/puntos-venta/3", reqs[3].path)
}

func TestService_PointOfSaleValidation(t *testing.T) {
	t.Parallel()

	svc, requests := newTestService(t, `{"success":true}`)
	_, err := svc.CreatePointOfSale(context.Background(), PointOfSaleRequest{Type: "barra"})
	assert.Equal(t, domain.KindFormat, domain.KindOf(err))
	_, err = svc.CreatePointOfSale(context.Background(), PointOfSaleRequest{Name: "Bar"})
	assert.Equal(t, domain.KindFormat, domain.KindOf(err))
	assert.Empty(t, requests())
}

func TestService_BackendErrorIsBusiness(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, `{"success":false,"error":"Producto no encontrado"}`)
	_, err := svc.Product(context.Background(), 44)
	assert.Equal(t, domain.KindBusiness, domain.KindOf(err))
	assert.Equal(t, "Producto no encontrado", domain.MessageOf(err, ""))
}
