package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/halopax/unlockd/internal/config"
)

func newTestClient() Client {
	return NewClient(config.Config{SupplierTimeout: 5 * time.Second}, zap.NewNop())
}

func testCreds(serverURL string) Credentials {
	return Credentials{
		BaseURL:  serverURL,
		Username: "reseller@example.com",
		APIKey:   "access-key",
	}
}

func captureForm(t *testing.T, r *http.Request) url.Values {
	t.Helper()
	require.NoError(t, r.ParseForm())
	return r.PostForm
}

func TestPlaceOrderSendsFormEncodedAction(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		form = captureForm(t, r)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"SUCCESS","orderId":"D-991","orderStatus":"Completed","code":"ABC123"}`))
	}))
	defer srv.Close()

	res, err := newTestClient().PlaceOrder(context.Background(), testCreds(srv.URL), OrderInput{
		ServiceID: "1002",
		IMEI:      "356938035643809",
		Reference: "ORD-X1",
	})
	require.NoError(t, err)

	assert.Equal(t, "reseller@example.com", form.Get("username"))
	assert.Equal(t, "access-key", form.Get("apiaccesskey"))
	assert.Equal(t, "placeimeiorder", form.Get("action"))
	assert.Equal(t, "1002", form.Get("serviceid"))
	assert.Equal(t, "356938035643809", form.Get("imei"))
	assert.Equal(t, "ORD-X1", form.Get("reference"))

	assert.True(t, res.Success)
	assert.Equal(t, "D-991", res.SupplierOrderID)
	assert.True(t, res.Completed())
	assert.Equal(t, "ABC123", res.Code)
}

func TestPlaceOrderNormalizesSynonymKeys(t *testing.T) {
	// Deployments disagree on casing and key names.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"SUCCESS","orderid":9901,"order_status":"Pending"}`))
	}))
	defer srv.Close()

	res, err := newTestClient().PlaceOrder(context.Background(), testCreds(srv.URL), OrderInput{ServiceID: "1"})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "9901", res.SupplierOrderID)
	assert.Equal(t, "Pending", res.Status)
	assert.False(t, res.Completed())
	assert.False(t, res.Rejected())
}

func TestPlaceOrderUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ERROR","errorCode":"E010","error":"IMEI not supported"}`))
	}))
	defer srv.Close()

	res, err := newTestClient().PlaceOrder(context.Background(), testCreds(srv.URL), OrderInput{ServiceID: "1"})
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, "E010", res.ErrorCode)
	assert.Equal(t, "IMEI not supported", res.ErrorMessage)
}

func TestPlaceOrderFileUpload(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		form = captureForm(t, r)
		w.Write([]byte(`{"status":"SUCCESS","orderId":"D-1"}`))
	}))
	defer srv.Close()

	_, err := newTestClient().PlaceOrder(context.Background(), testCreds(srv.URL), OrderInput{
		ServiceID: "2001",
		FileName:  "dump.bin",
		FileData:  "aGVsbG8=",
	})
	require.NoError(t, err)

	assert.Equal(t, "dump.bin", form.Get("filename"))
	assert.Equal(t, "aGVsbG8=", form.Get("file"))
	assert.Empty(t, form.Get("imei"))
}

func TestCheckStatus(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		form = captureForm(t, r)
		w.Write([]byte(`{"status":"SUCCESS","orderStatus":"Rejected","errorMessage":"Not found in database"}`))
	}))
	defer srv.Close()

	res, err := newTestClient().CheckStatus(context.Background(), testCreds(srv.URL), "D-991")
	require.NoError(t, err)

	assert.Equal(t, "checkimeiorder", form.Get("action"))
	assert.Equal(t, "D-991", form.Get("orderid"))
	assert.True(t, res.Rejected())
}

func TestBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"SUCCESS","balance":"125.50","currency":"USD"}`))
	}))
	defer srv.Close()

	bal, err := newTestClient().Balance(context.Background(), testCreds(srv.URL))
	require.NoError(t, err)

	assert.Equal(t, "125.50", bal.Balance)
	assert.Equal(t, "USD", bal.Currency)
}

func TestBalanceUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ERROR","message":"invalid api key"}`))
	}))
	defer srv.Close()

	_, err := newTestClient().Balance(context.Background(), testCreds(srv.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestListServices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"SUCCESS","services":[
			{"serviceid":"1001","servicename":"IMEI Check","credit":"0.50","servicetype":"imei","deliverytime":"Instant"},
			{"id":2002,"name":"Carrier Unlock","price":5.0,"type":"imei"},
			{"servicename":"missing id, skipped"}
		]}`))
	}))
	defer srv.Close()

	services, err := newTestClient().ListServices(context.Background(), testCreds(srv.URL))
	require.NoError(t, err)
	require.Len(t, services, 2)

	assert.Equal(t, "1001", services[0].ServiceID)
	assert.Equal(t, "IMEI Check", services[0].Name)
	assert.Equal(t, int64(50), services[0].Price)
	assert.Equal(t, "Instant", services[0].DeliveryTime)

	assert.Equal(t, "2002", services[1].ServiceID)
	assert.Equal(t, int64(500), services[1].Price)
}

func TestTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient().PlaceOrder(context.Background(), testCreds(srv.URL), OrderInput{ServiceID: "1"})
	require.Error(t, err)

	srv.Close()
	_, err = newTestClient().PlaceOrder(context.Background(), testCreds(srv.URL), OrderInput{ServiceID: "1"})
	require.Error(t, err)
}

func TestMalformedBodyIsNotATransportError(t *testing.T) {
	// A 200 with garbage is normalized to a failed result so the caller
	// can take the regular failure path.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	res, err := newTestClient().PlaceOrder(context.Background(), testCreds(srv.URL), OrderInput{ServiceID: "1"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "unparseable supplier response", res.ErrorMessage)
}
