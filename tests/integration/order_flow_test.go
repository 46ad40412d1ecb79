package integration

import (
	"net/http"
	"testing"
)

func TestOrderFlow_PlaceModifyExecute(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "orders@test.com", "password123")

	// Place a limit order
	rec := app.request("POST", "/api/v1/orders",
		`{"symbol":"TCS","exchange":"NSE","transaction_type":"BUY","order_type":"LIMIT","product":"CNC","quantity":10,"price":3500}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("place failed: %d %s", rec.Code, rec.Body.String())
	}
	order := parseJSON(t, rec)["order"].(map[string]interface{})
	if order["status"] != "PENDING" {
		t.Errorf("expected status PENDING, got %v", order["status"])
	}
	if order["remaining_quantity"] != float64(10) {
		t.Errorf("expected remaining_quantity 10, got %v", order["remaining_quantity"])
	}
	if order["order_value"] != float64(35000) {
		t.Errorf("expected order_value 35000, got %v", order["order_value"])
	}
	if order["validity"] != "DAY" {
		t.Errorf("expected validity to default to DAY, got %v", order["validity"])
	}

	// Modify price and quantity
	rec = app.request("PUT", "/api/v1/orders/1", `{"quantity":20,"price":3400}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("modify failed: %d %s", rec.Code, rec.Body.String())
	}
	order = parseJSON(t, rec)["order"].(map[string]interface{})
	if order["order_value"] != float64(68000) {
		t.Errorf("expected order_value 68000, got %v", order["order_value"])
	}

	// Execute
	rec = app.request("PUT", "/api/v1/orders/1/status", `{"status":"EXECUTED"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("execute failed: %d %s", rec.Code, rec.Body.String())
	}
	order = parseJSON(t, rec)["order"].(map[string]interface{})
	if order["status"] != "EXECUTED" {
		t.Errorf("expected status EXECUTED, got %v", order["status"])
	}
	if order["remaining_quantity"] != float64(0) {
		t.Errorf("expected remaining_quantity 0, got %v", order["remaining_quantity"])
	}

	// Terminal orders refuse further changes
	rec = app.request("PUT", "/api/v1/orders/1", `{"price":3300}`, token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 modifying executed order, got %d", rec.Code)
	}
	rec = app.request("POST", "/api/v1/orders/1/cancel", "", token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 cancelling executed order, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "ORDER_NOT_OPEN" {
		t.Errorf("expected ORDER_NOT_OPEN, got %v", code)
	}
}

func TestOrderFlow_ValidationRules(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "ordervalidation@test.com", "password123")

	// LIMIT without price
	rec := app.request("POST", "/api/v1/orders",
		`{"symbol":"TCS","exchange":"NSE","transaction_type":"BUY","order_type":"LIMIT","product":"CNC","quantity":10}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for LIMIT without price, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "INVALID_ORDER" {
		t.Errorf("expected INVALID_ORDER, got %v", code)
	}

	// SL with trigger above price
	rec = app.request("POST", "/api/v1/orders",
		`{"symbol":"TCS","exchange":"NSE","transaction_type":"SELL","order_type":"SL","product":"MIS","quantity":10,"price":800,"trigger_price":810}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for SL trigger above price, got %d", rec.Code)
	}

	// SL with trigger below price is accepted
	rec = app.request("POST", "/api/v1/orders",
		`{"symbol":"TCS","exchange":"NSE","transaction_type":"SELL","order_type":"SL","product":"MIS","quantity":10,"price":800,"trigger_price":795}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for valid SL, got %d: %s", rec.Code, rec.Body.String())
	}

	// SL-M without trigger
	rec = app.request("POST", "/api/v1/orders",
		`{"symbol":"TCS","exchange":"NSE","transaction_type":"SELL","order_type":"SL-M","product":"MIS","quantity":10}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for SL-M without trigger, got %d", rec.Code)
	}

	// MARKET with no price is fine
	rec = app.request("POST", "/api/v1/orders",
		`{"symbol":"TCS","exchange":"NSE","transaction_type":"BUY","order_type":"MARKET","product":"CNC","quantity":10}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for MARKET order, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestOrderFlow_ListWithFilters(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "orderlist@test.com", "password123")

	place := func(symbol string) {
		t.Helper()
		rec := app.request("POST", "/api/v1/orders",
			`{"symbol":"`+symbol+`","exchange":"NSE","transaction_type":"BUY","order_type":"MARKET","product":"CNC","quantity":5}`, token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("place %s failed: %d %s", symbol, rec.Code, rec.Body.String())
		}
	}
	place("AAA")
	place("BBB")
	place("AAA")

	// Cancel one AAA order
	rec := app.request("POST", "/api/v1/orders/1/cancel", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel failed: %d %s", rec.Code, rec.Body.String())
	}

	// Filter by symbol
	rec = app.request("GET", "/api/v1/orders?symbol=AAA", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	data := result["data"].([]interface{})
	if len(data) != 2 {
		t.Errorf("expected 2 AAA orders, got %d", len(data))
	}

	// Filter by status
	rec = app.request("GET", "/api/v1/orders?status=CANCELLED", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d %s", rec.Code, rec.Body.String())
	}
	result = parseJSON(t, rec)
	data = result["data"].([]interface{})
	if len(data) != 1 {
		t.Errorf("expected 1 cancelled order, got %d", len(data))
	}

	// Pagination metadata
	rec = app.request("GET", "/api/v1/orders?page=1&page_size=2", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d %s", rec.Code, rec.Body.String())
	}
	result = parseJSON(t, rec)
	if result["total_items"] != float64(3) {
		t.Errorf("expected total_items 3, got %v", result["total_items"])
	}
	if result["total_pages"] != float64(2) {
		t.Errorf("expected total_pages 2, got %v", result["total_pages"])
	}
	if len(result["data"].([]interface{})) != 2 {
		t.Errorf("expected 2 orders on page 1, got %d", len(result["data"].([]interface{})))
	}
}
