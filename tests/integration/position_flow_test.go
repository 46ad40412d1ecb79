package integration

import (
	"net/http"
	"testing"
)

func TestPositionFlow_OpenFillSquareOff(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "positions@test.com", "password123")

	// Open a long position: BUY 50 @ 100
	rec := app.request("POST", "/api/v1/positions",
		`{"symbol":"infy","exchange":"NSE","product":"MIS","transaction_type":"BUY","quantity":50,"price":100}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("open failed: %d %s", rec.Code, rec.Body.String())
	}
	position := parseJSON(t, rec)["position"].(map[string]interface{})
	if position["symbol"] != "INFY" {
		t.Errorf("expected symbol uppercased to INFY, got %v", position["symbol"])
	}
	if position["net_quantity"] != float64(50) {
		t.Errorf("expected net_quantity 50, got %v", position["net_quantity"])
	}

	// Add to the position: BUY 50 @ 110, average moves to 105
	rec = app.request("POST", "/api/v1/positions/1/fills",
		`{"transaction_type":"BUY","quantity":50,"price":110}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("fill failed: %d %s", rec.Code, rec.Body.String())
	}
	position = parseJSON(t, rec)["position"].(map[string]interface{})
	if position["average_price"] != float64(105) {
		t.Errorf("expected average_price 105, got %v", position["average_price"])
	}
	if position["net_quantity"] != float64(100) {
		t.Errorf("expected net_quantity 100, got %v", position["net_quantity"])
	}

	// Partial exit: SELL 40 @ 120 realizes (120-105)*40 = 600
	rec = app.request("POST", "/api/v1/positions/1/fills",
		`{"transaction_type":"SELL","quantity":40,"price":120}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("sell fill failed: %d %s", rec.Code, rec.Body.String())
	}
	position = parseJSON(t, rec)["position"].(map[string]interface{})
	if position["realized_pnl"] != float64(600) {
		t.Errorf("expected realized_pnl 600, got %v", position["realized_pnl"])
	}
	if position["net_quantity"] != float64(60) {
		t.Errorf("expected net_quantity 60, got %v", position["net_quantity"])
	}

	// Square off the remaining 60 @ 115: realizes (115-105)*60 = 600 more
	rec = app.request("POST", "/api/v1/positions/1/squareoff", `{"exit_price":115}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("squareoff failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)["result"].(map[string]interface{})
	if result["realized_pnl"] != "1200.00" {
		t.Errorf("expected realized_pnl 1200.00, got %v", result["realized_pnl"])
	}

	// The position row is gone
	rec = app.request("GET", "/api/v1/positions/1", "", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after squareoff, got %d", rec.Code)
	}

	// The same (symbol, product) can be reopened
	rec = app.request("POST", "/api/v1/positions",
		`{"symbol":"INFY","exchange":"NSE","product":"MIS","transaction_type":"SELL","quantity":10,"price":114}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("reopen after squareoff failed: %d %s", rec.Code, rec.Body.String())
	}
}

func TestPositionFlow_BookTotals(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "book@test.com", "password123")

	rec := app.request("POST", "/api/v1/positions",
		`{"symbol":"AAA","exchange":"NSE","product":"MIS","transaction_type":"BUY","quantity":10,"price":100}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("open failed: %d %s", rec.Code, rec.Body.String())
	}

	// LTP moves to 105: unrealized (105-100)*10 = 50
	rec = app.request("PUT", "/api/v1/positions/1/ltp", `{"last_traded_price":105}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("ltp update failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/positions", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("book failed: %d %s", rec.Code, rec.Body.String())
	}
	book := parseJSON(t, rec)
	if book["day_pnl"] != "50.00" {
		t.Errorf("expected day_pnl 50.00, got %v", book["day_pnl"])
	}
	if book["total_pnl"] != "50.00" {
		t.Errorf("expected total_pnl 50.00, got %v", book["total_pnl"])
	}
	positions := book["positions"].([]interface{})
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	if positions[0].(map[string]interface{})["unrealized_pnl"] != "50.00" {
		t.Errorf("expected unrealized_pnl 50.00, got %v", positions[0])
	}
}

func TestPositionFlow_DuplicateProduct(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "dupposition@test.com", "password123")

	body := `{"symbol":"TCS","exchange":"NSE","product":"MIS","transaction_type":"BUY","quantity":10,"price":3500}`
	rec := app.request("POST", "/api/v1/positions", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("open failed: %d %s", rec.Code, rec.Body.String())
	}

	// Same symbol and product conflicts
	rec = app.request("POST", "/api/v1/positions", body, token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "DUPLICATE_POSITION" {
		t.Errorf("expected DUPLICATE_POSITION, got %v", code)
	}

	// Same symbol under a different product is a separate row
	rec = app.request("POST", "/api/v1/positions",
		`{"symbol":"TCS","exchange":"NSE","product":"NRML","transaction_type":"BUY","quantity":10,"price":3500}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("open with different product failed: %d %s", rec.Code, rec.Body.String())
	}
}

func TestPositionFlow_BulkLTPPartialSuccess(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "bulkltp@test.com", "password123")

	rec := app.request("POST", "/api/v1/positions",
		`{"symbol":"AAA","exchange":"NSE","product":"MIS","transaction_type":"BUY","quantity":10,"price":100}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("open failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("PUT", "/api/v1/positions/ltp",
		`{"updates":[{"id":1,"price":108},{"id":42,"price":50}]}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("bulk ltp failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["updated"] != float64(1) {
		t.Errorf("expected 1 updated, got %v", result["updated"])
	}
	errs := result["errors"].([]interface{})
	if len(errs) != 1 || errs[0].(map[string]interface{})["code"] != "POSITION_NOT_FOUND" {
		t.Errorf("expected one POSITION_NOT_FOUND item, got %v", errs)
	}
}
