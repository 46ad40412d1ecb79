package services

import (
	"testing"

	"tradebook/internal/marketdata"
	"tradebook/internal/models"
	"tradebook/internal/testutil"
)

func TestCreateHolding(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHoldingService(db, marketdata.NewSimulatedWithSeed(0.02, 1))
		user := testutil.CreateTestUser(t, db)

		holding, err := svc.CreateHolding(user.ID, "infy", models.ExchangeNSE, 10, 1500.0, 1520.0)
		testutil.AssertNoError(t, err)

		if holding.ID == 0 {
			t.Fatal("expected non-zero holding ID")
		}
		if holding.Symbol != "INFY" {
			t.Errorf("expected symbol INFY, got %s", holding.Symbol)
		}
		if holding.PnL != "200.00" {
			t.Errorf("expected pnl 200.00, got %s", holding.PnL)
		}
	})

	t.Run("defaults_current_price_to_average", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHoldingService(db, marketdata.NewSimulatedWithSeed(0.02, 1))
		user := testutil.CreateTestUser(t, db)

		holding, err := svc.CreateHolding(user.ID, "TCS", models.ExchangeNSE, 5, 3500.0, 0)
		testutil.AssertNoError(t, err)

		if holding.CurrentPrice != 3500.0 {
			t.Errorf("expected current price 3500, got %f", holding.CurrentPrice)
		}
	})

	t.Run("duplicate_symbol", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHoldingService(db, marketdata.NewSimulatedWithSeed(0.02, 1))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateHolding(user.ID, "RELIANCE", models.ExchangeNSE, 10, 2500.0, 2500.0)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateHolding(user.ID, "RELIANCE", models.ExchangeNSE, 5, 2600.0, 2600.0)
		testutil.AssertAppError(t, err, "DUPLICATE_HOLDING")
	})

	t.Run("same_symbol_different_users", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHoldingService(db, marketdata.NewSimulatedWithSeed(0.02, 1))
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		_, err := svc.CreateHolding(user1.ID, "HDFCBANK", models.ExchangeNSE, 10, 1600.0, 1600.0)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateHolding(user2.ID, "HDFCBANK", models.ExchangeNSE, 10, 1600.0, 1600.0)
		testutil.AssertNoError(t, err)
	})

	t.Run("invalid_input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHoldingService(db, marketdata.NewSimulatedWithSeed(0.02, 1))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateHolding(user.ID, "", models.ExchangeNSE, 10, 100.0, 100.0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateHolding(user.ID, "SBIN", models.ExchangeNSE, -1, 100.0, 100.0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateHolding(user.ID, "SBIN", models.ExchangeNSE, 10, 0, 100.0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetPortfolio(t *testing.T) {
	t.Run("metrics_and_summary", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHoldingService(db, marketdata.NewSimulatedWithSeed(0.02, 1))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateHolding(user.ID, "AAA", models.ExchangeNSE, 10, 100.0, 120.0)
		testutil.AssertNoError(t, err)
		_, err = svc.CreateHolding(user.ID, "BBB", models.ExchangeNSE, 10, 110.0, 101.0)
		testutil.AssertNoError(t, err)

		report, err := svc.GetPortfolio(user.ID)
		testutil.AssertNoError(t, err)

		if len(report.Holdings) != 2 {
			t.Fatalf("expected 2 holdings, got %d", len(report.Holdings))
		}
		// Sorted by symbol: AAA first.
		if report.Holdings[0].PnL != "200.00" {
			t.Errorf("expected AAA pnl 200.00, got %s", report.Holdings[0].PnL)
		}
		if report.Holdings[0].DayChangePct != "20.00" {
			t.Errorf("expected AAA day change 20.00, got %s", report.Holdings[0].DayChangePct)
		}
		if report.Holdings[1].PnL != "-90.00" {
			t.Errorf("expected BBB pnl -90.00, got %s", report.Holdings[1].PnL)
		}

		if report.Summary.TotalInvestment != "2100.00" {
			t.Errorf("expected total investment 2100.00, got %s", report.Summary.TotalInvestment)
		}
		if report.Summary.CurrentValue != "2210.00" {
			t.Errorf("expected current value 2210.00, got %s", report.Summary.CurrentValue)
		}
		if report.Summary.TotalPnL != "110.00" {
			t.Errorf("expected total pnl 110.00, got %s", report.Summary.TotalPnL)
		}
		if report.Summary.TotalPnLPct != "5.24" {
			t.Errorf("expected total pnl pct 5.24, got %s", report.Summary.TotalPnLPct)
		}
		if report.Summary.PctUndefined {
			t.Error("expected defined percentage for non-empty portfolio")
		}
	})

	t.Run("empty_portfolio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHoldingService(db, marketdata.NewSimulatedWithSeed(0.02, 1))
		user := testutil.CreateTestUser(t, db)

		report, err := svc.GetPortfolio(user.ID)
		testutil.AssertNoError(t, err)

		if len(report.Holdings) != 0 {
			t.Errorf("expected no holdings, got %d", len(report.Holdings))
		}
		if !report.Summary.PctUndefined {
			t.Error("expected undefined percentage for empty portfolio")
		}
		if report.Summary.TotalInvestment != "0.00" {
			t.Errorf("expected total investment 0.00, got %s", report.Summary.TotalInvestment)
		}
	})
}

func TestGetHoldingByID(t *testing.T) {
	t.Run("owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHoldingService(db, marketdata.NewSimulatedWithSeed(0.02, 1))
		user := testutil.CreateTestUser(t, db)
		holding := testutil.CreateTestHolding(t, db, user.ID, 10, 100.0, 120.0)

		got, err := svc.GetHoldingByID(user.ID, holding.ID)
		testutil.AssertNoError(t, err)
		if got.Symbol != holding.Symbol {
			t.Errorf("expected symbol %s, got %s", holding.Symbol, got.Symbol)
		}
	})

	t.Run("other_user_sees_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHoldingService(db, marketdata.NewSimulatedWithSeed(0.02, 1))
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		holding := testutil.CreateTestHolding(t, db, owner.ID, 10, 100.0, 120.0)

		_, err := svc.GetHoldingByID(other.ID, holding.ID)
		testutil.AssertAppError(t, err, "HOLDING_NOT_FOUND")
	})
}

func TestUpdateHolding(t *testing.T) {
	t.Run("partial_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHoldingService(db, marketdata.NewSimulatedWithSeed(0.02, 1))
		user := testutil.CreateTestUser(t, db)
		holding := testutil.CreateTestHolding(t, db, user.ID, 10, 100.0, 120.0)

		price := 90.0
		updated, err := svc.UpdateHolding(user.ID, holding.ID, nil, nil, &price)
		testutil.AssertNoError(t, err)

		if updated.CurrentPrice != 90.0 {
			t.Errorf("expected current price 90, got %f", updated.CurrentPrice)
		}
		if updated.Quantity != 10 {
			t.Errorf("expected quantity unchanged at 10, got %d", updated.Quantity)
		}
		if updated.PnL != "-100.00" {
			t.Errorf("expected pnl -100.00, got %s", updated.PnL)
		}
		if updated.DayChangePct != "-10.00" {
			t.Errorf("expected day change -10.00, got %s", updated.DayChangePct)
		}
	})

	t.Run("invalid_quantity", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHoldingService(db, marketdata.NewSimulatedWithSeed(0.02, 1))
		user := testutil.CreateTestUser(t, db)
		holding := testutil.CreateTestHolding(t, db, user.ID, 10, 100.0, 120.0)

		qty := int64(-5)
		_, err := svc.UpdateHolding(user.ID, holding.ID, &qty, nil, nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHoldingService(db, marketdata.NewSimulatedWithSeed(0.02, 1))
		user := testutil.CreateTestUser(t, db)

		qty := int64(5)
		_, err := svc.UpdateHolding(user.ID, 99999, &qty, nil, nil)
		testutil.AssertAppError(t, err, "HOLDING_NOT_FOUND")
	})
}

func TestDeleteHolding(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHoldingService(db, marketdata.NewSimulatedWithSeed(0.02, 1))
		user := testutil.CreateTestUser(t, db)
		holding := testutil.CreateTestHolding(t, db, user.ID, 10, 100.0, 120.0)

		err := svc.DeleteHolding(user.ID, holding.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.GetHoldingByID(user.ID, holding.ID)
		testutil.AssertAppError(t, err, "HOLDING_NOT_FOUND")
	})

	t.Run("symbol_reusable_after_delete", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHoldingService(db, marketdata.NewSimulatedWithSeed(0.02, 1))
		user := testutil.CreateTestUser(t, db)

		holding, err := svc.CreateHolding(user.ID, "WIPRO", models.ExchangeNSE, 10, 400.0, 400.0)
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeleteHolding(user.ID, holding.ID))

		_, err = svc.CreateHolding(user.ID, "WIPRO", models.ExchangeNSE, 5, 410.0, 410.0)
		testutil.AssertNoError(t, err)
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHoldingService(db, marketdata.NewSimulatedWithSeed(0.02, 1))
		user := testutil.CreateTestUser(t, db)

		err := svc.DeleteHolding(user.ID, 99999)
		testutil.AssertAppError(t, err, "HOLDING_NOT_FOUND")
	})
}

func TestBulkUpdatePrices(t *testing.T) {
	t.Run("partial_success", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHoldingService(db, marketdata.NewSimulatedWithSeed(0.02, 1))
		user := testutil.CreateTestUser(t, db)
		h1 := testutil.CreateTestHolding(t, db, user.ID, 10, 100.0, 100.0)
		h2 := testutil.CreateTestHolding(t, db, user.ID, 20, 200.0, 200.0)

		result, err := svc.BulkUpdatePrices(user.ID, []PriceUpdate{
			{ID: h1.ID, Price: 110.0},
			{ID: 99999, Price: 50.0},
			{ID: h2.ID, Price: 210.0},
		})
		testutil.AssertNoError(t, err)

		if result.Updated != 2 {
			t.Errorf("expected 2 updated, got %d", result.Updated)
		}
		if len(result.Errors) != 1 {
			t.Fatalf("expected 1 error, got %d", len(result.Errors))
		}
		if result.Errors[0].ID != 99999 || result.Errors[0].Code != "HOLDING_NOT_FOUND" {
			t.Errorf("unexpected bulk error: %+v", result.Errors[0])
		}

		got, err := svc.GetHoldingByID(user.ID, h2.ID)
		testutil.AssertNoError(t, err)
		if got.CurrentPrice != 210.0 {
			t.Errorf("expected h2 price 210, got %f", got.CurrentPrice)
		}
	})

	t.Run("rejects_nonpositive_price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHoldingService(db, marketdata.NewSimulatedWithSeed(0.02, 1))
		user := testutil.CreateTestUser(t, db)
		holding := testutil.CreateTestHolding(t, db, user.ID, 10, 100.0, 100.0)

		result, err := svc.BulkUpdatePrices(user.ID, []PriceUpdate{
			{ID: holding.ID, Price: 0},
		})
		testutil.AssertNoError(t, err)

		if result.Updated != 0 {
			t.Errorf("expected 0 updated, got %d", result.Updated)
		}
		if len(result.Errors) != 1 || result.Errors[0].Code != "INVALID_INPUT" {
			t.Errorf("expected one INVALID_INPUT error, got %+v", result.Errors)
		}
	})

	t.Run("cannot_touch_other_users_holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewHoldingService(db, marketdata.NewSimulatedWithSeed(0.02, 1))
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		holding := testutil.CreateTestHolding(t, db, owner.ID, 10, 100.0, 100.0)

		result, err := svc.BulkUpdatePrices(other.ID, []PriceUpdate{
			{ID: holding.ID, Price: 150.0},
		})
		testutil.AssertNoError(t, err)

		if result.Updated != 0 {
			t.Errorf("expected 0 updated, got %d", result.Updated)
		}
		if len(result.Errors) != 1 || result.Errors[0].Code != "HOLDING_NOT_FOUND" {
			t.Errorf("expected HOLDING_NOT_FOUND, got %+v", result.Errors)
		}
	})
}

func TestRefreshHoldingPrices(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewHoldingService(db, marketdata.NewSimulatedWithSeed(0.02, 42))
	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestHolding(t, db, user.ID, 10, 100.0, 100.0)

	report, err := svc.RefreshPrices(user.ID)
	testutil.AssertNoError(t, err)

	if len(report.Holdings) != 1 {
		t.Fatalf("expected 1 holding, got %d", len(report.Holdings))
	}
	refreshed := report.Holdings[0]
	if refreshed.CurrentPrice == 100.0 {
		t.Error("expected current price to move after refresh")
	}
	if refreshed.CurrentPrice < 98.0 || refreshed.CurrentPrice > 102.0 {
		t.Errorf("expected price within ±2%% of 100, got %f", refreshed.CurrentPrice)
	}
}
