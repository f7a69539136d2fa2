package decode

import "testing"

func TestPriceIntegerDivision(t *testing.T) {
	if got := Price(100_000_000, 1_000_000); got != 100 {
		t.Errorf("got %d, want 100", got)
	}
}

func TestPriceZeroTokenAmount(t *testing.T) {
	if got := Price(100, 0); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestInferDirectionZeroAmounts(t *testing.T) {
	if got := InferDirection(0, 5); got != SideBuy {
		t.Errorf("got %s, want buy", got)
	}
	if got := InferDirection(5, 0); got != SideBuy {
		t.Errorf("got %s, want buy", got)
	}
}

func TestInferDirectionSellRatio(t *testing.T) {
	if got := InferDirection(10_000_000_000, 50_000_000); got != SideSell {
		t.Errorf("got %s, want sell", got)
	}
}

func TestInferDirectionBuyRatio(t *testing.T) {
	if got := InferDirection(100, 100); got != SideBuy {
		t.Errorf("got %s, want buy", got)
	}
}

func TestSortTradesByTxThenIx(t *testing.T) {
	trades := []Trade{
		{TxIndex: 1, IxIndex: 0, Signature: "c"},
		{TxIndex: 0, IxIndex: 1, Signature: "b"},
		{TxIndex: 0, IxIndex: 0, Signature: "a"},
	}
	SortTrades(trades)
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if trades[i].Signature != w {
			t.Errorf("position %d: got %s, want %s", i, trades[i].Signature, w)
		}
	}
}
