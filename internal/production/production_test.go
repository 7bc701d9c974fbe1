package production

import "testing"

func TestCommodityClassification(t *testing.T) {
	if !Grain.IsRaw() || Grain.IsProcessed() || Grain.IsFinal() {
		t.Errorf("Grain misclassified")
	}
	if !Flour.IsProcessed() || Flour.IsRaw() || Flour.IsFinal() {
		t.Errorf("Flour misclassified")
	}
	if !Bread.IsFinal() || Bread.IsRaw() || Bread.IsProcessed() {
		t.Errorf("Bread misclassified")
	}
}

func TestChainIndicesGroupCorrectly(t *testing.T) {
	cases := map[Commodity]int{
		Grain: 0, Flour: 0, Bread: 0,
		Timber: 1, Lumber: 1, Furniture: 1,
		CrudeOil: 2, Petroleum: 2, Plastics: 2,
		IronOre: 3, Steel: 3, Machinery: 3,
	}
	for c, want := range cases {
		if got := c.ChainIndex(); got != want {
			t.Errorf("%v.ChainIndex() = %d, want %d", c, got, want)
		}
	}
}

func TestAllChainsShapedCorrectly(t *testing.T) {
	chains := AllChains()
	if len(chains) != 4 {
		t.Fatalf("expected 4 chains, got %d", len(chains))
	}
	for _, chain := range chains {
		if len(chain) != 3 {
			t.Fatalf("expected 3 stages per chain, got %d", len(chain))
		}
		if len(chain[0].Inputs) != 0 {
			t.Errorf("extraction stage should have no inputs")
		}
		if len(chain[1].Inputs) == 0 || len(chain[2].Inputs) == 0 {
			t.Errorf("processing/manufacturing stages should have inputs")
		}
	}
}

func TestExportPricesIncreaseByStage(t *testing.T) {
	if Bread.ExportPrice() <= Grain.ExportPrice() {
		t.Errorf("final goods should export for more than raw inputs")
	}
	if Machinery.ExportPrice() <= IronOre.ExportPrice() {
		t.Errorf("final goods should export for more than raw inputs")
	}
}

func TestImportPriceExceedsExportPrice(t *testing.T) {
	for _, c := range AllCommodities() {
		if c.ImportPrice() <= c.ExportPrice() {
			t.Errorf("%v import price should exceed export price", c)
		}
	}
}

func TestProduceExtractionStageIgnoresInputs(t *testing.T) {
	s := &ChainState{}
	b := NewChainBuilding(0, 0)
	stage := AllChains()[0][0]
	produced := Produce(s, b, stage, 1.0)
	if produced != stage.OutputRate {
		t.Errorf("Produce() = %v, want %v", produced, stage.OutputRate)
	}
	if s.Stock(Grain) != produced {
		t.Errorf("stock not updated: %v", s.Stock(Grain))
	}
}

func TestProduceCapsOnScarceInput(t *testing.T) {
	s := &ChainState{}
	s.stock[Grain] = 1.0 // enough for less than the nominal output
	b := NewChainBuilding(0, 1)
	stage := AllChains()[0][1] // flour, needs grain at 1.2 ratio
	produced := Produce(s, b, stage, 1.0)
	if produced <= 0 || produced > 1.0/1.2+1e-9 {
		t.Errorf("expected production capped by scarce grain input, got %v", produced)
	}
	if b.Disrupted {
		t.Errorf("should not be disrupted when some production occurred")
	}
}

func TestProduceDisruptsWithNoLabor(t *testing.T) {
	s := &ChainState{}
	b := NewChainBuilding(0, 0)
	stage := AllChains()[0][0]
	produced := Produce(s, b, stage, 0)
	if produced != 0 || !b.Disrupted {
		t.Errorf("expected disruption with zero labor fraction")
	}
}

func TestConsumeCapsAtAvailableStock(t *testing.T) {
	s := &ChainState{}
	s.stock[Bread] = 3
	consumed := Consume(s, Bread, 10)
	if consumed != 3 {
		t.Errorf("Consume() = %v, want 3", consumed)
	}
	if s.Stock(Bread) != 0 {
		t.Errorf("expected stock drained to 0, got %v", s.Stock(Bread))
	}
}

func TestSettleTradeCapsDeficit(t *testing.T) {
	s := &ChainState{}
	s.stock[Bread] = -1_000_000
	for i := 0; i < 10; i++ {
		SettleTrade(s, 0)
	}
	if s.TradeBalance < TradeDeficitCap {
		t.Errorf("TradeBalance = %v, should never exceed cap %v", s.TradeBalance, TradeDeficitCap)
	}
}

func TestRecyclingDiversionRatesIncreaseWithAmbition(t *testing.T) {
	if ZeroWaste.DiversionRate() <= RecyclingNone.DiversionRate() {
		t.Errorf("ZeroWaste should divert more waste than no program")
	}
}

func TestEconomicsPriceMultiplierRangeBounded(t *testing.T) {
	e := NewEconomics()
	for day := uint64(0); day < 3000; day += 100 {
		e.UpdateMarketCycle(day)
		m := e.PriceMultiplier()
		if m < 0.3-1e-9 || m > 1.5+1e-9 {
			t.Fatalf("PriceMultiplier() = %v out of [0.3,1.5] at day %d", m, day)
		}
	}
}

func TestUpdateDailyProducesPositiveRevenueForHighValueTier(t *testing.T) {
	e := NewEconomics()
	result := UpdateDaily(e, ZeroWaste, 1000, 30000, 1)
	if result.Revenue <= 0 {
		t.Errorf("expected positive revenue, got %v", result.Revenue)
	}
	if result.TonsDiverted <= 0 || result.TonsDiverted >= 1000 {
		t.Errorf("TonsDiverted out of expected range: %v", result.TonsDiverted)
	}
}
