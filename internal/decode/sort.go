package decode

import "sort"

func sortTrades(trades []Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		if trades[i].TxIndex != trades[j].TxIndex {
			return trades[i].TxIndex < trades[j].TxIndex
		}
		return trades[i].IxIndex < trades[j].IxIndex
	})
}
