package ports

type EconomyMetrics interface {
	RecordClick(critical bool)
	RecordPurchase(upgrade string, success bool)
	RecordDrink()
	RecordTickFailure()
	RecordSave(ok bool)
	RecordConflict()
}
