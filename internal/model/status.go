package model

// BurnStatus classifies the monthly burn rate against the desired rate.
type BurnStatus string

const (
	BurnHigh   BurnStatus = "high"
	BurnMedium BurnStatus = "medium"
	BurnLow    BurnStatus = "low"
)

// WatchFlag marks contracts that have spent most of their limit.
type WatchFlag string

const (
	WatchListed WatchFlag = "watch"
	WatchSafe   WatchFlag = "safe"
)

// WatchCategory names a sub-report of a division workbook.
type WatchCategory string

const (
	CategoryHighBurn   WatchCategory = "high burn rate"
	CategoryExpire90d  WatchCategory = "expire 90 days"
	CategoryExpire180d WatchCategory = "expire 180 days"
)

// WatchCategories lists the categories in the order they appear in a workbook.
var WatchCategories = []WatchCategory{CategoryHighBurn, CategoryExpire90d, CategoryExpire180d}
