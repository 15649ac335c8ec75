package domain

// Event names used for notification filtering, audit rows, and the decision
// event bus. Keep these stable: operators filter on them in config.
const (
	EventCycleStarted     = "cycle_started"
	EventCycleFinished    = "cycle_finished"
	EventScanEmpty        = "scan_empty"
	EventCandidateRanked  = "candidate_ranked"
	EventAdmissionPassed  = "admission_passed"
	EventAdmissionBlocked = "admission_blocked"
	EventMarketDataGap    = "market_data_gap"
	EventBuyExecuted      = "buy_executed"
	EventBuyFailed        = "buy_failed"
	EventSellExecuted     = "sell_executed"
	EventSellFailed       = "sell_failed"
	EventPositionExpired  = "position_expired"
	EventBudgetExhausted  = "budget_exhausted"
)

// DecisionChannel is the bus channel decision events are published on.
const DecisionChannel = "decisions"
