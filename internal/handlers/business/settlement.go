package business

// SettlementQueue is the RabbitMQ queue carrying settlement requests from
// the API to the worker.
const SettlementQueue = "presale_settlement"

// SettlementMessage asks the worker to execute the on-chain leg of a claim
// or withdrawal. RecordID points at the FundTransferRecord to settle; the
// record itself carries the mint, direction and amount.
type SettlementMessage struct {
	RecordID uint   `json:"record_id"`
	Kind     string `json:"kind"`
}
