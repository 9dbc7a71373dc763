package dto

// SessionURI binds the session id path parameter
type SessionURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ItemURI binds the session id and item index path parameters
type ItemURI struct {
	ID    string `uri:"id" binding:"required,uuid"`
	Index int    `uri:"index" binding:"min=0"`
}

// OpenSessionRequest opens a settlement session for a company
type OpenSessionRequest struct {
	CompanyID int64 `json:"company_id" binding:"required,gt=0"`
}

// SelectCustomerRequest selects the customer whose dues are fetched
type SelectCustomerRequest struct {
	CustomerID  int64  `json:"customer_id" binding:"required,gt=0"`
	CustomerRef string `json:"customer_ref" binding:"max=64"`
}

// CommitEditRequest carries the candidate amount to pay as typed by the user
type CommitEditRequest struct {
	AmountToPay string `json:"amount_to_pay" binding:"required,max=32"`
}

// ToggleItemRequest toggles one item in the selection
type ToggleItemRequest struct {
	ItemID string `json:"item_id" binding:"required,uuid"`
}

// AcknowledgeRequest reports a successful payment capture
type AcknowledgeRequest struct {
	SnapshotID string `json:"snapshot_id" binding:"required,uuid"`
}

// AdvanceModeRequest switches advance mode on or off
type AdvanceModeRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// AdvanceCollectRequest opens advance collection
type AdvanceCollectRequest struct {
	CollectPayment bool `json:"collect_payment"`
}
