package model

type LatestPhotoIDRequest struct {
	// LatestID is the last photo id the client has seen. The request blocks
	// until the ledger moves past it.
	LatestID string `json:"latestId"`
}

type LatestPhotoIDResponse struct {
	// LatestID is null while the ledger is empty.
	LatestID *string `json:"latestId"`
}
