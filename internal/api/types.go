package api

// ErrorResponse is the JSON error envelope returned for every failure.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// PricingEntry is one per-RPC price quote in the announcement document.
// RPC is the operation name, or boolean true for the default entry.
type PricingEntry struct {
	RPC     any   `json:"rpc"`
	PerReq  int64 `json:"per-req"`
	PerKB   int64 `json:"per-kb,omitempty"`
	PerMB   int64 `json:"per-mb,omitempty"`
	PerHour int64 `json:"per-hour,omitempty"`
}

// PricingService is one service block in the pricing announcement
// served at the API root.
type PricingService struct {
	Name        string         `json:"name"`
	PricingType string         `json:"pricing-type"`
	Pricing     []PricingEntry `json:"pricing"`
}

// StatusResponse reports store occupancy.
type StatusResponse struct {
	Objects       int64 `json:"objects"`
	TotalBytes    int64 `json:"total_bytes"`
	FreeBytes     int64 `json:"free_bytes"`
	CapacityBytes int64 `json:"capacity_bytes"`
}

// PriceResponse is the pricing oracle's answer for one key.
type PriceResponse struct {
	Hash  string `json:"hash"`
	Price int64  `json:"price"`
}

// ReconcileResponse summarizes an orphan sweep.
type ReconcileResponse struct {
	OrphanFiles  int64 `json:"orphan_files"`
	OrphanBytes  int64 `json:"orphan_bytes"`
	MissingFiles int64 `json:"missing_files"`
	DryRun       bool  `json:"dry_run"`
}

// ObjectMeta carries the response headers of a successful object read.
type ObjectMeta struct {
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
	ETag         string `json:"etag"`
	LastModified string `json:"last_modified"`
}
