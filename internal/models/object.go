package models

// ObjectRecord is the catalog row for one stored blob. The hash is the
// lowercase hex SHA-256 digest of the object bytes and doubles as the
// on-disk filename.
type ObjectRecord struct {
	Hash          string `json:"hash"`
	Size          int64  `json:"size"`
	CreatedAt     int64  `json:"time_create"`
	ExpiresAt     int64  `json:"time_expire"`
	ContentType   string `json:"content_type"`
	OwnerIdentity string `json:"pubkey_addr,omitempty"`
}
