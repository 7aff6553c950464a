package core

// Credential is the indexed projection of an admitted credential grant.
// One row per grant; revocation and renewal mutate it in place.
type Credential struct {
	EventID      string `json:"eventID" gorm:"primaryKey;type:char(64)"`
	DTag         string `json:"dTag" gorm:"type:text;index:idx_issuer_dtag"`
	Issuer       string `json:"issuer" gorm:"type:char(64);index:idx_issuer_dtag;index"`
	Recipient    string `json:"recipient" gorm:"type:char(64);index"`
	SchemaAddr   string `json:"schemaAddr" gorm:"type:text;index"`
	Class        string `json:"class" gorm:"type:text;index"`
	IssuedAt     int64  `json:"issuedAt"`
	ExpiresAt    *int64 `json:"expiresAt"` // null means perpetual
	ChainRef     string `json:"chainRef" gorm:"type:text"`
	Revoked      bool   `json:"revoked" gorm:"default:false"`
	RevokedAt    *int64 `json:"revokedAt"`
	RevokeReason string `json:"revokeReason" gorm:"type:text"`
}

// SchemaRecord is the cached parse of an admitted schema definition,
// keyed by its composite address.
type SchemaRecord struct {
	Address   string `json:"address" gorm:"primaryKey;type:text"`
	Author    string `json:"author" gorm:"type:char(64);index"`
	DTag      string `json:"dTag" gorm:"type:text"`
	Name      string `json:"name" gorm:"type:text"`
	EventID   string `json:"eventID" gorm:"type:char(64)"`
	Document  string `json:"document" gorm:"type:json"`
	CreatedAt int64  `json:"createdAt"`
}
