package models

// Credential is a single API key with its quota accounting.
type Credential struct {
	ID          string `json:"id"`
	Key         string `json:"-"`
	QuotaLimit  int64  `json:"quotaLimit"`
	QuotaUsed   int64  `json:"quotaUsed"`
	Reserved    int64  `json:"reserved"`
	ErrorCount  int    `json:"errorCount"`
	Exhausted   bool   `json:"exhausted"`
	Revoked     bool   `json:"revoked"`
	LowPriority bool   `json:"lowPriority"`
}

// Remaining is the quota left after charges and in-flight reservations.
func (c Credential) Remaining() int64 {
	if c.QuotaUsed+c.Reserved >= c.QuotaLimit {
		return 0
	}
	return c.QuotaLimit - c.QuotaUsed - c.Reserved
}

// CredentialStatus is the reportable view of a credential.
type CredentialStatus struct {
	ID         string `json:"id"`
	Used       int64  `json:"used"`
	Reserved   int64  `json:"reserved,omitempty"`
	Limit      int64  `json:"limit"`
	Errors     int    `json:"errors"`
	Available  bool   `json:"available"`
	Revoked    bool   `json:"revoked,omitempty"`
	Percentage int    `json:"percentage"`
}
