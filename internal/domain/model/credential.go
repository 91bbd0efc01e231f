package model

import "time"

// ProviderElevenLabs is the provider name used when a caller does not name one.
const ProviderElevenLabs = "elevenlabs"

// Credential is an encrypted provider secret scoped to one organization and
// provider. Ciphertext is the raw AES-GCM blob; the plaintext is never stored
// on this type.
type Credential struct {
	OrganizationID string
	Provider       string
	Ciphertext     []byte
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
