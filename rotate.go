package fieldcrypt

// Reseal re-encrypts a stored blob from one key version to another and, when
// indexed is true, recomputes its blind index under the new version.
// Use this during key rotation to migrate existing encrypted data.
//
// An absent blob yields a SealedValue with nil Ciphertext (NULL stays NULL).
// A blob that fails authentication under from yields the IntegrityFailure
// cause as an error, so callers never overwrite unreadable data.
func (c *Crypter) Reseal(blob []byte, field string, from, to int, indexed bool) (*SealedValue, error) {
	result, err := c.cipher.Decrypt(blob, field, from)
	if err != nil {
		return nil, err
	}

	switch result.State {
	case Absent:
		return &SealedValue{Version: to}, nil
	case IntegrityFailure:
		return nil, result.Err
	}

	if !indexed {
		newBlob, err := c.cipher.Encrypt(result.Value, field, to)
		if err != nil {
			return nil, err
		}
		return &SealedValue{Ciphertext: newBlob, Version: to}, nil
	}
	return c.EncryptAndIndex(result.Value, field, to)
}

// NeedsRotation reports whether a record tagged with version was written
// under a key other than the active one.
// Returns false for version 0 (no encrypted data yet).
func (c *Crypter) NeedsRotation(version int) bool {
	if version == 0 {
		return false
	}
	return version != c.keys.ActiveVersion()
}
