package fieldcrypt

// Blob format:
// [nonce:12][ciphertext:n][tag:16]
//
// The tag is appended by the AEAD itself; the key version is not embedded and
// is carried by the record's version tag instead.

const (
	nonceSize = 12
	tagSize   = 16

	// BlobOverhead is the number of bytes an EncryptedBlob adds to the plaintext.
	BlobOverhead = nonceSize + tagSize
)

// formatBlob assembles nonce and sealed output (ciphertext || tag).
func formatBlob(nonce, sealed []byte) []byte {
	blob := make([]byte, 0, len(nonce)+len(sealed))
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)
	return blob
}

// parseBlob splits a blob into nonce and sealed output.
// A blob must hold at least a nonce and a tag.
func parseBlob(blob []byte) (nonce, sealed []byte, err error) {
	if len(blob) < BlobOverhead {
		err = ErrInvalidFormat
		return
	}
	nonce = blob[:nonceSize]
	sealed = blob[nonceSize:]
	return
}
