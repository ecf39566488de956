// Package fieldcrypt provides field-level envelope encryption for sensitive
// record attributes, with blind indexes for equality search over ciphertext.
//
// Values are encrypted before they reach the database, so the store never
// sees plaintext. Each stored value is tied to one key version; the version
// tag lives on the record next to the encrypted columns.
//
// # Keys
//
// A KeyStore resolves 32-byte master keys by version from a KeySource:
//
//	MASTER_KEY_1=<base64>   // version 1 (MASTER_KEY is accepted as a fallback)
//	MASTER_KEY_2=<base64>   // version 2
//
// Per-field subkeys are derived as HMAC-SHA256(master, "{purpose}:{field}:v{version}")
// where purpose is "enc" for encryption and "bidx" for blind indexing, so a
// ciphertext cannot be moved between fields or versions and index keys are
// never encryption keys. WithHKDF switches the derivation to HKDF-SHA256.
//
// NewInsecureDevKeyStore generates ephemeral keys for empty slots. It exists
// for local development only and logs a warning for every generated key.
//
// # Encryption
//
// FieldCipher seals values with AES-256-GCM (ChaCha20-Poly1305 via
// WithAlgorithm) under a random 12-byte nonce. The blob layout is
//
//	nonce (12 bytes) || ciphertext || tag (16 bytes)
//
// Decrypt reports one of three states: Absent (nothing stored), Present, or
// IntegrityFailure (wrong key, tampering, truncation). An integrity failure
// is never reported as an absent value.
//
// # Basic Usage
//
//	keys, err := fieldcrypt.NewKeyStore(fieldcrypt.EnvSource{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	crypter, err := fieldcrypt.New(keys)
//
//	sealed, err := crypter.EncryptAndIndex("Compra Mercado", "description", keys.ActiveVersion())
//	// sealed.Ciphertext -> description_enc
//	// sealed.BlindIndex -> description_bidx
//	// sealed.Version    -> enc_version
//
// # Searchable Encryption
//
// Blind indexes are hex HMAC-SHA256 digests of the normalized value
// (trim + lowercase by default). SearchCondition builds a squirrel condition
// matching a query value under every configured key version:
//
//	cond, err := crypter.SearchCondition("description_bidx", "enc_version", "description", "compra mercado")
//	query, args, err := sq.Select("id").From("transactions").Where(cond).ToSql()
//
// IMPORTANT: Use the same normalizer on both write and search.
//
// # Amounts
//
// Monetary values are encrypted as fixed 2-decimal strings ("20.00") and are
// never indexed. EncryptAmount rounds half away from zero before encrypting.
//
// # Key Rotation
//
// Reseal decrypts under one version and re-encrypts (and re-indexes) under
// another. The batch walkers in internal/walker drive it across whole tables.
package fieldcrypt
