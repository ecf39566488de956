package fieldcrypt

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func benchCrypter(b *testing.B, opts ...Option) *Crypter {
	b.Helper()
	ks, err := NewKeyStore(testSource(1, 2, 3), opts...)
	if err != nil {
		b.Fatal(err)
	}
	c, err := New(ks, opts...)
	if err != nil {
		b.Fatal(err)
	}
	return c
}

func benchmarkEncrypt(b *testing.B, size int, opts ...Option) {
	c := benchCrypter(b, opts...)
	data := strings.Repeat("x", size)
	b.SetBytes(int64(size))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Encrypt(data, "notes", 1); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkDecrypt(b *testing.B, size int) {
	c := benchCrypter(b)
	blob, err := c.Encrypt(strings.Repeat("x", size), "notes", 1)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(size))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Decrypt(blob, "notes", 1); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncrypt_100B(b *testing.B)  { benchmarkEncrypt(b, 100) }
func BenchmarkEncrypt_1KB(b *testing.B)   { benchmarkEncrypt(b, 1024) }
func BenchmarkEncrypt_100KB(b *testing.B) { benchmarkEncrypt(b, 100*1024) }

func BenchmarkEncrypt_ChaCha_1KB(b *testing.B) {
	benchmarkEncrypt(b, 1024, WithAlgorithm(AlgorithmChaCha20Poly1305))
}

func BenchmarkEncrypt_HKDF_1KB(b *testing.B) {
	benchmarkEncrypt(b, 1024, WithHKDF())
}

func BenchmarkDecrypt_100B(b *testing.B)  { benchmarkDecrypt(b, 100) }
func BenchmarkDecrypt_1KB(b *testing.B)   { benchmarkDecrypt(b, 1024) }
func BenchmarkDecrypt_100KB(b *testing.B) { benchmarkDecrypt(b, 100*1024) }

func BenchmarkBlindIndex(b *testing.B) {
	c := benchCrypter(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.BlindIndex("Compra Mercado", "description", 1); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncryptAndIndex(b *testing.B) {
	c := benchCrypter(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.EncryptAndIndex("Compra Mercado", "description", 1); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncryptAmount(b *testing.B) {
	c := benchCrypter(b)
	amount := decimal.RequireFromString("1234.567")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.EncryptAmount(amount, "amount", 1); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkReseal(b *testing.B) {
	c := benchCrypter(b)
	sealed, err := c.EncryptAndIndex("Compra Mercado", "description", 1)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Reseal(sealed.Ciphertext, "description", 1, 2, true); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearchCondition_3Versions(b *testing.B) {
	c := benchCrypter(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.SearchCondition("description_bidx", "enc_version", "description", "compra mercado"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSubkey_Cached(b *testing.B) {
	ks, err := NewKeyStore(testSource(1))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ks.Subkey(PurposeEncryption, "notes", 1); err != nil {
			b.Fatal(err)
		}
	}
}
