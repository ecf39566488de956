package fieldcrypt

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapSource(t *testing.T) {
	values := map[string]string{
		"MASTER_KEY_1": EncodeKey(testKey(1)),
		"MASTER_KEY_2": EncodeKey(testKey(2)),
	}
	src := NewMapSource(values)

	v, ok := src.Lookup("MASTER_KEY_1")
	require.True(t, ok)
	require.Equal(t, values["MASTER_KEY_1"], v)

	_, ok = src.Lookup("MASTER_KEY_3")
	require.False(t, ok)

	require.Equal(t, []string{"MASTER_KEY_1", "MASTER_KEY_2"}, src.Names())
}

func TestMapSource_CopiesInput(t *testing.T) {
	values := map[string]string{"MASTER_KEY_1": "a"}
	src := NewMapSource(values)

	values["MASTER_KEY_1"] = "b"
	values["MASTER_KEY_2"] = "c"

	v, _ := src.Lookup("MASTER_KEY_1")
	require.Equal(t, "a", v)
	require.Len(t, src.Names(), 1)
}

func TestEnvSource(t *testing.T) {
	t.Setenv("MASTER_KEY_7", "value")

	v, ok := EnvSource{}.Lookup("MASTER_KEY_7")
	require.True(t, ok)
	require.Equal(t, "value", v)
	require.Contains(t, EnvSource{}.Names(), "MASTER_KEY_7")
}

func TestEncodeKey(t *testing.T) {
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte("AAAA")), EncodeKey([]byte("AAAA")))
}

func TestDecodeKey(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
		wantLen int
	}{
		{"exact 32 bytes", EncodeKey(testKey(1)), nil, 32},
		{"longer key", EncodeKey(make([]byte, 64)), nil, 64},
		{"surrounding whitespace", " " + EncodeKey(testKey(1)) + "\n", nil, 32},
		{"too short", EncodeKey(make([]byte, 31)), ErrKeyTooShort, 0},
		{"not base64", "***not-base64***", ErrInvalidEncoding, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := decodeKey(tt.raw)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, key, tt.wantLen)
		})
	}
}
