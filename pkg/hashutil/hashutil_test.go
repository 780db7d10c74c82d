package hashutil_test

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/rohmanhakim/a11y-crawler/pkg/hashutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/blake3"
)

func TestHashBytes(t *testing.T) {
	data := []byte("https://example.test/a")

	sha := sha256.Sum256(data)
	b3 := blake3.Sum256(data)

	tests := []struct {
		name string
		algo hashutil.HashAlgo
		want string
	}{
		{name: "sha256", algo: hashutil.HashAlgoSHA256, want: hex.EncodeToString(sha[:])},
		{name: "blake3", algo: hashutil.HashAlgoBLAKE3, want: hex.EncodeToString(b3[:])},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := hashutil.HashBytes(data, tt.algo)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, 64)
		})
	}
}

func TestHashBytes_UnsupportedAlgorithm(t *testing.T) {
	_, err := hashutil.HashBytes([]byte("x"), hashutil.HashAlgo("md5"))
	assert.Error(t, err)
}

func TestShortHash(t *testing.T) {
	full, err := hashutil.HashBytes([]byte("page"), hashutil.HashAlgoBLAKE3)
	require.NoError(t, err)

	short, err := hashutil.ShortHash([]byte("page"), hashutil.HashAlgoBLAKE3, 12)
	require.NoError(t, err)
	assert.Equal(t, full[:12], short)

	whole, err := hashutil.ShortHash([]byte("page"), hashutil.HashAlgoBLAKE3, 0)
	require.NoError(t, err)
	assert.Equal(t, full, whole)
}
