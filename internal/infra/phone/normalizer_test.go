package phone

import (
	"testing"

	"accounts/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer(&config.Config{Phone: config.PhoneConfig{DefaultRegion: "us"}})

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "empty", in: "", want: ""},
		{name: "national", in: "(650) 253-0000", want: "+16502530000"},
		{name: "international", in: "+44 20 7031 3000", want: "+442070313000"},
		{name: "garbage", in: "not a phone", wantErr: true},
		{name: "too short", in: "123", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidNumber)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
