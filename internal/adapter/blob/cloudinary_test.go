package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicIDFromLocator(t *testing.T) {
	tests := []struct {
		name    string
		locator string
		want    string
		wantErr bool
	}{
		{
			name:    "versioned delivery url",
			locator: "https://res.cloudinary.com/demo/image/upload/v1699999999/vet-clinic/users/abc-123.jpg",
			want:    "vet-clinic/users/abc-123",
		},
		{
			name:    "unversioned url",
			locator: "https://res.cloudinary.com/demo/image/upload/vet-clinic/pets/rex.png",
			want:    "vet-clinic/pets/rex",
		},
		{
			name:    "no extension",
			locator: "https://res.cloudinary.com/demo/image/upload/v1/vet-clinic/users/abc",
			want:    "vet-clinic/users/abc",
		},
		{
			name:    "folder segment resembling version is kept",
			locator: "https://res.cloudinary.com/demo/image/upload/v1/v2docs/abc.webp",
			want:    "v2docs/abc",
		},
		{
			name:    "not an upload url",
			locator: "https://example.com/somewhere/else.jpg",
			wantErr: true,
		},
		{
			name:    "empty after upload segment",
			locator: "https://res.cloudinary.com/demo/image/upload/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PublicIDFromLocator(tt.locator)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
