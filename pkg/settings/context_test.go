package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	tests := []struct {
		name   string
		ctx    func() context.Context
		wantOk bool
	}{
		{
			name:   "with settings",
			ctx:    func() context.Context { return IntoContext(context.Background(), &Run{NoColor: true}) },
			wantOk: true,
		},
		{
			name:   "without settings",
			ctx:    context.Background,
			wantOk: false,
		},
		{
			name: "wrong type",
			ctx: func() context.Context {
				return context.WithValue(context.Background(), settingsContextKey, "wrong type")
			},
			wantOk: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromContext(tt.ctx())
			assert.Equal(t, tt.wantOk, ok)
			if !tt.wantOk {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, got.NoColor)
		})
	}
}

func TestIntoContextRoundtrip(t *testing.T) {
	s := NewCliParams()
	got, ok := FromContext(IntoContext(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, NewCliParams(), OrDefault(context.Background()))
	s := &Run{IsQuiet: true}
	assert.Same(t, s, OrDefault(IntoContext(context.Background(), s)))
}
