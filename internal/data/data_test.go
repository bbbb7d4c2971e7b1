package data

import (
	"testing"
	"time"

	"github.com/lk2023060901/model-catalog/internal/auth/store"
	"github.com/lk2023060901/model-catalog/internal/conf"
	"github.com/lk2023060901/model-catalog/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewData(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		anonKey        string
		wantConfigured bool
		wantErr        bool
	}{
		{name: "configured", url: "https://x.supabase.co", anonKey: "anon", wantConfigured: true},
		{name: "not configured", url: "", anonKey: ""},
		{name: "placeholder", url: "https://YOUR_PROJECT.supabase.co", anonKey: "YOUR_ANON_KEY"},
		{name: "malformed url", url: "x.supabase.co", anonKey: "anon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := conf.LoadOptional("")
			require.NoError(t, err)
			cfg.Supabase.URL = tt.url
			cfg.Supabase.AnonKey = tt.anonKey
			cfg.Session.TTL = time.Minute

			d, cleanup, err := NewData(cfg, logger.NewNop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer cleanup()

			assert.Equal(t, tt.wantConfigured, d.Configured())
			assert.Nil(t, d.RedisClient)
			assert.IsType(t, &store.MemoryStore{}, d.Sessions)
		})
	}
}
