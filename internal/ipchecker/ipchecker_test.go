package ipchecker

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("empty subnet disables the checker", func(t *testing.T) {
		checker, err := New("")
		require.NoError(t, err)

		assert.True(t, checker.IsTrustedSubnetEmpty())
		assert.False(t, checker.Check(net.ParseIP("10.0.0.1")))
	})

	t.Run("malformed subnet", func(t *testing.T) {
		_, err := New("10.0.0.0")
		assert.Error(t, err)
	})
}

func TestCheck(t *testing.T) {
	checker, err := New("10.0.0.0/8")
	require.NoError(t, err)

	assert.True(t, checker.Check(net.ParseIP("10.1.2.3")))
	assert.False(t, checker.Check(net.ParseIP("192.168.1.5")))
}

func TestGetClientIP(t *testing.T) {
	checker, err := New("10.0.0.0/8")
	require.NoError(t, err)

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{
			name:       "from X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "10.1.2.3"},
			remoteAddr: "192.168.1.5:4242",
			expectedIP: "10.1.2.3",
		},
		{
			name:       "from the first X-Forwarded-For entry",
			headers:    map[string]string{"X-Forwarded-For": "10.4.5.6, 172.16.0.1"},
			remoteAddr: "192.168.1.5:4242",
			expectedIP: "10.4.5.6",
		},
		{
			name:       "X-Real-IP wins over X-Forwarded-For",
			headers:    map[string]string{"X-Real-IP": "10.1.2.3", "X-Forwarded-For": "10.4.5.6"},
			remoteAddr: "192.168.1.5:4242",
			expectedIP: "10.1.2.3",
		},
		{
			name:       "falls back to RemoteAddr",
			headers:    map[string]string{},
			remoteAddr: "10.7.8.9:4242",
			expectedIP: "10.7.8.9",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/api/internal/stats", nil)
			request.RemoteAddr = tt.remoteAddr
			for name, value := range tt.headers {
				request.Header.Set(name, value)
			}

			ip, err := checker.GetClientIP(request)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedIP, ip.String())
		})
	}
}
