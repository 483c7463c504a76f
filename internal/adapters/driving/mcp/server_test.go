package mcp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

func TestNewServer(t *testing.T) {
	t.Run("nil answer service returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingAnswerService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Answer: &mockAnswerService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil answer service returns error", func(t *testing.T) {
		ports := &Ports{Document: &mockDocumentService{}}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingAnswerService)
	})

	t.Run("answer only is valid", func(t *testing.T) {
		ports := &Ports{
			Answer: &mockAnswerService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Answer:   &mockAnswerService{},
			Document: &mockDocumentService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})
}

func TestServer_Health(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		want  string
	}{
		{
			name:  "with document service",
			ports: &Ports{Answer: &mockAnswerService{}, Document: &mockDocumentService{documents: []domain.Document{{ID: 1}, {ID: 2}}}},
			want:  `{"status":"ok","version":"` + Version + `","vectors":2}`,
		},
		{
			name:  "answer only",
			ports: &Ports{Answer: &mockAnswerService{}},
			want:  `{"status":"ok","version":"` + Version + `"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewServer(tt.ports)
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}
