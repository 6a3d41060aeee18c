package serve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/caffe"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSecretReader struct {
	secrets map[string]string
	err     error
	reads   int
}

func (m *mockSecretReader) GetSecretString(_ context.Context, secretID string) (string, error) {
	m.reads++
	if m.err != nil {
		return "", m.err
	}

	secret, ok := m.secrets[secretID]
	if !ok {
		return "", errors.Errorf("secret %q not found", secretID)
	}

	return secret, nil
}

func TestSecretFromReader(t *testing.T) {
	reader := &mockSecretReader{secrets: map[string]string{
		"api-key":  "secret-key-value",
		"db-creds": `{"database": {"password": "secret123", "port": 5432}}`,
		"config":   `{"items": [{"name": "first"}, {"name": "second"}]}`,
		"broken":   `not json`,
	}}

	for _, tt := range []struct {
		name     string
		secretID string
		jsonPath []string
		want     string
		wantErr  string
	}{
		{name: "raw string", secretID: "api-key", want: "secret-key-value"},
		{name: "empty path is raw", secretID: "api-key", jsonPath: []string{""}, want: "secret-key-value"},
		{name: "nested path", secretID: "db-creds", jsonPath: []string{"database.password"}, want: "secret123"},
		{name: "number value", secretID: "db-creds", jsonPath: []string{"database.port"}, want: "5432"},
		{name: "array index", secretID: "config", jsonPath: []string{"items.1.name"}, want: "second"},
		{
			name:     "missing path",
			secretID: "db-creds",
			jsonPath: []string{"database.username"},
			wantErr:  `secret path "database.username" not found in secret "db-creds"`,
		},
		{
			name:     "not json",
			secretID: "broken",
			jsonPath: []string{"a"},
			wantErr:  `secret path "a" not found in secret "broken"`,
		},
		{name: "missing secret", secretID: "nope", wantErr: `secret "nope" not found`},
		{
			name:     "too many paths",
			secretID: "db-creds",
			jsonPath: []string{"a", "b"},
			wantErr:  "at most one json path",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := secretFromReader(context.Background(), reader, tt.secretID, tt.jsonPath...)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuntime_Secret(t *testing.T) {
	reader := &mockSecretReader{secrets: map[string]string{"db": `{"password":"pw"}`}}
	rt := NewRuntime(testEnv{}, caffe.NewRouter(), RuntimeParams{SecretReader: reader})

	got, err := rt.Secret(context.Background(), "db", "password")
	require.NoError(t, err)
	assert.Equal(t, "pw", got)

	reader.err = errors.New("throttled")
	_, err = rt.Secret(context.Background(), "db")
	require.ErrorContains(t, err, "throttled")
}

func TestRuntime_Secret_NoReaderConfigured(t *testing.T) {
	rt := NewRuntime(testEnv{}, caffe.NewRouter(), RuntimeParams{})

	_, err := rt.Secret(context.Background(), "db")
	require.ErrorContains(t, err, "no secret reader configured")
	assert.Panics(t, func() { rt.ResolveSecret("db.password", "db") })
}

func TestResolveSecret(t *testing.T) {
	reader := &mockSecretReader{secrets: map[string]string{"db": `{"password":"pw"}`}}

	d := caffe.NewDispatcher(caffe.WithLogger(caffe.NewTestLogger(t)))
	d.Use(
		ResolveSecret(reader, "db.password", "db", "password"),
		func(c *caffe.Context, _ caffe.Next) error {
			pw, _ := caffe.ValueAs[string](c, "db.password")
			c.SetBody("password=" + pw)
			return nil
		},
	)

	for range 2 {
		rec := httptest.NewRecorder()
		d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "password=pw", rec.Body.String())
	}

	assert.Equal(t, 2, reader.reads)

	t.Run("read failure ends the chain", func(t *testing.T) {
		reader := &mockSecretReader{err: errors.New("denied")}
		logs := caffe.NewTestLogger(t)

		d := caffe.NewDispatcher(caffe.WithLogger(logs))
		d.Use(ResolveSecret(reader, "db.password", "db"), caffe.Plaintext(http.StatusOK, "unreachable"))

		rec := httptest.NewRecorder()
		d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal Server Error", rec.Body.String())
		assert.EqualValues(t, 1, logs.NumLogUnhandledError)
	})

	t.Run("reserved key", func(t *testing.T) {
		assert.Panics(t, func() { ResolveSecret(reader, "status", "db") })
	})
}
