package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-registry/internal/config"
)

func TestTLSPropertiesDisabled(t *testing.T) {
	props, err := tlsProperties(config.Chaincode{TLSDisabled: true})
	require.NoError(t, err)
	assert.True(t, props.Disabled)
	assert.Nil(t, props.Key)
}

func TestTLSPropertiesReadsFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	cfg := config.Chaincode{
		TLSKeyFile:       write("key.pem", "KEY"),
		TLSCertFile:      write("cert.pem", "CERT"),
		ClientCACertFile: write("ca.pem", "CA"),
	}
	props, err := tlsProperties(cfg)
	require.NoError(t, err)
	assert.False(t, props.Disabled)
	assert.Equal(t, []byte("KEY"), props.Key)
	assert.Equal(t, []byte("CERT"), props.Cert)
	assert.Equal(t, []byte("CA"), props.ClientCACerts)

	cfg.TLSCertFile = filepath.Join(dir, "missing.pem")
	_, err = tlsProperties(cfg)
	assert.Error(t, err)
}
