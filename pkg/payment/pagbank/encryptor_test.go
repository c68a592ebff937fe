package pagbank

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKeySource struct {
	calls int32
	err   error
	key   string
}

func (f *fakeKeySource) PublicKey(ctx context.Context) (*PublicKeyResponse, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return &PublicKeyResponse{PublicKey: f.key}, nil
}

func newTestKeySource(t *testing.T) (*fakeKeySource, *rsa.PrivateKey) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	return &fakeKeySource{key: base64.StdEncoding.EncodeToString(der)}, priv
}

func validTestCard() CardFields {
	return CardFields{
		Number:       "4539620659922097",
		ExpMonth:     "12",
		ExpYear:      "2030",
		SecurityCode: "123",
		Holder:       "MARIA SILVA",
		HolderCPF:    "52998224725",
	}
}

func TestEncryptor_EnsureReady_LoadsOnce(t *testing.T) {
	source, _ := newTestKeySource(t)
	enc := NewEncryptor(source)
	assert.Equal(t, StateUnloaded, enc.State())

	// concurrent callers during initial load share a single fetch
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, enc.EnsureReady(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, StateReady, enc.State())
	assert.Equal(t, int32(1), atomic.LoadInt32(&source.calls))

	// ready state short-circuits
	require.NoError(t, enc.EnsureReady(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&source.calls))
}

func TestEncryptor_FailedLoadCanBeRetried(t *testing.T) {
	source, _ := newTestKeySource(t)
	source.err = errors.New("psp unavailable")
	enc := NewEncryptor(source)

	err := enc.EnsureReady(context.Background())
	assert.ErrorIs(t, err, ErrEncryptionNotReady)
	assert.Equal(t, StateFailed, enc.State())

	// a later call retries the fetch
	source.err = nil
	require.NoError(t, enc.EnsureReady(context.Background()))
	assert.Equal(t, StateReady, enc.State())
	assert.Equal(t, int32(2), atomic.LoadInt32(&source.calls))
}

func TestEncryptor_Encrypt_RoundTrip(t *testing.T) {
	source, priv := newTestKeySource(t)
	enc := NewEncryptor(source)

	blob, err := enc.Encrypt(context.Background(), validTestCard())
	require.NoError(t, err)
	assert.NotEmpty(t, blob)

	ciphertext, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)

	plaintext, err := rsa.DecryptPKCS1v15(nil, priv, ciphertext)
	require.NoError(t, err)

	var decoded CardFields
	require.NoError(t, json.Unmarshal(plaintext, &decoded))
	assert.Equal(t, "4539620659922097", decoded.Number)
	assert.Equal(t, "MARIA SILVA", decoded.Holder)
}

func TestEncryptor_Encrypt_FieldValidation(t *testing.T) {
	source, _ := newTestKeySource(t)
	enc := NewEncryptor(source)

	bad := validTestCard()
	bad.Number = "4539620659922098" // fails Luhn
	bad.SecurityCode = "12"
	bad.HolderCPF = "11111111111"

	_, err := enc.Encrypt(context.Background(), bad)
	require.Error(t, err)

	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)

	fields := make(map[string]bool)
	for _, f := range verrs.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["number"])
	assert.True(t, fields["security_code"])
	assert.True(t, fields["holder_cpf"])

	// validation failures never trigger a key fetch
	assert.Equal(t, int32(0), atomic.LoadInt32(&source.calls))
}
