package pagbank

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/card"
)

// EncryptorState is the lifecycle of the encryption key resource
type EncryptorState string

const (
	StateUnloaded EncryptorState = "unloaded"
	StateLoading  EncryptorState = "loading"
	StateReady    EncryptorState = "ready"
	StateFailed   EncryptorState = "failed"
)

// KeySource provides the PSP public key. *Client satisfies it.
type KeySource interface {
	PublicKey(ctx context.Context) (*PublicKeyResponse, error)
}

// CardFields are the raw card inputs. They exist only in memory on their way
// into Encrypt; nothing in this module persists or transmits them unencrypted.
type CardFields struct {
	Number       string `json:"number"`
	ExpMonth     string `json:"exp_month"`
	ExpYear      string `json:"exp_year"`
	SecurityCode string `json:"security_code"`
	Holder       string `json:"holder"`
	HolderCPF    string `json:"-"`
}

// Encryptor turns raw card fields into an opaque base64 ciphertext using the
// PSP's RSA public key. The key is fetched lazily exactly once: concurrent
// callers during the initial load all wait on the same in-flight fetch, and a
// failed load can be retried by a later call.
type Encryptor struct {
	source KeySource

	mu      sync.Mutex
	state   EncryptorState
	loading chan struct{}
	key     *rsa.PublicKey
	loadErr error
}

// NewEncryptor creates an encryptor in the unloaded state
func NewEncryptor(source KeySource) *Encryptor {
	return &Encryptor{
		source: source,
		state:  StateUnloaded,
	}
}

// State returns the current lifecycle state
func (e *Encryptor) State() EncryptorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// EnsureReady loads the public key if needed. Safe under concurrency: only
// one fetch runs at a time and every waiter observes its outcome.
func (e *Encryptor) EnsureReady(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case StateReady:
		e.mu.Unlock()
		return nil
	case StateLoading:
		done := e.loading
		e.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.state == StateReady {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrEncryptionNotReady, e.loadErr)
	}

	// unloaded or failed: this caller performs the fetch
	done := make(chan struct{})
	e.state = StateLoading
	e.loading = done
	e.mu.Unlock()

	key, err := e.fetchKey(ctx)

	e.mu.Lock()
	if err != nil {
		e.state = StateFailed
		e.loadErr = err
	} else {
		e.state = StateReady
		e.key = key
		e.loadErr = nil
	}
	close(done)
	e.mu.Unlock()

	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncryptionNotReady, err)
	}
	return nil
}

func (e *Encryptor) fetchKey(ctx context.Context) (*rsa.PublicKey, error) {
	resp, err := e.source.PublicKey(ctx)
	if err != nil {
		return nil, err
	}

	der, err := base64.StdEncoding.DecodeString(resp.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}

	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	rsaKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not RSA")
	}
	return rsaKey, nil
}

// Encrypt validates the card fields and returns the base64 ciphertext. Field
// validation failures come back as *ValidationErrors before any key use.
func (e *Encryptor) Encrypt(ctx context.Context, fields CardFields) (string, error) {
	if errs := validateCardFields(fields); len(errs) > 0 {
		return "", &ValidationErrors{Fields: errs}
	}

	if err := e.EnsureReady(ctx); err != nil {
		return "", err
	}

	e.mu.Lock()
	key := e.key
	e.mu.Unlock()

	payload, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to marshal card payload: %w", err)
	}

	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, key, payload)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt card data: %w", err)
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func validateCardFields(fields CardFields) []FieldError {
	var errs []FieldError

	if !card.ValidLuhn(fields.Number) {
		errs = append(errs, FieldError{Field: "number", Message: "número de cartão inválido"})
	}
	if card.DetectBrand(fields.Number) == card.BrandUnknown {
		errs = append(errs, FieldError{Field: "number", Message: "bandeira não suportada"})
	}

	month, err := strconv.Atoi(fields.ExpMonth)
	if err != nil || month < 1 || month > 12 {
		errs = append(errs, FieldError{Field: "exp_month", Message: "mês de validade inválido"})
	}
	year, err := strconv.Atoi(fields.ExpYear)
	if err != nil || year < time.Now().Year() {
		errs = append(errs, FieldError{Field: "exp_year", Message: "cartão vencido"})
	}

	cvv := card.OnlyDigits(fields.SecurityCode)
	if len(cvv) < 3 || len(cvv) > 4 {
		errs = append(errs, FieldError{Field: "security_code", Message: "código de segurança inválido"})
	}

	if fields.Holder == "" {
		errs = append(errs, FieldError{Field: "holder", Message: "nome do titular é obrigatório"})
	}
	if fields.HolderCPF != "" && !card.ValidCPF(fields.HolderCPF) {
		errs = append(errs, FieldError{Field: "holder_cpf", Message: "CPF do titular inválido"})
	}

	return errs
}
