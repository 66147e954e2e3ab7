package fetch

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"strings"
)

// Class groups fetch outcomes by how callers should react to them.
type Class int

const (
	ClassSuccess Class = iota
	ClassClientError
	ClassServerError
	ClassNetworkError
)

func (c Class) String() string {
	switch c {
	case ClassSuccess:
		return "success"
	case ClassClientError:
		return "client_error"
	case ClassServerError:
		return "server_error"
	case ClassNetworkError:
		return "network_error"
	default:
		return "unknown"
	}
}

var (
	// ErrCertificate marks TLS/certificate failures. They are never retried.
	ErrCertificate = errors.New("certificate error")
	// ErrClientStatus marks 4xx responses.
	ErrClientStatus = errors.New("client error status")
	// ErrServerStatus marks 5xx and 429 responses.
	ErrServerStatus = errors.New("server error status")
	// ErrNetwork marks transport failures and timeouts.
	ErrNetwork = errors.New("network error")
	// ErrBodyTooShort marks responses whose body is below the minimum length.
	ErrBodyTooShort = errors.New("response body too short")
)

// Error describes a failed fetch.
type Error struct {
	Class      Class
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func isCertificateError(err error) bool {
	if err == nil {
		return false
	}
	var (
		unknownAuthority x509.UnknownAuthorityError
		hostname         x509.HostnameError
		invalid          x509.CertificateInvalidError
		verification     *tls.CertificateVerificationError
		recordHeader     tls.RecordHeaderError
	)
	if errors.As(err, &unknownAuthority) || errors.As(err, &hostname) ||
		errors.As(err, &invalid) || errors.As(err, &verification) || errors.As(err, &recordHeader) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "x509:") || strings.Contains(msg, "tls: ") || strings.Contains(msg, "certificate")
}
