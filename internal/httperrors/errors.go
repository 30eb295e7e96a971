// Copyright (c) 2025 neonrpc
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors provides user-friendly presentation of failures from the
// Neon API, the network, and remote neonrpc servers.
package httperrors

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	neonerrors "neonrpc/cli/internal/errors"
	"neonrpc/cli/internal/logging"
	"neonrpc/cli/internal/neonapi"
)

// Category classifies an error for presentation.
type Category int

const (
	Generic Category = iota
	Timeout
	DNS
	ConnectionRefused
	TLS
	Unauthorized
	NotFound
	RateLimited
	ServerError
	BadRequest
	NoCredential
)

// Classify inspects err's chain and returns the best matching category.
func Classify(err error) Category {
	if err == nil {
		return Generic
	}
	if neonerrors.Is(err, neonerrors.CredentialMissing) {
		return NoCredential
	}

	var apiErr *neonapi.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode)
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown && st.Code() != codes.OK {
		return classifyCode(st.Code())
	}

	switch {
	case isTimeoutError(err):
		return Timeout
	case isDNSError(err):
		return DNS
	case isConnectionRefusedError(err):
		return ConnectionRefused
	case isSSLError(err):
		return TLS
	}
	return Generic
}

func classifyStatus(code int) Category {
	switch {
	case code == 401 || code == 403:
		return Unauthorized
	case code == 404:
		return NotFound
	case code == 429:
		return RateLimited
	case code >= 500:
		return ServerError
	case code >= 400:
		return BadRequest
	}
	return Generic
}

func classifyCode(c codes.Code) Category {
	switch c {
	case codes.Unauthenticated, codes.PermissionDenied:
		return Unauthorized
	case codes.NotFound:
		return NotFound
	case codes.ResourceExhausted:
		return RateLimited
	case codes.Unavailable:
		return ConnectionRefused
	case codes.DeadlineExceeded:
		return Timeout
	case codes.InvalidArgument, codes.FailedPrecondition:
		return BadRequest
	case codes.Internal:
		return ServerError
	}
	return Generic
}

// isTimeoutError checks if the error is a timeout error.
func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded")
}

// isDNSError checks if the error is a DNS resolution error.
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// isConnectionRefusedError checks if the error is a connection refused error.
func isConnectionRefusedError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

// isSSLError checks if the error is an SSL/TLS error.
func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

// Present prints a friendly explanation of err, where action describes what
// was being attempted ("calling getBranch"). Details are masked.
func Present(err error, action string) {
	if err == nil {
		return
	}
	details := logging.Mask(err.Error())

	switch Classify(err) {
	case NoCredential:
		pterm.Error.Printf("No Neon API key available while %s\n", action)
		pterm.Println()
		pterm.Println("Provide one of:")
		pterm.Println("  • the NEON_API_KEY environment variable")
		pterm.Println("  • a key stored with 'neonrpc login'")
	case Unauthorized:
		pterm.Error.Printf("Not authorized while %s\n", action)
		pterm.Println()
		pterm.Println("The API key or shared secret was rejected. Check that:")
		pterm.Println("  • the key has not been revoked in the Neon console")
		pterm.Println("  • the key belongs to the organization that owns the project")
		pterm.Println("  • remote calls use the server's shared secret")
	case NotFound:
		pterm.Error.Printf("Not found while %s\n", action)
		pterm.Println()
		pterm.Println("Double-check the project and branch IDs ('neonrpc call listProjects' lists them).")
	case RateLimited:
		pterm.Warning.Printf("Rate limited by the Neon API while %s\n", action)
		pterm.Println()
		pterm.Println("Wait a moment and try again.")
	case BadRequest:
		pterm.Error.Printf("Request rejected while %s\n", action)
	case ServerError:
		pterm.Error.Printf("Server error while %s\n", action)
		pterm.Println()
		pterm.Println("This is not a problem with your setup. Please try again in a few minutes.")
		pterm.Println("Neon status: https://neonstatus.com")
	case Timeout:
		pterm.Error.Printf("Connection timeout while %s\n", action)
		pterm.Println()
		pterm.Println("The server took too long to respond. Check your connection or raise api.timeout.")
	case DNS:
		pterm.Error.Printf("Cannot resolve server address while %s\n", action)
		pterm.Println()
		pterm.Println("Check your internet connection and DNS settings.")
	case ConnectionRefused:
		pterm.Error.Printf("Connection refused while %s\n", action)
		pterm.Println()
		pterm.Println("Check the address and that the server is running.")
	case TLS:
		pterm.Error.Printf("Secure connection failed while %s\n", action)
		pterm.Println()
		pterm.Println("Check your system clock and any proxy intercepting HTTPS.")
	default:
		pterm.Error.Printf("Failed while %s\n", action)
	}

	pterm.Println()
	pterm.Println(pterm.Gray("Details: " + truncate(details, 300)))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
