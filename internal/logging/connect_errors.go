// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pterm/pterm"
)

// ConnectErrorType represents the category of a database connection failure.
type ConnectErrorType int

const (
	ConnectErrorUnknown ConnectErrorType = iota
	ConnectErrorRefused
	ConnectErrorDNS
	ConnectErrorTimeout
	ConnectErrorAuth
	ConnectErrorDatabase
	ConnectErrorTLS
)

// ClassifyConnectError categorizes an error returned while opening or pinging
// a database.
func ClassifyConnectError(err error) ConnectErrorType {
	if err == nil {
		return ConnectErrorUnknown
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1045, 1044, 1698:
			return ConnectErrorAuth
		case 1049:
			return ConnectErrorDatabase
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "28P01", "28000":
			return ConnectErrorAuth
		case "3D000":
			return ConnectErrorDatabase
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ConnectErrorDNS
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ConnectErrorTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return ConnectErrorRefused
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "connection refused"):
		return ConnectErrorRefused
	case strings.Contains(lower, "deadline exceeded") || strings.Contains(lower, "timeout"):
		return ConnectErrorTimeout
	case strings.Contains(lower, "access denied") || strings.Contains(lower, "password authentication failed"):
		return ConnectErrorAuth
	case strings.Contains(lower, "unknown database") || (strings.Contains(lower, "database") && strings.Contains(lower, "does not exist")):
		return ConnectErrorDatabase
	case strings.Contains(lower, "tls") || strings.Contains(lower, "certificate") || strings.Contains(lower, "x509"):
		return ConnectErrorTLS
	}
	return ConnectErrorUnknown
}

// FormatConnectError renders a connection failure with troubleshooting hints.
func FormatConnectError(err error) string {
	var b strings.Builder

	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Database connection failed"))
	b.WriteString("\n\n")

	switch ClassifyConnectError(err) {
	case ConnectErrorRefused:
		b.WriteString("The database server is not accepting connections.\n")
		b.WriteString("  • Check that the server is running\n")
		b.WriteString("  • Verify host and port in the DSN\n")
	case ConnectErrorDNS:
		b.WriteString("The database host name could not be resolved.\n")
		b.WriteString("  • Check the host part of the DSN for typos\n")
	case ConnectErrorTimeout:
		b.WriteString("The database server did not answer in time.\n")
		b.WriteString("  • A firewall may be dropping the connection\n")
		b.WriteString("  • The server may be overloaded\n")
	case ConnectErrorAuth:
		b.WriteString("The database rejected the credentials.\n")
		b.WriteString("  • Verify user name and password\n")
		b.WriteString("  • Check that the user may connect from this host\n")
	case ConnectErrorDatabase:
		b.WriteString("The database named in the DSN does not exist.\n")
	case ConnectErrorTLS:
		b.WriteString("A secure connection could not be established.\n")
		b.WriteString("  • Check the TLS/sslmode parameters of the DSN\n")
	default:
		b.WriteString("The database could not be reached.\n")
	}

	b.WriteString("\n")
	b.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Run 'dbgate connect' to reconfigure the connection"))
	b.WriteString("\n")

	if err != nil {
		b.WriteString("\n")
		b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	}
	return b.String()
}
