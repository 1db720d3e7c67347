package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"opencure/internal/middleware"
)

func TestIssueTokenRoundTrip(t *testing.T) {
	var out bytes.Buffer
	addr := "0x00000000000000000000000000000000000000aa"
	err := issueToken([]string{"-address", addr, "-secret", "s3cret", "-ttl", "1h", "-locale", "id"}, &out, time.Now())
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	claims, err := middleware.VerifyJWT("s3cret", strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if common.HexToAddress(claims.Sub) != common.HexToAddress(addr) {
		t.Fatalf("sub = %s", claims.Sub)
	}
	if claims.Locale != "id" || claims.Issuer != "escrowctl" || claims.Exp == 0 {
		t.Fatalf("unexpected claims: %#v", claims)
	}
}

func TestIssueTokenValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad address", args: []string{"-address", "nope", "-secret", "x"}},
		{name: "missing secret", args: []string{"-address", "0x00000000000000000000000000000000000000aa", "-secret", ""}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := issueToken(tc.args, &bytes.Buffer{}, time.Now()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := run(context.Background(), []string{"frobnicate"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for unknown command")
	}
	if err := run(context.Background(), nil, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected usage error")
	}
}

func TestDatabaseCommandsNeedURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	commands := [][]string{
		{"balance", "-address", "0x00000000000000000000000000000000000000aa"},
		{"mint", "-to", "0x00000000000000000000000000000000000000aa", "-amount", "1.5"},
		{"journal", "-project", "4cab956e-7c05-4aec-b346-02f657c45bdd"},
		{"migrate"},
	}
	for _, args := range commands {
		err := run(context.Background(), args, &bytes.Buffer{})
		if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
			t.Fatalf("%s: expected DATABASE_URL error, got %v", args[0], err)
		}
	}
}

func TestMintRejectsBadAmount(t *testing.T) {
	err := run(context.Background(), []string{"mint", "-to", "0x00000000000000000000000000000000000000aa", "-amount", "0.0000001"}, &bytes.Buffer{})
	if err == nil || strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected amount error before connecting, got %v", err)
	}
}
