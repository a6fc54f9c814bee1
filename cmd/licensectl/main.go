// Command licensectl manages license signing keys and inspects tokens.
//
//	licensectl keygen -out ./keys            writes license.key and license.pub
//	licensectl verify -pub license.pub TOKEN prints the token's entitlements
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tbourn/go-restaurant-ops/internal/license"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "licensectl:", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage: licensectl keygen|verify [flags]")

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "keygen":
		return keygen(args[1:], out)
	case "verify":
		return verify(args[1:], out)
	default:
		return errUsage
	}
}

func keygen(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	dir := fs.String("out", ".", "directory for license.key and license.pub")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return err
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return err
	}
	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return err
	}

	keyPath := filepath.Join(*dir, "license.key")
	pubPath := filepath.Join(*dir, "license.pub")
	if err := os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}), 0o600); err != nil {
		return err
	}
	if err := os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\nwrote %s\n", keyPath, pubPath)
	return nil
}

func verify(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	pubPath := fs.String("pub", "license.pub", "Ed25519 public key (PEM)")
	issuer := fs.String("iss", "", "expected issuer")
	audience := fs.String("aud", "", "expected audience")
	revocations := fs.String("revocations", "", "API base URL for the online revocation check (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("verify: exactly one token argument required")
	}

	pemKey, err := os.ReadFile(*pubPath)
	if err != nil {
		return err
	}
	v, err := license.NewVerifier(pemKey, *issuer, *audience)
	if err != nil {
		return err
	}
	if *revocations != "" {
		v.Revocations = &license.HTTPRevocationChecker{BaseURL: *revocations}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ent := v.Entitlements(ctx, strings.TrimSpace(fs.Arg(0)))

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(ent)
}
