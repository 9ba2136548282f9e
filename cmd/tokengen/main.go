// Package main provides a CLI tool for generating wallet tokens for the credverify API.
// These tokens use the dev signing key and will NOT work in production.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "credverify/internal/jwt_token"
	id "credverify/pkg/domain"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultIssuer   = "credverify"
	defaultTokenTTL = 24 * time.Hour
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	wallet := flag.String("wallet", "", "Wallet address (0x-prefixed hex) the token is issued to")
	issuer := flag.String("issuer", defaultIssuer, "Token issuer, must match JWT_ISSUER")
	key := flag.String("key", devSigningKey, "HMAC signing key, must match JWT_SIGNING_KEY")
	ttl := flag.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	flag.Usage = printUsage
	flag.Parse()

	if *wallet == "" {
		printUsage()
		os.Exit(1)
	}

	subject, err := id.ParseSubjectID(*wallet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid wallet: %v\n", err)
		os.Exit(1)
	}

	svc := jwttoken.NewJWTService(*key, *issuer, *ttl)
	token, jti, err := svc.GenerateToken(context.Background(), subject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	keyType := "custom"
	if *key == devSigningKey {
		keyType = "dev"
	}

	if *jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			Type:      "access_token",
			ExpiresIn: ttl.String(),
			Claims: map[string]any{
				"sub": subject.String(),
				"iss": *issuer,
				"jti": jti,
			},
			Usage: map[string]string{
				"header":      "Authorization: Bearer <token>",
				"signing_key": keyType,
			},
		})
		return
	}

	fmt.Println("Wallet Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Signing Key: %s\n", keyType)
	fmt.Printf("Expires In:  %s\n", *ttl)
	fmt.Printf("Wallet:      %s\n", subject)
	fmt.Printf("Issuer:      %s\n", *issuer)
	fmt.Printf("JTI:         %s\n", jti)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/resumes")
}

func printUsage() {
	fmt.Println(`tokengen - Generate wallet tokens for the credverify API

WARNING: By default these tokens use the dev signing key and will NOT work in production.
         Only use for local development and testing.

Usage:
  tokengen -wallet <address> [flags]

Flags:
  -wallet   Wallet address the token is issued to (required)
  -issuer   Token issuer (default "credverify")
  -key      Signing key (default: dev key)
  -ttl      Token time-to-live (default 24h)
  -json     Output as JSON

Examples:
  tokengen -wallet 0x52908400098527886E0F7030069857D2E4169EE7
  tokengen -wallet 0x52908400098527886E0F7030069857D2E4169EE7 -ttl 1h -json`)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
