// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/jeranaias/termshell/internal/commands"
	"github.com/jeranaias/termshell/internal/storage"
)

// totpSecretKey is the store key of the enrolled secret.
const totpSecretKey = "totp.secret"

// now is replaced in tests.
var now = time.Now

// validateOpts accepts the previous and next 30s window.
var validateOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

func totpProcessor() *commands.Processor {
	secretParam := commands.Parameter{Name: "secret", Aliases: []string{"s"}, Description: "Base32 secret; the enrolled one when absent"}

	return sealed(&commands.Processor{
		Command:     "totp",
		Description: "Time-based one-time passwords",
		Usage:       "totp enroll|generate|verify",
		Category:    CategorySecurity,
		Processors: []*commands.Processor{
			{
				Command:     "enroll",
				Description: "Create and store a new secret",
				Usage:       "totp enroll [--account <name>]",
				Parameters: []commands.Parameter{
					{Name: "account", Default: "termshell", Description: "Account name in the provisioning URL"},
				},
				Handler: runTOTPEnroll,
			},
			{
				Command:     "generate",
				Aliases:     []string{"code"},
				Description: "Print the current code",
				Usage:       "totp generate [--secret <base32>]",
				Parameters:  []commands.Parameter{secretParam},
				Handler: func(ctx context.Context, ec *commands.ExecutionContext) error {
					secret, err := totpSecret(ctx, ec)
					if err != nil {
						return err
					}
					code, err := totp.GenerateCode(secret, now())
					if err != nil {
						return commands.Exit(commands.ExitUsage, fmt.Errorf("invalid secret: %w", err))
					}
					ec.Writer.WriteLine(code)
					return nil
				},
			},
			{
				Command:     "verify",
				Description: "Check a code",
				Usage:       "totp verify <code> [--secret <base32>]",
				Parameters: []commands.Parameter{
					{Name: "code", Positional: true, Required: true, Description: "Six-digit code"},
					secretParam,
				},
				Handler: func(ctx context.Context, ec *commands.ExecutionContext) error {
					secret, err := totpSecret(ctx, ec)
					if err != nil {
						return err
					}
					ok, err := totp.ValidateCustom(ec.Args.String("code", ""), secret, now(), validateOpts)
					if err != nil || !ok {
						return commands.Exit(commands.ExitFailure, errors.New("code rejected"))
					}
					ec.Writer.WriteSuccess("code accepted")
					return nil
				},
			},
		},
	})
}

func runTOTPEnroll(ctx context.Context, ec *commands.ExecutionContext) error {
	store, err := storeOf(ec)
	if err != nil {
		return err
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "termshell",
		AccountName: ec.Args.String("account", "termshell"),
	})
	if err != nil {
		return fmt.Errorf("generate secret: %w", err)
	}
	if err := store.Set(ctx, totpSecretKey, key.Secret()); err != nil {
		return err
	}
	ec.Writer.WriteSuccess("secret enrolled")
	ec.Writer.WriteLine(key.URL())
	return nil
}

// totpSecret returns the --secret flag, the enrolled secret, or asks.
func totpSecret(ctx context.Context, ec *commands.ExecutionContext) (string, error) {
	if s := ec.Args.String("secret", ""); s != "" {
		return normalizeSecret(s), nil
	}
	if store, err := storeOf(ec); err == nil {
		s, err := store.Get(ctx, totpSecretKey)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return "", err
		}
	}

	reader, err := requireReader(ec)
	if err != nil {
		return "", commands.Exit(commands.ExitUsage, errors.New("no secret enrolled; pass --secret"))
	}
	s, err := reader.ReadPassword(ctx, "TOTP secret: ")
	if err != nil {
		return "", err
	}
	return normalizeSecret(s), nil
}

func normalizeSecret(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}
