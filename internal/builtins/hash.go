// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtins

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/jeranaias/termshell/internal/commands"
)

// Hashers maps algorithm names to constructors.
var Hashers = map[string]func() hash.Hash{
	"sha256":   sha256.New,
	"sha3-256": sha3.New256,
	"blake2b": func() hash.Hash {
		h, _ := blake2b.New256(nil) // only fails for keys over 64 bytes
		return h
	},
}

// Digest returns the hex digest of data using the named algorithm.
func Digest(algorithm string, data []byte) (string, error) {
	mk, ok := Hashers[algorithm]
	if !ok {
		return "", errors.New("unknown algorithm: " + algorithm)
	}
	h := mk()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashProcessor() *commands.Processor {
	p := sealed(&commands.Processor{
		Command:     "hash",
		Description: "Hash text",
		Usage:       "hash sha256|sha3-256|blake2b [--text <text>] [words...]",
		Category:    CategorySecurity,
	})
	for _, name := range []string{"sha256", "sha3-256", "blake2b"} {
		p.Processors = append(p.Processors, hashChild(name))
	}
	return p
}

func hashChild(algorithm string) *commands.Processor {
	return &commands.Processor{
		Command:     algorithm,
		Description: "Hex " + algorithm + " digest of piped input or text",
		Usage:       "hash " + algorithm + " [--text <text>] [words...]",
		Parameters: []commands.Parameter{
			{Name: "text", Aliases: []string{"t"}, Description: "Text to hash"},
		},
		Handler: func(_ context.Context, ec *commands.ExecutionContext) error {
			var data string
			switch {
			case ec.HasInput:
				data = ec.InputText()
			case ec.Args.Has("text"):
				data = ec.Args.String("text", "")
			default:
				data = strings.Join(ec.Positional, " ")
			}
			sum, err := Digest(algorithm, []byte(data))
			if err != nil {
				return err
			}
			ec.Writer.WriteLine(sum)
			return nil
		},
	}
}
