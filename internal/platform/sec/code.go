// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// # One-Time Codes

const (
	// CodeAlphabet is the set of characters a verification code is drawn from.
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// CodeLength is the fixed number of characters in a verification code.
	CodeLength = 6
)

// CodeGenerator draws fixed-length codes uniformly from [CodeAlphabet].
type CodeGenerator struct {
	random io.Reader
}

// NewCodeGenerator returns a generator reading from random, or from
// [crypto/rand.Reader] when random is nil.
func NewCodeGenerator(random io.Reader) *CodeGenerator {
	if random == nil {
		random = rand.Reader
	}
	return &CodeGenerator{random: random}
}

// Generate returns a new [CodeLength] character code.
func (generator *CodeGenerator) Generate() (string, error) {
	alphabetSize := big.NewInt(int64(len(CodeAlphabet)))
	code := make([]byte, CodeLength)

	for i := range code {
		index, err := rand.Int(generator.random, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("sec: failed to generate code: %w", err)
		}
		code[i] = CodeAlphabet[index.Int64()]
	}

	return string(code), nil
}
