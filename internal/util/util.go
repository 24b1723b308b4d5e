// Package util provides utility functions for content hashing and front matter parsing.
package util

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/gomarkdown/markdown"
	"github.com/mmarkdown/mmark/v2/mast"
)

var ErrNoFrontMatter = errors.New("invalid front matter format")

var frontMatterDelimiter = []byte("%%%")

// FrontMatter is the TOML block at the top of an imported markdown file.
type FrontMatter struct {
	*mast.TitleData

	// Number of bytes of the normalized document taken by the block.
	Consumed int
}

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func ContentHashString(content string) string {
	return ContentHash([]byte(content))
}

// GetFrontMatter parses a %%%-delimited TOML block. The block must be the
// first non-blank content of md.
func GetFrontMatter(md []byte) (*FrontMatter, error) {
	md = markdown.NormalizeNewlines(md)
	md = bytes.TrimLeft(md, "\n \t\r")

	if !bytes.HasPrefix(md, frontMatterDelimiter) {
		return nil, ErrNoFrontMatter
	}

	rest := md[len(frontMatterDelimiter):]
	closing := bytes.Index(rest, frontMatterDelimiter)
	if closing == -1 {
		return nil, ErrNoFrontMatter
	}

	block := rest[:closing]
	if len(bytes.TrimSpace(block)) == 0 {
		return nil, fmt.Errorf("%w: empty block", ErrNoFrontMatter)
	}

	td := &mast.TitleData{}
	if _, err := toml.Decode(string(block), td); err != nil {
		return nil, fmt.Errorf("failed to decode front matter: %w", err)
	}

	if td.Language == "" {
		td.Language = "en"
	}

	return &FrontMatter{
		TitleData: td,
		Consumed:  len(frontMatterDelimiter)*2 + closing,
	}, nil
}

// SplitFrontMatter returns the front matter, if any, and the markdown that
// follows it. Documents without front matter come back unchanged.
func SplitFrontMatter(md []byte) (*FrontMatter, []byte) {
	fm, err := GetFrontMatter(md)
	if err != nil {
		return nil, md
	}

	normalized := bytes.TrimLeft(markdown.NormalizeNewlines(md), "\n \t\r")
	return fm, bytes.TrimLeft(normalized[fm.Consumed:], "\n")
}
