package auth

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pictorapp/pictor-server/internal/domain"
)

// LoadTokensFile reads a bearer token table from disk.
// Format: one entry per line, "token user-id [admin]", # for comments.
// A missing file is not an error; it yields an empty table, so every
// caller resolves to anonymous.
func LoadTokensFile(path string) (map[string]domain.Actor, error) {
	file, err := os.Open(path) //#nosec G304 -- Token file path comes from config
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]domain.Actor{}, nil
		}
		return nil, fmt.Errorf("open token file: %w", err)
	}
	defer file.Close()

	tokens := make(map[string]domain.Actor)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("invalid token entry at line %d", lineNum)
		}
		if len(fields) == 3 && fields[2] != "admin" {
			return nil, fmt.Errorf("invalid role %q at line %d", fields[2], lineNum)
		}
		if _, exists := tokens[fields[0]]; exists {
			return nil, fmt.Errorf("duplicate token at line %d", lineNum)
		}

		tokens[fields[0]] = domain.Actor{
			ID:      fields[1],
			IsAdmin: len(fields) == 3,
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	return tokens, nil
}
