// Package urlutil provides URL parsing utilities.
package urlutil

import (
	"fmt"
	"strconv"
	"strings"
)

// RepoFromAPIURL extracts "owner/repo" from a GitHub API repository URL.
// URL format: https://api.github.com/repos/owner/repo
func RepoFromAPIURL(apiURL string) (string, error) {
	parts := strings.Split(strings.TrimSuffix(apiURL, "/"), "/")
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid repository URL format: %s", apiURL)
	}
	owner := parts[len(parts)-2]
	repo := parts[len(parts)-1]
	if owner == "" || repo == "" || owner == "repos" {
		return "", fmt.Errorf("invalid repository URL format: %s", apiURL)
	}
	return owner + "/" + repo, nil
}

// ExtractNumber extracts the trailing issue/PR number from a GitHub URL.
// URL format: https://github.com/owner/repo/pull/123
func ExtractNumber(url string) (int, error) {
	parts := strings.Split(strings.TrimSuffix(url, "/"), "/")
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid URL format: %s", url)
	}

	numStr := parts[len(parts)-1]
	num, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, fmt.Errorf("failed to parse number from URL %s: %w", url, err)
	}

	return num, nil
}
