package client

import (
	"encoding/json"
	"strings"

	"github.com/vango-dev/popular/internal/errors"
	"github.com/vango-dev/popular/internal/github"
)

// DecodePayload decodes the server's embedded data. An absent or null
// payload decodes to nil; "[]" decodes to an empty, non-nil slice.
func DecodePayload(data string) ([]github.Repo, error) {
	data = strings.TrimSpace(data)
	if data == "" || data == "undefined" || data == "null" {
		return nil, nil
	}

	var repos []github.Repo
	if err := json.Unmarshal([]byte(data), &repos); err != nil {
		return nil, errors.New(errors.HydrationPayloadInvalid).Wrap(err)
	}
	if repos == nil {
		repos = []github.Repo{}
	}
	return repos, nil
}
