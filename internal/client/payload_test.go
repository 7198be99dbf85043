package client

import (
	"testing"

	"github.com/vango-dev/popular/internal/errors"
)

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantNil bool
		wantLen int
		wantErr bool
	}{
		{"absent", "", true, 0, false},
		{"undefined", "undefined", true, 0, false},
		{"null", "null", true, 0, false},
		{"empty list", "[]", false, 0, false},
		{"one repo", `[{"name":"react","owner":{"login":"facebook"},"stargazers_count":5,"html_url":"https://github.com/facebook/react"}]`, false, 1, false},
		{"malformed", `{"items":`, true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos, err := DecodePayload(tt.data)
			if tt.wantErr {
				if !errors.HasCode(err, errors.HydrationPayloadInvalid) {
					t.Fatalf("err = %v, want %s", err, errors.HydrationPayloadInvalid)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (repos == nil) != tt.wantNil {
				t.Errorf("nil = %v, want %v", repos == nil, tt.wantNil)
			}
			if len(repos) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(repos), tt.wantLen)
			}
		})
	}
}

func TestDecodePayloadFields(t *testing.T) {
	repos, err := DecodePayload(`[{"name":"rails","owner":{"login":"rails"},"stargazers_count":55000,"html_url":"https://github.com/rails/rails"}]`)
	if err != nil {
		t.Fatal(err)
	}
	r := repos[0]
	if r.Name != "rails" || r.Owner.Login != "rails" || r.Stars != 55000 || r.URL != "https://github.com/rails/rails" {
		t.Errorf("decoded %+v", r)
	}
}
