package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Account identifies one game session: a display name plus the raw browser
// cookie (and optionally a bearer token) for that account.
type Account struct {
	Name      string `json:"name"`
	Cookie    string `json:"cookie"`
	AuthToken string `json:"authToken"`
}

// accountsSchema accepts either a bare array of account objects or an object
// with an "accounts" array, with rawCookie as a legacy alias for cookie.
const accountsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$defs": {
    "account": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "cookie": {"type": "string"},
        "rawCookie": {"type": "string"},
        "authToken": {"type": "string"}
      },
      "anyOf": [
        {"required": ["cookie"]},
        {"required": ["rawCookie"]}
      ]
    },
    "list": {"type": "array", "items": {"$ref": "#/$defs/account"}}
  },
  "oneOf": [
    {"$ref": "#/$defs/list"},
    {
      "type": "object",
      "required": ["accounts"],
      "properties": {"accounts": {"$ref": "#/$defs/list"}}
    }
  ]
}`

var compiledAccountsSchema = jsonschema.MustCompileString("accounts.schema.json", accountsSchema)

type accountEntry struct {
	Name      string `json:"name"`
	Cookie    string `json:"cookie"`
	RawCookie string `json:"rawCookie"`
	AuthToken string `json:"authToken"`
}

type accountsFile struct {
	Accounts []accountEntry `json:"accounts"`
}

// LoadAccounts reads and validates the accounts file. Entries whose cookie
// does not look like a cookie (no "=") are dropped; duplicates by cookie are
// collapsed, first entry wins.
func LoadAccounts(path string) ([]Account, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("accounts file: %w", err)
	}
	if err := compiledAccountsSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("accounts file: %w", err)
	}

	var entries []accountEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		var f accountsFile
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("accounts file: %w", err)
		}
		entries = f.Accounts
	}

	seen := make(map[string]bool, len(entries))
	out := make([]Account, 0, len(entries))
	for i, e := range entries {
		cookie := strings.TrimSpace(e.Cookie)
		if cookie == "" {
			cookie = strings.TrimSpace(e.RawCookie)
		}
		if !strings.Contains(cookie, "=") {
			continue
		}
		if seen[cookie] {
			continue
		}
		seen[cookie] = true
		name := strings.TrimSpace(e.Name)
		if name == "" {
			name = fmt.Sprintf("account-%d", i+1)
		}
		out = append(out, Account{Name: name, Cookie: cookie, AuthToken: strings.TrimSpace(e.AuthToken)})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("accounts file: no usable accounts in %s", path)
	}
	return out, nil
}
