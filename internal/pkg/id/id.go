package id

import "github.com/oklog/ulid/v2"

// New returns a ULID string. IDs generated by one process are strictly
// increasing, which the verification-code table relies on to find the newest
// record per account.
func New() string {
	return ulid.Make().String()
}
